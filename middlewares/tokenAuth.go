package middlewares

import (
	"Samagra/config"
	"Samagra/models"
	"Samagra/utils"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// contextKey defines a custom context key type to store the caller in the context.
type contextKey string

const identityKey contextKey = "identity"

// Trusted identity headers for AUTH_MODE=header.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// IdentityResolver turns a request into the verified caller.
type IdentityResolver interface {
	Resolve(r *http.Request) (models.Identity, error)
}

// NewIdentityResolver picks the strategy for an AUTH_MODE value.
func NewIdentityResolver(mode string, issuer utils.TokenIssuer) IdentityResolver {
	if mode == config.AuthModeHeader {
		return HeaderResolver{}
	}
	return TokenResolver{Issuer: issuer}
}

// HeaderResolver trusts identity headers set by an upstream gateway.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (models.Identity, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return models.Identity{}, utils.Unauthenticatedf("missing %s header", HeaderUserID)
	}
	role, ok := normalizeRole(r.Header.Get(HeaderUserRole))
	if !ok {
		return models.Identity{}, utils.Unauthenticatedf("invalid %s header", HeaderUserRole)
	}
	return models.Identity{UserID: userID, Role: role}, nil
}

// TokenResolver verifies a bearer token, falling back to the access token cookie.
type TokenResolver struct {
	Issuer utils.TokenIssuer
}

func (t TokenResolver) Resolve(r *http.Request) (models.Identity, error) {
	token := BearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie("accessToken"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return models.Identity{}, utils.Unauthenticatedf("missing access token")
	}

	claims, err := utils.ValidateToken(t.Issuer, token, models.RoleDoctor, models.RolePatient)
	if err != nil {
		return models.Identity{}, utils.Unauthenticatedf("invalid token")
	}
	return models.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

func normalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "doctor":
		return models.RoleDoctor, true
	case "patient":
		return models.RolePatient, true
	default:
		return "", false
	}
}

// RequireRole resolves the caller and, when roles are given, restricts the
// route to them. The identity is stored in the request context.
func RequireRole(resolver IdentityResolver, logger *zap.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c.Request)
		if err != nil {
			RespondError(c, logger, err)
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(identity, roles) {
			RespondError(c, logger, utils.Forbiddenf("insufficient privileges"))
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), identityKey, identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func hasRole(identity models.Identity, roles []string) bool {
	for _, role := range roles {
		if identity.Is(role) {
			return true
		}
	}
	return false
}

// IdentityFromContext retrieves the caller stored by RequireRole.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// CurrentIdentity returns the caller of a route guarded by RequireRole.
func CurrentIdentity(c *gin.Context) models.Identity {
	identity, _ := IdentityFromContext(c.Request.Context())
	return identity
}
