package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

var (
	ErrTokenExpired            = errors.New("token expired")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// TokenClaims struct represents the data in the token (UserID, Role, Expiry).
type TokenClaims struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Expiry time.Time `json:"expiry"`
}

// TokenIssuer signs and parses bearer tokens.
type TokenIssuer interface {
	Issue(claims TokenClaims) (string, error)
	Parse(token string) (*TokenClaims, error)
}

// PasetoIssuer issues v2 local (symmetric) PASETO tokens.
type PasetoIssuer struct {
	key []byte
}

// NewPasetoIssuer requires a 32 byte symmetric key.
func NewPasetoIssuer(key string) (*PasetoIssuer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("symmetric key must be 32 bytes long, got %d", len(key))
	}
	return &PasetoIssuer{key: []byte(key)}, nil
}

func (p *PasetoIssuer) Issue(claims TokenClaims) (string, error) {
	token, err := paseto.NewV2().Encrypt(p.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (p *PasetoIssuer) Parse(token string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(token, p.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	return &claims, nil
}

type jwtClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer issues HS256 JSON web tokens.
type JWTIssuer struct {
	secret []byte
}

func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTIssuer{secret: []byte(secret)}, nil
}

func (j *JWTIssuer) Issue(claims TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(claims.Expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   claims.UserID,
		},
	})
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Parse(token string) (*TokenClaims, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	out := &TokenClaims{UserID: claims.UserID, Role: claims.Role}
	if claims.ExpiresAt != nil {
		out.Expiry = claims.ExpiresAt.Time
	}
	return out, nil
}

// GenerateTokens generates both the access token and refresh token for the given user ID and role.
func GenerateTokens(issuer TokenIssuer, userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = GenerateAccessToken(issuer, userID, role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = issuer.Issue(TokenClaims{UserID: userID, Role: role, Expiry: time.Now().Add(RefreshTokenExpiry)})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token for a user.
func GenerateAccessToken(issuer TokenIssuer, userID, role string) (string, error) {
	return issuer.Issue(TokenClaims{UserID: userID, Role: role, Expiry: time.Now().Add(AccessTokenExpiry)})
}

// ValidateToken parses the token and checks expiry and, when given, the role.
func ValidateToken(issuer TokenIssuer, token string, requiredRoles ...string) (*TokenClaims, error) {
	claims, err := issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if time.Now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	if len(requiredRoles) == 0 {
		return claims, nil
	}
	for _, role := range requiredRoles {
		if claims.Role == role {
			return claims, nil
		}
	}
	return nil, ErrInsufficientPermissions
}
