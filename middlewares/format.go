package middlewares

import (
	"Samagra/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondSuccess writes the success envelope: {"success": true, ...payload}.
func RespondSuccess(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// RespondError maps err to its HTTP status and writes {"error": message}.
// Internal errors are logged and their text is not returned.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := utils.KindOf(err)
	status := StatusFor(kind)
	if kind == utils.KindInternal {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	} else {
		logger.Debug("request rejected",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": utils.PublicMessage(err)})
}

// StatusFor returns the HTTP status of an error kind.
func StatusFor(kind utils.ErrorKind) int {
	switch kind {
	case utils.KindValidation:
		return http.StatusBadRequest
	case utils.KindUnauthenticated:
		return http.StatusUnauthorized
	case utils.KindAuthorization:
		return http.StatusForbidden
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
