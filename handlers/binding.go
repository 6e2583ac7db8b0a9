package handlers

import (
	"Samagra/middlewares"
	"Samagra/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, logger *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.RespondError(c, logger, utils.Validationf("invalid request body"))
		return false
	}
	return true
}
