package middleware

import (
	"github.com/eaglebank/account-rest-service/internal/errs"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		GetLogger(c).Error().Interface("panic", recovered).Msg("recovered from panic")
		RespondWithError(c, errs.NewInternalServerError())
	})
}
