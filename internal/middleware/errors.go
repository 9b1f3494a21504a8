package middleware

import (
	"github.com/eaglebank/account-rest-service/internal/errs"
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request and renders err as the JSON body.
func RespondWithError(c *gin.Context, err *errs.HTTPError) {
	c.AbortWithStatusJSON(err.Status, err)
}
