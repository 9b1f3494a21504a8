package middleware

import (
	"fmt"

	"github.com/eaglebank/account-rest-service/internal/errs"
	"github.com/gin-gonic/gin"
)

const MediaTypeJSON = "application/json"

// CheckContentType returns a 415 error unless the Content-Type header is
// exactly mediaType. Parameters are not accepted.
func CheckContentType(c *gin.Context, mediaType string) *errs.HTTPError {
	if c.GetHeader("Content-Type") == mediaType {
		return nil
	}
	GetLogger(c).Error().
		Str("content_type", c.GetHeader("Content-Type")).
		Msg("Invalid Content-Type")
	return errs.NewUnsupportedMediaTypeError(fmt.Sprintf("Content-Type must be %s", mediaType))
}

// RequireContentType runs CheckContentType before the route handler, so a
// mismatched request is rejected before its body is read.
func RequireContentType(mediaType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CheckContentType(c, mediaType); err != nil {
			RespondWithError(c, err)
			return
		}
		c.Next()
	}
}
