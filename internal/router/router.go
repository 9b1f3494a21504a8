// Package router wires the HTTP routes of the account service.
package router

import (
	"github.com/eaglebank/account-rest-service/internal/handler"
	"github.com/eaglebank/account-rest-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// New returns the gin engine serving every route of the service. Requests
// for a known path with an unsupported method get 405, not 404.
func New(log zerolog.Logger, accounts *handler.AccountHandler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.LoggingMiddleware(log),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
	)
	r.NoRoute(handler.NoRoute)
	r.NoMethod(handler.NoMethod)

	r.GET("/health", handler.Health)
	r.GET("/", handler.Index)

	requireJSON := middleware.RequireContentType(middleware.MediaTypeJSON)

	v := r.Group("/accounts")
	{
		v.POST("", requireJSON, accounts.CreateAccount)
		v.GET("", accounts.ListAccounts)
		v.GET("/:id", accounts.GetAccount)
		v.PUT("/:id", requireJSON, accounts.UpdateAccount)
		v.DELETE("/:id", accounts.DeleteAccount)
	}

	return r
}
