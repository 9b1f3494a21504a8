package handler

import (
	"net/http"

	"github.com/eaglebank/account-rest-service/internal/errs"
	"github.com/eaglebank/account-rest-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "Account REST API Service"
	ServiceVersion = "1.0"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type IndexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func Health(c *gin.Context) {
	middleware.GetLogger(c).Info().Msg("Request for health check")
	c.JSON(http.StatusOK, HealthResponse{Status: "OK"})
}

func Index(c *gin.Context) {
	middleware.GetLogger(c).Info().Msg("Request for root URL")
	c.JSON(http.StatusOK, IndexResponse{Name: ServiceName, Version: ServiceVersion})
}

// NoRoute answers requests for paths the router does not know.
func NoRoute(c *gin.Context) {
	middleware.RespondWithError(c, errs.NewNotFoundError("The requested URL was not found on the server."))
}

// NoMethod answers requests whose path exists under another method.
func NoMethod(c *gin.Context) {
	middleware.RespondWithError(c, errs.NewMethodNotAllowedError(
		"The method "+c.Request.Method+" is not allowed for the requested URL."))
}
