package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func RegisterHealthRoutes(router *gin.Engine) error {
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	})
	return nil
}
