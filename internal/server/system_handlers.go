package server

import (
	"net/http"

	"courtslot/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}
