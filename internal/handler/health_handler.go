package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles banner and health check endpoints.
type HealthHandler struct {
	outputDir string
	parserOK  bool
}

// NewHealthHandler creates a new HealthHandler. parserOK reports whether an
// extraction provider was configured.
func NewHealthHandler(outputDir string, parserOK bool) *HealthHandler {
	return &HealthHandler{outputDir: outputDir, parserOK: parserOK}
}

// Root handles GET /
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} BannerResponse
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, BannerResponse{Message: "Deal Sheet API is running", Docs: "/swagger/index.html"})
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Ready when an extraction provider is configured and the output directory is writable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.parserOK {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "no extraction provider configured"})
		return
	}
	if err := checkWritable(h.outputDir); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "output directory not writable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".readyz-*")
	if err != nil {
		return fmt.Errorf("creating probe file: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
