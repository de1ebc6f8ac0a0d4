package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/handler"
)

func TestHealthHandler_Root(t *testing.T) {
	h := handler.NewHealthHandler(t.TempDir(), true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	h.Root(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body handler.BannerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Deal Sheet API is running", body.Message)
	assert.Equal(t, "/swagger/index.html", body.Docs)
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler("", false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		parserOK bool
		want     int
	}{
		{"ready", t.TempDir(), true, http.StatusOK},
		{"no parser", t.TempDir(), false, http.StatusServiceUnavailable},
		{"missing dir", filepath.Join(t.TempDir(), "gone"), true, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.dir, tt.parserOK)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)
			h.Readiness(c)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
