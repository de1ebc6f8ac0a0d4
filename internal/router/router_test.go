package router_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/config"
	"dealsheet/internal/handler"
	"dealsheet/internal/logging"
	"dealsheet/internal/metrics"
	"dealsheet/internal/router"
	"dealsheet/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, m *metrics.Metrics) (*gin.Engine, *mocks.MockConversionService) {
	t.Helper()
	cfg := &config.Config{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{Enabled: m != nil, Path: "/metrics"},
	}
	svc := new(mocks.MockConversionService)
	log := logging.Discard()
	dealH := handler.NewDealLetterHandler(svc, 1<<20, log)
	healthH := handler.NewHealthHandler(t.TempDir(), true)
	return router.Setup(cfg, dealH, healthH, m, log), svc
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSetup_ProbesAndDocs(t *testing.T) {
	r, _ := newEngine(t, nil)

	for _, path := range []string{"/", "/healthz", "/readyz", "/swagger/index.html"} {
		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
	assert.Equal(t, http.StatusNotFound, get(r, "/metrics").Code)
}

func TestSetup_MetricsEndpoint(t *testing.T) {
	r, _ := newEngine(t, metrics.New(nil))

	get(r, "/healthz")
	w := get(r, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dealsheet_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestSetup_UploadRoutesShareHandler(t *testing.T) {
	r, svc := newEngine(t, nil)

	for _, path := range []string{"/upload", "/api/v1/deal-letters/convert"} {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("note", "no file here"))
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "MISSING_FILE", path)
	}
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestSetup_CORSPreflight(t *testing.T) {
	r, _ := newEngine(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
