package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dealsheet/internal/config"
	"dealsheet/internal/handler"
	"dealsheet/internal/metrics"
	"dealsheet/internal/middleware"

	_ "dealsheet/docs"
)

// Setup configures the Gin engine with all routes and middleware. m may be
// nil when metrics are disabled.
func Setup(
	cfg *config.Config,
	dealH *handler.DealLetterHandler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if m != nil {
		r.Use(middleware.Metrics(m))
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// Banner and health checks
	r.GET("/", healthH.Root)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Conversion
	r.POST("/upload", dealH.Convert)
	v1 := r.Group("/api/v1")
	v1.POST("/deal-letters/convert", dealH.Convert)

	return r
}
