package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medbill-amounts/internal/amounts"
	"medbill-amounts/internal/services/health"
	"medbill-amounts/internal/shared/config"
	"medbill-amounts/internal/shared/metrics"
	"medbill-amounts/internal/shared/server/middleware"
	"medbill-amounts/internal/shared/server/respond"
)

// RouterDeps holds handlers and services needed to build the router.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	AmountsHandler *amounts.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.OK(c, deps.Health.Status())
	})
	if deps.AmountsHandler != nil {
		deps.AmountsHandler.RegisterRoutes(api)
	}

	r.GET("/metrics", metrics.Handler())

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
