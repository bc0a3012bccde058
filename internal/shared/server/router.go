package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dashboard-gateway/internal/analysis"
	"dashboard-gateway/internal/backend"
	"dashboard-gateway/internal/queries"
	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/config"
	"dashboard-gateway/internal/shared/server/middleware"
	"dashboard-gateway/internal/shared/server/respond"
	"dashboard-gateway/internal/ui"
	"dashboard-gateway/internal/uploads"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	client := backend.New(cfg.BackendBaseURL, cfg.RequestTimeout, backend.StaticToken(""))
	sessions := session.NewStore()
	registry := analysis.NewRegistry()

	pages := ui.NewHandler(client, sessions, registry, ui.Options{
		CookieName:      cfg.SessionCookie,
		SecureCookie:    cfg.SessionSecure,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
	})
	analysisHandler := analysis.NewHandler(
		func(token string) analysis.API { return client.WithToken(token) },
		sessions, registry, cfg.PollInterval, cfg.PollMaxAttempts,
	)
	queryHandler := queries.NewHandler(
		func(token string) queries.API { return client.WithToken(token) },
		sessions,
	)
	uploadHandler := uploads.NewHandler(
		func(token string) uploads.API { return client.WithToken(token) },
		sessions,
	)

	r.GET("/healthz", func(c *gin.Context) {
		status := gin.H{"ok": true, "backend": "up"}
		if err := client.Health(c.Request.Context()); err != nil {
			status["backend"] = "down"
		}
		respond.JSON(c, http.StatusOK, status)
	})

	pages.RegisterPublic(r)

	gate := middleware.SessionGate(sessions, cfg.SessionCookie)

	app := r.Group("/")
	app.Use(gate)
	pages.RegisterPages(app)

	api := r.Group("/api")
	api.Use(gate)
	analysisHandler.RegisterRoutes(api)
	queryHandler.RegisterRoutes(api)
	uploadHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
