// Package httpapi exposes the service over HTTP: the auth endpoints, the
// product surface behind the request gate, and operational endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stillmind/stillmind/internal/auth"
	"github.com/stillmind/stillmind/internal/identity"
	"github.com/stillmind/stillmind/internal/journal"
	"github.com/stillmind/stillmind/internal/mood"
	"github.com/stillmind/stillmind/internal/reframe"
	"github.com/stillmind/stillmind/internal/worry"
)

// Server bundles the handlers and their dependencies.
type Server struct {
	auth       *auth.Service
	identities identity.Store
	moods      mood.Store
	journals   journal.Store
	worries    worry.Store
	reframes   *reframe.Service

	frontendURL  string
	cookieSecure bool
	logger       zerolog.Logger
}

// Options configures the HTTP layer.
type Options struct {
	FrontendURL string
	// CookieSecure controls the Secure attribute on the refresh cookie.
	// Leave it on outside of plain-HTTP test setups.
	CookieSecure bool
}

// NewServer wires the handler dependencies.
func NewServer(
	authSvc *auth.Service,
	identities identity.Store,
	moods mood.Store,
	journals journal.Store,
	worries worry.Store,
	reframes *reframe.Service,
	opts Options,
	logger zerolog.Logger,
) *Server {
	return &Server{
		auth:         authSvc,
		identities:   identities,
		moods:        moods,
		journals:     journals,
		worries:      worries,
		reframes:     reframes,
		frontendURL:  opts.FrontendURL,
		cookieSecure: opts.CookieSecure,
		logger:       logger.With().Str("component", "httpapi").Logger(),
	}
}

// Router builds the gin engine with all routes registered. The metrics
// registerer may be nil to skip the /metrics endpoint.
func (s *Server) Router(reg prometheus.Gatherer) *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(s.cors())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if reg != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.logout)

	protected := api.Group("")
	protected.Use(s.requireAuth())

	protected.GET("/auth/me", s.me)
	protected.PUT("/auth/preferences", s.updatePreferences)

	protected.GET("/mood-tracker", s.listMoods)
	protected.POST("/mood-tracker", s.createMood)
	protected.GET("/mood-tracker/recent", s.recentMoods)
	protected.GET("/mood-tracker/stats", s.moodStats)
	protected.GET("/mood-tracker/:id", s.getMood)
	protected.PUT("/mood-tracker/:id", s.updateMood)
	protected.DELETE("/mood-tracker/:id", s.deleteMood)

	protected.GET("/mental-box", s.listJournal)
	protected.POST("/mental-box", s.createJournal)
	protected.GET("/mental-box/:id", s.getJournal)
	protected.PUT("/mental-box/:id", s.updateJournal)
	protected.DELETE("/mental-box/:id", s.deleteJournal)

	protected.GET("/worry-window", s.listWorries)
	protected.POST("/worry-window", s.createWorry)
	protected.GET("/worry-window/:id", s.getWorry)
	protected.PUT("/worry-window/:id", s.updateWorry)
	protected.DELETE("/worry-window/:id", s.deleteWorry)

	protected.GET("/stress-reframe", s.listReframes)
	protected.POST("/stress-reframe", s.createReframe)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.frontendURL)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
