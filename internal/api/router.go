package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baseplate/persons/internal/api/handlers"
	"github.com/baseplate/persons/internal/api/middleware"
	"github.com/baseplate/persons/internal/core/auth"
)

type Router struct {
	engine         *gin.Engine
	logger         *slog.Logger
	gatherer       prometheus.Gatherer
	authMiddleware *middleware.AuthMiddleware
	authHandler    *handlers.AuthHandler
	personHandler  *handlers.PersonHandler
}

func NewRouter(
	logger *slog.Logger,
	gatherer prometheus.Gatherer,
	authService *auth.Service,
	authHandler *handlers.AuthHandler,
	personHandler *handlers.PersonHandler,
) *Router {
	return &Router{
		logger:         logger,
		gatherer:       gatherer,
		authMiddleware: middleware.NewAuthMiddleware(authService),
		authHandler:    authHandler,
		personHandler:  personHandler,
	}
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestLogger(r.logger))

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	api := r.engine.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.POST("/auth/token", r.authHandler.Token)

	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())
	{
		persons := protected.Group("/persons")
		{
			persons.POST("", r.personHandler.Create)
			persons.GET("", r.personHandler.Search)
			persons.GET("/:id", r.personHandler.Get)
			persons.PATCH("/:id", r.personHandler.Update)
			persons.DELETE("/:id", r.personHandler.Delete)
		}
	}
}
