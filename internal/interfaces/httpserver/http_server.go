package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agenthub/services/chat-api/internal/config"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	v1 "agenthub/services/chat-api/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine  *gin.Engine
	v1Route *v1.V1Route
	logger  zerolog.Logger
	config  *config.Config
}

func NewHTTPServer(
	v1Route *v1.V1Route,
	logger zerolog.Logger,
	cfg *config.Config,
) *HTTPServer {
	if config.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	server := HTTPServer{
		gin.New(),
		v1Route,
		logger,
		cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return &server
}

func (httpServer *HTTPServer) Run() error {
	protected := httpServer.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(httpServer.config.JWTSecret, httpServer.logger, httpServer.config.Issuer),
	)

	httpServer.v1Route.RegisterRouter(protected)

	return httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort))
}
