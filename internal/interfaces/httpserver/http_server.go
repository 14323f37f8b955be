// Package httpserver wires the gin engine, middleware chain and routes.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/config"
	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/handlers/authhandler"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/handlers/chathandler"
	middleware "github.com/Phicks-debug/daisii/internal/interfaces/httpserver/middlewares"
)

type HTTPServer struct {
	engine      *gin.Engine
	config      *config.Config
	sessions    *auth.SessionService
	authHandler *authhandler.AuthHandler
	chatHandler *chathandler.ChatHandler
	logger      zerolog.Logger
}

func NewHttpServer(
	cfg *config.Config,
	sessions *auth.SessionService,
	authHandler *authhandler.AuthHandler,
	chatHandler *chathandler.ChatHandler,
	logger zerolog.Logger,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := &HTTPServer{
		engine:      gin.New(),
		config:      cfg,
		sessions:    sessions,
		authHandler: authHandler,
		chatHandler: chatHandler,
		logger:      logger,
	}
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.registerRoutes()
	return server
}

func (s *HTTPServer) registerRoutes() {
	// Public routes (no auth required)
	root := s.engine.Group("/")
	root.POST("/token", s.authHandler.Token)
	root.POST("/register", s.authHandler.Register)

	// Protected routes (auth middleware applied)
	protected := s.engine.Group("/")
	protected.Use(middleware.AuthMiddleware(s.sessions, s.logger))
	protected.POST("/chat/create/:conversation_id", s.chatHandler.CreateConversation)
	protected.POST("/chat/:conversation_id", s.chatHandler.Chat)
	protected.GET("/chat/:conversation_id", s.chatHandler.GetHistory)
}

// Engine exposes the underlying gin engine, primarily for tests.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the listener fails or ctx is cancelled, then drains
// in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
