package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollstream/config"
	"pollstream/internal/handler"
	"pollstream/internal/middleware"
	"pollstream/internal/redis"
	"pollstream/internal/services"
	"pollstream/internal/transport/httpdto"
	"pollstream/pkg/database"
	"pollstream/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth *handler.AuthHandler
	Poll *handler.PollHandler
	WS   *WebSocketHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authRequired := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	if limiter != nil {
		auth.Use(middleware.RateLimitMiddleware(limiter))
	}
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", authRequired, handlers.Auth.Me)
	}

	polls := s.engine.Group("/v1/polls")
	{
		polls.GET("", handlers.Poll.List)
		polls.GET("/:uuid", handlers.Poll.Get)
		polls.POST("", authRequired, handlers.Poll.Create)
		polls.PATCH("/:uuid", authRequired, handlers.Poll.Update)
		polls.DELETE("/:uuid", authRequired, handlers.Poll.Delete)
		polls.POST("/:uuid/options", authRequired, handlers.Poll.AddOptions)
		polls.DELETE("/:uuid/options", authRequired, handlers.Poll.DeleteOptions)
		polls.POST("/:uuid/vote", authRequired, handlers.Poll.Vote)
		polls.POST("/:uuid/like", authRequired, handlers.Poll.Like)
	}

	me := s.engine.Group("/v1/me", authRequired)
	{
		me.GET("/votes", handlers.Poll.MyVotes)
		me.GET("/likes", handlers.Poll.MyLikes)
	}

	s.engine.GET("/ws", handlers.WS.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
