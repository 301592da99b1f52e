package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskrouter/internal/handler"
	"taskrouter/internal/middleware"
	"taskrouter/internal/pipeline"
	"taskrouter/internal/service"
	"taskrouter/internal/session"
	"taskrouter/internal/store"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(
	authService service.AuthService,
	taskStore *store.TaskStore,
	sessions *session.Resolver,
	processor *pipeline.Processor,
	logger *zap.Logger,
) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(authService, taskStore, sessions, processor)

	return s
}

func (s *Server) setupRoutes(
	authService service.AuthService,
	taskStore *store.TaskStore,
	sessions *session.Resolver,
	processor *pipeline.Processor,
) {
	authHandler := handler.NewAuthHandler(authService, s.logger)
	taskHandler := handler.NewTaskHandler(taskStore, s.logger)
	sessionHandler := handler.NewSessionHandler(sessions, s.logger)
	ingestHandler := handler.NewIngestHandler(processor, s.logger)

	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(s.logger))
	{
		authRequired.POST("/messages", ingestHandler.IngestMessage)
		authRequired.GET("/tasks", taskHandler.GetTasks)
		authRequired.POST("/sessions/resolve", sessionHandler.Resolve)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
