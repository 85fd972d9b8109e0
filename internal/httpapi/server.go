// Package httpapi provides the HTTP API for interviewd.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/auth"
	"github.com/NikhilSingh0745/mr-interview/internal/config"
	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingsession"
	"github.com/NikhilSingh0745/mr-interview/internal/question"
	"github.com/NikhilSingh0745/mr-interview/internal/realtime"
)

// PublicPaths lists the routes the authentication gate lets through.
var PublicPaths = []string{"/test", "/health", "/metrics", "/api/auth/login", "/ws/interview"}

// Pinger reports backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the domain services the server exposes.
type Services struct {
	Identity identity.Service
	Question question.Service
	Config   meetingconfig.Service
	Session  meetingsession.Service
}

// Server provides the HTTP API.
type Server struct {
	echo     *echo.Echo
	logger   *zap.Logger
	config   config.ServerConfig
	gate     *auth.Gate
	services Services
	relay    *realtime.Relay
	pinger   Pinger
	metrics  *Metrics
}

// NewServer creates the HTTP server.
func NewServer(cfg config.ServerConfig, gate *auth.Gate, services Services, relay *realtime.Relay, pinger Pinger, logger *zap.Logger) (*Server, error) {
	if gate == nil {
		return nil, errors.New("authentication gate is required")
	}
	if services.Identity == nil || services.Question == nil || services.Config == nil || services.Session == nil {
		return nil, errors.New("all domain services are required")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		logger:   logger,
		config:   cfg,
		gate:     gate,
		services: services,
		relay:    relay,
		pinger:   pinger,
		metrics:  NewMetrics(),
	}

	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(gate.Middleware())

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/test", s.handleTest)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", s.metrics.Handler())

	api := s.echo.Group("/api")

	api.POST("/auth/login", s.handleLogin)

	questions := api.Group("/questions")
	questions.POST("", s.handleCreateQuestion)
	questions.GET("", s.handleListQuestions)
	questions.GET("/:id", s.handleGetQuestion)
	questions.PUT("/:id", s.handleUpdateQuestion)
	questions.DELETE("/:id", s.handleDeleteQuestion)

	details := api.Group("/meeting-details")
	details.POST("", s.handleCreateMeetingDetails)
	details.GET("", s.handleListMeetingDetails)
	details.GET("/:id", s.handleGetMeetingDetails)
	details.PUT("/:id", s.handleUpdateMeetingDetails)
	details.PATCH("/:id", s.handleUpdateMeetingDetails)
	details.DELETE("/:id", s.handleDeleteMeetingDetails)

	sessions := api.Group("/meeting-sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("", s.handleListSessions)
	sessions.GET("/:id", s.handleGetSession)
	sessions.PUT("/:id", s.handleUpdateSession)
	sessions.PATCH("/:id", s.handleUpdateSession)
	sessions.PATCH("/:id/status", s.handleSessionStatus)
	sessions.POST("/:id/participants", s.handleAddParticipant)
	sessions.DELETE("/:id/participants/:participantId", s.handleRemoveParticipant)
	sessions.DELETE("/:id", s.handleDeleteSession)

	if s.relay != nil {
		s.echo.GET("/ws/interview", s.relay.Handler)
	}
}

func (s *Server) handleTest(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.pinger != nil {
		if err := s.pinger.Ping(c.Request().Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, Envelope{
				Success: false,
				Message: "database unreachable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
