// Interviewd is the meeting-session backend for the interview platform.
//
// This binary serves the HTTP API with full service initialization,
// including MongoDB, JWT authentication, and the realtime voice
// interview relay.
//
// Usage:
//
//	# Start server with defaults
//	interviewd
//
//	# Point at a config file
//	interviewd -config /etc/interviewd/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/auth"
	"github.com/NikhilSingh0745/mr-interview/internal/config"
	"github.com/NikhilSingh0745/mr-interview/internal/httpapi"
	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/interview"
	"github.com/NikhilSingh0745/mr-interview/internal/logging"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingsession"
	"github.com/NikhilSingh0745/mr-interview/internal/question"
	"github.com/NikhilSingh0745/mr-interview/internal/realtime"
	"github.com/NikhilSingh0745/mr-interview/internal/store"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("interviewd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the interviewd server and blocks until context
// cancellation. It wires configuration, logging, the document store,
// authentication, the domain services, and the HTTP server, then
// performs a graceful shutdown.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting interviewd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	client, err := store.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("failed to close mongodb client", zap.Error(err))
		}
	}()

	if err := client.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret.Value(), cfg.Auth.TokenTTL.Duration())
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	gate := auth.NewGate(cfg.Auth.APIKey.Value(), tokens, httpapi.PublicPaths, logger)

	services, err := initServices(client, tokens, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	relay, err := initRelay(cfg.Interview, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize interview relay: %w", err)
	}

	srv, err := httpapi.NewServer(cfg.Server, gate, services, relay, client, logger)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initServices wires the domain services in dependency order.
func initServices(client *store.Client, tokens *auth.Tokens, logger *zap.Logger) (httpapi.Services, error) {
	identitySvc, err := identity.NewService(identity.NewMongoStore(client), tokens, logger)
	if err != nil {
		return httpapi.Services{}, fmt.Errorf("identity service: %w", err)
	}

	questionSvc, err := question.NewService(question.NewMongoStore(client), logger)
	if err != nil {
		return httpapi.Services{}, fmt.Errorf("question service: %w", err)
	}

	configSvc, err := meetingconfig.NewService(meetingconfig.NewMongoStore(client), questionSvc, identitySvc, logger)
	if err != nil {
		return httpapi.Services{}, fmt.Errorf("meeting details service: %w", err)
	}

	sessionSvc, err := meetingsession.NewService(meetingsession.NewMongoStore(client), configSvc, identitySvc, logger)
	if err != nil {
		return httpapi.Services{}, fmt.Errorf("meeting session service: %w", err)
	}

	return httpapi.Services{
		Identity: identitySvc,
		Question: questionSvc,
		Config:   configSvc,
		Session:  sessionSvc,
	}, nil
}

// initRelay creates the realtime voice interview relay. The relay is
// optional: without an API key the server starts without the
// websocket route.
func initRelay(cfg config.InterviewConfig, logger *zap.Logger) (*realtime.Relay, error) {
	if !cfg.APIKey.IsSet() {
		logger.Warn("interview api key not configured, voice interview disabled")
		return nil, nil
	}

	interviewer, err := interview.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}
	return realtime.NewRelay(interviewer, logger)
}
