package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"

	"paygateway/internal/agreement"
	"paygateway/internal/auth"
	"paygateway/internal/backend"
	"paygateway/internal/backend/connector"
	"paygateway/internal/backend/ledger"
	"paygateway/internal/common/api"
	"paygateway/internal/common/database"
	"paygateway/internal/common/events"
	"paygateway/internal/common/middleware"
	"paygateway/internal/common/nats"
	"paygateway/internal/dispute"
	gatewayapi "paygateway/internal/gateway/api"
	"paygateway/internal/payment"
	"paygateway/internal/refund"
	"paygateway/internal/search"
	"paygateway/internal/uris"
)

// Config holds service configuration
type Config struct {
	Port          int    `envconfig:"PUBLIC_API_PORT" default:"8080"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" required:"true"`
	Environment   string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`

	Backend   backend.Config
	Database  database.Config
	NATS      nats.Config
	RateLimit middleware.RateLimitConfig
}

func main() {
	// Load configuration
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to process config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database.URL, logger); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Events are optional: without NATS they are dropped.
	var publisher events.Publisher = events.Discard{}
	var natsClient *nats.Client
	if cfg.NATS.Enabled() {
		natsClient, err = nats.New(cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		if err := natsClient.EnsureStream(ctx, cfg.NATS); err != nil {
			logger.Error("failed to ensure stream", "error", err)
			os.Exit(1)
		}
		publisher = natsClient.Publisher()
	}
	notifier := events.NewNotifier(publisher, logger, middleware.GetCorrelationID)

	// Backends
	connectorClient := connector.New(backend.NewClient(backend.ServiceConnector, cfg.Backend.ConnectorURL, cfg.Backend.Timeout, logger))
	ledgerClient := ledger.New(backend.NewClient(backend.ServiceLedger, cfg.Backend.LedgerURL, cfg.Backend.Timeout, logger))

	// Core
	public := uris.NewPublic(cfg.PublicBaseURL)
	paymentAssembler := payment.NewAssembler(payment.NewLinkBuilder(public))
	refundAssembler := refund.NewAssembler(public)
	agreementAssembler := agreement.NewAssembler(public)

	router := payment.NewRouter(connectorClient, ledgerClient, logger)
	coordinator := payment.NewCoordinator(connectorClient, paymentAssembler, logger)

	paymentService := payment.NewService(router, paymentAssembler, coordinator, connectorClient, ledgerClient, public, notifier, logger)
	refundService := refund.NewService(router, connectorClient, refundAssembler, notifier, logger)
	agreementService := agreement.NewService(ledgerClient, connectorClient, agreementAssembler, notifier, logger)
	orchestrator := search.NewOrchestrator(connectorClient, ledgerClient, search.Assemblers{
		Payments:   paymentAssembler,
		Refunds:    refundAssembler,
		Agreements: agreementAssembler,
		Disputes:   dispute.NewAssembler(public),
	}, public, logger)

	handler := gatewayapi.NewHandler(paymentService, refundService, agreementService, orchestrator, logger)
	tokens := auth.NewStore(db, logger)

	// Setup router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Compress(5))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"database": "healthy"}
		code := http.StatusOK
		if err := db.HealthCheck(r.Context()); err != nil {
			status["database"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		if natsClient != nil {
			status["nats"] = "healthy"
			if err := natsClient.HealthCheck(); err != nil {
				status["nats"] = "unhealthy"
				code = http.StatusServiceUnavailable
			}
		}
		api.WriteJSON(w, code, status)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens, logger))
		r.Use(middleware.RateLimit(middleware.NewTokenBucket(cfg.RateLimit), middleware.ByTokenLink, logger))
		r.Mount("/", handler.Routes())
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting public api",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"events", cfg.NATS.Enabled(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
