package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarrafbook/ledger/internal/config"
	"github.com/sarrafbook/ledger/internal/handler"
	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/services"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func policyFor(p config.RefreshPolicy) ledger.Policy {
	if p == config.RefreshRefetch {
		return ledger.PolicyRefresh
	}
	return ledger.PolicyMerge
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.LogLevel)
	jalali.SetLocation(cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Services
	dbService, err := services.NewDatabaseService(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init DatabaseService", "error", err)
		os.Exit(1)
	}

	blobService, err := services.NewBlobService(cfg.BlobServiceURL)
	if err != nil {
		slog.Error("Failed to init BlobService", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService(cfg.QueueServiceURL)
	if err != nil {
		slog.Error("Failed to init QueueService", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Ledger: ledger.NewStore(dbService, cfg.CacheTTL, policyFor(cfg.RefreshPolicy)),
		Blob:   blobService,
		Queue:  queueService,
		Config: cfg,
	}

	emailService, err := services.NewEmailService(cfg.CommunicationEndpoint, cfg.SenderAddress, nil)
	if err != nil {
		slog.Warn("Failed to init EmailService (continuing without e-mail)", "error", err)
	} else {
		deps.Email = emailService
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Logging(handler.RateLimit(limiter, deps.NewRouter())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.Port, "refresh_policy", cfg.RefreshPolicy, "timezone", cfg.CalendarTimezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
