package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/config"
	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/handler"
	"github.com/boddenberg/beautypro-go/internal/infra/cache"
	"github.com/boddenberg/beautypro-go/internal/infra/memory"
	"github.com/boddenberg/beautypro-go/internal/infra/messaging"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/infra/resilience"
	"github.com/boddenberg/beautypro-go/internal/port"
	"github.com/boddenberg/beautypro-go/internal/scheduler"
	"github.com/boddenberg/beautypro-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("strict_transitions", cfg.StrictTransitions),
		zap.Bool("detect_overlaps", cfg.DetectOverlaps),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("whatsapp_sending", cfg.TwilioEnabled()),
		zap.Bool("reminders_enabled", cfg.RemindersEnabled),
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("invalid SALON_TIMEZONE", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "beautypro-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	passwordHash, err := service.HashPassword(cfg.DemoPassword, cfg.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash demo password", zap.Error(err))
	}
	store, err := memory.NewSeeded(logger, memory.SeedOptions{
		Now:          time.Now(),
		Location:     loc,
		PasswordHash: passwordHash,
	})
	if err != nil {
		logger.Fatal("failed to seed store", zap.Error(err))
	}

	// --- Cache ---
	bookingCache := cache.New[*domain.BookingCatalog](cfg.CacheTTL)
	defer bookingCache.Close()

	// --- WhatsApp sender ---
	var sender port.MessageSender
	if cfg.TwilioEnabled() {
		sender = messaging.NewTwilioSender(
			messaging.TwilioConfig{
				AccountSID:     cfg.TwilioAccountSID,
				AuthToken:      cfg.TwilioAuthToken,
				WhatsAppNumber: cfg.TwilioWhatsAppNumber,
				Timeout:        cfg.HTTPTimeout,
			},
			resilience.NewCircuitBreaker("twilio"),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: 4,
			},
			metrics,
			logger,
		)
		logger.Info("whatsapp sending enabled via twilio")
	} else {
		logger.Warn("twilio not configured, whatsapp sending unavailable (deep links still work)")
	}

	// --- Services ---
	var policy domain.TransitionPolicy = domain.PermissivePolicy{}
	if cfg.StrictTransitions {
		policy = domain.StrictPolicy{}
	}
	ledger := service.NewLedger(store, service.LedgerOptions{
		Policy:         policy,
		DetectOverlaps: cfg.DetectOverlaps,
		Location:       loc,
	}, metrics, logger)

	marketingSvc := service.NewMarketingService(store, sender, loc, time.Now, metrics, logger)

	svcs := handler.Services{
		Ledger:        ledger,
		Catalog:       service.NewCatalogService(store, bookingCache, logger),
		Professionals: service.NewProfessionalService(store, bookingCache, logger),
		Clients:       service.NewClientService(store, logger),
		Finance:       service.NewFinanceService(store, loc, time.Now, logger),
		Settings:      service.NewSettingsService(store, bookingCache, logger),
		Schedule:      service.NewScheduleService(store, loc, time.Now, logger),
		Dashboard:     service.NewDashboardService(store, loc, time.Now, logger),
		Marketing:     marketingSvc,
		Booking:       service.NewBookingService(store, ledger, bookingCache, metrics, logger),
		Auth:          service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
	}

	// --- Reminders ---
	var reminders *scheduler.Reminders
	switch {
	case !cfg.RemindersEnabled:
	case sender == nil:
		logger.Warn("reminders enabled but twilio not configured, scheduler not started")
	default:
		reminders, err = scheduler.NewReminders(cfg.ReminderCron, loc, marketingSvc, 5*time.Minute, logger)
		if err != nil {
			logger.Fatal("failed to schedule reminders", zap.Error(err))
		}
		reminders.Start()
	}

	// --- Router ---
	router := handler.NewRouter(svcs, handler.RouterConfig{AllowedOrigins: cfg.AllowedOrigins}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if reminders != nil {
		if err := reminders.Stop(ctx); err != nil {
			logger.Warn("reminder job still running at shutdown", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
