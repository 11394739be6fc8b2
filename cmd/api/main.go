package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/background"
	"github.com/yhlin/memberdir/internal/config"
	"github.com/yhlin/memberdir/internal/database"
	"github.com/yhlin/memberdir/internal/handlers"
	middlewareCustom "github.com/yhlin/memberdir/internal/middleware"
	"github.com/yhlin/memberdir/internal/models"
	"github.com/yhlin/memberdir/internal/repositories"
	"github.com/yhlin/memberdir/internal/routes"
	"github.com/yhlin/memberdir/internal/services"
	pkgauth "github.com/yhlin/memberdir/pkg/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply pending migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	importRunRepo := repositories.NewImportRunRepository(db)

	// Retention sweep for old import runs
	retentionManager := background.NewRetentionManager(
		importRunRepo,
		logger,
		cfg.Import.CleanupInterval,
		cfg.Import.RunRetention,
	)

	// Session signing and cookie settings
	sessionManager := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.TTL)
	cookieConfig := auth.CookieConfig{
		Name:     cfg.Session.CookieName,
		Secure:   cfg.Session.CookieSecure,
		MaxAge:   int(cfg.Session.TTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}

	// Timing delay for auth security
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 100,
	})

	// Initialize services
	authService := services.NewAuthService(accountRepo, logger, timingDelay)
	accountService := services.NewAccountService(accountRepo, logger)
	importService := services.NewImportService(accountRepo, importRunRepo, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionManager, cookieConfig)
	accountHandler := handlers.NewAccountHandler(accountService)
	settingsHandler := handlers.NewSettingsHandler(accountService)
	importHandler := handlers.NewImportHandler(importService, cfg.Import.MaxUploadBytes)

	// Bootstrap first admin account if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(bootstrapCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	bootstrapCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.CSRFProtection(cfg.Server.AllowedOrigins, logger))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, accountHandler, settingsHandler, importHandler, sessionManager, cookieConfig, middlewareCustom.DefaultAuthRateLimit())

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start retention sweep
	retentionCtx, retentionCancel := context.WithCancel(context.Background())
	defer retentionCancel()

	go retentionManager.Start(retentionCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	retentionCancel()
	retentionManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminAccount creates the first admin if ADMIN_ACCOUNT and ADMIN_PASSWORD are set.
// When the admin already exists its credential is re-synced to ADMIN_PASSWORD,
// so a lost admin password is recovered by restarting with a new one.
func ensureAdminAccount(ctx context.Context, accountRepo *repositories.AccountRepository, logger *slog.Logger) error {
	adminHandle := os.Getenv("ADMIN_ACCOUNT")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminHandle == "" || adminPassword == "" {
		logger.Info("no ADMIN_ACCOUNT or ADMIN_PASSWORD set, skipping admin bootstrap")
		return nil
	}

	existing, err := accountRepo.GetByAccount(ctx, adminHandle)
	if err == nil {
		if pkgauth.ComparePassword(existing.PasswordHash, adminPassword) == nil {
			logger.Info("admin account already exists")
			return nil
		}
		hashedPassword, err := pkgauth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		if err := accountRepo.UpdatePassword(ctx, existing.ID, hashedPassword); err != nil {
			return fmt.Errorf("failed to rotate admin password: %w", err)
		}
		logger.Info("admin password re-synced")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = accountRepo.Create(ctx, &models.Account{
		Account:      adminHandle,
		DisplayName:  "Administrator",
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("admin account created")
	return nil
}
