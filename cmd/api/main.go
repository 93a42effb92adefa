package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/licensepro/alvara-backend/api/routes"
	"github.com/licensepro/alvara-backend/internal/advisory"
	"github.com/licensepro/alvara-backend/internal/attachments"
	"github.com/licensepro/alvara-backend/internal/auth"
	"github.com/licensepro/alvara-backend/internal/companies"
	"github.com/licensepro/alvara-backend/internal/licenses"
	"github.com/licensepro/alvara-backend/internal/users"
	"github.com/licensepro/alvara-backend/pkg/auth/session"
	"github.com/licensepro/alvara-backend/pkg/config"
	"github.com/licensepro/alvara-backend/pkg/db"
	"github.com/licensepro/alvara-backend/pkg/genai"
	"github.com/licensepro/alvara-backend/pkg/logger"
	"github.com/licensepro/alvara-backend/pkg/migrate"
	"github.com/licensepro/alvara-backend/pkg/redis"
	"github.com/licensepro/alvara-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	themeService, err := auth.NewThemeService(redisClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create theme service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		SessionManager: sessionManager,
		Themes:         themeService,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	bucket := gcsClient.DefaultBucket()
	companyRepo := companies.NewRepository(dbClient.DB())
	licenseRepo := licenses.NewRepository(dbClient.DB())

	companyService, err := companies.NewService(companyRepo, dbClient, gcsClient, bucket, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create company service", err)
		os.Exit(1)
	}

	licenseService, err := licenses.NewService(licenseRepo, companyRepo, dbClient, gcsClient, gcsClient, bucket, cfg.GCS.DownloadURLExpiry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create license service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	attachmentService, err := attachments.NewService(
		attachments.NewRepository(dbClient.DB()),
		licenseRepo,
		gcsClient,
		bucket,
		cfg.Upload.MaxUploadBytes,
		cfg.GCS.DownloadURLExpiry,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create attachment service", err)
		os.Exit(1)
	}

	var advisoryScheduler *advisory.Scheduler
	if cfg.Advisory.APIKey == "" {
		logg.Warn(context.Background(), "genai api key not configured, advisory endpoints disabled")
	} else {
		genaiClient, err := genai.NewClient(cfg.Advisory.APIKey, genai.WithModel(cfg.Advisory.Model))
		if err != nil {
			logg.Error(context.Background(), "failed to create genai client", err)
			os.Exit(1)
		}
		advisoryService, err := advisory.NewService(advisory.NewRepository(dbClient.DB()), genaiClient, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create advisory service", err)
			os.Exit(1)
		}
		advisoryScheduler = advisory.NewScheduler(advisoryService, cfg.Advisory.Debounce, cfg.Advisory.Timeout)
		defer advisoryScheduler.Stop()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			sessionManager,
			authService,
			themeService,
			companyService,
			licenseService,
			userService,
			attachmentService,
			advisoryScheduler,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
