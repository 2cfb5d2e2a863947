package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/gadaihub/backoffice/pkg/api"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/config"
	"github.com/gadaihub/backoffice/pkg/observability"
	"github.com/gadaihub/backoffice/pkg/scheduler"
	"github.com/gadaihub/backoffice/pkg/storage/postgres"
	"github.com/gadaihub/backoffice/pkg/uploads"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// No logger yet; write the failure to stderr directly.
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		fatal(logger, err, "failed to initialize OpenTelemetry")
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		fatal(logger, err, "failed to connect to PostgreSQL")
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		fatal(logger, err, "failed to run migrations")
	}
	if err := postgres.SeedBuiltInRoles(ctx, db); err != nil {
		fatal(logger, err, "failed to seed built-in roles")
	}
	logger.Info("Database ready")

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			fatal(logger, err, "failed to connect to Redis")
		}
		logger.Infof("Rate limiting enabled via Redis at %s", cfg.Redis.URL)
	} else {
		logger.Warn("Redis not configured; rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	var signer uploads.Signer
	if cfg.Uploads.Bucket != "" {
		s3Signer, err := uploads.NewS3Signer(ctx, cfg.Uploads)
		if err != nil {
			fatal(logger, err, "failed to initialize upload signer")
		}
		signer = s3Signer
		logger.Infof("Presigned uploads enabled for bucket %s", cfg.Uploads.Bucket)
	}

	var oidcProvider *auth.OIDCProvider
	if cfg.OIDC.Enabled {
		oidcProvider, err = auth.NewOIDCProvider(ctx, auth.OIDCConfig{
			IssuerURL:    cfg.OIDC.IssuerURL,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
		})
		if err != nil {
			fatal(logger, err, "failed to initialize OIDC provider")
		}
		logger.Infof("SSO enabled via %s", cfg.OIDC.IssuerURL)
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(db, auth.NewService(db), cfg.Scheduler, metrics)
		if err != nil {
			fatal(logger, err, "failed to build scheduler")
		}
		jobs.Start()
		logger.Info("Background scheduler started")
	}

	server := api.NewServer(api.Options{
		DB:      db,
		Redis:   redisClient,
		Signer:  signer,
		OIDC:    oidcProvider,
		Logger:  logger,
		Metrics: metrics,
	})

	var apiHandler http.Handler = server
	if providers != nil {
		apiHandler = otelhttp.NewHandler(server, "backoffice.api")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      apiHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	checker := observability.NewHealthChecker(db, redisClient, cfg.Observability.OTelServiceVersion)
	healthServer := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:     api.NewHealthRouter(checker, registry),
		ReadTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	if jobs != nil {
		shutdown.RegisterShutdownFunc(jobs.Stop)
	}
	if providers != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, providers, logger)
		})
	}
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("API listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health and metrics listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	if err := group.Wait(); err != nil {
		fatal(logger, err, "server exited with error")
	}
	logger.Info("Shutdown complete")
}

func fatal(logger *observability.Logger, err error, message string) {
	logger.WithError(err).Error(message)
	os.Exit(1)
}
