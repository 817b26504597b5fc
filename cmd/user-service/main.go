package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/clinicsys/clinic-services/internal/api/http"
	"github.com/clinicsys/clinic-services/internal/api/http/handlers"
	"github.com/clinicsys/clinic-services/internal/auth"
	"github.com/clinicsys/clinic-services/internal/config"
	"github.com/clinicsys/clinic-services/internal/observability"
	"github.com/clinicsys/clinic-services/internal/persistence"
	"github.com/clinicsys/clinic-services/internal/repository"
	"github.com/clinicsys/clinic-services/internal/service"
	"github.com/clinicsys/clinic-services/internal/token"
)

func main() {
	cfg, err := config.Load("user-service")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	secret, err := cfg.Auth.SecretKey()
	if err != nil {
		logger.Fatal("failed to decode signing secret", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	codec := token.NewCodec(secret)

	profileRepo := repository.NewProfileRepository(pg.PoolHandle())
	profileService := service.NewProfileService(profileRepo, redis.Client, logger)

	prefixes, paths := auth.BaseExclusions("/api/user/public/")
	authenticator := auth.NewRequestAuthenticator(codec, auth.AuthenticatorConfig{
		CookieName:       cfg.Auth.CookieName,
		ExcludedPrefixes: prefixes,
		ExcludedPaths:    paths,
	}, logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterUserRoutes(app, httptransport.UserRouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Profiles:      handlers.NewProfileHandler(profileService),
		Authenticator: authenticator,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
