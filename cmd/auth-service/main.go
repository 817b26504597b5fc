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
	"github.com/clinicsys/clinic-services/internal/events"
	"github.com/clinicsys/clinic-services/internal/observability"
	"github.com/clinicsys/clinic-services/internal/persistence"
	"github.com/clinicsys/clinic-services/internal/repository"
	"github.com/clinicsys/clinic-services/internal/service"
	"github.com/clinicsys/clinic-services/internal/token"
	"github.com/clinicsys/clinic-services/internal/worker"
)

func main() {
	cfg, err := config.Load("auth-service")
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

	secret, err := cfg.Auth.SecretKey()
	if err != nil {
		logger.Fatal("failed to decode signing secret", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	codec := token.NewCodec(secret)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification.EmailFrom)
	worker.StartNotificationWorker(notifications)

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Codec:      codec,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	// The refresh endpoint receives refresh tokens in the Authorization
	// header by contract; running the filter there would flag every call.
	prefixes, paths := auth.BaseExclusions()
	paths = append(paths, "/api/auth/refresh")
	authenticator := auth.NewRequestAuthenticator(codec, auth.AuthenticatorConfig{
		CookieName:       cfg.Auth.CookieName,
		ExcludedPrefixes: prefixes,
		ExcludedPaths:    paths,
	}, logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterAuthRoutes(app, httptransport.AuthRouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, nil),
		Auth:          handlers.NewAuthHandler(authService),
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
