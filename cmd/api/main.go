package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/repository/memory"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.App.Name, cfg.App.Version, cfg.Observability.OTLPEndpoint)
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			_ = shutdownTracer(sctx)
		}()
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(reg)
	}

	users, usersReady, closeUsers := openUserStore(ctx, cfg, logger)
	defer closeUsers()
	sessions, sessionsReady, closeSessions := openSessionStore(ctx, cfg, logger)
	defer closeSessions()

	userRepo := repository.InstrumentUsers(users, metrics)
	sessionRepo := repository.InstrumentSessions(sessions, metrics)

	delivery := events.NewInMemoryDispatcher()
	dispatcher := worker.StartNotificationWorker(worker.Config{
		Concurrency:   2,
		Buffer:        1024,
		ShutdownGrace: shutdownTimeout,
	}, service.NewNotificationService(delivery, logger, cfg.Notification), delivery, logger)
	defer dispatcher.Stop()

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Hasher:      authService.Hasher(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		created, err := authService.EnsureAdminUser(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName)
		if err != nil {
			logger.Fatal("failed to seed admin user", zap.Error(err))
		}
		if created {
			logger.Info("seeded admin user", zap.String("email", cfg.Auth.AdminEmail))
		}
	}
	if cfg.Auth.AdminSecretKey == "" {
		logger.Warn("ADMIN_SECRET_KEY is not set, registration requests will fail")
	}

	localizer := i18n.NewLocalizer(i18n.NewCatalog(cfg.I18n.DefaultLocale), cfg.I18n.CookieName)

	app := httptransport.NewApp(httptransport.AppConfig{
		Name:      cfg.App.Name,
		BodyLimit: cfg.HTTP.BodyLimitBytes,
		Timeout:   cfg.App.RequestTimeout(),
	}, logger, metrics, localizer)

	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Localizer:      localizer,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SessionHeader:  cfg.Session.HeaderName,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Env,
			handlers.ReadinessCheck{Name: "users", Check: usersReady},
			handlers.ReadinessCheck{Name: "sessions", Check: sessionsReady},
		),
		Hello: handlers.NewHelloHandler(localizer),
		Auth: handlers.NewAuthHandler(authService, handlers.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}, localizer),
		Users: handlers.NewUsersHandler(userService, localizer),
		Admin: handlers.NewAdminHandler(userService, authService, localizer),
		AuthMiddleware: auth.NewAuthMiddleware(authService, auth.TokenSource{
			CookieName: cfg.Session.CookieName,
			HeaderName: cfg.Session.HeaderName,
		}),
		Metrics:   metrics,
		Localizer: localizer,
		StaticDir: cfg.HTTP.StaticDir,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

type readyFunc func(context.Context) error

func openUserStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, readyFunc, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewUserRepository(pg.Pool), pg.Ping, pg.Close

	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite", zap.Error(err))
		}
		if err := repository.MigrateGormUsers(db.DB); err != nil {
			logger.Fatal("failed to migrate sqlite", zap.Error(err))
		}
		return repository.NewGormUserRepository(db.DB), db.Ping, db.Close

	default:
		logger.Warn("using in-memory user store, data is lost on restart")
		return memory.NewUserStore(), alwaysReady, func() {}
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SessionRepository, readyFunc, func()) {
	if cfg.Store.SessionDriver == config.SessionDriverRedis {
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		return repository.NewRedisSessionRepository(rdb.Client, cfg.Redis.KeyPrefix), rdb.Ping, rdb.Close
	}
	logger.Warn("using in-memory session store, sessions are lost on restart")
	return memory.NewSessionStore(), alwaysReady, func() {}
}

func alwaysReady(context.Context) error { return nil }

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
