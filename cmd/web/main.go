// Package main provides the entry point for the Nutriva web frontend:
// authentication, dietary preferences and recipe search backed by the
// external recipe API.
package main

import (
	"context"
	"os"

	"github.com/nutriva/nutriva/internal/application/auth"
	"github.com/nutriva/nutriva/internal/application/guard"
	appprefs "github.com/nutriva/nutriva/internal/application/preferences"
	"github.com/nutriva/nutriva/internal/infrastructure/config"
	"github.com/nutriva/nutriva/internal/infrastructure/http/webserver"
	persistence "github.com/nutriva/nutriva/internal/infrastructure/persistence/gorm"
	"github.com/nutriva/nutriva/internal/infrastructure/persistence/sqlite"
	"github.com/nutriva/nutriva/internal/ports/outbound"
	"github.com/nutriva/nutriva/pkg/healthcheck"
	"github.com/nutriva/nutriva/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	app := fx.New(
		fx.NopLogger,

		// Configuration
		fx.Provide(func() (*config.Config, error) {
			return config.Load(os.Getenv("NUTRIVA_CONFIG"))
		}),

		// Logger
		fx.Provide(func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
		}),

		// Local store
		fx.Provide(func(cfg *config.Config) *sqlite.Database {
			return sqlite.NewDatabase(cfg.Database.Path, dbLogLevel(cfg.Database.LogLevel))
		}),
		fx.Provide(func(db *sqlite.Database) persistence.Store { return db }),
		fx.Provide(persistence.NewUserRepository),
		fx.Provide(persistence.NewPreferenceRepository),

		// Application services
		fx.Provide(auth.NewService),
		fx.Provide(appprefs.NewService),
		fx.Provide(func(prefs outbound.PreferenceRepository, cfg *config.Config, log *zap.Logger) *guard.Service {
			return guard.NewService(prefs, guardPolicy(cfg.Guard.OnLookupError), log)
		}),

		// Web layer
		fx.Provide(webserver.NewAPIClient),
		fx.Provide(webserver.NewSessionStore),
		fx.Provide(func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
			return healthcheck.New(cfg.App.Version, log)
		}),
		fx.Provide(webserver.NewWebServer),

		fx.Invoke(registerHealthChecks),
		fx.Invoke(registerLifecycleHooks),
	)

	app.Run()
}

func registerHealthChecks(
	hc *healthcheck.HealthCheck,
	db *sqlite.Database,
	apiClient *webserver.APIClient,
) {
	hc.Register("store", healthcheck.CheckerFunc(func(ctx context.Context) healthcheck.Check {
		if _, err := db.Handle(ctx); err != nil {
			return healthcheck.Check{Status: healthcheck.StatusUnhealthy, Message: err.Error()}
		}
		return healthcheck.Check{Status: healthcheck.StatusHealthy}
	}))

	hc.Register("recipe-api", healthcheck.CheckerFunc(func(ctx context.Context) healthcheck.Check {
		if !apiClient.CheckHealth(ctx) {
			return healthcheck.Check{Status: healthcheck.StatusUnhealthy, Message: "recipe API unreachable"}
		}
		return healthcheck.Check{Status: healthcheck.StatusHealthy}
	}))
}

func registerLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	server *webserver.WebServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Nutriva web frontend",
				zap.Int("port", cfg.Server.Port),
				zap.String("environment", cfg.App.Environment),
				zap.String("api_url", cfg.API.BaseURL),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Fatal("Web server failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func guardPolicy(name string) guard.LookupErrorPolicy {
	if name == "fail_closed" {
		return guard.FailClosed
	}
	return guard.FailOpen
}

func dbLogLevel(name string) gormlogger.LogLevel {
	switch name {
	case "silent":
		return gormlogger.Silent
	case "info":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
