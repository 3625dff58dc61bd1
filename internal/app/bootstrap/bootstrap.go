// Package bootstrap is the composition root. Construction and wiring
// live here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	assetservice "vulntrack/contexts/assessment-ops/asset-service"
	assetpostgres "vulntrack/contexts/assessment-ops/asset-service/adapters/postgres"
	reportservice "vulntrack/contexts/assessment-ops/report-service"
	reportpostgres "vulntrack/contexts/assessment-ops/report-service/adapters/postgres"
	accountservice "vulntrack/contexts/identity-access/account-service"
	accountpostgres "vulntrack/contexts/identity-access/account-service/adapters/postgres"
	activityservice "vulntrack/contexts/observability/activity-service"
	activitypostgres "vulntrack/contexts/observability/activity-service/adapters/postgres"
	"vulntrack/internal/platform/config"
	"vulntrack/internal/platform/db"
	"vulntrack/internal/platform/httpserver"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, logger)
	assetRepo := assetpostgres.NewRepository(pg.DB, logger)
	reportRepo := reportpostgres.NewRepository(pg.DB, logger)
	activityRepo := activitypostgres.NewRepository(pg.DB, logger)

	// The activity context owns the audit sink; its recorder is handed
	// to every other module.
	activityModule := activityservice.NewModule(activityservice.Dependencies{
		Repository:   activityRepo,
		Users:        activityRepo,
		Subordinates: accountRepo,
		Clock:        activitypostgres.SystemClock{},
		Logger:       logger,
	})
	recorder := activityModule.Recorder

	accountModule := accountservice.NewModule(accountservice.Dependencies{
		Repository: accountRepo,
		Hasher:     accountpostgres.BcryptHasher{},
		Tokens:     accountpostgres.UUIDTokenGenerator{},
		Clock:      accountpostgres.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})

	assetModule := assetservice.NewModule(assetservice.Dependencies{
		Repository: assetRepo,
		Users:      assetRepo,
		Clock:      assetpostgres.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})

	reportModule := reportservice.NewModule(reportservice.Dependencies{
		Repository: reportRepo,
		Assets:     reportRepo,
		Users:      reportRepo,
		Clock:      reportpostgres.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})

	server := httpserver.New(
		accountModule,
		assetModule,
		reportModule,
		activityModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
