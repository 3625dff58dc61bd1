package assetservice

import (
	"log/slog"

	httpadapter "vulntrack/contexts/assessment-ops/asset-service/adapters/http"
	"vulntrack/contexts/assessment-ops/asset-service/adapters/memory"
	postgresadapter "vulntrack/contexts/assessment-ops/asset-service/adapters/postgres"
	"vulntrack/contexts/assessment-ops/asset-service/application"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
	"vulntrack/internal/shared/audit"
)

// Module is the asset-service composition root exposed to runtime
// wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Users      ports.UserDirectory
	Clock      ports.Clock
	Recorder   audit.Recorder
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Users:    deps.Users,
		Clock:    deps.Clock,
		Recorder: deps.Recorder,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// persistence.
func NewInMemoryModule(recorder audit.Recorder, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Users:      store,
		Clock:      postgresadapter.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})
	module.Store = store
	return module
}
