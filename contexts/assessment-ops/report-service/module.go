package reportservice

import (
	"log/slog"

	"vulntrack/contexts/assessment-ops/report-service/adapters/document"
	httpadapter "vulntrack/contexts/assessment-ops/report-service/adapters/http"
	"vulntrack/contexts/assessment-ops/report-service/adapters/memory"
	postgresadapter "vulntrack/contexts/assessment-ops/report-service/adapters/postgres"
	"vulntrack/contexts/assessment-ops/report-service/application"
	"vulntrack/contexts/assessment-ops/report-service/ports"
	"vulntrack/internal/shared/audit"
)

// Module is the report-service composition root exposed to runtime
// wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Assets     ports.AssetDirectory
	Users      ports.UserDirectory
	Renderer   ports.DocumentRenderer
	Clock      ports.Clock
	Recorder   audit.Recorder
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = document.TextRenderer{}
	}
	service := application.Service{
		Repo:     deps.Repository,
		Assets:   deps.Assets,
		Users:    deps.Users,
		Renderer: renderer,
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
		Assets:     store,
		Users:      store,
		Renderer:   document.TextRenderer{},
		Clock:      postgresadapter.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})
	module.Store = store
	return module
}
