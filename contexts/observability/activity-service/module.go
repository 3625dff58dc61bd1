package activityservice

import (
	"log/slog"

	httpadapter "vulntrack/contexts/observability/activity-service/adapters/http"
	"vulntrack/contexts/observability/activity-service/adapters/memory"
	postgresadapter "vulntrack/contexts/observability/activity-service/adapters/postgres"
	"vulntrack/contexts/observability/activity-service/application"
	"vulntrack/contexts/observability/activity-service/ports"
)

// Module is the activity-service composition root exposed to runtime
// wiring. Recorder is handed to the other contexts as their shared
// audit sink.
type Module struct {
	Handler  httpadapter.Handler
	Service  application.Service
	Recorder application.Recorder
	Store    *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository   ports.Repository
	Users        ports.UserDirectory
	Subordinates ports.SubordinateResolver
	Clock        ports.Clock
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:         deps.Repository,
		Users:        deps.Users,
		Subordinates: deps.Subordinates,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	recorder := application.Recorder{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler:  httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service:  service,
		Recorder: recorder,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// persistence.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:   store,
		Users:        store,
		Subordinates: store,
		Clock:        postgresadapter.SystemClock{},
		Logger:       logger,
	})
	module.Store = store
	return module
}
