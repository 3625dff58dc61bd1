package accountservice

import (
	"log/slog"

	httpadapter "vulntrack/contexts/identity-access/account-service/adapters/http"
	"vulntrack/contexts/identity-access/account-service/adapters/memory"
	postgresadapter "vulntrack/contexts/identity-access/account-service/adapters/postgres"
	"vulntrack/contexts/identity-access/account-service/application"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/audit"
)

// Module is the account-service composition root exposed to runtime
// wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenGenerator
	Clock      ports.Clock
	Recorder   audit.Recorder
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Hasher:   deps.Hasher,
		Tokens:   deps.Tokens,
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
		Hasher:     postgresadapter.BcryptHasher{},
		Tokens:     postgresadapter.UUIDTokenGenerator{},
		Clock:      postgresadapter.SystemClock{},
		Recorder:   recorder,
		Logger:     logger,
	})
	module.Store = store
	return module
}
