package router

import (
	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/internal/container"
	"github.com/oksasatya/users-service/internal/infrastructure/cache"
	"github.com/oksasatya/users-service/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/users-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/users-service/internal/interface/http"
	"github.com/oksasatya/users-service/internal/router/modules"
)

type UserModuleDeps struct {
	Store   *pginfra.Store
	Bus     *application.Bus
	Handler *handlers.UserHandler
}

// BuildBus registers the users command and query handlers. notifier and
// viewCache may be nil.
func BuildBus(store *pginfra.Store, notifier application.UserNotifier, viewCache application.UserViewCache) *application.Bus {
	logger := container.GetLogger()
	bus := application.NewBus(logger)
	application.MustRegister[application.CreateUserCommand, uuid.UUID](bus, application.NewCreateUserHandler(store, notifier, logger))
	application.MustRegister[application.GetUserByIDQuery, application.UserDTO](bus, application.NewGetUserByIDHandler(store, viewCache, logger))
	return bus
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	store := pginfra.NewStore(pool)

	var notifier application.UserNotifier
	if pub := container.GetRabbitPub(); pub != nil {
		notifier = messaging.NewUserEventPublisher(pub, pginfra.NewOutboxStore(pool))
	}
	var viewCache application.UserViewCache
	if rdb := container.GetRedis(); rdb != nil && cfg.UserCacheTTL > 0 {
		viewCache = cache.NewUserViewCache(rdb, cfg.UserCacheTTL)
	}

	bus := BuildBus(store, notifier, viewCache)
	container.SetBus(bus)

	return UserModuleDeps{
		Store:   store,
		Bus:     bus,
		Handler: handlers.NewUserHandler(bus, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
