package cart

import (
	redisdriver "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cartwright/internal/cart/codec"
	"cartwright/internal/cart/controller"
	"cartwright/internal/cart/service"
	"cartwright/internal/cart/store"
	"cartwright/internal/config"
)

type Module struct {
	Controller *controller.CartController
}

// NewPersistence builds the cart persistence the configuration asks for.
// Built once and shared: both the cart API and checkout must see the same
// state, which matters for the process-local memory store.
func NewPersistence(cfg *config.Config, redisClient *redisdriver.Client) Persistence {
	if cfg.Cart.Strategy == config.CartStrategyEmbedded {
		return NewEmbeddedPersistence(codec.NewEmbedded(cfg.Cart.CookieSecret))
	}

	var s store.Store
	if cfg.Cart.Store == config.CartStoreMemory {
		s = store.NewMemoryStore()
	} else {
		s = store.NewRedisStore(redisClient, cfg.Cart.TTL)
	}
	return NewReferencedPersistence(codec.NewReferenced(cfg.Cart.CookieSecret), s)
}

func NewModule(cfg *config.Config, catalog service.Catalog, persistence Persistence, logger *zap.Logger) *Module {
	svc := service.NewCartService(catalog, persistence, logger)
	ctrl := controller.NewCartController(svc, cfg.Cart.TTL, logger)

	return &Module{Controller: ctrl}
}
