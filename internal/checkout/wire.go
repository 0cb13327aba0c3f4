package checkout

import (
	"database/sql"
	"time"

	redisdriver "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogrepo "cartwright/internal/catalog/repository"
	"cartwright/internal/checkout/controller"
	"cartwright/internal/checkout/service"
	"cartwright/internal/checkout/usecase"
	"cartwright/internal/config"
	"cartwright/internal/inventory"
	inventoryrepo "cartwright/internal/inventory/repository"
	"cartwright/internal/payment"
	"cartwright/internal/pricing"
	rentalrepo "cartwright/internal/rental/repository"
	rentalservice "cartwright/internal/rental/service"
)

type Module struct {
	Controller *controller.CheckoutController
}

// How long a claimed Idempotency-Key blocks duplicate attempts.
const idempotencyTTL = 15 * time.Minute

func NewModule(db *sql.DB, redisClient *redisdriver.Client, persistence usecase.CartPersistence, cfg *config.Config, logger *zap.Logger) *Module {
	catalog := catalogrepo.NewMySQLRepository(db)

	var allocator usecase.Allocator
	if cfg.Rental.AllocationEnabled {
		allocator = rentalservice.NewAllocationService(
			db,
			rentalrepo.NewMySQLRepository(db),
			logger,
			cfg.Rental.TxTimeout,
			cfg.Rental.MaxRetryAttempts,
		)
	} else {
		allocator = rentalservice.NewFlatAllocator(
			inventoryrepo.NewMySQLRepository(db),
			cfg.Checkout.ShopID,
			logger,
		)
	}
	validator := inventory.NewClient(cfg.Inventory, logger)
	builder := service.NewSessionBuilder(
		pricing.NewFixedRateConverter(cfg.Checkout.BaseCurrency, cfg.Checkout.Rates),
		logger,
	)
	gateway := payment.NewClient(cfg.Checkout.PaymentURL, cfg.Checkout.PaymentTimeout, logger)
	idempotency := NewIdempotencyGuard(redisClient, idempotencyTTL)

	uc := usecase.NewCreateCheckoutUseCase(
		persistence,
		catalog,
		allocator,
		validator,
		builder,
		gateway,
		idempotency,
		usecase.Config{
			ShopID:   cfg.Checkout.ShopID,
			Currency: cfg.Checkout.Currency,
			TaxRate:  cfg.Checkout.TaxRate,
			FailOpen: cfg.Inventory.FailOpen,
		},
		logger,
	)

	return &Module{Controller: controller.NewCheckoutController(uc, logger)}
}
