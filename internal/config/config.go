package config

import (
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Cart      CartConfig
	Inventory InventoryConfig
	Checkout  CheckoutConfig
	Rental    RentalConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

// CartConfig selects the cart persistence strategy. "embedded" carries the
// whole serialized cart in the cookie; "referenced" stores state server-side
// keyed by an opaque cookie-held ID.
type CartConfig struct {
	Strategy     string
	Store        string
	CookieSecret string
	TTL          time.Duration
}

const (
	CartStrategyEmbedded   = "embedded"
	CartStrategyReferenced = "referenced"

	CartStoreRedis  = "redis"
	CartStoreMemory = "memory"
)

type InventoryConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// FailOpen lets checkout proceed when the authority cannot be reached.
	// Emergency escape hatch only; the default is fail-closed.
	FailOpen bool
}

type CheckoutConfig struct {
	ShopID string
	// BaseCurrency is the currency catalog prices are stored in; Currency is
	// what the shopper is charged in. When they differ, Rates must carry an
	// entry for Currency.
	BaseCurrency   string
	Currency       string
	TaxRate        float64
	PaymentURL     string
	PaymentTimeout time.Duration
	// Rates maps currency code to the conversion rate from BaseCurrency,
	// consumed by the fixed-rate converter.
	Rates map[string]float64
}

type RentalConfig struct {
	AllocationEnabled bool
	MaxRetryAttempts  int
	TxTimeout         time.Duration
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "cartwright")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "cartwright")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CART_STRATEGY", CartStrategyReferenced)
	viper.SetDefault("CART_STORE", CartStoreRedis)
	viper.SetDefault("CART_COOKIE_SECRET", "")
	viper.SetDefault("CART_TTL", "720h")
	viper.SetDefault("INVENTORY_BASE_URL", "http://localhost:9090")
	viper.SetDefault("INVENTORY_TOKEN", "")
	viper.SetDefault("INVENTORY_TIMEOUT", "5s")
	viper.SetDefault("INVENTORY_FAIL_OPEN", false)
	viper.SetDefault("CHECKOUT_SHOP_ID", "default")
	viper.SetDefault("CHECKOUT_BASE_CURRENCY", "EUR")
	viper.SetDefault("CHECKOUT_CURRENCY", "EUR")
	viper.SetDefault("CHECKOUT_TAX_RATE", 0.0)
	viper.SetDefault("CHECKOUT_PAYMENT_URL", "http://localhost:9091")
	viper.SetDefault("CHECKOUT_PAYMENT_TIMEOUT", "10s")
	viper.SetDefault("RENTAL_ALLOCATION_ENABLED", true)
	viper.SetDefault("RENTAL_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("RENTAL_TX_TIMEOUT", "5s")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	cartTTL, err := time.ParseDuration(viper.GetString("CART_TTL"))
	if err != nil {
		return nil, err
	}
	inventoryTimeout, err := time.ParseDuration(viper.GetString("INVENTORY_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	rentalTxTimeout, err := time.ParseDuration(viper.GetString("RENTAL_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	paymentTimeout, err := time.ParseDuration(viper.GetString("CHECKOUT_PAYMENT_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	rates := make(map[string]float64)
	for currency, raw := range viper.GetStringMapString("CHECKOUT_RATES") {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		rates[currency] = rate
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Cart: CartConfig{
			Strategy:     viper.GetString("CART_STRATEGY"),
			Store:        viper.GetString("CART_STORE"),
			CookieSecret: viper.GetString("CART_COOKIE_SECRET"),
			TTL:          cartTTL,
		},
		Inventory: InventoryConfig{
			BaseURL:  viper.GetString("INVENTORY_BASE_URL"),
			Token:    viper.GetString("INVENTORY_TOKEN"),
			Timeout:  inventoryTimeout,
			FailOpen: viper.GetBool("INVENTORY_FAIL_OPEN"),
		},
		Checkout: CheckoutConfig{
			ShopID:         viper.GetString("CHECKOUT_SHOP_ID"),
			BaseCurrency:   viper.GetString("CHECKOUT_BASE_CURRENCY"),
			Currency:       viper.GetString("CHECKOUT_CURRENCY"),
			TaxRate:        viper.GetFloat64("CHECKOUT_TAX_RATE"),
			PaymentURL:     viper.GetString("CHECKOUT_PAYMENT_URL"),
			PaymentTimeout: paymentTimeout,
			Rates:          rates,
		},
		Rental: RentalConfig{
			AllocationEnabled: viper.GetBool("RENTAL_ALLOCATION_ENABLED"),
			MaxRetryAttempts:  viper.GetInt("RENTAL_MAX_RETRY_ATTEMPTS"),
			TxTimeout:         rentalTxTimeout,
		},
	}

	return cfg, nil
}
