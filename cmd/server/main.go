package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisdriver "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cartwright/internal/cart"
	catalogrepo "cartwright/internal/catalog/repository"
	"cartwright/internal/checkout"
	"cartwright/internal/commons"
	"cartwright/internal/config"
	"cartwright/internal/infrastructure/logger"
	"cartwright/internal/infrastructure/mysql"
	infraredis "cartwright/internal/infrastructure/redis"
	"cartwright/internal/inventory"
	"cartwright/internal/server"
)

type redisPinger struct {
	client *redisdriver.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	redisClient, err := infraredis.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("connecting to redis", zap.Error(err))
	}
	defer redisClient.Close()
	zapLogger.Info("redis connected")

	catalog := catalogrepo.NewMySQLRepository(db)
	authority := inventory.NewClient(cfg.Inventory, zapLogger)
	persistence := cart.NewPersistence(cfg, redisClient)

	cartModule := cart.NewModule(cfg, catalog, persistence, zapLogger)
	checkoutModule := checkout.NewModule(db, redisClient, persistence, cfg, zapLogger)
	healthCtrl := server.NewHealthController(db, redisPinger{client: redisClient}, authority, zapLogger)

	router := server.NewRouter(cartModule.Controller, checkoutModule.Controller, healthCtrl)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
