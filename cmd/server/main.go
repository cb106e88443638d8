package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/micebot/server/internal/config"
	"github.com/micebot/server/internal/database"
	"github.com/micebot/server/internal/handler"
	"github.com/micebot/server/internal/queue"
	"github.com/micebot/server/internal/repository"
	"github.com/micebot/server/internal/router"
	"github.com/micebot/server/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}

	apps := repository.NewApplicationRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)

	publisher := service.NewPublisher(cfg.AMQPURL, logger)

	authHandler := handler.NewAuthHandler(cfg, apps)
	productHandler := handler.NewProductHandler(products)
	orderHandler := handler.NewOrderHandler(orders, products, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, cfg, rdb, apps, authHandler, productHandler, orderHandler)

	// The audit consumer runs for the lifetime of the process and
	// reconnects on its own.
	go queue.StartOrderConsumer(cfg.AMQPURL, logger)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
