package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"productsapi/internal/config"
	"productsapi/internal/database"
	"productsapi/internal/logger"
	"productsapi/internal/repositories"
	"productsapi/internal/server"
	"productsapi/internal/services"
	"productsapi/pkg/rabbitmq"
)

//	@title			Products API
//	@version		1.0.0
//	@description	API for managing products
//	@BasePath		/
//	@tag.name		Products
//	@tag.description	API operations related to products
func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Product store ---
	var (
		productRepo repositories.ProductRepository
		ping        func(context.Context) error
	)
	if cfg.Database.Driver == config.DriverMemory {
		productRepo = repositories.NewMemoryProductRepository()
		log.Warn("using in-memory product store; data is lost on exit")
	} else {
		db, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			log.Error("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
			os.Exit(1)
		}
		defer database.Close(db)

		productRepo = repositories.NewGORMProductRepository(db)
		ping = func(ctx context.Context) error { return database.Ping(ctx, db) }
		log.Info("database connected", "driver", cfg.Database.Driver)
	}

	// --- Services ---
	opts := []services.Option{
		services.WithTimeout(cfg.Database.QueryTimeout),
		services.WithLogger(log),
	}
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Error("failed to initialize RabbitMQ client", "error", err)
			os.Exit(1)
		}
		defer mqClient.Close()
		opts = append(opts, services.WithPublisher(mqClient))
	}
	productService := services.NewProductService(productRepo, opts...)

	// --- HTTP ---
	app := server.New(server.Deps{
		Products:       productService,
		Ping:           ping,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         log,
		AccessLog:      true,
	})

	go func() {
		log.Info("starting server", "addr", cfg.Server.Port)
		if err := app.Listen(cfg.Server.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
}
