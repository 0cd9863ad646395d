package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/checkout"
	"github.com/shopzone/storefront/internal/config"
	"github.com/shopzone/storefront/internal/events"
	"github.com/shopzone/storefront/internal/session"
	"github.com/shopzone/storefront/internal/store"
	"github.com/shopzone/storefront/internal/web"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (profile store)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ (optional order events)
	var publisher *events.Publisher
	if cfg.AMQP.URL != "" {
		amqpConn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		publisher, err = events.NewPublisher(amqpCh, log)
		if err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		log.Info("connected to RabbitMQ")
	}

	// Backend API client
	client, err := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	if err != nil {
		log.Error("configure backend client", "error", err)
		os.Exit(1)
	}

	profileStore := store.NewRedisStore(redisClient)
	sessions := session.NewManager(client, profileStore, log)
	carts := cart.NewManager(profileStore, log)
	checkoutSvc := checkout.NewService(publisher, log)

	server := web.NewServer(client, sessions, carts, checkoutSvc, cfg.Cookie, cfg.CORS, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	cancel()
	log.Info("server stopped")
}
