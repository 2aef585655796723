package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/cache"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/cart"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/catalog"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/consumer"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/guest"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/logger"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/merge"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/remote"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/web"
)

type Config struct {
	HTTPPort        string
	BackendBaseURL  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	Env             string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		Env:             getEnv("APP_ENV", "development"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Guest cart storage and cart view cache both sit on redis when one
	// is configured; a dev run without redis falls back to process memory.
	var (
		guestStorage guest.Storage
		cartView     cache.CartView
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

		guestStorage = guest.NewRedisStorage(redisClient)
		cartView = cache.NewRedisView(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set, guest carts will not survive restarts")
		guestStorage = guest.NewMemoryStorage()
		cartView = cache.NewMemoryView()
	}

	guestStore := guest.NewStore(guestStorage, log)
	remoteClient := remote.NewClient(cfg.BackendBaseURL)
	catalogClient := catalog.NewClient(cfg.BackendBaseURL)

	facade := cart.NewFacade(guestStore, remoteClient, cartView, log)
	coordinator := merge.NewCoordinator(guestStore, remoteClient, cartView, log)

	notifier := auth.NewNotifier()
	notifier.Subscribe(coordinator.OnSessionChange)

	if cfg.KafkaBrokers != "" {
		orderConsumer := consumer.NewConsumer(cartView, log, strings.Split(cfg.KafkaBrokers, ",")...)
		defer orderConsumer.Close()

		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		defer cancelConsumer()
		go orderConsumer.Run(consumerCtx)
		log.Info("order-completed consumer started", zap.String("brokers", cfg.KafkaBrokers))
	}

	cartHandler := web.NewCartHandler(facade, catalogClient, cfg.RequestTimeout, log)
	router := web.NewRouter(cartHandler, web.SessionMiddleware(notifier, coordinator), cfg.RequestTimeout, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart service starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
