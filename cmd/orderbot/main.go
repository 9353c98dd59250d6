package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/puchkadas/orderbot/internal/catalog"
	"github.com/puchkadas/orderbot/internal/dispatch"
	"github.com/puchkadas/orderbot/internal/engine"
	h "github.com/puchkadas/orderbot/internal/http"
	"github.com/puchkadas/orderbot/internal/ledger"
	"github.com/puchkadas/orderbot/internal/messaging"
	"github.com/puchkadas/orderbot/internal/publisher"
	"github.com/puchkadas/orderbot/internal/session"
)

type Config struct {
	HTTPPort        string
	VerifyToken     string
	WhatsAppToken   string
	PhoneNumberID   string
	GraphAPIURL     string
	RedisAddr       string
	RedisPassword   string
	SessionTTL      time.Duration
	CatalogDBPath   string
	MigrationsPath  string
	KafkaBrokers    string
	KafkaTopic      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		VerifyToken:     getEnv("VERIFY_TOKEN", ""),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:   getEnv("PHONE_NUMBER_ID", ""),
		GraphAPIURL:     getEnv("GRAPH_API_URL", "https://graph.facebook.com/v21.0"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionTTL:      getDurationEnv("SESSION_TTL", 0),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", ""),
		MigrationsPath:  getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/migrations"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "orders-confirmed"),
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

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("invalid duration in %s, using default", key)
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Catalog: SQLite-backed when configured, built-in menu otherwise.
	var cat catalog.Catalog
	if cfg.CatalogDBPath != "" {
		repo, err := catalog.NewRepository(cfg.CatalogDBPath)
		if err != nil {
			log.Fatalf("Failed to open catalog database: %v", err)
		}
		defer repo.Close()

		if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run catalog migrations: %v", err)
		}
		loaded, err := repo.Load(ctx)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		cat = loaded
		log.Printf("Loaded catalog from %s", cfg.CatalogDBPath)
	} else {
		cat = catalog.NewStaticCatalog(catalog.DefaultMenu())
		log.Printf("Using built-in menu")
	}

	// Session store: Redis when configured, in-memory otherwise.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore()
	}

	orders := ledger.New()

	var events publisher.Publisher = publisher.Nop{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		events = kafkaPublisher
		log.Printf("Publishing confirmed orders to topic %s", cfg.KafkaTopic)
	}

	sender := messaging.NewWhatsAppSender(cfg.GraphAPIURL, cfg.PhoneNumberID, cfg.WhatsAppToken)
	bot := engine.New(cat, sessions, orders, sender, events)

	dispatcher := dispatch.New(func(ctx context.Context, userID, token string) {
		if err := bot.Handle(ctx, userID, token); err != nil {
			log.Printf("handle event for %s error: %v", userID, err)
		}
	})

	handler := h.NewWebhookHandler(dispatcher, cfg.VerifyToken)
	router := h.NewRouter(handler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "orderbot"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Order bot listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down order bot...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Printf("dispatcher shutdown: %v", err)
	}
	if err := bot.Drain(shutdownCtx); err != nil {
		log.Printf("event publish drain: %v", err)
	}
	log.Println("order bot stopped")
}
