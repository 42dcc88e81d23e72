package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cache"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cart"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/gateway"
	h "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/http"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/publisher"
	r "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/service"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/shipping"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/pkg/metrics"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	MongoURI string
	MongoDB  string

	RedisAddr string

	KafkaBrokers []string
	AbandonAfter time.Duration

	Gateway gateway.Config
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "checkout"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "migrations"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "carts"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		AbandonAfter: time.Duration(getEnvInt("ABANDON_AFTER_MINUTES", 120)) * time.Minute,

		Gateway: gateway.Config{
			TenantID:         getEnv("TENANT_ID", ""),
			PaymentsBaseURL:  getEnv("PAYMENTS_BASE_URL", "http://localhost:9101"),
			RiskBaseURL:      getEnv("RISK_BASE_URL", "http://localhost:9102"),
			ShippingBaseURL:  getEnv("SHIPPING_BASE_URL", "http://localhost:9103"),
			WalletBaseURL:    getEnv("WALLET_BASE_URL", "http://localhost:9104"),
			OriginPostalCode: getEnv("ORIGIN_CEP", "01001-000"),
			Timeout:          10 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	cred := &r.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := r.NewRepository(cred)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB, err := cart.Connect(ctx, cart.ConnConfig{URI: cfg.MongoURI, Database: cfg.MongoDB})
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	carts := cart.NewStore(mongoDB)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	quoteCache := cache.NewQuoteCache(redisClient)

	m := metrics.NewSettlementMetrics(prometheus.DefaultRegisterer)

	pixClient := gateway.NewPixClient(cfg.Gateway)
	boletoClient := gateway.NewBoletoClient(cfg.Gateway)
	cardClient := gateway.NewCardClient(cfg.Gateway)
	walletClient := gateway.NewWalletClient(cfg.Gateway)
	fraudClient := gateway.NewAntifraudClient(cfg.Gateway)
	quoteClient := gateway.NewShippingClient(cfg.Gateway)
	addressClient := gateway.NewAddressClient(cfg.Gateway)

	shippingSvc := shipping.NewService(quoteClient, addressClient, quoteCache, cfg.Gateway.OriginPostalCode)
	orchestrator := settlement.NewOrchestrator(pixClient, boletoClient, cardClient, walletClient, fraudClient, m)
	finalizer := order.NewFinalizer(repo)
	offers := service.NewStaticCatalog(defaultOffers())

	svc := service.New(repo, carts, shippingSvc, orchestrator, walletClient, finalizer, offers)

	poller := publisher.NewOutboxPoller(repo, cfg.AbandonAfter, cfg.KafkaBrokers...)
	go poller.Run(ctx)

	checkoutHandler := h.NewCheckoutHandler(svc, cfg.RequestTimeout)

	// Setup router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(h.RequestIDMiddleware)
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Compress(5))

	// Health check
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", metrics.Handler())

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		router.Route("/checkouts", func(router chi.Router) {
			router.Post("/", checkoutHandler.Start)
			router.Route("/{id}", func(router chi.Router) {
				router.Get("/", checkoutHandler.Get)
				router.Post("/advance", checkoutHandler.Advance)
				router.Post("/retreat", checkoutHandler.Retreat)
				router.Post("/cancel", checkoutHandler.Cancel)
				router.Put("/customer", checkoutHandler.UpdateCustomer)
				router.Get("/shipping-quotes", checkoutHandler.ShippingQuotes)
				router.Put("/shipping", checkoutHandler.SelectShipping)
				router.Post("/coupon", checkoutHandler.ApplyCoupon)
				router.Delete("/coupon", checkoutHandler.RemoveCoupon)
				router.Post("/offers/{offer_id}/accept", checkoutHandler.AcceptOffer)
				router.Post("/splits", checkoutHandler.AddSplit)
				router.Delete("/splits/{index}", checkoutHandler.RemoveSplit)
				router.Post("/settle", checkoutHandler.Settle)
				router.Post("/finalize", checkoutHandler.Finalize)
			})
		})
		router.Get("/orders/{id}", checkoutHandler.GetOrder)
		router.Get("/cep/{cep}", checkoutHandler.LookupAddress)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout engine starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// defaultOffers is the launch catalog; a product-backed catalog replaces
// this once the offers API lands.
func defaultOffers() []domain.Offer {
	return []domain.Offer{
		{ID: "bump-gift-wrap", Type: domain.OfferTypeBump, Name: "Embalagem presente", Price: 990, ProductID: "gift-wrap"},
		{ID: "bump-warranty", Type: domain.OfferTypeBump, Name: "Garantia estendida 12m", Price: 4990, ProductID: "warranty-12m"},
		{ID: "upsell-premium", Type: domain.OfferTypeUpsell, Name: "Upgrade premium", Price: 9990, ProductID: "premium-upgrade"},
	}
}
