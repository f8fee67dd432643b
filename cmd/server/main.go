package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/velora/storefront/internal/config"
	"github.com/velora/storefront/internal/es"
	"github.com/velora/storefront/internal/handlers"
	"github.com/velora/storefront/internal/logging"
	"github.com/velora/storefront/internal/metrics"
	loggingmw "github.com/velora/storefront/internal/middleware/logging"
	"github.com/velora/storefront/internal/middleware/routegate"
	"github.com/velora/storefront/internal/mykafka"
	"github.com/velora/storefront/internal/orders"
	"github.com/velora/storefront/internal/search"
	"github.com/velora/storefront/internal/token"
	httpserver "github.com/velora/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	tokens := &token.Service{
		Secret:        []byte(configuration.JWT_SECRET),
		TTL:           configuration.TokenTTL,
		SecureCookies: configuration.IsProduction(),
	}

	var producer *mykafka.Producer
	if len(configuration.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(configuration.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchSvc = search.New(esClient, "products")
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		loggingmw.RequestLogger(logger),
		metrics.Middleware(),
		routegate.Middleware(tokens),
	)

	orderSvc := &orders.Service{DB: db}

	// handlers publish through the Publisher interface; a nil *Producer in an
	// interface value is not nil, so only assign when configured
	var pub handlers.Publisher
	if producer != nil {
		pub = producer
	}

	deps := httpserver.Deps{
		DB:                 db,
		Tokens:             tokens,
		AuthHandler:        &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: pub},
		OrdersHandler:      &handlers.OrdersHandler{Svc: orderSvc, Producer: pub},
		AdminOrdersHandler: &handlers.AdminOrdersHandler{Svc: orderSvc, Producer: pub},
		ProductHandler:     &handlers.ProductHandler{DB: db, Producer: pub, Search: searchSvc},
		AccountHandler:     &handlers.AccountHandler{DB: db},
		DashboardHandler:   &handlers.DashboardHandler{DB: db},
		SearchHandler:      &handlers.SearchHandler{Search: searchSvc},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
