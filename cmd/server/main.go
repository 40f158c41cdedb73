package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/localmarket/marketplace/internal/config"
	"github.com/localmarket/marketplace/internal/es"
	"github.com/localmarket/marketplace/internal/handlers"
	"github.com/localmarket/marketplace/internal/llm"
	"github.com/localmarket/marketplace/internal/logging"
	"github.com/localmarket/marketplace/internal/middleware/loggingmw"
	"github.com/localmarket/marketplace/internal/mykafka"
	httpserver "github.com/localmarket/marketplace/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatalf("kafka init: %v", err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, events disabled")
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	var pricer handlers.Pricer
	if configuration.LLM_API_URL != "" && configuration.LLM_API_KEY != "" {
		client, err := llm.NewClient(configuration.LLM_API_URL, configuration.LLM_API_KEY, configuration.LLM_MODEL)
		if err != nil {
			log.Fatalf("llm init: %v", err)
		}
		pricer = client
	} else {
		logger.Warn("LLM_API_URL/LLM_API_KEY not set, price recommendations disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))
	e.Static("/uploads", configuration.UPLOAD_DIR)

	deps := httpserver.Deps{
		DB:        db,
		JWTSecret: jwtSecret,
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer,
		},
		UserHandler: &handlers.UserHandler{DB: db},
		ProductHandler: &handlers.ProductHandler{
			DB: db, Producer: producer, ES: esClient, ESIndex: es.ProductIndex, UploadDir: configuration.UPLOAD_DIR,
		},
		CartHandler:     &handlers.CartHandler{DB: db, Producer: producer},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: producer},
		SellerHandler:   &handlers.SellerHandler{DB: db, Pricer: pricer, UploadDir: configuration.UPLOAD_DIR},
		FeedbackHandler: &handlers.FeedbackHandler{DB: db, Producer: producer},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

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

	logger.Info("shutdown complete")
}
