package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tradekeeper/portfolio-analytics/internal/alerts"
	"github.com/tradekeeper/portfolio-analytics/internal/api"
	"github.com/tradekeeper/portfolio-analytics/internal/cache"
	"github.com/tradekeeper/portfolio-analytics/internal/config"
	"github.com/tradekeeper/portfolio-analytics/internal/database"
	"github.com/tradekeeper/portfolio-analytics/internal/health"
	"github.com/tradekeeper/portfolio-analytics/internal/kafka"
	"github.com/tradekeeper/portfolio-analytics/internal/retention"
	"github.com/tradekeeper/portfolio-analytics/internal/views"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate("db/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations applied")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Alert notifications out
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic)
	defer producer.Close()

	alertService := alerts.NewService(db, producer)

	// Summary cache, optional
	var summaries *cache.SummaryCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, running without summary cache: %v", err)
	} else {
		summaries = cache.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL)
		defer redisClient.Close()
	}

	// Price ticks and order fills in
	priceConsumer := kafka.NewPriceConsumer(cfg.Kafka.Brokers, cfg.Kafka.PriceTopic, cfg.Kafka.GroupID, db)
	go func() {
		if err := priceConsumer.Start(ctx); err != nil {
			log.Printf("Price consumer stopped: %v", err)
		}
	}()

	var invalidator kafka.SummaryInvalidator
	if summaries != nil {
		invalidator = summaries
	}
	fillConsumer := kafka.NewFillConsumer(cfg.Kafka.Brokers, cfg.Kafka.FillTopic, cfg.Kafka.GroupID, db, invalidator)
	go func() {
		if err := fillConsumer.Start(ctx); err != nil {
			log.Printf("Fill consumer stopped: %v", err)
		}
	}()

	// Retention sweeps
	policy := retention.Policy{
		MarketDataAge:    time.Duration(cfg.Retention.MarketDataDays) * 24 * time.Hour,
		PriceUpdatesAge:  time.Duration(cfg.Retention.PriceUpdatesDays) * 24 * time.Hour,
		SentimentAge:     time.Duration(cfg.Retention.SentimentDays) * 24 * time.Hour,
		SystemMetricsAge: time.Duration(cfg.Retention.SystemMetricsDays) * 24 * time.Hour,
	}
	manager := retention.NewManager(db, policy, cfg.Retention.SweepInterval, db)
	go manager.Start(ctx)

	riskFree, err := decimal.NewFromString(cfg.Performance.RiskFreeRate)
	if err != nil {
		log.Printf("Invalid risk free rate %q, using 0", cfg.Performance.RiskFreeRate)
		riskFree = decimal.Zero
	}

	aggregator := views.NewAggregator(db, views.TradingWindow)
	probe := health.NewProbe(db)

	handler := api.NewHandler(db, aggregator, alertService, probe, summaries, riskFree, cfg.Performance.LookbackDays)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
