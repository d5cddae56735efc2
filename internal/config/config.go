package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Retention   RetentionConfig
	Performance PerformanceConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers    []string
	AlertTopic string
	PriceTopic string
	FillTopic  string
	GroupID    string
}

// RedisConfig holds Redis configuration for the summary cache
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SummaryTTL time.Duration
}

// RetentionConfig holds per-class retention ages and the sweep interval
type RetentionConfig struct {
	MarketDataDays    int
	PriceUpdatesDays  int
	SentimentDays     int
	SystemMetricsDays int
	SweepInterval     time.Duration
}

// PerformanceConfig holds performance calculator defaults
type PerformanceConfig struct {
	LookbackDays int
	RiskFreeRate string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			AlertTopic: getEnv("KAFKA_ALERT_TOPIC", "risk-alerts"),
			PriceTopic: getEnv("KAFKA_PRICE_TOPIC", "price-ticks"),
			FillTopic:  getEnv("KAFKA_FILL_TOPIC", "order-fills"),
			GroupID:    getEnv("KAFKA_GROUP_ID", "portfolio-analytics"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			SummaryTTL: time.Duration(getEnvInt("SUMMARY_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Retention: RetentionConfig{
			MarketDataDays:    getEnvInt("RETENTION_MARKET_DATA_DAYS", 365),
			PriceUpdatesDays:  getEnvInt("RETENTION_PRICE_UPDATES_DAYS", 365),
			SentimentDays:     getEnvInt("RETENTION_SENTIMENT_DAYS", 180),
			SystemMetricsDays: getEnvInt("RETENTION_SYSTEM_METRICS_DAYS", 90),
			SweepInterval:     time.Duration(getEnvInt("RETENTION_SWEEP_HOURS", 24)) * time.Hour,
		},
		Performance: PerformanceConfig{
			LookbackDays: getEnvInt("PERFORMANCE_LOOKBACK_DAYS", 30),
			RiskFreeRate: getEnv("PERFORMANCE_RISK_FREE_RATE", "0"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
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
