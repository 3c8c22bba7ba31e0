package configs

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Ops      OpsConfig
	Database DatabaseConfig
	Market   MarketConfig
	Trading  TradingConfig
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// OpsConfig holds the internal ops listener configuration
type OpsConfig struct {
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// MarketConfig holds the quote API configuration
type MarketConfig struct {
	QuoteURL string
}

// TradingConfig holds trading engine configuration
type TradingConfig struct {
	DailyTradeLimit int
	StartingBalance float64
	EvaluateSeconds int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Ops: OpsConfig{
			Port: getEnv("OPS_PORT", "8081"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Market: MarketConfig{
			QuoteURL: getEnv("QUOTE_API_URL", "https://api.binance.com"),
		},
		Trading: TradingConfig{
			DailyTradeLimit: getEnvInt("DAILY_TRADE_LIMIT", 5),
			StartingBalance: getEnvFloat("STARTING_BALANCE", 10000.0),
			EvaluateSeconds: getEnvInt("EVALUATE_INTERVAL_SECONDS", 30),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
