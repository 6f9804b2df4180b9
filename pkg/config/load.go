package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, seeding it from .env when
// one is present.
func Load() (*App, error) {
	logger := slog.Default()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	} else {
		logger.Info("Environment variables loaded from .env file")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"exchange_api_url", cfg.ExchangeRate.ApiUrl,
		"exchange_api_key", maskValue(cfg.ExchangeRate.ApiKey),
		"market_api_url", cfg.MarketData.ApiUrl,
		"stats_cache_ttl", cfg.StatsCache.TTL,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
