// Package config loads the application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[firewise]"`
}

// ExchangeRateApi configures the exchange-rate source.
type ExchangeRateApi struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`
}

// MarketDataApi configures the security-price and historical-growth source.
type MarketDataApi struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"2"`
}

// StatsCache bounds how long computed snapshots are served without
// recomputation.
type StatsCache struct {
	TTL time.Duration `envconfig:"TTL" default:"1m"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env          string           `envconfig:"APP_ENV" default:"development"`
	Server       *Server          `envconfig:"SERVER"`
	Log          *Log             `envconfig:"LOG"`
	DB           *DB              `envconfig:"DATABASE"`
	ExchangeRate *ExchangeRateApi `envconfig:"EXCHANGE_RATE"`
	MarketData   *MarketDataApi   `envconfig:"MARKET_DATA"`
	StatsCache   *StatsCache      `envconfig:"STATS_CACHE"`
	RateLimit    *RateLimit       `envconfig:"RATE_LIMIT"`
}
