package initializer

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/telephant/firewise/infra"
	"github.com/telephant/firewise/infra/provider/exchangerateapi"
	"github.com/telephant/firewise/infra/provider/marketdata"
	"github.com/telephant/firewise/infra/repository"
	"github.com/telephant/firewise/pkg/config"
	"github.com/telephant/firewise/pkg/portfolio"
	"github.com/telephant/firewise/pkg/ratecache"
	"github.com/telephant/firewise/pkg/service/planning"
	"github.com/telephant/firewise/pkg/stats"
)

// Deps holds the wired application dependencies.
type Deps struct {
	Config   *config.App
	Logger   *slog.Logger
	DB       *gorm.DB
	Rates    *ratecache.Cache
	Planning *planning.Service
}

// InitializeDependencies builds the full dependency graph from config.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	logger := SetupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	store := repository.NewStore(db)

	rateProvider := exchangerateapi.New(cfg.ExchangeRate, logger)
	rates := ratecache.New(rateProvider, logger)
	logger.Info("Exchange rate provider initialized", "provider", rateProvider.Name())

	market := marketdata.New(cfg.MarketData, logger)

	svc := planning.New(
		store,
		stats.New(rates, logger),
		portfolio.NewValuer(market, rates, logger),
		stats.NewCache(cfg.StatsCache.TTL),
		logger,
	)

	return &Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Rates:    rates,
		Planning: svc,
	}, nil
}
