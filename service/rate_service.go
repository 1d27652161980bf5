package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrProviderUnavailable = errors.New("exchange rate provider unavailable")

const rateCacheTTL = 10 * time.Minute

// RateService owns the exchange-rate table: it answers rate lookups (with a
// Redis cache in front of the store) and refreshes the table from the
// external provider, gated by the staleness window.
type RateService struct {
	rateRepo     repository.IRateRepository
	provider     IRateProvider
	cache        ICacheClient
	baseCurrency string
	staleness    time.Duration
}

func NewRateService(rateRepo repository.IRateRepository, provider IRateProvider, cache ICacheClient, baseCurrency string, stalenessHours int) *RateService {
	return &RateService{
		rateRepo:     rateRepo,
		provider:     provider,
		cache:        cache,
		baseCurrency: baseCurrency,
		staleness:    time.Duration(stalenessHours) * time.Hour,
	}
}

// RefreshOutcome reports what a RefreshIfStale call did. A no-op because the
// table is still fresh is a normal outcome, not an error.
type RefreshOutcome struct {
	Refreshed     bool      `json:"refreshed"`
	NextRefreshAt time.Time `json:"next_refresh_at"`
	Currencies    int       `json:"currencies"`
}

// RefreshIfStale fetches current rates from the provider and upserts them as
// one atomic batch, unless the stored rates are younger than the staleness
// window. The caller supplies now so the window is testable without a clock.
// On provider failure the store is left untouched.
func (s *RateService) RefreshIfStale(ctx context.Context, now time.Time) (*RefreshOutcome, error) {
	last, known, err := s.rateRepo.LatestRateTimestamp()
	if err != nil {
		return nil, fmt.Errorf("could not read latest rate timestamp: %w", err)
	}

	if known && now.Sub(last) < s.staleness {
		return &RefreshOutcome{
			Refreshed:     false,
			NextRefreshAt: last.Add(s.staleness),
		}, nil
	}

	rates, err := s.provider.FetchLatestRates(ctx, s.baseCurrency)
	if err != nil {
		logger.Log.WithError(err).Error("Exchange rate provider call failed, keeping existing rates")
		return nil, ErrProviderUnavailable
	}

	if err := s.rateRepo.UpsertExchangeRates(rates, now); err != nil {
		return nil, fmt.Errorf("could not store refreshed rates: %w", err)
	}

	// Drop stale cache entries so readers pick up the new batch.
	keys := make([]string, 0, len(rates))
	for currency := range rates {
		keys = append(keys, rateCacheKey(currency))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).Warn("Failed to invalidate rate cache after refresh")
	}

	logger.Log.WithFields(logrus.Fields{
		"currencies": len(rates),
		"base":       s.baseCurrency,
	}).Info("Exchange rates refreshed")

	return &RefreshOutcome{
		Refreshed:     true,
		NextRefreshAt: now.Add(s.staleness),
		Currencies:    len(rates),
	}, nil
}

// GetRate returns the stored rate for a currency, relative to the base
// currency, using a cache-aside read. Unknown codes surface ErrRateNotFound,
// never a zero rate.
func (s *RateService) GetRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	key := rateCacheKey(currency)

	if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
		if rate, err := decimal.NewFromString(cached); err == nil {
			return rate, nil
		}
	}

	stored, err := s.rateRepo.GetExchangeRate(currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrRateNotFound
		}
		return decimal.Zero, fmt.Errorf("could not read exchange rate: %w", err)
	}

	s.cache.Set(ctx, key, stored.Rate.String(), rateCacheTTL)
	return stored.Rate, nil
}

func rateCacheKey(currency string) string {
	return "rate:" + currency
}
