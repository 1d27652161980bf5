package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-ledger-api/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRateServiceForTest(repo *MockRateRepository, provider *fakeProvider, cache *fakeCache) *RateService {
	return NewRateService(repo, provider, cache, "SEK", 24)
}

func TestRateService_RefreshIfStale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh rates are a no-op", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		provider := &fakeProvider{rates: map[string]decimal.Decimal{"USD": dec("0.095")}}

		lastUpdate := now.Add(-23 * time.Hour)
		mockRepo.On("LatestRateTimestamp").Return(lastUpdate, true, nil).Once()

		rateService := newRateServiceForTest(mockRepo, provider, newFakeCache())
		outcome, err := rateService.RefreshIfStale(ctx, now)

		assert.NoError(t, err)
		assert.False(t, outcome.Refreshed)
		assert.Equal(t, lastUpdate.Add(24*time.Hour), outcome.NextRefreshAt)
		assert.Zero(t, provider.calls, "provider must not be called while rates are fresh")
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "UpsertExchangeRates", mock.Anything, mock.Anything)
	})

	t.Run("stale rates trigger one provider call and an atomic batch", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		rates := map[string]decimal.Decimal{
			"USD": dec("0.095"),
			"EUR": dec("0.088"),
			"SEK": dec("1"),
		}
		provider := &fakeProvider{rates: rates}

		mockRepo.On("LatestRateTimestamp").Return(now.Add(-25*time.Hour), true, nil).Once()
		// Every row in the batch carries the same timestamp.
		mockRepo.On("UpsertExchangeRates", rates, now).Return(nil).Once()

		rateService := newRateServiceForTest(mockRepo, provider, newFakeCache())
		outcome, err := rateService.RefreshIfStale(ctx, now)

		assert.NoError(t, err)
		assert.True(t, outcome.Refreshed)
		assert.Equal(t, 3, outcome.Currencies)
		assert.Equal(t, now.Add(24*time.Hour), outcome.NextRefreshAt)
		assert.Equal(t, 1, provider.calls)
		mockRepo.AssertExpectations(t)
	})

	t.Run("never-refreshed store triggers a refresh", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		provider := &fakeProvider{rates: map[string]decimal.Decimal{"USD": dec("0.095")}}

		mockRepo.On("LatestRateTimestamp").Return(time.Time{}, false, nil).Once()
		mockRepo.On("UpsertExchangeRates", provider.rates, now).Return(nil).Once()

		rateService := newRateServiceForTest(mockRepo, provider, newFakeCache())
		outcome, err := rateService.RefreshIfStale(ctx, now)

		assert.NoError(t, err)
		assert.True(t, outcome.Refreshed)
		mockRepo.AssertExpectations(t)
	})

	t.Run("provider failure leaves the store untouched", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		provider := &fakeProvider{err: errors.New("connection refused")}

		mockRepo.On("LatestRateTimestamp").Return(now.Add(-25*time.Hour), true, nil).Once()

		rateService := newRateServiceForTest(mockRepo, provider, newFakeCache())
		_, err := rateService.RefreshIfStale(ctx, now)

		assert.Equal(t, ErrProviderUnavailable, err)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "UpsertExchangeRates", mock.Anything, mock.Anything)
	})

	t.Run("refresh invalidates cached rates", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		rates := map[string]decimal.Decimal{"USD": dec("0.099")}
		provider := &fakeProvider{rates: rates}
		cache := newFakeCache()
		cache.store["rate:USD"] = "0.095"

		mockRepo.On("LatestRateTimestamp").Return(now.Add(-25*time.Hour), true, nil).Once()
		mockRepo.On("UpsertExchangeRates", rates, now).Return(nil).Once()

		rateService := newRateServiceForTest(mockRepo, provider, cache)
		_, err := rateService.RefreshIfStale(ctx, now)

		assert.NoError(t, err)
		_, cached := cache.store["rate:USD"]
		assert.False(t, cached, "stale cache entry must be dropped after refresh")
	})
}

func TestRateService_GetRate(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss reads the store and populates the cache", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		cache := newFakeCache()
		mockRepo.On("GetExchangeRate", "USD").Return(&model.ExchangeRate{
			Currency: "USD", Rate: dec("0.095"),
		}, nil).Once()

		rateService := newRateServiceForTest(mockRepo, &fakeProvider{}, cache)

		rate, err := rateService.GetRate(ctx, "USD")
		assert.NoError(t, err)
		assert.True(t, rate.Equal(dec("0.095")))
		assert.Equal(t, "0.095", cache.store["rate:USD"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		cache := newFakeCache()
		cache.store["rate:EUR"] = "0.088"

		rateService := newRateServiceForTest(mockRepo, &fakeProvider{}, cache)

		rate, err := rateService.GetRate(ctx, "EUR")
		assert.NoError(t, err)
		assert.True(t, rate.Equal(dec("0.088")))
		mockRepo.AssertNotCalled(t, "GetExchangeRate", mock.Anything)
	})

	t.Run("unknown currency surfaces not found, never zero", func(t *testing.T) {
		mockRepo := new(MockRateRepository)
		mockRepo.On("GetExchangeRate", "XXX").Return(nil, sql.ErrNoRows).Once()

		rateService := newRateServiceForTest(mockRepo, &fakeProvider{}, newFakeCache())

		_, err := rateService.GetRate(ctx, "XXX")
		assert.Equal(t, ErrRateNotFound, err)
	})
}
