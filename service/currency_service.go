package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrRateNotFound = errors.New("exchange rate not found")
	ErrInvalidRate  = errors.New("invalid exchange rate")
)

// IRateSource supplies the latest known rate for a currency code, relative to
// the base currency. RateService is the production implementation.
type IRateSource interface {
	GetRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// CurrencyService converts amounts between currencies using rates from an
// IRateSource. It performs no I/O of its own and holds no state.
type CurrencyService struct {
	rates IRateSource
}

func NewCurrencyService(rates IRateSource) *CurrencyService {
	return &CurrencyService{rates: rates}
}

// Convert converts amount from one currency to another, rounded to 2 decimal
// places. Identical currency codes return the amount unchanged without a rate
// lookup, so conversions within one currency never depend on the rate table.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	return s.convert(ctx, amount, from, to, 2)
}

// ConvertPrecise behaves like Convert but keeps 4 decimal places. It exists
// for intermediate loan-eligibility math, where 2-place rounding would
// accumulate drift across many terms.
func (s *CurrencyService) ConvertPrecise(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	return s.convert(ctx, amount, from, to, 4)
}

func (s *CurrencyService) convert(ctx context.Context, amount decimal.Decimal, from, to string, places int32) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := s.lookupRate(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := s.lookupRate(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}

	// Both rates are relative to the same base currency, so converting goes
	// through the base: amount / fromRate * toRate.
	return amount.Div(fromRate).Mul(toRate).Round(places), nil
}

func (s *CurrencyService) lookupRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	rate, err := s.rates.GetRate(ctx, currency)
	if err != nil {
		return decimal.Zero, ErrInvalidRate
	}
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return rate, nil
}
