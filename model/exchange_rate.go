package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate holds the latest known rate for a currency, expressed relative
// to the configured base currency. At most one row exists per currency code.
type ExchangeRate struct {
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}
