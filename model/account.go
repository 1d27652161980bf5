package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

type AccountKind string

const (
	AccountStandard AccountKind = "standard"
	AccountLoan     AccountKind = "loan"
)

// Account balances are always expressed in the account's own currency.
// Balance arithmetic never crosses currencies without going through the
// currency service.
type Account struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	AccountNumber int64           `json:"account_number"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        AccountStatus   `json:"status"`
	Kind          AccountKind     `json:"kind"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	CreatedAt     time.Time       `json:"created_at"`
}
