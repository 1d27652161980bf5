package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanPending LoanStatus = "pending"
	LoanPaid    LoanStatus = "paid"
	LoanDefault LoanStatus = "default"
)

// Loan represents an issued loan. Status transitions are one-directional:
// pending -> paid or pending -> default, never back.
type Loan struct {
	ID           int             `json:"id"`
	UserID       int             `json:"user_id"`
	AccountID    int             `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Status       LoanStatus      `json:"status"`
	IssuedAt     time.Time       `json:"issued_at"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
}
