package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer records a money movement between two accounts. The amount is
// expressed in the sender account's currency. The sender is debited when the
// row is created; Processed flips to true exactly once, when the receiver is
// credited.
type Transfer struct {
	ID            int             `json:"id"`
	FromAccountID int             `json:"from_account_id"`
	ToAccountID   int             `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Processed     bool            `json:"processed"`
	CreatedAt     time.Time       `json:"created_at"`
}
