// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateAccountRequest defines the payload for opening a new account.
// The account name must be unique per user; the starting balance is zero.
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Currency string `json:"currency" validate:"required,len=3,uppercase"`
}

// ConvertAccountRequest switches an account to a new currency, converting the
// stored balance in the same update.
type ConvertAccountRequest struct {
	Currency string `json:"currency" validate:"required,len=3,uppercase"`
}

// ConvertQuoteRequest quotes a conversion between two currencies without
// touching any account.
type ConvertQuoteRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	From   string          `json:"from" validate:"required,len=3,uppercase"`
	To     string          `json:"to" validate:"required,len=3,uppercase"`
}

// UpdateRoleRequest assigns a new role to a user. Admin only.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// CreateLoanRequest defines the payload for requesting a loan disbursed to
// one of the user's accounts. InterestRate is optional; the configured
// default applies when omitted.
type CreateLoanRequest struct {
	AccountID    int              `json:"account_id" validate:"required"`
	Amount       decimal.Decimal  `json:"amount" validate:"required"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
}
