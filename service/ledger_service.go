package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrAccountNotFound = errors.New("account not found")

// LedgerService owns account balances. Every balance mutation in the system
// goes through ApplyDelta or its tx-scoped variant; the transfer and loan
// services never write balance columns themselves.
type LedgerService struct {
	db          *sql.DB
	accountRepo repository.IAccountRepository
	currency    *CurrencyService
}

func NewLedgerService(db *sql.DB, accountRepo repository.IAccountRepository, currency *CurrencyService) *LedgerService {
	return &LedgerService{
		db:          db,
		accountRepo: accountRepo,
		currency:    currency,
	}
}

// ApplyDelta atomically adds a signed amount to an account's balance in its
// own transaction and returns the updated account.
func (s *LedgerService) ApplyDelta(ctx context.Context, accountID int, delta decimal.Decimal) (*model.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.applyDeltaTx(tx, accountID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit balance update: %w", err)
	}
	return account, nil
}

// applyDeltaTx performs the balance mutation inside the caller's transaction.
// The account row is locked for the rest of the transaction, so concurrent
// mutations of the same account serialize.
func (s *LedgerService) applyDeltaTx(tx *sql.Tx, accountID int, delta decimal.Decimal) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	account.Balance = account.Balance.Add(delta).Round(2)
	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, account.Balance); err != nil {
		return nil, fmt.Errorf("could not update account balance: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"delta":       delta.String(),
		"new_balance": account.Balance.String(),
	}).Info("Applied balance delta")

	return account, nil
}

// AggregateBalance sums the user's account balances expressed in the target
// currency. An account whose currency cannot be converted aborts the whole
// aggregation; a partial total is never returned. The read is a best-effort
// snapshot under concurrent balance changes.
func (s *LedgerService) AggregateBalance(ctx context.Context, userID int, targetCurrency string) (decimal.Decimal, error) {
	accounts, err := s.accountRepo.GetAccountsByUserID(userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, account := range accounts {
		converted, err := s.currency.Convert(ctx, account.Balance, account.Currency, targetCurrency)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"account_id": account.ID,
				"currency":   account.Currency,
				"target":     targetCurrency,
			}).Warn("Aborting balance aggregation, account currency cannot be converted")
			return decimal.Zero, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

// ConvertAccountCurrency switches an account to a new currency, converting
// the stored balance through the current rates. Balance and currency code are
// persisted in a single update; a reader can never observe one without the
// other. Switching to the account's current currency is a no-op.
func (s *LedgerService) ConvertAccountCurrency(ctx context.Context, userID, accountID int, newCurrency string) (*model.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if account.Currency == newCurrency {
		return account, nil
	}

	converted, err := s.currency.Convert(ctx, account.Balance, account.Currency, newCurrency)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateAccountCurrency(tx, account.ID, newCurrency, converted); err != nil {
		return nil, fmt.Errorf("could not update account currency: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit currency conversion: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"from":        account.Currency,
		"to":          newCurrency,
		"new_balance": converted.String(),
	}).Info("Account currency converted")

	account.Currency = newCurrency
	account.Balance = converted
	return account, nil
}
