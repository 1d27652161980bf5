package repository

import (
	"database/sql"
	"fmt"
	"go-ledger-api/logger"
	"go-ledger-api/model"
	"time"

	"github.com/shopspring/decimal"
)

// IRateRepository defines the contract for exchange rate database operations.
// Rates are keyed by currency code and always expressed relative to the
// configured base currency.
type IRateRepository interface {
	GetExchangeRate(currency string) (*model.ExchangeRate, error)
	UpsertExchangeRates(rates map[string]decimal.Decimal, timestamp time.Time) error
	LatestRateTimestamp() (time.Time, bool, error)
}

// RateRepository implements IRateRepository.
type RateRepository struct {
	DB *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{DB: db}
}

// GetExchangeRate retrieves the stored rate for a currency code. A missing
// code surfaces as sql.ErrNoRows, never as a zero rate.
func (r *RateRepository) GetExchangeRate(currency string) (*model.ExchangeRate, error) {
	rate := &model.ExchangeRate{}
	query := `SELECT currency, rate, updated_at FROM exchange_rates WHERE currency = $1`
	err := r.DB.QueryRow(query, currency).Scan(&rate.Currency, &rate.Rate, &rate.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("currency", currency).WithError(err).Error("Failed to execute get exchange rate query")
		}
		return nil, err
	}
	return rate, nil
}

// UpsertExchangeRates applies a whole rate batch in one transaction with the
// same timestamp on every row. A concurrent reader sees either the old set or
// the new set, never a mix.
func (r *RateRepository) UpsertExchangeRates(rates map[string]decimal.Decimal, timestamp time.Time) error {
	log := logger.Log.WithField("currencies", len(rates))
	log.Info("Executing batch upsert of exchange rates")

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("could not begin rate upsert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO exchange_rates (currency, rate, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (currency) DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`
	for currency, rate := range rates {
		if _, err := tx.Exec(query, currency, rate, timestamp); err != nil {
			log.WithField("currency", currency).WithError(err).Error("Failed to upsert exchange rate")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit rate upsert transaction: %w", err)
	}
	return nil
}

// LatestRateTimestamp returns the newest updated_at across all rates. The
// second return value is false when the table has never been populated.
func (r *RateRepository) LatestRateTimestamp() (time.Time, bool, error) {
	var ts sql.NullTime
	query := `SELECT MAX(updated_at) FROM exchange_rates`
	if err := r.DB.QueryRow(query).Scan(&ts); err != nil {
		logger.Log.WithError(err).Error("Failed to execute latest rate timestamp query")
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}
