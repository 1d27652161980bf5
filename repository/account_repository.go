package repository

import (
	"database/sql"
	"go-ledger-api/logger"
	"go-ledger-api/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
// Balance and currency mutations take a *sql.Tx so the services own the
// transaction boundaries.
type IAccountRepository interface {
	CreateAccount(account *model.Account) error
	GetAccountByID(accountID int) (*model.Account, error)
	GetAccountsByUserID(userID int) ([]*model.Account, error)
	GetAllAccounts() ([]*model.Account, error)
	GetLastAccountNumber() (int64, error)
	AccountNameExists(userID int, name string) (bool, error)
	GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error)
	UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error
	UpdateAccountCurrency(tx *sql.Tx, accountID int, currency string, newBalance decimal.Decimal) error
	DeactivateAccount(accountID int) error
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, user_id, account_number, name, balance, currency, status, kind, interest_rate, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(&acc.ID, &acc.UserID, &acc.AccountNumber, &acc.Name, &acc.Balance,
		&acc.Currency, &acc.Status, &acc.Kind, &acc.InterestRate, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount adds a new account to the database.
func (r *AccountRepository) CreateAccount(account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":        account.UserID,
		"account_number": account.AccountNumber,
		"currency":       account.Currency,
		"name":           account.Name,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (user_id, account_number, name, currency, kind, interest_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, balance, status, created_at`
	err := r.DB.QueryRow(query, account.UserID, account.AccountNumber, account.Name,
		account.Currency, account.Kind, account.InterestRate).
		Scan(&account.ID, &account.Balance, &account.Status, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByID retrieves a single account.
func (r *AccountRepository) GetAccountByID(accountID int) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.DB.QueryRow(query, accountID))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("account_id", accountID).WithError(err).Error("Failed to execute get account query")
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByUserID retrieves all accounts for a specific user.
func (r *AccountRepository) GetAccountsByUserID(userID int) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get accounts by user ID")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for accounts by user ID")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetAllAccounts retrieves all accounts from the database. For admin use only.
func (r *AccountRepository) GetAllAccounts() ([]*model.Account, error) {
	logger.Log.Info("Executing query to get all accounts")

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetLastAccountNumber returns the highest assigned account number, or zero
// when no accounts exist yet.
func (r *AccountRepository) GetLastAccountNumber() (int64, error) {
	var last int64
	query := `SELECT COALESCE(MAX(account_number), 1000000000) FROM accounts`
	if err := r.DB.QueryRow(query).Scan(&last); err != nil {
		logger.Log.WithError(err).Error("Failed to execute get last account number query")
		return 0, err
	}
	return last, nil
}

// AccountNameExists reports whether the user already has an account with the
// given display name.
func (r *AccountRepository) AccountNameExists(userID int, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = $1 AND name = $2)`
	if err := r.DB.QueryRow(query, userID, name).Scan(&exists); err != nil {
		logger.Log.WithError(err).Error("Failed to execute account name exists query")
		return false, err
	}
	return exists, nil
}

// GetAccountForUpdate locks the account row for the duration of the caller's
// transaction so concurrent balance mutations serialize per account.
func (r *AccountRepository) GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get account for update")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRow(query, accountID))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance.String(),
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	_, err := tx.Exec(query, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}

// UpdateAccountCurrency persists a converted balance together with its new
// currency code in a single statement, so no reader can observe one without
// the other.
func (r *AccountRepository) UpdateAccountCurrency(tx *sql.Tx, accountID int, currency string, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"currency":    currency,
		"new_balance": newBalance.String(),
	})
	log.Info("Executing query to update account currency")

	query := `UPDATE accounts SET currency = $1, balance = $2 WHERE id = $3`
	_, err := tx.Exec(query, currency, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account currency query")
		return err
	}
	return nil
}

// DeactivateAccount marks the account inactive. Accounts are never deleted.
func (r *AccountRepository) DeactivateAccount(accountID int) error {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to deactivate account")

	query := `UPDATE accounts SET status = 'inactive' WHERE id = $1`
	res, err := r.DB.Exec(query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute deactivate account query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
