package service

import (
	"context"
	"database/sql"
	"time"

	"go-ledger-api/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock for IAccountRepository.
type MockAccountRepository struct{ mock.Mock }

func (m *MockAccountRepository) CreateAccount(account *model.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(accountID int) (*model.Account, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountsByUserID(userID int) ([]*model.Account, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAllAccounts() ([]*model.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetLastAccountNumber() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) AccountNameExists(userID int, name string) (bool, error) {
	args := m.Called(userID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error) {
	args := m.Called(tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance decimal.Decimal) error {
	args := m.Called(tx, accountID, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountCurrency(tx *sql.Tx, accountID int, currency string, newBalance decimal.Decimal) error {
	args := m.Called(tx, accountID, currency, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(accountID int) error {
	args := m.Called(accountID)
	return args.Error(0)
}

// MockTransferRepository is a mock for ITransferRepository.
type MockTransferRepository struct{ mock.Mock }

func (m *MockTransferRepository) CreateTransfer(tx *sql.Tx, transfer *model.Transfer) error {
	args := m.Called(tx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GetTransferForUpdate(tx *sql.Tx, transferID int) (*model.Transfer, error) {
	args := m.Called(tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transfer), args.Error(1)
}

func (m *MockTransferRepository) MarkTransferProcessed(tx *sql.Tx, transferID int) error {
	args := m.Called(tx, transferID)
	return args.Error(0)
}

func (m *MockTransferRepository) GetTransfersByAccountID(accountID int) ([]*model.Transfer, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transfer), args.Error(1)
}

// MockLoanRepository is a mock for ILoanRepository.
type MockLoanRepository struct{ mock.Mock }

func (m *MockLoanRepository) CreateLoan(tx *sql.Tx, loan *model.Loan) error {
	args := m.Called(tx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetLoanForUpdate(tx *sql.Tx, loanID int) (*model.Loan, error) {
	args := m.Called(tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanStatus(tx *sql.Tx, loanID int, status model.LoanStatus) error {
	args := m.Called(tx, loanID, status)
	return args.Error(0)
}

func (m *MockLoanRepository) GetLoansByUserID(userID int) ([]*model.Loan, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetOutstandingLoansByUserID(userID int) ([]*model.Loan, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Loan), args.Error(1)
}

// MockRateRepository is a mock for IRateRepository.
type MockRateRepository struct{ mock.Mock }

func (m *MockRateRepository) GetExchangeRate(currency string) (*model.ExchangeRate, error) {
	args := m.Called(currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) UpsertExchangeRates(rates map[string]decimal.Decimal, timestamp time.Time) error {
	args := m.Called(rates, timestamp)
	return args.Error(0)
}

func (m *MockRateRepository) LatestRateTimestamp() (time.Time, bool, error) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

// fakeCache is an in-memory ICacheClient for tests.
type fakeCache struct {
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := c.store[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case string:
		c.store[key] = v
	case []byte:
		c.store[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(c.store, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// fakeRateSource is a canned IRateSource for currency conversion tests.
type fakeRateSource struct {
	rates map[string]decimal.Decimal
}

func (f *fakeRateSource) GetRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	rate, ok := f.rates[currency]
	if !ok {
		return decimal.Zero, ErrRateNotFound
	}
	return rate, nil
}

// fakeProvider is a canned IRateProvider for refresh tests.
type fakeProvider struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (f *fakeProvider) FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}
