package service

import (
	"context"
	"database/sql"
	"testing"

	"go-ledger-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newLedgerServiceForTest(t *testing.T) (*LedgerService, sqlmock.Sqlmock, *MockAccountRepository, func()) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)

	mockAccountRepo := new(MockAccountRepository)
	currencyService := NewCurrencyService(&fakeRateSource{rates: map[string]decimal.Decimal{
		"SEK": dec("1"),
		"USD": dec("0.095"),
		"EUR": dec("0.088"),
	}})
	ledger := NewLedgerService(db, mockAccountRepo, currencyService)

	return ledger, dbMock, mockAccountRepo, func() { db.Close() }
}

func TestLedgerService_ApplyDelta(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the signed amount and persists the rounded balance", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 1, Balance: dec("100.005"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		mockAccountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("150.01")).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.ApplyDelta(ctx, 1, dec("50"))

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("150.01")))
		mockAccountRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("negative delta can push the balance below zero", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 1, Balance: dec("20.00"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		mockAccountRepo.On("UpdateAccountBalance", mock.Anything, 1, decEq("-30.00")).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.ApplyDelta(ctx, 1, dec("-50"))

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("-30.00")))
	})

	t.Run("unknown account", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 404).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		_, err := ledger.ApplyDelta(ctx, 404, dec("10"))
		assert.Equal(t, ErrAccountNotFound, err)
	})
}

func TestLedgerService_AggregateBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("sums balances converted into the target currency", func(t *testing.T) {
		ledger, _, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		accounts := []*model.Account{
			{ID: 1, UserID: 1, Balance: dec("1000.00"), Currency: "SEK"},
			{ID: 2, UserID: 1, Balance: dec("9.50"), Currency: "USD"},
		}
		mockAccountRepo.On("GetAccountsByUserID", 1).Return(accounts, nil).Once()

		// 1000 SEK + 9.50 USD (= 100 SEK) = 1100 SEK
		total, err := ledger.AggregateBalance(ctx, 1, "SEK")

		assert.NoError(t, err)
		assert.True(t, total.Equal(dec("1100.00")), "got %s", total)
	})

	t.Run("an unconvertible account aborts the aggregation", func(t *testing.T) {
		ledger, _, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		accounts := []*model.Account{
			{ID: 1, UserID: 1, Balance: dec("1000.00"), Currency: "SEK"},
			{ID: 2, UserID: 1, Balance: dec("500.00"), Currency: "JPY"},
		}
		mockAccountRepo.On("GetAccountsByUserID", 1).Return(accounts, nil).Once()

		total, err := ledger.AggregateBalance(ctx, 1, "SEK")

		assert.Equal(t, ErrInvalidRate, err)
		assert.True(t, total.IsZero(), "a partial total must never be returned")
	})

	t.Run("no accounts yields zero", func(t *testing.T) {
		ledger, _, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		mockAccountRepo.On("GetAccountsByUserID", 1).Return([]*model.Account{}, nil).Once()

		total, err := ledger.AggregateBalance(ctx, 1, "SEK")

		assert.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestLedgerService_ConvertAccountCurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("converts the balance and switches the currency atomically", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 1, Balance: dec("1000.00"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		// 1000 SEK -> USD at 0.095: 95.00
		mockAccountRepo.On("UpdateAccountCurrency", mock.Anything, 1, "USD", decEq("95.00")).Return(nil).Once()
		dbMock.ExpectCommit()

		updated, err := ledger.ConvertAccountCurrency(ctx, 1, 1, "USD")

		assert.NoError(t, err)
		assert.Equal(t, "USD", updated.Currency)
		assert.True(t, updated.Balance.Equal(dec("95.00")))
		mockAccountRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("same currency is a no-op", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 1, Balance: dec("1000.00"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		updated, err := ledger.ConvertAccountCurrency(ctx, 1, 1, "SEK")

		assert.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("1000.00")))
		mockAccountRepo.AssertNotCalled(t, "UpdateAccountCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only the owner may convert", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 99, Balance: dec("1000.00"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.ConvertAccountCurrency(ctx, 1, 1, "USD")
		assert.Equal(t, ErrPermissionDenied, err)
	})

	t.Run("missing rate fails without persisting anything", func(t *testing.T) {
		ledger, dbMock, mockAccountRepo, closeDB := newLedgerServiceForTest(t)
		defer closeDB()

		account := &model.Account{ID: 1, UserID: 1, Balance: dec("1000.00"), Currency: "SEK", Status: model.AccountActive}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, 1).Return(account, nil).Once()
		dbMock.ExpectRollback()

		_, err := ledger.ConvertAccountCurrency(ctx, 1, 1, "JPY")

		assert.Equal(t, ErrInvalidRate, err)
		mockAccountRepo.AssertNotCalled(t, "UpdateAccountCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
