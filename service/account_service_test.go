package service

import (
	"encoding/json"
	"errors"
	"testing"

	"go-ledger-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAccountService_CreateNewAccount(t *testing.T) {
	t.Run("assigns the next account number and starts at zero balance", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		accountService := NewAccountService(mockRepo, newFakeCache())

		mockRepo.On("AccountNameExists", 1, "Savings").Return(false, nil).Once()
		mockRepo.On("GetLastAccountNumber").Return(int64(1000000005), nil).Once()
		mockRepo.On("CreateAccount", mock.AnythingOfType("*model.Account")).
			Run(func(args mock.Arguments) {
				account := args.Get(0).(*model.Account)
				account.ID = 3
			}).Return(nil).Once()

		account, err := accountService.CreateNewAccount(1, "Savings", "SEK")

		assert.NoError(t, err)
		assert.Equal(t, 3, account.ID)
		assert.Equal(t, int64(1000000006), account.AccountNumber)
		assert.Equal(t, "SEK", account.Currency)
		assert.Equal(t, model.AccountStandard, account.Kind)
		assert.True(t, account.Balance.IsZero())
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate name for the same user is rejected", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		accountService := NewAccountService(mockRepo, newFakeCache())

		mockRepo.On("AccountNameExists", 1, "Savings").Return(true, nil).Once()

		_, err := accountService.CreateNewAccount(1, "Savings", "SEK")

		assert.Equal(t, ErrDuplicateAccountName, err)
		mockRepo.AssertNotCalled(t, "CreateAccount", mock.Anything)
	})

	t.Run("creation drops the user's cached account list", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		cache := newFakeCache()
		cache.store["accounts:1"] = "[]"
		accountService := NewAccountService(mockRepo, cache)

		mockRepo.On("AccountNameExists", 1, "Savings").Return(false, nil).Once()
		mockRepo.On("GetLastAccountNumber").Return(int64(1000000000), nil).Once()
		mockRepo.On("CreateAccount", mock.Anything).Return(nil).Once()

		_, err := accountService.CreateNewAccount(1, "Savings", "SEK")

		assert.NoError(t, err)
		_, cached := cache.store["accounts:1"]
		assert.False(t, cached)
	})
}

func TestAccountService_ListAccountsForUser(t *testing.T) {
	t.Run("cache miss reads the repository and populates the cache", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		cache := newFakeCache()
		accountService := NewAccountService(mockRepo, cache)

		accounts := []*model.Account{{ID: 1, UserID: 1, Name: "Savings", Currency: "SEK"}}
		mockRepo.On("GetAccountsByUserID", 1).Return(accounts, nil).Once()

		got, err := accountService.ListAccountsForUser(1)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Contains(t, cache.store, "accounts:1")
		mockRepo.AssertExpectations(t)
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		cache := newFakeCache()

		accounts := []*model.Account{{ID: 1, UserID: 1, Name: "Savings", Currency: "SEK"}}
		data, err := json.Marshal(accounts)
		assert.NoError(t, err)
		cache.store["accounts:1"] = string(data)

		accountService := NewAccountService(mockRepo, cache)

		got, err := accountService.ListAccountsForUser(1)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Savings", got[0].Name)
		mockRepo.AssertNotCalled(t, "GetAccountsByUserID", mock.Anything)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		accountService := NewAccountService(mockRepo, newFakeCache())

		mockRepo.On("GetAccountsByUserID", 1).Return(nil, errors.New("db down")).Once()

		_, err := accountService.ListAccountsForUser(1)
		assert.Error(t, err)
	})
}

func TestAccountService_DeactivateAccount(t *testing.T) {
	t.Run("owner deactivates and the cache is invalidated", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		cache := newFakeCache()
		cache.store["accounts:1"] = "[]"
		accountService := NewAccountService(mockRepo, cache)

		account := &model.Account{ID: 2, UserID: 1, Status: model.AccountActive}
		mockRepo.On("GetAccountByID", 2).Return(account, nil).Once()
		mockRepo.On("DeactivateAccount", 2).Return(nil).Once()

		err := accountService.DeactivateAccount(1, 2)

		assert.NoError(t, err)
		_, cached := cache.store["accounts:1"]
		assert.False(t, cached)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		accountService := NewAccountService(mockRepo, newFakeCache())

		account := &model.Account{ID: 2, UserID: 99, Status: model.AccountActive}
		mockRepo.On("GetAccountByID", 2).Return(account, nil).Once()

		err := accountService.DeactivateAccount(1, 2)

		assert.Equal(t, ErrPermissionDenied, err)
		mockRepo.AssertNotCalled(t, "DeactivateAccount", mock.Anything)
	})
}
