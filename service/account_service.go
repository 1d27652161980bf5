package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-ledger-api/model"
	"go-ledger-api/repository"
)

var ErrDuplicateAccountName = errors.New("an account with that name already exists")

// AccountService handles account lifecycle: creation, listing (with a
// cache-aside Redis cache), and deactivation. Accounts are never deleted.
type AccountService struct {
	repo  repository.IAccountRepository
	cache ICacheClient
}

func NewAccountService(repo repository.IAccountRepository, cache ICacheClient) *AccountService {
	return &AccountService{
		repo:  repo,
		cache: cache,
	}
}

// CreateNewAccount creates a new account with a zero balance. The display
// name must be unique among the user's accounts.
func (s *AccountService) CreateNewAccount(userID int, name, currency string) (*model.Account, error) {
	exists, err := s.repo.AccountNameExists(userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccountName
	}

	lastAccountNumber, err := s.repo.GetLastAccountNumber()
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		UserID:        userID,
		AccountNumber: lastAccountNumber + 1,
		Name:          name,
		Currency:      currency,
		Kind:          model.AccountStandard,
	}

	if err := s.repo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.invalidateUserCache(userID)
	return account, nil
}

// ListAccountsForUser lists accounts for a specific user, utilizing a
// cache-aside strategy.
func (s *AccountService) ListAccountsForUser(userID int) ([]*model.Account, error) {
	cacheKey := accountsCacheKey(userID)
	ctx := context.Background()

	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err == nil {
		var accounts []*model.Account
		if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
			return accounts, nil
		}
	}

	accounts, err := s.repo.GetAccountsByUserID(userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(accounts); err == nil {
		s.cache.Set(ctx, cacheKey, data, 10*time.Minute)
	}

	return accounts, nil
}

// GetAllAccounts retrieves all accounts. Caching is not applied here as admin
// data may need to be fresh.
func (s *AccountService) GetAllAccounts() ([]*model.Account, error) {
	return s.repo.GetAllAccounts()
}

// DeactivateAccount marks an account inactive. Inactive accounts refuse
// transfers and loan disbursements but keep their balance and history.
func (s *AccountService) DeactivateAccount(userID, accountID int) error {
	account, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAccountNotFound
		}
		return err
	}
	if account.UserID != userID {
		return ErrPermissionDenied
	}

	if err := s.repo.DeactivateAccount(accountID); err != nil {
		return err
	}

	s.invalidateUserCache(userID)
	return nil
}

func (s *AccountService) invalidateUserCache(userID int) {
	s.cache.Del(context.Background(), accountsCacheKey(userID))
}

func accountsCacheKey(userID int) string {
	return fmt.Sprintf("accounts:%d", userID)
}
