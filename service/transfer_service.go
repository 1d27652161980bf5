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

var (
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrSameAccountTransfer     = errors.New("cannot transfer money to the same account")
	ErrPermissionDenied        = errors.New("you can only operate on your own account")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrAccountInactive         = errors.New("account is inactive")
	ErrTransferNotFound        = errors.New("transfer not found")
	ErrAlreadyProcessed        = errors.New("transfer already processed")
)

// TransferService runs the two-phase transfer protocol: InitiateTransfer
// debits the sender and records a pending transfer in one transaction;
// ProcessTransfer credits the receiver and marks the transfer processed in
// another. A transfer whose sender is debited but whose receiver is not yet
// credited is visible as a row with processed=false.
type TransferService struct {
	db             *sql.DB
	accountRepo    repository.IAccountRepository
	transferRepo   repository.ITransferRepository
	ledger         *LedgerService
	currency       *CurrencyService
	allowOverdraft bool
}

func NewTransferService(db *sql.DB, accountRepo repository.IAccountRepository, transferRepo repository.ITransferRepository,
	ledger *LedgerService, currency *CurrencyService, allowOverdraft bool) *TransferService {
	return &TransferService{
		db:             db,
		accountRepo:    accountRepo,
		transferRepo:   transferRepo,
		ledger:         ledger,
		currency:       currency,
		allowOverdraft: allowOverdraft,
	}
}

// TransferRequest defines the structure for initiating a transfer. The amount
// is expressed in the sender account's currency.
type TransferRequest struct {
	FromAccountID int             `json:"from_account_id" validate:"required"`
	ToAccountID   int             `json:"to_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
}

// InitiateTransfer debits the sender and records the pending transfer. Both
// writes happen in one transaction: if the transfer row cannot be persisted
// the debit rolls back with it, so a debit without a matching pending record
// cannot be observed.
func (s *TransferService) InitiateTransfer(ctx context.Context, userID int, req TransferRequest) (*model.Transfer, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": req.FromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount.String(),
		"user_id":         userID,
	})
	log.Info("Starting transfer initiation")

	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	sender, err := s.accountRepo.GetAccountForUpdate(tx, req.FromAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSenderAccountNotFound
		}
		return nil, err
	}
	if sender.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if sender.Status != model.AccountActive {
		return nil, ErrAccountInactive
	}

	receiver, err := s.accountRepo.GetAccountByID(req.ToAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiverAccountNotFound
		}
		return nil, err
	}
	if receiver.Status != model.AccountActive {
		return nil, ErrAccountInactive
	}

	// The source system always debits unconditionally, allowing negative
	// balances. That behavior is kept as the default; the funds check only
	// runs when overdrafts are disabled in configuration.
	if !s.allowOverdraft && sender.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	if _, err := s.ledger.applyDeltaTx(tx, sender.ID, req.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("could not debit sender: %w", err)
	}

	transfer := &model.Transfer{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
	}
	if err := s.transferRepo.CreateTransfer(tx, transfer); err != nil {
		return nil, fmt.Errorf("could not create transfer record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transfer initiation: %w", err)
	}

	log.WithField("transfer_id", transfer.ID).Info("Transfer initiated")
	return transfer, nil
}

// ProcessTransfer credits the receiver of a pending transfer and marks it
// processed. The transfer row is locked and the processed flag checked under
// that lock, so retries and concurrent calls cannot credit twice: the second
// caller sees ErrAlreadyProcessed and no balance changes.
func (s *TransferService) ProcessTransfer(ctx context.Context, transferID int) (*model.Transfer, error) {
	log := logger.Log.WithField("transfer_id", transferID)
	log.Info("Starting transfer processing")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	transfer, err := s.transferRepo.GetTransferForUpdate(tx, transferID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	if transfer.Processed {
		return nil, ErrAlreadyProcessed
	}

	sender, err := s.accountRepo.GetAccountByID(transfer.FromAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSenderAccountNotFound
		}
		return nil, err
	}

	receiver, err := s.accountRepo.GetAccountByID(transfer.ToAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiverAccountNotFound
		}
		return nil, err
	}

	// The recorded amount is in the sender's currency; the credit is
	// converted into the receiver's currency so no money is created or
	// destroyed across currencies.
	credit, err := s.currency.Convert(ctx, transfer.Amount, sender.Currency, receiver.Currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.applyDeltaTx(tx, receiver.ID, credit); err != nil {
		return nil, fmt.Errorf("could not credit receiver: %w", err)
	}

	if err := s.transferRepo.MarkTransferProcessed(tx, transfer.ID); err != nil {
		return nil, fmt.Errorf("could not mark transfer processed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transfer processing: %w", err)
	}

	transfer.Processed = true
	log.Info("Transfer processed")
	return transfer, nil
}

// ListTransfersForAccount retrieves the transfer history for an account owned
// by the requesting user.
func (s *TransferService) ListTransfersForAccount(ctx context.Context, userID, accountID int) ([]*model.Transfer, error) {
	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if account.UserID != userID {
		logger.Log.WithFields(logrus.Fields{
			"requesting_user_id": userID,
			"target_account_id":  accountID,
		}).Warn("Permission denied for accessing account's transfer history")
		return nil, ErrPermissionDenied
	}

	return s.transferRepo.GetTransfersByAccountID(accountID)
}
