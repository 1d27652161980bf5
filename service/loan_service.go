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
	ErrLoanDenied   = errors.New("loan denied: amount exceeds allowed eligibility")
	ErrLoanNotFound = errors.New("loan not found")
	ErrLoanClosed   = errors.New("loan is not pending")
)

// LoanService evaluates loan eligibility against the user's aggregate
// cross-currency net worth and issues loans. Issuing a loan writes the loan
// record and the disbursement credit in the same transaction.
type LoanService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	loanRepo        repository.ILoanRepository
	ledger          *LedgerService
	currency        *CurrencyService
	multiplier      decimal.Decimal
	defaultInterest decimal.Decimal
}

func NewLoanService(db *sql.DB, accountRepo repository.IAccountRepository, loanRepo repository.ILoanRepository,
	ledger *LedgerService, currency *CurrencyService, multiplier, defaultInterest decimal.Decimal) *LoanService {
	return &LoanService{
		db:              db,
		accountRepo:     accountRepo,
		loanRepo:        loanRepo,
		ledger:          ledger,
		currency:        currency,
		multiplier:      multiplier,
		defaultInterest: defaultInterest,
	}
}

// LoanAmountAllowed computes the maximum new-loan amount for a user in the
// reference currency:
//
//	max(((totalBalance - totalLoans) * multiplier) - totalLoans, 0)
//
// where totalBalance is the user's aggregate balance and totalLoans the sum
// of outstanding (pending) loan principals, both expressed in the reference
// currency. The result is rounded to 4 decimal places.
func (s *LoanService) LoanAmountAllowed(ctx context.Context, userID int, referenceCurrency string) (decimal.Decimal, error) {
	totalBalance, err := s.ledger.AggregateBalance(ctx, userID, referenceCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	loans, err := s.loanRepo.GetOutstandingLoansByUserID(userID)
	if err != nil {
		return decimal.Zero, err
	}

	totalLoans := decimal.Zero
	for _, loan := range loans {
		converted, err := s.currency.ConvertPrecise(ctx, loan.Amount, loan.Currency, referenceCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		totalLoans = totalLoans.Add(converted)
	}

	allowed := totalBalance.Sub(totalLoans).Mul(s.multiplier).Sub(totalLoans).Round(4)
	if allowed.IsNegative() {
		return decimal.Zero, nil
	}
	return allowed, nil
}

// CreateLoan issues a loan disbursed to one of the user's accounts. Denial is
// a normal business outcome (ErrLoanDenied) and mutates nothing. Approval
// inserts the pending loan record and credits the disbursement account as one
// transaction; neither write can be observed without the other.
func (s *LoanService) CreateLoan(ctx context.Context, userID int, req model.CreateLoanRequest) (*model.Loan, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": req.AccountID,
		"amount":     req.Amount.String(),
	})
	log.Info("Starting loan creation")

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	account, err := s.accountRepo.GetAccountByID(req.AccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if account.Status != model.AccountActive {
		return nil, ErrAccountInactive
	}

	allowed, err := s.LoanAmountAllowed(ctx, userID, account.Currency)
	if err != nil {
		return nil, err
	}
	if !allowed.IsPositive() || req.Amount.GreaterThan(allowed) {
		log.WithField("allowed", allowed.String()).Info("Loan denied by eligibility check")
		return nil, ErrLoanDenied
	}

	interestRate := s.defaultInterest
	if req.InterestRate != nil {
		interestRate = *req.InterestRate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan := &model.Loan{
		UserID:       userID,
		AccountID:    account.ID,
		Amount:       req.Amount.Round(2),
		Currency:     account.Currency,
		InterestRate: interestRate,
	}
	if err := s.loanRepo.CreateLoan(tx, loan); err != nil {
		return nil, fmt.Errorf("could not create loan record: %w", err)
	}

	if _, err := s.ledger.applyDeltaTx(tx, account.ID, loan.Amount); err != nil {
		return nil, fmt.Errorf("could not credit disbursement account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit loan creation: %w", err)
	}

	log.WithField("loan_id", loan.ID).Info("Loan issued")
	return loan, nil
}

// RepayLoan settles a pending loan: the principal is debited from the
// disbursement account and the loan moves to paid, in one transaction. The
// pending -> paid transition is one-way; settled loans stay settled.
func (s *LoanService) RepayLoan(ctx context.Context, userID, loanID int) (*model.Loan, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"loan_id": loanID,
	})
	log.Info("Starting loan repayment")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetLoanForUpdate(tx, loanID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if loan.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if loan.Status != model.LoanPending {
		return nil, ErrLoanClosed
	}

	if _, err := s.ledger.applyDeltaTx(tx, loan.AccountID, loan.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("could not debit repayment: %w", err)
	}

	if err := s.loanRepo.UpdateLoanStatus(tx, loan.ID, model.LoanPaid); err != nil {
		return nil, fmt.Errorf("could not update loan status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit loan repayment: %w", err)
	}

	loan.Status = model.LoanPaid
	log.Info("Loan repaid")
	return loan, nil
}

// MarkLoanDefaulted moves a pending loan to default without touching
// balances. For administrative use.
func (s *LoanService) MarkLoanDefaulted(ctx context.Context, loanID int) (*model.Loan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetLoanForUpdate(tx, loanID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, ErrLoanClosed
	}

	if err := s.loanRepo.UpdateLoanStatus(tx, loan.ID, model.LoanDefault); err != nil {
		return nil, fmt.Errorf("could not update loan status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit loan default: %w", err)
	}

	loan.Status = model.LoanDefault
	logger.Log.WithField("loan_id", loan.ID).Warn("Loan marked as defaulted")
	return loan, nil
}

// ListLoansForUser retrieves all loans belonging to the user.
func (s *LoanService) ListLoansForUser(ctx context.Context, userID int) ([]*model.Loan, error) {
	return s.loanRepo.GetLoansByUserID(userID)
}
