package repository

import (
	"database/sql"
	"go-ledger-api/logger"
	"go-ledger-api/model"

	"github.com/sirupsen/logrus"
)

// ILoanRepository defines the contract for loan database operations.
type ILoanRepository interface {
	CreateLoan(tx *sql.Tx, loan *model.Loan) error
	GetLoanForUpdate(tx *sql.Tx, loanID int) (*model.Loan, error)
	UpdateLoanStatus(tx *sql.Tx, loanID int, status model.LoanStatus) error
	GetLoansByUserID(userID int) ([]*model.Loan, error)
	GetOutstandingLoansByUserID(userID int) ([]*model.Loan, error)
}

// LoanRepository implements ILoanRepository.
type LoanRepository struct {
	DB *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{DB: db}
}

const loanColumns = `id, user_id, account_id, amount, currency, interest_rate, status, issued_at, due_date`

// CreateLoan inserts the loan row inside the caller's transaction so the loan
// record and the disbursement credit commit together.
func (r *LoanRepository) CreateLoan(tx *sql.Tx, loan *model.Loan) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    loan.UserID,
		"account_id": loan.AccountID,
		"amount":     loan.Amount.String(),
		"currency":   loan.Currency,
	})
	log.Info("Executing query to create a new loan")

	query := `INSERT INTO loans (user_id, account_id, amount, currency, interest_rate, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, issued_at`
	err := tx.QueryRow(query, loan.UserID, loan.AccountID, loan.Amount, loan.Currency, loan.InterestRate, loan.DueDate).
		Scan(&loan.ID, &loan.Status, &loan.IssuedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create loan query")
		return err
	}
	return nil
}

// GetLoanForUpdate locks the loan row for a status transition.
func (r *LoanRepository) GetLoanForUpdate(tx *sql.Tx, loanID int) (*model.Loan, error) {
	log := logger.Log.WithField("loan_id", loanID)
	log.Info("Executing query to get loan for update")

	loan := &model.Loan{}
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	err := tx.QueryRow(query, loanID).
		Scan(&loan.ID, &loan.UserID, &loan.AccountID, &loan.Amount, &loan.Currency,
			&loan.InterestRate, &loan.Status, &loan.IssuedAt, &loan.DueDate)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Loan not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get loan for update query")
		}
		return nil, err
	}
	return loan, nil
}

// UpdateLoanStatus persists a loan status transition.
func (r *LoanRepository) UpdateLoanStatus(tx *sql.Tx, loanID int, status model.LoanStatus) error {
	log := logger.Log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"status":  status,
	})
	log.Info("Executing query to update loan status")

	query := `UPDATE loans SET status = $1 WHERE id = $2`
	_, err := tx.Exec(query, status, loanID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update loan status query")
		return err
	}
	return nil
}

// GetLoansByUserID retrieves all loans for a specific user.
func (r *LoanRepository) GetLoansByUserID(userID int) ([]*model.Loan, error) {
	return r.loansByUser(userID, false)
}

// GetOutstandingLoansByUserID retrieves only loans still counted against the
// user's eligibility, i.e. those with status pending.
func (r *LoanRepository) GetOutstandingLoansByUserID(userID int) ([]*model.Loan, error) {
	return r.loansByUser(userID, true)
}

func (r *LoanRepository) loansByUser(userID int, outstandingOnly bool) ([]*model.Loan, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get loans by user ID")

	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1`
	if outstandingOnly {
		query += ` AND status = 'pending'`
	}
	query += ` ORDER BY issued_at DESC`

	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for loans by user ID")
		return nil, err
	}
	defer rows.Close()

	var loans []*model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.UserID, &l.AccountID, &l.Amount, &l.Currency,
			&l.InterestRate, &l.Status, &l.IssuedAt, &l.DueDate); err != nil {
			log.WithError(err).Error("Failed to scan loan row")
			return nil, err
		}
		loans = append(loans, &l)
	}

	return loans, rows.Err()
}
