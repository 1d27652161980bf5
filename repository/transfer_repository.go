package repository

import (
	"database/sql"
	"go-ledger-api/logger"
	"go-ledger-api/model"

	"github.com/sirupsen/logrus"
)

// ITransferRepository defines the contract for transfer database operations.
type ITransferRepository interface {
	CreateTransfer(tx *sql.Tx, transfer *model.Transfer) error
	GetTransferForUpdate(tx *sql.Tx, transferID int) (*model.Transfer, error)
	MarkTransferProcessed(tx *sql.Tx, transferID int) error
	GetTransfersByAccountID(accountID int) ([]*model.Transfer, error)
}

// TransferRepository implements ITransferRepository.
type TransferRepository struct {
	DB *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{DB: db}
}

// CreateTransfer inserts the pending transfer row inside the caller's
// transaction, so the sender debit and the pending record commit together.
func (r *TransferRepository) CreateTransfer(tx *sql.Tx, transfer *model.Transfer) error {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": transfer.FromAccountID,
		"to_account_id":   transfer.ToAccountID,
		"amount":          transfer.Amount.String(),
	})
	log.Info("Executing query to create a new transfer")

	query := `INSERT INTO transfers (from_account_id, to_account_id, amount) VALUES ($1, $2, $3) RETURNING id, processed, created_at`
	err := tx.QueryRow(query, transfer.FromAccountID, transfer.ToAccountID, transfer.Amount).
		Scan(&transfer.ID, &transfer.Processed, &transfer.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transfer query")
		return err
	}
	return nil
}

// GetTransferForUpdate locks the transfer row so the processed flag can be
// checked and set without racing a concurrent process call.
func (r *TransferRepository) GetTransferForUpdate(tx *sql.Tx, transferID int) (*model.Transfer, error) {
	log := logger.Log.WithField("transfer_id", transferID)
	log.Info("Executing query to get transfer for update")

	transfer := &model.Transfer{}
	query := `SELECT id, from_account_id, to_account_id, amount, processed, created_at FROM transfers WHERE id = $1 FOR UPDATE`
	err := tx.QueryRow(query, transferID).
		Scan(&transfer.ID, &transfer.FromAccountID, &transfer.ToAccountID, &transfer.Amount, &transfer.Processed, &transfer.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Transfer not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get transfer for update query")
		}
		return nil, err
	}
	return transfer, nil
}

// MarkTransferProcessed flips the processed flag. The transition is one-way;
// rows are never reset to pending.
func (r *TransferRepository) MarkTransferProcessed(tx *sql.Tx, transferID int) error {
	log := logger.Log.WithField("transfer_id", transferID)
	log.Info("Executing query to mark transfer processed")

	query := `UPDATE transfers SET processed = TRUE WHERE id = $1`
	_, err := tx.Exec(query, transferID)
	if err != nil {
		log.WithError(err).Error("Failed to execute mark transfer processed query")
		return err
	}
	return nil
}

// GetTransfersByAccountID retrieves all transfers touching a specific account.
func (r *TransferRepository) GetTransfersByAccountID(accountID int) ([]*model.Transfer, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get transfers by account ID")

	query := `
		SELECT id, from_account_id, to_account_id, amount, processed, created_at
		FROM transfers
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transfers by account ID")
		return nil, err
	}
	defer rows.Close()

	var transfers []*model.Transfer
	for rows.Next() {
		var t model.Transfer
		if err := rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount, &t.Processed, &t.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan transfer row")
			return nil, err
		}
		transfers = append(transfers, &t)
	}

	return transfers, rows.Err()
}
