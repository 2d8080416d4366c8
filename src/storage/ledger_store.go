// backend/src/storage/ledger_store.go
package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/username/atlasfolio/backend/src/models"
)

// SQLiteLedgerStore persists the append-only transaction ledger. There is
// deliberately no UPDATE or DELETE statement in this file; corrections are
// modeled as new ADJUST rows.
type SQLiteLedgerStore struct {
	db *sql.DB
}

func NewSQLiteLedgerStore(db *sql.DB) *SQLiteLedgerStore {
	return &SQLiteLedgerStore{db: db}
}

func (s *SQLiteLedgerStore) Append(tx models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, security_id, type, quantity, price, date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		tx.ID, tx.AccountID, tx.SecurityID, string(tx.Type),
		tx.Quantity, tx.Price, tx.Date, tx.Note, time.Now())
	return err
}

func (s *SQLiteLedgerStore) ListByAccount(accountID string) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, security_id, type, quantity, price, date, note
		FROM transactions WHERE account_id = ? ORDER BY date, created_at`
	rows, err := s.db.Query(query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *SQLiteLedgerStore) ListByAccounts(accountIDs []string) ([]models.Transaction, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	// IN clause with one placeholder per id, batch lookups in one query.
	query := `
		SELECT id, account_id, security_id, type, quantity, price, date, note
		FROM transactions WHERE account_id IN (?` + strings.Repeat(",?", len(accountIDs)-1) + `)
		ORDER BY date, created_at`
	args := make([]interface{}, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var note sql.NullString
		if err := rows.Scan(
			&tx.ID, &tx.AccountID, &tx.SecurityID, &tx.Type,
			&tx.Quantity, &tx.Price, &tx.Date, &note,
		); err != nil {
			return nil, err
		}
		tx.Note = note.String
		out = append(out, tx)
	}
	return out, rows.Err()
}
