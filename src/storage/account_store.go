// backend/src/storage/account_store.go
package storage

import (
	"database/sql"

	"github.com/username/atlasfolio/backend/src/models"
)

type SQLiteAccountStore struct {
	db *sql.DB
}

func NewSQLiteAccountStore(db *sql.DB) *SQLiteAccountStore {
	return &SQLiteAccountStore{db: db}
}

const accountColumns = `id, org_id, name, broker, currency, is_tax_advantaged,
	csv_ticker_column, csv_quantity_column, csv_cost_column`

func (s *SQLiteAccountStore) GetByID(id string) (*models.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	acc, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *SQLiteAccountStore) ListByOrg(orgID string) ([]models.Account, error) {
	rows, err := s.db.Query(`SELECT `+accountColumns+` FROM accounts WHERE org_id = ? ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		acc, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *acc)
	}
	return out, rows.Err()
}

func (s *SQLiteAccountStore) UpdateCsvMapping(accountID string, mapping *models.CsvMappingConfig) error {
	var ticker, quantity, cost sql.NullString
	if mapping != nil {
		ticker = sql.NullString{String: mapping.TickerColumn, Valid: mapping.TickerColumn != ""}
		quantity = sql.NullString{String: mapping.QuantityColumn, Valid: mapping.QuantityColumn != ""}
		cost = sql.NullString{String: mapping.CostColumn, Valid: mapping.CostColumn != ""}
	}
	_, err := s.db.Exec(`
		UPDATE accounts SET csv_ticker_column = ?, csv_quantity_column = ?, csv_cost_column = ?
		WHERE id = ?`, ticker, quantity, cost, accountID)
	return err
}

func scanAccount(scan func(dest ...any) error) (*models.Account, error) {
	var acc models.Account
	var ticker, quantity, cost sql.NullString
	if err := scan(
		&acc.ID, &acc.OrgID, &acc.Name, &acc.Broker, &acc.Currency, &acc.IsTaxAdvantaged,
		&ticker, &quantity, &cost,
	); err != nil {
		return nil, err
	}
	// The mapping is present only when both required columns are set.
	if ticker.Valid && quantity.Valid {
		acc.CsvMapping = &models.CsvMappingConfig{
			TickerColumn:   ticker.String,
			QuantityColumn: quantity.String,
			CostColumn:     cost.String,
		}
	}
	return &acc, nil
}
