// backend/src/storage/security_store.go
package storage

import (
	"database/sql"

	"github.com/username/atlasfolio/backend/src/models"
)

type SQLiteSecurityStore struct {
	db *sql.DB
}

func NewSQLiteSecurityStore(db *sql.DB) *SQLiteSecurityStore {
	return &SQLiteSecurityStore{db: db}
}

const securityColumns = `id, ticker, name, type, sector, industry, country, currency, current_price, last_updated`

func (s *SQLiteSecurityStore) GetByID(id string) (*models.Security, error) {
	row := s.db.QueryRow(`SELECT `+securityColumns+` FROM securities WHERE id = ?`, id)
	return scanSecurity(row)
}

func (s *SQLiteSecurityStore) GetByTicker(ticker string) (*models.Security, error) {
	row := s.db.QueryRow(`SELECT `+securityColumns+` FROM securities WHERE ticker = ?`, ticker)
	return scanSecurity(row)
}

func (s *SQLiteSecurityStore) Insert(sec models.Security) error {
	query := `
		INSERT INTO securities (id, ticker, name, type, sector, industry, country, currency, current_price, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		sec.ID, sec.Ticker, sec.Name, string(sec.Type), sec.Sector,
		sec.Industry, sec.Country, sec.Currency, sec.CurrentPrice, sec.LastUpdated)
	return err
}

// UpdatePrice is the only mutation on securities; reference fields are
// immutable after insert.
func (s *SQLiteSecurityStore) UpdatePrice(id string, price float64, asOf string) error {
	_, err := s.db.Exec(`UPDATE securities SET current_price = ?, last_updated = ? WHERE id = ?`,
		price, asOf, id)
	return err
}

func (s *SQLiteSecurityStore) ListAll() ([]models.Security, error) {
	rows, err := s.db.Query(`SELECT ` + securityColumns + ` FROM securities ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Security
	for rows.Next() {
		var sec models.Security
		if err := rows.Scan(
			&sec.ID, &sec.Ticker, &sec.Name, &sec.Type, &sec.Sector,
			&sec.Industry, &sec.Country, &sec.Currency, &sec.CurrentPrice, &sec.LastUpdated,
		); err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

func scanSecurity(row *sql.Row) (*models.Security, error) {
	var sec models.Security
	err := row.Scan(
		&sec.ID, &sec.Ticker, &sec.Name, &sec.Type, &sec.Sector,
		&sec.Industry, &sec.Country, &sec.Currency, &sec.CurrentPrice, &sec.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sec, nil
}
