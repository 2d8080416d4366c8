// backend/src/storage/fx_store.go
package storage

import (
	"database/sql"
)

// SQLiteFxRateStore reads the fx_rates reference table. Pair keys are
// "{FROM}-{TO}", e.g. "JPY-USD".
type SQLiteFxRateStore struct {
	db *sql.DB
}

func NewSQLiteFxRateStore(db *sql.DB) *SQLiteFxRateStore {
	return &SQLiteFxRateStore{db: db}
}

func (s *SQLiteFxRateStore) GetRate(pair string) (float64, bool, error) {
	var rate float64
	err := s.db.QueryRow(`SELECT rate FROM fx_rates WHERE pair = ?`, pair).Scan(&rate)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}
