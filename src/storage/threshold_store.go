// backend/src/storage/threshold_store.go
package storage

import (
	"database/sql"

	"github.com/username/atlasfolio/backend/src/models"
)

type SQLiteThresholdStore struct {
	db *sql.DB
}

func NewSQLiteThresholdStore(db *sql.DB) *SQLiteThresholdStore {
	return &SQLiteThresholdStore{db: db}
}

// Get returns nil when the organization has no stored thresholds; callers
// fall back to the configured defaults.
func (s *SQLiteThresholdStore) Get(orgID string) (*models.RiskThresholdConfig, error) {
	var cfg models.RiskThresholdConfig
	err := s.db.QueryRow(`
		SELECT concentration_limit, sector_limit, min_cash_weight
		FROM risk_thresholds WHERE org_id = ?`, orgID).
		Scan(&cfg.ConcentrationLimit, &cfg.SectorLimit, &cfg.MinCashWeight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *SQLiteThresholdStore) Put(orgID string, cfg models.RiskThresholdConfig) error {
	query := `
		INSERT INTO risk_thresholds (org_id, concentration_limit, sector_limit, min_cash_weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			concentration_limit = excluded.concentration_limit,
			sector_limit = excluded.sector_limit,
			min_cash_weight = excluded.min_cash_weight`
	_, err := s.db.Exec(query, orgID, cfg.ConcentrationLimit, cfg.SectorLimit, cfg.MinCashWeight)
	return err
}
