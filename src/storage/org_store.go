// backend/src/storage/org_store.go
package storage

import (
	"database/sql"

	"github.com/username/atlasfolio/backend/src/models"
)

type SQLiteOrganizationStore struct {
	db *sql.DB
}

func NewSQLiteOrganizationStore(db *sql.DB) *SQLiteOrganizationStore {
	return &SQLiteOrganizationStore{db: db}
}

func (s *SQLiteOrganizationStore) List() ([]models.Organization, error) {
	rows, err := s.db.Query(`SELECT id, name, base_currency FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.BaseCurrency); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (s *SQLiteOrganizationStore) GetByID(id string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRow(`SELECT id, name, base_currency FROM organizations WHERE id = ?`, id).
		Scan(&org.ID, &org.Name, &org.BaseCurrency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *SQLiteOrganizationStore) ListMembers(orgID string) ([]models.Member, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, org_id, name, email, role, joined_at
		FROM members WHERE org_id = ? ORDER BY joined_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
