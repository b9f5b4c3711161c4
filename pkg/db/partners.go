package db

import (
	"database/sql"
	"fmt"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// PartnerRepository manages partner rows.
type PartnerRepository struct {
	conn *Connection
}

// NewPartnerRepository creates a new PartnerRepository.
func NewPartnerRepository(conn *Connection) *PartnerRepository {
	return &PartnerRepository{conn: conn}
}

// Create inserts a partner and returns its assigned id.
func (r *PartnerRepository) Create(p model.Partner) (int64, error) {
	query := `
		INSERT INTO partners (name, created_at, is_active, notes)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.conn.Exec(query, p.Name, millis(p.CreatedAt), stateToFlag(p.State), p.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to create partner: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get partner id: %w", err)
	}

	return id, nil
}

// Get retrieves a partner by id. Returns nil without error when no row exists.
func (r *PartnerRepository) Get(id int64) (*model.Partner, error) {
	query := `
		SELECT id, name, created_at, is_active, notes
		FROM partners
		WHERE id = ?
	`

	p, err := scanPartner(r.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return p, nil
}

// Update rewrites a partner's mutable fields (name, active flag, notes).
func (r *PartnerRepository) Update(p model.Partner) error {
	query := `
		UPDATE partners
		SET name = ?, is_active = ?, notes = ?
		WHERE id = ?
	`

	result, err := r.conn.Exec(query, p.Name, stateToFlag(p.State), p.Notes, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListActive retrieves all active partners ordered by name.
func (r *PartnerRepository) ListActive() ([]model.Partner, error) {
	return r.list(`
		SELECT id, name, created_at, is_active, notes
		FROM partners
		WHERE is_active = 1
		ORDER BY name COLLATE NOCASE
	`)
}

// ListAll retrieves every partner, deleted ones included.
func (r *PartnerRepository) ListAll() ([]model.Partner, error) {
	return r.list(`
		SELECT id, name, created_at, is_active, notes
		FROM partners
		ORDER BY name COLLATE NOCASE
	`)
}

// FindActiveByName finds an active partner whose name matches under
// normalization (trim + case-fold). Returns nil when there is no match.
// Matching happens in Go so it stays byte-for-byte consistent with
// model.NormalizeName everywhere the ledger compares names.
func (r *PartnerRepository) FindActiveByName(name string) (*model.Partner, error) {
	partners, err := r.ListActive()
	if err != nil {
		return nil, err
	}

	want := model.NormalizeName(name)
	for i := range partners {
		if model.NormalizeName(partners[i].Name) == want {
			return &partners[i], nil
		}
	}

	return nil, nil
}

// SetActive flips a partner's active flag.
func (r *PartnerRepository) SetActive(id int64, active bool) error {
	flag := 0
	if active {
		flag = 1
	}

	result, err := r.conn.Exec(`UPDATE partners SET is_active = ? WHERE id = ?`, flag, id)
	if err != nil {
		return fmt.Errorf("failed to set partner active flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete removes a partner row permanently. Callers are expected to cascade
// the partner's transactions first; the foreign key remains as a backstop.
func (r *PartnerRepository) Delete(id int64) (bool, error) {
	result, err := r.conn.Exec(`DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete partner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *PartnerRepository) list(query string) ([]model.Partner, error) {
	rows, err := r.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, *p)
	}

	return partners, rows.Err()
}

// rowScanner lets scanPartner work on both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPartner(row rowScanner) (*model.Partner, error) {
	var p model.Partner
	var createdAt int64
	var active int

	if err := row.Scan(&p.ID, &p.Name, &createdAt, &active, &p.Notes); err != nil {
		return nil, err
	}

	p.CreatedAt = fromMillis(createdAt)
	p.State = flagToState(active)
	return &p, nil
}

func stateToFlag(s model.PartnerState) int {
	if s == model.PartnerDeleted {
		return 0
	}
	return 1
}

func flagToState(flag int) model.PartnerState {
	if flag == 0 {
		return model.PartnerDeleted
	}
	return model.PartnerActive
}
