package db

import (
	"database/sql"
	"fmt"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// TransactionRepository manages exchange transaction rows.
type TransactionRepository struct {
	conn *Connection
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(conn *Connection) *TransactionRepository {
	return &TransactionRepository{conn: conn}
}

const transactionColumns = `
	id, partner_id, date, tzs_received, foreign_given, foreign_currency,
	exchange_rate, net_tzs, net_foreign, notes, created_at, last_modified
`

// Create inserts a transaction and returns its assigned id.
func (r *TransactionRepository) Create(t model.Transaction) (int64, error) {
	query := `
		INSERT INTO transactions (
			partner_id, date, tzs_received, foreign_given, foreign_currency,
			exchange_rate, net_tzs, net_foreign, notes, created_at, last_modified
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.conn.Exec(query,
		t.PartnerID,
		millis(t.Date),
		t.TzsReceived,
		t.ForeignGiven,
		t.ForeignCurrency,
		t.ExchangeRate,
		t.NetTzs,
		t.NetForeign,
		t.Notes,
		millis(t.CreatedAt),
		millis(t.LastModified),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}

	return id, nil
}

// Get retrieves a transaction by id. Returns nil without error when missing.
func (r *TransactionRepository) Get(id int64) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	t, err := scanTransaction(r.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// Update rewrites a transaction row.
func (r *TransactionRepository) Update(t model.Transaction) error {
	query := `
		UPDATE transactions
		SET partner_id = ?, date = ?, tzs_received = ?, foreign_given = ?,
			foreign_currency = ?, exchange_rate = ?, net_tzs = ?, net_foreign = ?,
			notes = ?, last_modified = ?
		WHERE id = ?
	`

	result, err := r.conn.Exec(query,
		t.PartnerID,
		millis(t.Date),
		t.TzsReceived,
		t.ForeignGiven,
		t.ForeignCurrency,
		t.ExchangeRate,
		t.NetTzs,
		t.NetForeign,
		t.Notes,
		millis(t.LastModified),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
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

// Delete removes a transaction.
func (r *TransactionRepository) Delete(id int64) (bool, error) {
	result, err := r.conn.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// DeleteByPartner removes all transactions of a partner and returns how many
// rows went. This is the explicit cascade routine used when purging.
func (r *TransactionRepository) DeleteByPartner(partnerID int64) (int64, error) {
	result, err := r.conn.Exec(`DELETE FROM transactions WHERE partner_id = ?`, partnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete partner transactions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// ListByPartner retrieves all transactions of a partner, oldest first.
func (r *TransactionRepository) ListByPartner(partnerID int64) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE partner_id = ?
		ORDER BY date, id
	`
	return r.list(query, partnerID)
}

// ListByPartnerInRange retrieves a partner's transactions whose date falls
// in [startMillis, endMillis], oldest first. Callers are responsible for
// normalizing the bounds to full-day boundaries.
func (r *TransactionRepository) ListByPartnerInRange(partnerID, startMillis, endMillis int64) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE partner_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id
	`
	return r.list(query, partnerID, startMillis, endMillis)
}

// SummarizePartner computes a partner's aggregate net positions in SQL.
func (r *TransactionRepository) SummarizePartner(partnerID int64) (model.PartnerSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(net_tzs), 0),
			COALESCE(SUM(CASE WHEN foreign_currency = 'CNY' THEN net_foreign ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN foreign_currency = 'USDT' THEN net_foreign ELSE 0 END), 0),
			COUNT(*)
		FROM transactions
		WHERE partner_id = ?
	`

	var s model.PartnerSummary
	err := r.conn.QueryRow(query, partnerID).Scan(&s.NetTzs, &s.NetCny, &s.NetUsdt, &s.Transactions)
	if err != nil {
		return model.PartnerSummary{}, fmt.Errorf("failed to summarize partner: %w", err)
	}

	return s, nil
}

// Count returns the total number of transactions in the store.
func (r *TransactionRepository) Count() (int, error) {
	var count int
	if err := r.conn.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) list(query string, args ...interface{}) ([]model.Transaction, error) {
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}

	return txns, rows.Err()
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var t model.Transaction
	var date, createdAt, lastModified int64

	if err := row.Scan(
		&t.ID,
		&t.PartnerID,
		&date,
		&t.TzsReceived,
		&t.ForeignGiven,
		&t.ForeignCurrency,
		&t.ExchangeRate,
		&t.NetTzs,
		&t.NetForeign,
		&t.Notes,
		&createdAt,
		&lastModified,
	); err != nil {
		return nil, err
	}

	t.Date = fromMillis(date)
	t.CreatedAt = fromMillis(createdAt)
	t.LastModified = fromMillis(lastModified)
	return &t, nil
}
