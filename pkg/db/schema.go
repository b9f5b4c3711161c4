// Package db provides the SQLite store for partners, transactions and
// exchange rates, plus a small independent key-value settings store.
package db

// Schema defines the SQL statements to create the ledger tables.
// All timestamp columns hold epoch milliseconds.
const Schema = `
-- Partners (counterparties)
-- Soft delete: is_active=0 keeps the row and its transactions.
CREATE TABLE IF NOT EXISTS partners (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_partners_active
    ON partners(is_active, name);

-- Exchange transactions
-- net_tzs/net_foreign are derived from the other amount columns and are
-- rewritten on every insert/update; they are never authoritative inputs.
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    partner_id INTEGER NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
    date INTEGER NOT NULL,
    tzs_received REAL NOT NULL,
    foreign_given REAL NOT NULL,
    foreign_currency TEXT NOT NULL,
    exchange_rate REAL NOT NULL,
    net_tzs REAL NOT NULL,
    net_foreign REAL NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    last_modified INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_partner_date
    ON transactions(partner_id, date);

-- Exchange rate history
-- At most one row per currency has is_default=1; SetDefaultRate enforces
-- this inside a single SQL transaction.
CREATE TABLE IF NOT EXISTS exchange_rates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    currency TEXT NOT NULL,
    rate REAL NOT NULL,
    date INTEGER NOT NULL,
    is_default INTEGER NOT NULL DEFAULT 0,
    source TEXT NOT NULL DEFAULT 'user'
);

CREATE INDEX IF NOT EXISTS idx_exchange_rates_default
    ON exchange_rates(currency, is_default);
`

// InitializeSchema creates the ledger tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
