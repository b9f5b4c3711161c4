package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// ExchangeRateRepository manages exchange rate history and per-currency
// defaults.
type ExchangeRateRepository struct {
	conn *Connection
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(conn *Connection) *ExchangeRateRepository {
	return &ExchangeRateRepository{conn: conn}
}

// Insert records a rate history row.
func (r *ExchangeRateRepository) Insert(rate model.ExchangeRate) (int64, error) {
	query := `
		INSERT INTO exchange_rates (currency, rate, date, is_default, source)
		VALUES (?, ?, ?, ?, ?)
	`

	flag := 0
	if rate.IsDefault {
		flag = 1
	}

	result, err := r.conn.Exec(query, rate.Currency, rate.Rate, millis(rate.Date), flag, string(rate.Source))
	if err != nil {
		return 0, fmt.Errorf("failed to insert exchange rate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get exchange rate id: %w", err)
	}

	return id, nil
}

// SetDefaultRate makes rate the single default for a currency. Clearing the
// previous default and inserting the new row happen in one SQL transaction,
// so readers never observe two defaults or none mid-change.
func (r *ExchangeRateRepository) SetDefaultRate(currency string, rate float64, date time.Time, source model.RateSource) error {
	return r.conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`UPDATE exchange_rates SET is_default = 0 WHERE currency = ? AND is_default = 1`,
			currency,
		); err != nil {
			return fmt.Errorf("failed to clear default rate: %w", err)
		}

		if _, err := tx.Exec(
			`INSERT INTO exchange_rates (currency, rate, date, is_default, source) VALUES (?, ?, ?, 1, ?)`,
			currency, rate, millis(date), string(source),
		); err != nil {
			return fmt.Errorf("failed to insert default rate: %w", err)
		}

		return nil
	})
}

// GetDefault retrieves the current default rate row for a currency.
// Returns nil without error when no default is set.
func (r *ExchangeRateRepository) GetDefault(currency string) (*model.ExchangeRate, error) {
	query := `
		SELECT id, currency, rate, date, is_default, source
		FROM exchange_rates
		WHERE currency = ? AND is_default = 1
		ORDER BY date DESC
		LIMIT 1
	`

	rate, err := scanRate(r.conn.QueryRow(query, currency))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default rate: %w", err)
	}

	return rate, nil
}

// GetDefaultRate returns the current default rate value for a currency.
// 0.0 is the "no default set" sentinel; callers must treat zero as absent.
// A legitimately-zero default is indistinguishable, which is accepted.
func (r *ExchangeRateRepository) GetDefaultRate(currency string) (float64, error) {
	rate, err := r.GetDefault(currency)
	if err != nil {
		return 0, err
	}
	if rate == nil {
		return 0, nil
	}
	return rate.Rate, nil
}

// History retrieves all rate rows for a currency, newest first.
func (r *ExchangeRateRepository) History(currency string) ([]model.ExchangeRate, error) {
	query := `
		SELECT id, currency, rate, date, is_default, source
		FROM exchange_rates
		WHERE currency = ?
		ORDER BY date DESC, id DESC
	`

	rows, err := r.conn.Query(query, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []model.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, *rate)
	}

	return rates, rows.Err()
}

// Currencies returns every currency that has at least one rate row.
func (r *ExchangeRateRepository) Currencies() ([]string, error) {
	rows, err := r.conn.Query(`SELECT DISTINCT currency FROM exchange_rates ORDER BY currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}

	return currencies, rows.Err()
}

func scanRate(row rowScanner) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	var date int64
	var flag int
	var source string

	if err := row.Scan(&rate.ID, &rate.Currency, &rate.Rate, &date, &flag, &source); err != nil {
		return nil, err
	}

	rate.Date = fromMillis(date)
	rate.IsDefault = flag == 1
	rate.Source = model.RateSource(source)
	return &rate, nil
}
