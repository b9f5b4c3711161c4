// Package model defines the core ledger entities: partners, exchange
// transactions, exchange rates and their shared value types.
package model

import (
	"strings"
	"time"
)

// Currency codes used by the ledger. TZS is the base currency; every
// transaction records TZS received against a foreign amount given.
const (
	CurrencyTZS  = "TZS"
	CurrencyCNY  = "CNY"
	CurrencyUSDT = "USDT"
)

// PartnerState represents the lifecycle state of a partner.
type PartnerState string

const (
	PartnerActive  PartnerState = "active"
	PartnerDeleted PartnerState = "deleted"
)

// RateSource records where an exchange rate row came from.
type RateSource string

const (
	RateSourceUser RateSource = "user"
	RateSourceSeed RateSource = "seed"
)

// Partner is a counterparty in the exchange ledger.
// Partners are soft-deleted: a deleted partner keeps its row and its
// transactions until explicitly purged.
type Partner struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	State     PartnerState
	Notes     string
}

// IsActive reports whether the partner is in the active state.
func (p Partner) IsActive() bool {
	return p.State == PartnerActive
}

// Transaction records a single exchange: TZS received against a foreign
// amount given at a rate. NetTzs and NetForeign are derived fields,
// recomputed from the other inputs on every create and update.
type Transaction struct {
	ID              int64
	PartnerID       int64
	Date            time.Time
	TzsReceived     float64
	ForeignGiven    float64
	ForeignCurrency string
	ExchangeRate    float64
	NetTzs          float64
	NetForeign      float64
	Notes           string
	CreatedAt       time.Time
	LastModified    time.Time
}

// ExchangeRate is one row of rate history for a currency. At most one row
// per currency carries the default flag at a time.
type ExchangeRate struct {
	ID        int64
	Currency  string
	Rate      float64
	Date      time.Time
	IsDefault bool
	Source    RateSource
}

// PartnerSummary holds the aggregate net positions of a single partner.
type PartnerSummary struct {
	NetTzs       float64
	NetCny       float64
	NetUsdt      float64
	Transactions int
}

// NormalizeName canonicalizes a partner name for comparison: leading and
// trailing whitespace is trimmed and the result is lower-cased. The function
// is idempotent, so it is safe to apply at every comparison site.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName reports whether two partner names are equal under normalization.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
