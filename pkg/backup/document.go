// Package backup serializes the ledger to a portable JSON document and
// merges such documents back into a live store. Partner references travel by
// name, not id, so documents survive moves between store instances.
package backup

// FormatVersion is the current backup document format version.
const FormatVersion = 1

// Document is the portable, name-keyed snapshot of the ledger.
// All timestamps are epoch milliseconds.
type Document struct {
	Metadata      Metadata            `json:"metadata"`
	Partners      []PartnerRecord     `json:"partners"`
	Transactions  []TransactionRecord `json:"transactions"`
	ExchangeRates []RateRecord        `json:"exchangeRates"`
}

// Metadata describes a backup document.
type Metadata struct {
	Version            int    `json:"version"`
	ExportDate         int64  `json:"exportDate"`
	AppVersion         string `json:"appVersion"`
	TotalPartners      int    `json:"totalPartners"`
	TotalTransactions  int    `json:"totalTransactions"`
	TotalExchangeRates int    `json:"totalExchangeRates"`
	DeviceInfo         string `json:"deviceInfo"`
}

// PartnerRecord is a denormalized partner entry, keyed by name.
type PartnerRecord struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	IsActive  bool   `json:"isActive"`
	Notes     string `json:"notes"`
}

// TransactionRecord is a denormalized transaction entry referencing its
// partner by name.
type TransactionRecord struct {
	PartnerName     string  `json:"partnerName"`
	Date            int64   `json:"date"`
	TzsReceived     float64 `json:"tzsReceived"`
	ForeignGiven    float64 `json:"foreignGiven"`
	ForeignCurrency string  `json:"foreignCurrency"`
	ExchangeRate    float64 `json:"exchangeRate"`
	NetTzs          float64 `json:"netTzs"`
	NetForeign      float64 `json:"netForeign"`
	Notes           string  `json:"notes"`
	CreatedAt       int64   `json:"createdAt"`
	LastModified    int64   `json:"lastModified"`
}

// RateRecord is a denormalized exchange rate entry.
type RateRecord struct {
	Currency  string  `json:"currency"`
	Rate      float64 `json:"rate"`
	Date      int64   `json:"date"`
	IsDefault bool    `json:"isDefault"`
	Source    string  `json:"source"`
}

// Result aggregates the outcome of a restore: per-category counts plus the
// per-record errors collected along the way. Success is false only when a
// failure escaped all three phases.
type Result struct {
	Success             bool
	PartnersAdded       int
	PartnersUpdated     int
	TransactionsAdded   int
	TransactionsSkipped int
	RatesAdded          int
	RatesUpdated        int
	Errors              []string
}
