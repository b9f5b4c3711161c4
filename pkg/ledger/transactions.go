package ledger

import (
	"log/slog"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/calc"
	"github.com/jkimaro/fx-ledger/pkg/db"
	"github.com/jkimaro/fx-ledger/pkg/model"
)

// TransactionInput carries the caller-settable fields of a transaction.
// Net fields are absent on purpose: they are always derived.
type TransactionInput struct {
	PartnerID       int64
	Date            time.Time
	TzsReceived     float64
	ForeignGiven    float64
	ForeignCurrency string
	ExchangeRate    float64
	Notes           string
}

// TransactionService records and maintains exchange transactions. Net
// positions are recomputed through the calculator on every write.
type TransactionService struct {
	txns     *db.TransactionRepository
	partners *db.PartnerRepository
	rates    *db.ExchangeRateRepository
	log      *slog.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txns *db.TransactionRepository, partners *db.PartnerRepository, rates *db.ExchangeRateRepository, log *slog.Logger) *TransactionService {
	if log == nil {
		log = slog.Default()
	}
	return &TransactionService{txns: txns, partners: partners, rates: rates, log: log}
}

// Create validates the input, derives the net position and inserts the
// transaction.
func (s *TransactionService) Create(in TransactionInput) (*model.Transaction, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	t := model.Transaction{
		PartnerID:       in.PartnerID,
		Date:            in.Date,
		TzsReceived:     in.TzsReceived,
		ForeignGiven:    in.ForeignGiven,
		ForeignCurrency: in.ForeignCurrency,
		ExchangeRate:    in.ExchangeRate,
		Notes:           in.Notes,
		CreatedAt:       now,
		LastModified:    now,
	}
	calc.Apply(&t)

	id, err := s.txns.Create(t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	s.log.Info("transaction recorded",
		"id", id,
		"partner_id", t.PartnerID,
		"currency", t.ForeignCurrency,
		"net_tzs", t.NetTzs,
	)
	return &t, nil
}

// Update validates the input and rewrites an existing transaction, again
// deriving the net position from the raw amounts.
func (s *TransactionService) Update(id int64, in TransactionInput) (*model.Transaction, error) {
	existing, err := s.txns.Get(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "transaction", ID: id}
	}

	if err := s.validate(in); err != nil {
		return nil, err
	}

	t := *existing
	t.PartnerID = in.PartnerID
	t.Date = in.Date
	t.TzsReceived = in.TzsReceived
	t.ForeignGiven = in.ForeignGiven
	t.ForeignCurrency = in.ForeignCurrency
	t.ExchangeRate = in.ExchangeRate
	t.Notes = in.Notes
	t.LastModified = time.Now()
	calc.Apply(&t)

	if err := s.txns.Update(t); err != nil {
		return nil, err
	}

	return &t, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(id int64) error {
	removed, err := s.txns.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return &NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}

// DefaultRate returns the default exchange rate for a currency, used to
// pre-fill new transactions. Zero means no default is set.
func (s *TransactionService) DefaultRate(currency string) (float64, error) {
	return s.rates.GetDefaultRate(currency)
}

func (s *TransactionService) validate(in TransactionInput) error {
	partner, err := s.partners.Get(in.PartnerID)
	if err != nil {
		return err
	}
	if partner == nil {
		return &NotFoundError{Entity: "partner", ID: in.PartnerID}
	}

	if in.TzsReceived < 0 {
		return validationf("TZS received must not be negative")
	}
	if in.ForeignGiven < 0 {
		return validationf("foreign amount must not be negative")
	}
	if in.ForeignCurrency == "" {
		return validationf("foreign currency is required")
	}
	if in.ExchangeRate <= 0 {
		return validationf("exchange rate must be positive")
	}

	return nil
}
