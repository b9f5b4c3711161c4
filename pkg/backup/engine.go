package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jkimaro/fx-ledger/pkg/calc"
	"github.com/jkimaro/fx-ledger/pkg/db"
	"github.com/jkimaro/fx-ledger/pkg/model"
)

// Engine exports the ledger to a backup document and restores documents into
// the live store.
type Engine struct {
	partners   *db.PartnerRepository
	txns       *db.TransactionRepository
	rates      *db.ExchangeRateRepository
	appVersion string
	deviceInfo string
	log        *slog.Logger
}

// NewEngine creates a backup Engine. deviceInfo may be empty, in which case
// exports carry a generated identifier.
func NewEngine(partners *db.PartnerRepository, txns *db.TransactionRepository, rates *db.ExchangeRateRepository, appVersion, deviceInfo string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		partners:   partners,
		txns:       txns,
		rates:      rates,
		appVersion: appVersion,
		deviceInfo: deviceInfo,
		log:        log,
	}
}

// Export snapshots every active partner, all of their transactions and every
// currency's current default rate into a single versioned JSON document
// written to w.
func (e *Engine) Export(ctx context.Context, w io.Writer) (*Metadata, error) {
	partners, err := e.partners.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to export partners: %w", err)
	}

	doc := Document{
		Partners:      []PartnerRecord{},
		Transactions:  []TransactionRecord{},
		ExchangeRates: []RateRecord{},
	}

	for _, p := range partners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc.Partners = append(doc.Partners, PartnerRecord{
			Name:      p.Name,
			CreatedAt: p.CreatedAt.UnixMilli(),
			IsActive:  p.IsActive(),
			Notes:     p.Notes,
		})

		txns, err := e.txns.ListByPartner(p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export transactions of %q: %w", p.Name, err)
		}

		for _, t := range txns {
			doc.Transactions = append(doc.Transactions, TransactionRecord{
				PartnerName:     p.Name,
				Date:            t.Date.UnixMilli(),
				TzsReceived:     t.TzsReceived,
				ForeignGiven:    t.ForeignGiven,
				ForeignCurrency: t.ForeignCurrency,
				ExchangeRate:    t.ExchangeRate,
				NetTzs:          t.NetTzs,
				NetForeign:      t.NetForeign,
				Notes:           t.Notes,
				CreatedAt:       t.CreatedAt.UnixMilli(),
				LastModified:    t.LastModified.UnixMilli(),
			})
		}
	}

	currencies, err := e.rates.Currencies()
	if err != nil {
		return nil, fmt.Errorf("failed to export exchange rates: %w", err)
	}

	for _, currency := range currencies {
		rate, err := e.rates.GetDefault(currency)
		if err != nil {
			return nil, fmt.Errorf("failed to export default rate for %s: %w", currency, err)
		}
		if rate == nil {
			continue
		}

		doc.ExchangeRates = append(doc.ExchangeRates, RateRecord{
			Currency:  rate.Currency,
			Rate:      rate.Rate,
			Date:      rate.Date.UnixMilli(),
			IsDefault: rate.IsDefault,
			Source:    string(rate.Source),
		})
	}

	device := e.deviceInfo
	if device == "" {
		device = "export-" + uuid.NewString()
	}

	doc.Metadata = Metadata{
		Version:            FormatVersion,
		ExportDate:         time.Now().UnixMilli(),
		AppVersion:         e.appVersion,
		TotalPartners:      len(doc.Partners),
		TotalTransactions:  len(doc.Transactions),
		TotalExchangeRates: len(doc.ExchangeRates),
		DeviceInfo:         device,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to write backup document: %w", err)
	}

	e.log.Info("backup exported",
		"partners", doc.Metadata.TotalPartners,
		"transactions", doc.Metadata.TotalTransactions,
		"rates", doc.Metadata.TotalExchangeRates,
	)
	return &doc.Metadata, nil
}

// Restore merges a backup document read from r into the live store. The
// three phases (partners, transactions, rates) run in order; a failure on
// one record is recorded as an error string and the phase continues.
func (e *Engine) Restore(ctx context.Context, r io.Reader) *Result {
	res := &Result{Success: true}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		res.Success = false
		res.Errors = []string{fmt.Sprintf("failed to parse backup document: %v", err)}
		return res
	}

	nameToID := e.restorePartners(ctx, doc.Partners, res)
	e.restoreTransactions(ctx, doc.Transactions, nameToID, res)
	e.restoreRates(ctx, doc.ExchangeRates, res)

	if err := ctx.Err(); err != nil {
		res.Success = false
		res.Errors = []string{err.Error()}
		return res
	}

	e.log.Info("backup restored",
		"partners_added", res.PartnersAdded,
		"partners_updated", res.PartnersUpdated,
		"transactions_added", res.TransactionsAdded,
		"transactions_skipped", res.TransactionsSkipped,
		"rates_added", res.RatesAdded,
		"rates_updated", res.RatesUpdated,
		"errors", len(res.Errors),
	)
	return res
}

// restorePartners reconciles backup partners by normalized name and returns
// the normalized-name → id map used to resolve transactions.
func (e *Engine) restorePartners(ctx context.Context, records []PartnerRecord, res *Result) map[string]int64 {
	nameToID := make(map[string]int64, len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			return nameToID
		}

		key := model.NormalizeName(rec.Name)
		if key == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("partner with blank name skipped (notes: %q)", rec.Notes))
			continue
		}

		existing, err := e.partners.FindActiveByName(rec.Name)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("partner %q: %v", rec.Name, err))
			continue
		}

		if existing != nil {
			// Backup wins only when strictly newer than the live row.
			if time.UnixMilli(rec.CreatedAt).After(existing.CreatedAt) {
				if rec.Notes != "" {
					existing.Notes = rec.Notes
				}
				existing.State = model.PartnerActive
				if !rec.IsActive {
					existing.State = model.PartnerDeleted
				}
				if err := e.partners.Update(*existing); err != nil {
					res.Errors = append(res.Errors, fmt.Sprintf("partner %q: %v", rec.Name, err))
					continue
				}
				res.PartnersUpdated++
			}
			nameToID[key] = existing.ID
			continue
		}

		state := model.PartnerActive
		if !rec.IsActive {
			state = model.PartnerDeleted
		}

		id, err := e.partners.Create(model.Partner{
			Name:      rec.Name,
			CreatedAt: time.UnixMilli(rec.CreatedAt),
			State:     state,
			Notes:     rec.Notes,
		})
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("partner %q: %v", rec.Name, err))
			continue
		}

		nameToID[key] = id
		res.PartnersAdded++
	}

	return nameToID
}

// restoreTransactions inserts backup transactions that are not exact
// duplicates of an existing one. Duplicate detection compares date,
// tzsReceived, foreignGiven, foreignCurrency and exchangeRate only; notes
// and timestamps are deliberately ignored.
func (e *Engine) restoreTransactions(ctx context.Context, records []TransactionRecord, nameToID map[string]int64, res *Result) {
	// Cache each partner's transactions so in-document duplicates are
	// caught too.
	existingByPartner := make(map[int64][]model.Transaction)

	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}

		partnerID, ok := nameToID[model.NormalizeName(rec.PartnerName)]
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("transaction on %s: partner %q not found", time.UnixMilli(rec.Date).Format("2006-01-02"), rec.PartnerName))
			continue
		}

		existing, cached := existingByPartner[partnerID]
		if !cached {
			var err error
			existing, err = e.txns.ListByPartner(partnerID)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("transaction for %q: %v", rec.PartnerName, err))
				continue
			}
			existingByPartner[partnerID] = existing
		}

		if containsDuplicate(existing, rec) {
			res.TransactionsSkipped++
			continue
		}

		t := model.Transaction{
			PartnerID:       partnerID,
			Date:            time.UnixMilli(rec.Date),
			TzsReceived:     rec.TzsReceived,
			ForeignGiven:    rec.ForeignGiven,
			ForeignCurrency: rec.ForeignCurrency,
			ExchangeRate:    rec.ExchangeRate,
			Notes:           rec.Notes,
			CreatedAt:       time.UnixMilli(rec.CreatedAt),
			LastModified:    time.UnixMilli(rec.LastModified),
		}
		// Never trust the document's net fields.
		calc.Apply(&t)

		id, err := e.txns.Create(t)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("transaction for %q: %v", rec.PartnerName, err))
			continue
		}
		t.ID = id

		existingByPartner[partnerID] = append(existingByPartner[partnerID], t)
		res.TransactionsAdded++
	}
}

// restoreRates installs backup default rates. A backup rate wins when the
// currency has no current default (0.0 sentinel) or when the backup row is
// itself flagged default.
func (e *Engine) restoreRates(ctx context.Context, records []RateRecord, res *Result) {
	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}

		current, err := e.rates.GetDefaultRate(rec.Currency)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("rate %s: %v", rec.Currency, err))
			continue
		}

		if current == 0 || rec.IsDefault {
			source := model.RateSource(rec.Source)
			if source == "" {
				source = model.RateSourceUser
			}
			if err := e.rates.SetDefaultRate(rec.Currency, rec.Rate, time.UnixMilli(rec.Date), source); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("rate %s: %v", rec.Currency, err))
				continue
			}
			if current == 0 {
				res.RatesAdded++
			} else {
				res.RatesUpdated++
			}
		}
	}
}

// containsDuplicate reports whether an existing transaction matches rec on
// the five identity fields.
func containsDuplicate(existing []model.Transaction, rec TransactionRecord) bool {
	for _, t := range existing {
		if t.Date.UnixMilli() == rec.Date &&
			t.TzsReceived == rec.TzsReceived &&
			t.ForeignGiven == rec.ForeignGiven &&
			t.ForeignCurrency == rec.ForeignCurrency &&
			t.ExchangeRate == rec.ExchangeRate {
			return true
		}
	}
	return false
}
