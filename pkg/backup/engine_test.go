package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/db"
	"github.com/jkimaro/fx-ledger/pkg/model"
)

type stores struct {
	partners *db.PartnerRepository
	txns     *db.TransactionRepository
	rates    *db.ExchangeRateRepository
}

func openStores(t *testing.T) stores {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return stores{
		partners: db.NewPartnerRepository(conn),
		txns:     db.NewTransactionRepository(conn),
		rates:    db.NewExchangeRateRepository(conn),
	}
}

func newTestEngine(t *testing.T, s stores) *Engine {
	t.Helper()
	return NewEngine(s.partners, s.txns, s.rates, "test", "test-device", nil)
}

func sampleDocument() Document {
	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	return Document{
		Metadata: Metadata{Version: FormatVersion, ExportDate: base, TotalPartners: 2, TotalTransactions: 3, TotalExchangeRates: 2},
		Partners: []PartnerRecord{
			{Name: "Acme Traders", CreatedAt: base, IsActive: true, Notes: "importer"},
			{Name: "Beta Ltd", CreatedAt: base, IsActive: true},
		},
		Transactions: []TransactionRecord{
			{PartnerName: "Acme Traders", Date: base, TzsReceived: 1000000, ForeignGiven: 2660, ForeignCurrency: "CNY", ExchangeRate: 376, CreatedAt: base, LastModified: base},
			{PartnerName: "Acme Traders", Date: base, TzsReceived: 1000000, ForeignGiven: 420, ForeignCurrency: "USDT", ExchangeRate: 2380, CreatedAt: base, LastModified: base},
			{PartnerName: "Beta Ltd", Date: base, TzsReceived: 50000, ForeignGiven: 130, ForeignCurrency: "CNY", ExchangeRate: 380, CreatedAt: base, LastModified: base},
		},
		ExchangeRates: []RateRecord{
			{Currency: "CNY", Rate: 376, Date: base, IsDefault: true, Source: "user"},
			{Currency: "USDT", Rate: 2380, Date: base, IsDefault: true, Source: "user"},
		},
	}
}

func marshalDoc(t *testing.T, doc Document) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode document: %v", err)
	}
	return bytes.NewReader(data)
}

func TestRestoreIntoEmptyStore(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	res := engine.Restore(context.Background(), marshalDoc(t, sampleDocument()))

	if !res.Success {
		t.Fatalf("restore failed: %v", res.Errors)
	}
	if res.PartnersAdded != 2 || res.PartnersUpdated != 0 {
		t.Errorf("partners added/updated = %d/%d, expected 2/0", res.PartnersAdded, res.PartnersUpdated)
	}
	if res.TransactionsAdded != 3 || res.TransactionsSkipped != 0 {
		t.Errorf("transactions added/skipped = %d/%d, expected 3/0", res.TransactionsAdded, res.TransactionsSkipped)
	}
	if res.RatesAdded != 2 {
		t.Errorf("rates added = %d, expected 2", res.RatesAdded)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}

	// Net fields were recomputed through the calculator, not copied.
	p, err := s.partners.FindActiveByName("acme traders")
	if err != nil || p == nil {
		t.Fatalf("partner lookup failed: %v %v", p, err)
	}
	txns, err := s.txns.ListByPartner(p.ID)
	if err != nil {
		t.Fatalf("ListByPartner failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	for _, txn := range txns {
		switch txn.ForeignCurrency {
		case "CNY":
			if txn.NetTzs != 160 {
				t.Errorf("CNY NetTzs = %v, expected 160", txn.NetTzs)
			}
		case "USDT":
			if txn.NetTzs != 400 {
				t.Errorf("USDT NetTzs = %v, expected 400", txn.NetTzs)
			}
		}
	}
}

func TestRestoreIdempotent(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	first := engine.Restore(context.Background(), marshalDoc(t, sampleDocument()))
	if !first.Success || len(first.Errors) != 0 {
		t.Fatalf("first restore failed: %v", first.Errors)
	}

	second := engine.Restore(context.Background(), marshalDoc(t, sampleDocument()))
	if !second.Success {
		t.Fatalf("second restore failed: %v", second.Errors)
	}

	if second.PartnersAdded != 0 {
		t.Errorf("second pass added %d partners, expected 0", second.PartnersAdded)
	}
	if second.PartnersUpdated != 0 {
		t.Errorf("second pass updated %d partners, expected 0", second.PartnersUpdated)
	}
	if second.TransactionsAdded != 0 {
		t.Errorf("second pass added %d transactions, expected 0", second.TransactionsAdded)
	}
	if second.TransactionsSkipped != 3 {
		t.Errorf("second pass skipped %d transactions, expected 3", second.TransactionsSkipped)
	}
}

func TestRestoreMatchesPartnersByNormalizedName(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.partners.Create(model.Partner{
		Name:      "acme traders",
		CreatedAt: created,
		State:     model.PartnerActive,
		Notes:     "old notes",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	doc := Document{
		Partners: []PartnerRecord{
			// Same partner under normalization, strictly newer timestamp.
			{Name: "  ACME Traders ", CreatedAt: created.Add(time.Hour).UnixMilli(), IsActive: true, Notes: "new notes"},
		},
	}

	res := engine.Restore(context.Background(), marshalDoc(t, doc))
	if !res.Success || len(res.Errors) != 0 {
		t.Fatalf("restore failed: %v", res.Errors)
	}
	if res.PartnersAdded != 0 || res.PartnersUpdated != 1 {
		t.Errorf("added/updated = %d/%d, expected 0/1", res.PartnersAdded, res.PartnersUpdated)
	}

	p, _ := s.partners.FindActiveByName("Acme Traders")
	if p == nil || p.Notes != "new notes" {
		t.Errorf("notes not overwritten: %+v", p)
	}

	// Blank backup notes never wipe existing notes, and an older backup
	// record changes nothing.
	doc.Partners[0].Notes = ""
	doc.Partners[0].CreatedAt = created.Add(2 * time.Hour).UnixMilli()
	res = engine.Restore(context.Background(), marshalDoc(t, doc))
	if res.PartnersUpdated != 1 {
		t.Fatalf("expected update, got %+v", res)
	}
	p, _ = s.partners.FindActiveByName("Acme Traders")
	if p.Notes != "new notes" {
		t.Errorf("blank notes overwrote existing: %q", p.Notes)
	}
}

func TestRestoreUnresolvedPartnerRecordsError(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	base := time.Now().UnixMilli()
	doc := Document{
		Partners: []PartnerRecord{
			{Name: "Known", CreatedAt: base, IsActive: true},
		},
		Transactions: []TransactionRecord{
			{PartnerName: "Known", Date: base, TzsReceived: 100, ForeignGiven: 1, ForeignCurrency: "USDT", ExchangeRate: 100, CreatedAt: base, LastModified: base},
			{PartnerName: "Ghost", Date: base, TzsReceived: 200, ForeignGiven: 2, ForeignCurrency: "USDT", ExchangeRate: 100, CreatedAt: base, LastModified: base},
		},
	}

	res := engine.Restore(context.Background(), marshalDoc(t, doc))

	// The bad record is reported, the good one still lands.
	if !res.Success {
		t.Fatalf("restore reported failure: %v", res.Errors)
	}
	if res.TransactionsAdded != 1 {
		t.Errorf("added = %d, expected 1", res.TransactionsAdded)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Ghost") {
		t.Errorf("errors = %v, expected one mentioning Ghost", res.Errors)
	}
}

func TestRestoreDuplicateIgnoresNotes(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	doc := sampleDocument()
	res := engine.Restore(context.Background(), marshalDoc(t, doc))
	if !res.Success {
		t.Fatalf("restore failed: %v", res.Errors)
	}

	// Same identity fields, different notes and timestamps: still a
	// duplicate.
	doc.Transactions = doc.Transactions[:1]
	doc.Transactions[0].Notes = "completely different notes"
	doc.Transactions[0].CreatedAt = time.Now().UnixMilli()
	doc.Transactions[0].LastModified = time.Now().UnixMilli()

	res = engine.Restore(context.Background(), marshalDoc(t, doc))
	if res.TransactionsAdded != 0 || res.TransactionsSkipped != 1 {
		t.Errorf("added/skipped = %d/%d, expected 0/1", res.TransactionsAdded, res.TransactionsSkipped)
	}
}

func TestRestoreRatesHonorSentinel(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	// USDT already has a default; CNY does not.
	if err := s.rates.SetDefaultRate("USDT", 2400, time.Now(), model.RateSourceUser); err != nil {
		t.Fatalf("SetDefaultRate failed: %v", err)
	}

	base := time.Now().UnixMilli()
	doc := Document{
		ExchangeRates: []RateRecord{
			{Currency: "CNY", Rate: 376, Date: base, IsDefault: false, Source: "user"},
			{Currency: "USDT", Rate: 2380, Date: base, IsDefault: false, Source: "user"},
		},
	}

	res := engine.Restore(context.Background(), marshalDoc(t, doc))
	if !res.Success {
		t.Fatalf("restore failed: %v", res.Errors)
	}

	// CNY had no default (sentinel) so the backup row wins even without
	// the default flag; USDT keeps its live default because the backup
	// row isn't flagged.
	if res.RatesAdded != 1 || res.RatesUpdated != 0 {
		t.Errorf("rates added/updated = %d/%d, expected 1/0", res.RatesAdded, res.RatesUpdated)
	}
	cny, _ := s.rates.GetDefaultRate("CNY")
	if cny != 376 {
		t.Errorf("CNY default = %v, expected 376", cny)
	}
	usdt, _ := s.rates.GetDefaultRate("USDT")
	if usdt != 2400 {
		t.Errorf("USDT default = %v, expected 2400", usdt)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	src := openStores(t)
	srcEngine := newTestEngine(t, src)

	// Seed the source store through a restore.
	res := srcEngine.Restore(context.Background(), marshalDoc(t, sampleDocument()))
	if !res.Success {
		t.Fatalf("seed restore failed: %v", res.Errors)
	}

	var buf bytes.Buffer
	meta, err := srcEngine.Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if meta.Version != FormatVersion {
		t.Errorf("metadata version = %d, expected %d", meta.Version, FormatVersion)
	}
	if meta.TotalPartners != 2 || meta.TotalTransactions != 3 || meta.TotalExchangeRates != 2 {
		t.Errorf("metadata counts = %+v", meta)
	}
	if meta.DeviceInfo != "test-device" {
		t.Errorf("device info = %q", meta.DeviceInfo)
	}

	dst := openStores(t)
	dstEngine := newTestEngine(t, dst)

	res = dstEngine.Restore(context.Background(), bytes.NewReader(buf.Bytes()))
	if !res.Success || len(res.Errors) != 0 {
		t.Fatalf("roundtrip restore failed: %v", res.Errors)
	}
	if res.PartnersAdded != 2 || res.TransactionsAdded != 3 || res.RatesAdded != 2 {
		t.Errorf("roundtrip counts = %+v", res)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	s := openStores(t)
	engine := newTestEngine(t, s)

	res := engine.Restore(context.Background(), strings.NewReader("not json at all"))
	if res.Success {
		t.Error("restore of garbage reported success")
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, expected exactly one", res.Errors)
	}
}
