package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// stubStore implements the aggregator's store interfaces with canned data
// and injectable per-partner failures.
type stubStore struct {
	partners  []model.Partner
	summaries map[int64]model.PartnerSummary
	txns      map[int64][]model.Transaction
	failFor   map[int64]bool
}

func (s *stubStore) ListActive() ([]model.Partner, error) {
	return s.partners, nil
}

func (s *stubStore) SummarizePartner(partnerID int64) (model.PartnerSummary, error) {
	if s.failFor[partnerID] {
		return model.PartnerSummary{}, fmt.Errorf("summary unavailable for partner %d", partnerID)
	}
	return s.summaries[partnerID], nil
}

func (s *stubStore) ListByPartnerInRange(partnerID, startMillis, endMillis int64) ([]model.Transaction, error) {
	if s.failFor[partnerID] {
		return nil, fmt.Errorf("transactions unavailable for partner %d", partnerID)
	}
	var out []model.Transaction
	for _, t := range s.txns[partnerID] {
		m := t.Date.UnixMilli()
		if m >= startMillis && m <= endMillis {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestCumulativeNetPositionsSkipsFailures(t *testing.T) {
	store := &stubStore{
		partners: []model.Partner{
			{ID: 1, Name: "P1", State: model.PartnerActive},
			{ID: 2, Name: "P2", State: model.PartnerActive},
		},
		summaries: map[int64]model.PartnerSummary{
			1: {NetTzs: 100, NetCny: 0.5, Transactions: 2},
			2: {NetTzs: -50, Transactions: 1},
		},
		failFor: map[int64]bool{2: true},
	}

	agg := NewAggregator(store, store, store, nil)
	totals, err := agg.CumulativeNetPositions(context.Background())
	if err != nil {
		t.Fatalf("CumulativeNetPositions failed: %v", err)
	}

	// P2's failure is skipped, not summed and not fatal.
	if totals.NetTzs != 100 {
		t.Errorf("NetTzs = %v, expected 100", totals.NetTzs)
	}
	if totals.Partners != 1 {
		t.Errorf("Partners = %d, expected 1", totals.Partners)
	}
	if totals.Transactions != 2 {
		t.Errorf("Transactions = %d, expected 2", totals.Transactions)
	}
}

func TestCumulativeNetPositionsEmpty(t *testing.T) {
	store := &stubStore{}
	agg := NewAggregator(store, store, store, nil)

	totals, err := agg.CumulativeNetPositions(context.Background())
	if err != nil {
		t.Fatalf("CumulativeNetPositions failed: %v", err)
	}
	if totals != (CumulativeTotals{}) {
		t.Errorf("empty ledger totals = %+v, expected zeros", totals)
	}
}

func TestCrossPartnerAnalysisNormalizesBounds(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	store := &stubStore{
		partners: []model.Partner{
			{ID: 1, Name: "P1", State: model.PartnerActive},
			{ID: 2, Name: "P2", State: model.PartnerActive},
		},
		txns: map[int64][]model.Transaction{
			1: {
				{PartnerID: 1, Date: day.Add(9 * time.Hour), TzsReceived: 1000, ForeignCurrency: "CNY", ForeignGiven: 2, NetTzs: 10, NetForeign: 0.02},
				{PartnerID: 1, Date: day.Add(-1 * time.Second), TzsReceived: 500, ForeignCurrency: "CNY"},  // day before
				{PartnerID: 1, Date: day.Add(24 * time.Hour), TzsReceived: 700, ForeignCurrency: "USDT"},   // day after
			},
			2: {
				{PartnerID: 2, Date: day.Add(23*time.Hour + 59*time.Minute), TzsReceived: 2000, ForeignCurrency: "USDT", ForeignGiven: 1, NetTzs: -5},
			},
		},
	}

	agg := NewAggregator(store, store, store, nil)

	// Bounds carry a time-of-day that must be normalized away:
	// start==end mid-day still covers the whole day.
	at := day.Add(15 * time.Hour)
	analysis, err := agg.CrossPartnerAnalysis(context.Background(), at, at)
	if err != nil {
		t.Fatalf("CrossPartnerAnalysis failed: %v", err)
	}

	if analysis.Transactions != 2 {
		t.Errorf("Transactions = %d, expected 2", analysis.Transactions)
	}
	if analysis.TotalTzsReceived != 3000 {
		t.Errorf("TotalTzsReceived = %v, expected 3000", analysis.TotalTzsReceived)
	}
	if analysis.Partners != 2 {
		t.Errorf("Partners = %d, expected 2", analysis.Partners)
	}

	cny := analysis.ByCurrency["CNY"]
	if cny.Transactions != 1 || cny.NetTzs != 10 {
		t.Errorf("CNY totals = %+v", cny)
	}
	usdt := analysis.ByCurrency["USDT"]
	if usdt.Transactions != 1 || usdt.NetTzs != -5 {
		t.Errorf("USDT totals = %+v", usdt)
	}
}

func TestCrossPartnerAnalysisSkipsFailures(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	store := &stubStore{
		partners: []model.Partner{
			{ID: 1, Name: "P1", State: model.PartnerActive},
			{ID: 2, Name: "P2", State: model.PartnerActive},
		},
		txns: map[int64][]model.Transaction{
			1: {{PartnerID: 1, Date: day, TzsReceived: 1000, ForeignCurrency: "CNY"}},
		},
		failFor: map[int64]bool{2: true},
	}

	agg := NewAggregator(store, store, store, nil)
	analysis, err := agg.CrossPartnerAnalysis(context.Background(), day, day)
	if err != nil {
		t.Fatalf("CrossPartnerAnalysis failed: %v", err)
	}
	if analysis.TotalTzsReceived != 1000 || analysis.Transactions != 1 {
		t.Errorf("analysis = %+v, expected only P1's data", analysis)
	}
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2024, 3, 5, 15, 42, 7, 123456789, time.UTC)

	start := StartOfDay(at)
	if !start.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", start)
	}

	end := EndOfDay(at)
	if !end.Equal(time.Date(2024, 3, 5, 23, 59, 59, 999000000, time.UTC)) {
		t.Errorf("EndOfDay = %v", end)
	}
}
