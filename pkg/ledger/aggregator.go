package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// PartnerLister lists the active partners considered by aggregation.
type PartnerLister interface {
	ListActive() ([]model.Partner, error)
}

// PartnerSummarizer computes a single partner's aggregate net positions.
type PartnerSummarizer interface {
	SummarizePartner(partnerID int64) (model.PartnerSummary, error)
}

// RangeLister lists a partner's transactions within inclusive
// epoch-millisecond bounds.
type RangeLister interface {
	ListByPartnerInRange(partnerID, startMillis, endMillis int64) ([]model.Transaction, error)
}

// CumulativeTotals is the ledger-wide sum of per-partner positions.
type CumulativeTotals struct {
	NetTzs       float64
	NetCny       float64
	NetUsdt      float64
	Transactions int
	Partners     int
}

// CurrencyTotals accumulates per-currency figures for a date range.
type CurrencyTotals struct {
	ForeignGiven float64
	NetTzs       float64
	NetForeign   float64
	Transactions int
}

// RangeAnalysis is the cross-partner result for a date range.
type RangeAnalysis struct {
	Start            time.Time
	End              time.Time
	TotalTzsReceived float64
	ByCurrency       map[string]CurrencyTotals
	Transactions     int
	Partners         int
}

// Aggregator sums per-partner summaries into ledger-wide totals. A failure
// for one partner is logged and skipped so a single bad partner cannot abort
// the aggregate.
type Aggregator struct {
	partners  PartnerLister
	summaries PartnerSummarizer
	ranges    RangeLister
	log       *slog.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(partners PartnerLister, summaries PartnerSummarizer, ranges RangeLister, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{partners: partners, summaries: summaries, ranges: ranges, log: log}
}

// CumulativeNetPositions sums net TZS/CNY/USDT and transaction counts across
// all active partners. An empty partner set yields zeros.
func (a *Aggregator) CumulativeNetPositions(ctx context.Context) (CumulativeTotals, error) {
	partners, err := a.partners.ListActive()
	if err != nil {
		return CumulativeTotals{}, err
	}

	var totals CumulativeTotals
	for _, p := range partners {
		if err := ctx.Err(); err != nil {
			return CumulativeTotals{}, err
		}

		summary, err := a.summaries.SummarizePartner(p.ID)
		if err != nil {
			a.log.Warn("skipping partner in cumulative totals", "partner_id", p.ID, "name", p.Name, "error", err)
			continue
		}

		totals.NetTzs += summary.NetTzs
		totals.NetCny += summary.NetCny
		totals.NetUsdt += summary.NetUsdt
		totals.Transactions += summary.Transactions
		totals.Partners++
	}

	return totals, nil
}

// CrossPartnerAnalysis accumulates totals over every active partner's
// transactions dated within [startOfDay(start), endOfDay(end)]. The
// time-of-day component of the supplied bounds is normalized away, so
// start == end covers exactly that day.
func (a *Aggregator) CrossPartnerAnalysis(ctx context.Context, start, end time.Time) (RangeAnalysis, error) {
	from := StartOfDay(start)
	to := EndOfDay(end)

	analysis := RangeAnalysis{
		Start:      from,
		End:        to,
		ByCurrency: make(map[string]CurrencyTotals),
	}

	partners, err := a.partners.ListActive()
	if err != nil {
		return analysis, err
	}

	for _, p := range partners {
		if err := ctx.Err(); err != nil {
			return analysis, err
		}

		txns, err := a.ranges.ListByPartnerInRange(p.ID, from.UnixMilli(), to.UnixMilli())
		if err != nil {
			a.log.Warn("skipping partner in range analysis", "partner_id", p.ID, "name", p.Name, "error", err)
			continue
		}

		if len(txns) > 0 {
			analysis.Partners++
		}

		for _, t := range txns {
			analysis.TotalTzsReceived += t.TzsReceived
			analysis.Transactions++

			c := analysis.ByCurrency[t.ForeignCurrency]
			c.ForeignGiven += t.ForeignGiven
			c.NetTzs += t.NetTzs
			c.NetForeign += t.NetForeign
			c.Transactions++
			analysis.ByCurrency[t.ForeignCurrency] = c
		}
	}

	return analysis, nil
}

// StartOfDay returns midnight at the start of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}
