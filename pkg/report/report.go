// Package report renders a partner's transactions into printable (HTML) and
// spreadsheet-importable (CSV) documents. Both renderers are pure functions
// of their inputs and write only to the supplied sink.
package report

import (
	"sort"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

// Data is the input common to both report formats.
type Data struct {
	Title        string
	PartnerName  string
	Start        time.Time
	End          time.Time
	Transactions []model.Transaction
	Summary      model.PartnerSummary
	GeneratedAt  time.Time
}

// row is one rendered transaction line.
type row struct {
	Date         string
	TzsReceived  string
	ForeignGiven string
	Currency     string
	Rate         string
	NetTzs       string
	NetForeign   string
	Notes        string
	Debit        bool
}

// dayGroup is a date's rows plus its daily subtotal and the running
// cumulative total up to and including that day.
type dayGroup struct {
	Date          string
	Rows          []row
	DailyNetTzs   string
	RunningNetTzs string
	DailyDebit    bool
	RunningDebit  bool
}

// statement is the shared view model for both renderers.
type statement struct {
	Title        string
	PartnerName  string
	Period       string
	Generated    string
	Days         []dayGroup
	TotalNetTzs  string
	TotalNetCny  string
	TotalNetUsdt string
	TotalDebit   bool
	Count        int
}

// buildStatement groups transactions by date and computes the daily and
// running-cumulative subtotals.
func buildStatement(d Data) statement {
	txns := make([]model.Transaction, len(d.Transactions))
	copy(txns, d.Transactions)
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})

	title := d.Title
	if title == "" {
		title = "Exchange Statement"
	}

	st := statement{
		Title:        title,
		PartnerName:  d.PartnerName,
		Period:       FormatDate(d.Start) + " to " + FormatDate(d.End),
		Generated:    d.GeneratedAt.Format("2006-01-02 15:04"),
		TotalNetTzs:  FormatAmount(d.Summary.NetTzs),
		TotalNetCny:  FormatAmount(d.Summary.NetCny),
		TotalNetUsdt: FormatAmount(d.Summary.NetUsdt),
		TotalDebit:   d.Summary.NetTzs < 0,
		Count:        len(txns),
	}

	var running float64
	var current *dayGroup
	var daily float64

	flush := func() {
		if current == nil {
			return
		}
		current.DailyNetTzs = FormatAmount(daily)
		current.RunningNetTzs = FormatAmount(running)
		current.DailyDebit = daily < 0
		current.RunningDebit = running < 0
		st.Days = append(st.Days, *current)
	}

	for _, t := range txns {
		day := FormatDate(t.Date)
		if current == nil || current.Date != day {
			flush()
			current = &dayGroup{Date: day}
			daily = 0
		}

		daily += t.NetTzs
		running += t.NetTzs

		current.Rows = append(current.Rows, row{
			Date:         day,
			TzsReceived:  FormatAmount(t.TzsReceived),
			ForeignGiven: FormatAmount(t.ForeignGiven),
			Currency:     t.ForeignCurrency,
			Rate:         FormatAmount(t.ExchangeRate),
			NetTzs:       FormatAmount(t.NetTzs),
			NetForeign:   FormatAmount(t.NetForeign),
			Notes:        t.Notes,
			Debit:        t.NetTzs < 0,
		})
	}
	flush()

	return st
}
