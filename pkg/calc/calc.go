// Package calc computes net positions for exchange transactions.
package calc

import "github.com/jkimaro/fx-ledger/pkg/model"

// NetPosition is the derived outcome of a transaction: a signed TZS amount
// and its foreign-currency equivalent. Positive means credit (value owed to
// the ledger owner), negative means debit.
type NetPosition struct {
	Tzs     float64
	Foreign float64
}

// Net computes the net position of a transaction from its raw inputs.
//
// The sign convention is currency-dependent: for CNY the foreign side is the
// reference (netTzs = foreignGiven*rate - tzsReceived), for USDT and any
// other currency the TZS side is (netTzs = tzsReceived - foreignGiven*rate).
// The asymmetry is a deliberate business rule, not an oversight.
func Net(tzsReceived, foreignGiven float64, currency string, rate float64) NetPosition {
	var netTzs float64
	if currency == model.CurrencyCNY {
		netTzs = foreignGiven*rate - tzsReceived
	} else {
		netTzs = tzsReceived - foreignGiven*rate
	}

	var netForeign float64
	if rate > 0 {
		netForeign = netTzs / rate
	}

	return NetPosition{Tzs: netTzs, Foreign: netForeign}
}

// Apply recomputes and sets the derived net fields on a transaction.
// It must be called on every create and update; caller-supplied net values
// are never trusted.
func Apply(t *model.Transaction) {
	n := Net(t.TzsReceived, t.ForeignGiven, t.ForeignCurrency, t.ExchangeRate)
	t.NetTzs = n.Tzs
	t.NetForeign = n.Foreign
}
