package calc

import (
	"math"
	"testing"

	"github.com/jkimaro/fx-ledger/pkg/model"
)

func TestNet(t *testing.T) {
	tests := []struct {
		name        string
		tzsReceived float64
		foreign     float64
		currency    string
		rate        float64
		wantTzs     float64
		wantForeign float64
	}{
		{"cny credit", 1000000, 2660, "CNY", 376, 160, 160.0 / 376},
		{"usdt credit", 1000000, 420, "USDT", 2380, 400, 400.0 / 2380},
		{"cny debit", 1000160, 2660, "CNY", 376, -160, -160.0 / 376},
		{"usdt debit", 999200, 420, "USDT", 2380, -400, -400.0 / 2380},
		{"cny exact", 376000, 1000, "CNY", 376, 0, 0},
		{"unknown currency follows usdt rule", 1000, 0, "EUR", 2500, 1000, 0.4},
		{"zero amounts", 0, 0, "CNY", 376, 0, 0},
		{"zero rate yields zero foreign", 500, 100, "USDT", 0, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Net(tt.tzsReceived, tt.foreign, tt.currency, tt.rate)
			if !closeTo(got.Tzs, tt.wantTzs) {
				t.Errorf("Net(...).Tzs = %v, expected %v", got.Tzs, tt.wantTzs)
			}
			if !closeTo(got.Foreign, tt.wantForeign) {
				t.Errorf("Net(...).Foreign = %v, expected %v", got.Foreign, tt.wantForeign)
			}
		})
	}
}

func TestNetSignConvention(t *testing.T) {
	// The CNY rule references the foreign side, every other currency the
	// TZS side. Same inputs, opposite signs.
	cny := Net(1000, 10, model.CurrencyCNY, 200)
	usdt := Net(1000, 10, model.CurrencyUSDT, 200)

	if cny.Tzs != 1000 {
		t.Errorf("CNY netTzs = %v, expected 1000", cny.Tzs)
	}
	if usdt.Tzs != -1000 {
		t.Errorf("USDT netTzs = %v, expected -1000", usdt.Tzs)
	}
}

func TestApplyIdempotent(t *testing.T) {
	txn := model.Transaction{
		TzsReceived:     1000000,
		ForeignGiven:    2660,
		ForeignCurrency: "CNY",
		ExchangeRate:    376,
		// Caller-supplied net fields must be ignored.
		NetTzs:     99999,
		NetForeign: 99999,
	}

	Apply(&txn)
	firstTzs, firstForeign := txn.NetTzs, txn.NetForeign

	Apply(&txn)
	if txn.NetTzs != firstTzs || txn.NetForeign != firstForeign {
		t.Errorf("Apply is not idempotent: (%v, %v) then (%v, %v)",
			firstTzs, firstForeign, txn.NetTzs, txn.NetForeign)
	}

	if !closeTo(txn.NetTzs, 160) {
		t.Errorf("NetTzs = %v, expected 160", txn.NetTzs)
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
