package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the statement as a delimited document that opens cleanly
// in Excel. Subtotal and summary rows carry illustrative spreadsheet
// formulas as textual annotations next to the computed values.
func WriteCSV(w io.Writer, d Data) error {
	st := buildStatement(d)
	cw := csv.NewWriter(w)

	header := []string{"Date", "TZS Received", "Foreign Given", "Currency", "Rate", "Net TZS", "Net Foreign", "Notes", "Formula"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	// Data rows start at spreadsheet row 2 (row 1 is the header).
	line := 1
	for _, day := range st.Days {
		firstDataLine := line + 1
		for _, r := range day.Rows {
			line++
			// Net TZS is column F = rate*foreign - received (or the
			// inverse for non-CNY); the annotation shows the generic shape.
			formula := fmt.Sprintf("=ROUND(C%d*E%d-B%d,2)", line, line, line)
			if r.Currency != "CNY" {
				formula = fmt.Sprintf("=ROUND(B%d-C%d*E%d,2)", line, line, line)
			}
			record := []string{r.Date, r.TzsReceived, r.ForeignGiven, r.Currency, r.Rate, r.NetTzs, r.NetForeign, r.Notes, formula}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}

		line++
		subtotal := []string{
			"Daily total " + day.Date,
			"", "", "", "",
			day.DailyNetTzs,
			"",
			"Running: " + day.RunningNetTzs,
			fmt.Sprintf("=SUM(F%d:F%d)", firstDataLine, line-1),
		}
		if err := cw.Write(subtotal); err != nil {
			return fmt.Errorf("failed to write csv subtotal: %w", err)
		}
	}

	summary := [][]string{
		{},
		{"Partner", st.PartnerName, "", "", "", "", "", "", ""},
		{"Period", st.Period, "", "", "", "", "", "", ""},
		{"Transactions", fmt.Sprintf("%d", st.Count), "", "", "", "", "", "", ""},
		{"Net TZS", st.TotalNetTzs, "", "", "", "", "", "", ""},
		{"Net CNY", st.TotalNetCny, "", "", "", "", "", "", ""},
		{"Net USDT", st.TotalNetUsdt, "", "", "", "", "", "", ""},
	}
	for _, record := range summary {
		if len(record) == 0 {
			record = []string{"", "", "", "", "", "", "", "", ""}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv summary: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}
