package core

import (
	"fmt"
	"io"
	"strings"
)

// WriteHoldingsCSV writes the flattened shareholder/holdings rows of a
// computed cap table: one line per holding, preceded by a header.
// Commas in free-text fields are replaced with spaces to keep the output
// consistent with the unquoted import format.
func WriteHoldingsCSV(w io.Writer, ct *CapTable) error {
	if _, err := fmt.Fprintln(w, "shareholderName,shareholderType,shareClassName,shares,pricePerShare,totalValue,issueDate,round"); err != nil {
		return err
	}
	for _, sh := range ct.ShareholderSummary {
		for _, h := range sh.Holdings {
			_, err := fmt.Fprintf(w, "%s,%s,%s,%d,%s,%s,%s,%s\n",
				csvField(sh.Name),
				csvField(string(sh.Type)),
				csvField(h.ShareClassName),
				h.Shares,
				h.PricePerShare.String(),
				h.TotalValue.StringFixed(2),
				h.IssueDate.Format("2006-01-02"),
				csvField(h.Round),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteClassSummaryCSV writes the per-class summary table: one line per share
// class in display (priority) order.
func WriteClassSummaryCSV(w io.Writer, ct *CapTable) error {
	if _, err := fmt.Fprintln(w, "shareClassName,priority,totalShares,totalValue,percentage,rounds"); err != nil {
		return err
	}
	for _, cs := range ct.ClassSummary {
		_, err := fmt.Fprintf(w, "%s,%d,%d,%s,%s,%s\n",
			csvField(cs.Name),
			cs.Priority,
			cs.TotalShares,
			cs.TotalValue.StringFixed(2),
			cs.Percentage.StringFixed(2),
			csvField(strings.Join(cs.Rounds, "; ")),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func csvField(s string) string {
	return strings.ReplaceAll(s, ",", " ")
}
