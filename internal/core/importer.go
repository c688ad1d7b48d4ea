package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ImportReport summarizes a bulk CSV import: how many lines became issuances
// and how many were skipped. Skipped lines carry a 1-based line number and the
// reason; a bad line never fails the batch.
type ImportReport struct {
	Imported int           `json:"imported"`
	Skipped  []SkippedLine `json:"skipped,omitempty"`
}

type SkippedLine struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseIssuanceCSV parses the bulk import format:
//
//	shareholderName, shareClassName, shares, pricePerShare, issueDate, round
//
// The first line is a header and is skipped. Fields are split on commas with
// no quoting or escaping — that is the format contract, so encoding/csv (which
// would accept quoted fields) is deliberately not used. Shareholder and class
// names resolve case-insensitively against the given collections; a line with
// an unresolvable name or malformed number is skipped, not fatal.
func ParseIssuanceCSV(data string, companyID int, shareholders []Shareholder, classes []ShareClass) ([]ShareIssuance, *ImportReport) {
	holderByName := make(map[string]int, len(shareholders))
	for _, sh := range shareholders {
		holderByName[strings.ToLower(strings.TrimSpace(sh.Name))] = sh.ID
	}
	classByName := make(map[string]int, len(classes))
	for _, sc := range classes {
		classByName[strings.ToLower(strings.TrimSpace(sc.Name))] = sc.ID
	}

	report := &ImportReport{}
	var issuances []ShareIssuance

	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	for n, line := range lines {
		if n == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		skip := func(reason string) {
			report.Skipped = append(report.Skipped, SkippedLine{Line: n + 1, Reason: reason})
		}

		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			skip("expected at least 5 fields")
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		shareholderID, ok := holderByName[strings.ToLower(fields[0])]
		if !ok {
			skip("unknown shareholder " + strconv.Quote(fields[0]))
			continue
		}
		shareClassID, ok := classByName[strings.ToLower(fields[1])]
		if !ok {
			skip("unknown share class " + strconv.Quote(fields[1]))
			continue
		}
		shares, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || shares <= 0 {
			skip("invalid share count " + strconv.Quote(fields[2]))
			continue
		}
		price, err := decimal.NewFromString(fields[3])
		if err != nil || price.IsNegative() {
			skip("invalid price " + strconv.Quote(fields[3]))
			continue
		}
		issueDate, err := time.Parse("2006-01-02", fields[4])
		if err != nil {
			skip("invalid issue date " + strconv.Quote(fields[4]))
			continue
		}
		round := ""
		if len(fields) > 5 {
			round = fields[5]
		}

		issuances = append(issuances, ShareIssuance{
			CompanyID:     companyID,
			ShareholderID: shareholderID,
			ShareClassID:  shareClassID,
			Shares:        shares,
			PricePerShare: price,
			IssueDate:     issueDate,
			Round:         round,
		})
		report.Imported++
	}
	return issuances, report
}
