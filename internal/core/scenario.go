package core

import "github.com/shopspring/decimal"

// ScenarioShareholder is a future-state shareholder summary annotated with the
// ownership shift the hypothetical issuance causes.
type ScenarioShareholder struct {
	ShareholderSummary
	CurrentPercentage decimal.Decimal `json:"currentPercentage"`
	FuturePercentage  decimal.Decimal `json:"futurePercentage"`
	PercentageChange  decimal.Decimal `json:"percentageChange"`
}

// ScenarioResult holds the cap table before and after a hypothetical issuance.
type ScenarioResult struct {
	Current      *CapTable             `json:"current_state"`
	Future       *CapTable             `json:"future_state"`
	Shareholders []ScenarioShareholder `json:"shareholders"`
}

// RunScenario computes the current cap table, appends the hypothetical
// issuance, recomputes, and annotates every future shareholder with the
// percentage delta. New shareholders start from a current percentage of zero.
// The input collections are copied, never mutated.
func RunScenario(issuances []ShareIssuance, shareholders []Shareholder, classes []ShareClass, future ShareIssuance) *ScenarioResult {
	current := ComputeCapTable(issuances, shareholders, classes)

	// A synthetic ID above every existing one keeps the latest-price
	// tie-break deterministic for the hypothetical row.
	if future.ID == 0 {
		maxID := 0
		for _, iss := range issuances {
			if iss.ID > maxID {
				maxID = iss.ID
			}
		}
		future.ID = maxID + 1
	}
	withFuture := make([]ShareIssuance, 0, len(issuances)+1)
	withFuture = append(withFuture, issuances...)
	withFuture = append(withFuture, future)

	futureTable := ComputeCapTable(withFuture, shareholders, classes)

	result := &ScenarioResult{Current: current, Future: futureTable}
	for _, fs := range futureTable.ShareholderSummary {
		currentPct := percentageOf(holderShares(current, fs.ID), current.TotalShares)
		futurePct := percentageOf(fs.TotalShares, futureTable.TotalShares)
		result.Shareholders = append(result.Shareholders, ScenarioShareholder{
			ShareholderSummary: fs,
			CurrentPercentage:  currentPct,
			FuturePercentage:   futurePct,
			PercentageChange:   futurePct.Sub(currentPct),
		})
	}
	return result
}

// holderShares returns the shareholder's current total shares, zero if absent.
func holderShares(ct *CapTable, shareholderID int) int64 {
	for _, s := range ct.ShareholderSummary {
		if s.ID == shareholderID {
			return s.TotalShares
		}
	}
	return 0
}

// percentageOf returns shares/total ×100 rounded to 2 places, zero when the
// total is zero.
func percentageOf(shares, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(shares).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
}
