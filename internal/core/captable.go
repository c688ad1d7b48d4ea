package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Unresolved references degrade instead of failing: issuances pointing at a
// deleted shareholder or class are reported under UnknownName, and unresolved
// classes get UnknownPriority so they always sort after every real class.
const (
	UnknownName     = "Unknown"
	UnknownPriority = 999
)

// RoundMixed is reported as the class-level round label when a class groups
// issuances from more than one round. The full set is in ClassSummary.Rounds.
const RoundMixed = "Mixed"

// EnrichedIssuance is an issuance joined to its shareholder and share-class
// names, with the derived line value.
type EnrichedIssuance struct {
	ShareIssuance
	ShareholderName string          `json:"shareholder_name"`
	ShareClassName  string          `json:"share_class_name"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// ClassSummary aggregates one share class across all of its issuances.
type ClassSummary struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Priority    int             `json:"priority"`
	TotalShares int64           `json:"totalShares"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	// Percentage is this class's share of all outstanding shares, ×100,
	// rounded to 2 decimal places. Zero when the company has no shares.
	Percentage decimal.Decimal `json:"percentage"`
	// Round is the single round label when every issuance in the class agrees,
	// RoundMixed otherwise. Rounds always holds the distinct labels in
	// first-encountered order.
	Round  string   `json:"round,omitempty"`
	Rounds []string `json:"rounds,omitempty"`
}

// Holding is one issuance as seen from its shareholder's summary.
type Holding struct {
	ID             int             `json:"id"`
	Shares         int64           `json:"shares"`
	PricePerShare  decimal.Decimal `json:"price_per_share"`
	IssueDate      time.Time       `json:"issue_date"`
	ShareClassName string          `json:"shareClassName"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Round          string          `json:"round,omitempty"`
}

// ShareholderSummary aggregates one shareholder's position, keeping the
// per-issuance detail in Holdings (input order, not re-aggregated).
type ShareholderSummary struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email,omitempty"`
	Type        ShareholderType `json:"type,omitempty"`
	TotalShares int64           `json:"totalShares"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	Holdings    []Holding       `json:"holdings"`
}

// CapTable is the full computed ownership picture for one company.
// TotalValue is historical money raised; CompanyValuation is outstanding
// shares marked at the latest observed price. The two are never conflated.
type CapTable struct {
	TotalShares             int64                `json:"totalShares"`
	TotalValue              decimal.Decimal      `json:"totalValue"`
	ClassSummary            []ClassSummary       `json:"classSummary"`
	ShareholderSummary      []ShareholderSummary `json:"shareholderSummary"`
	LatestValuationPerShare decimal.Decimal      `json:"latestValuationPerShare"`
	CompanyValuation        decimal.Decimal      `json:"companyValuation"`
}

var hundred = decimal.NewFromInt(100)

// EnrichIssuances joins each issuance to its shareholder and share-class
// names and computes its line value. Dangling references never fail; they
// resolve to UnknownName. Inputs are not mutated.
func EnrichIssuances(issuances []ShareIssuance, shareholders []Shareholder, classes []ShareClass) []EnrichedIssuance {
	holderNames := make(map[int]string, len(shareholders))
	for _, sh := range shareholders {
		holderNames[sh.ID] = sh.Name
	}
	classNames := make(map[int]string, len(classes))
	for _, sc := range classes {
		classNames[sc.ID] = sc.Name
	}

	enriched := make([]EnrichedIssuance, 0, len(issuances))
	for _, iss := range issuances {
		holderName, ok := holderNames[iss.ShareholderID]
		if !ok {
			holderName = UnknownName
		}
		className, ok := classNames[iss.ShareClassID]
		if !ok {
			className = UnknownName
		}
		enriched = append(enriched, EnrichedIssuance{
			ShareIssuance:   iss,
			ShareholderName: holderName,
			ShareClassName:  className,
			TotalValue:      iss.LineValue(),
		})
	}
	return enriched
}

// SummarizeByClass groups enriched issuances by share class. Groups keep
// first-encountered order through the stable sort, so equal priorities tie
// in insertion order. No group is ever dropped.
func SummarizeByClass(enriched []EnrichedIssuance, classes []ShareClass) []ClassSummary {
	byID := make(map[int]ShareClass, len(classes))
	for _, sc := range classes {
		byID[sc.ID] = sc
	}

	var grandTotal int64
	for _, e := range enriched {
		grandTotal += e.Shares
	}

	index := make(map[int]int)
	var summaries []ClassSummary
	for _, e := range enriched {
		i, ok := index[e.ShareClassID]
		if !ok {
			s := ClassSummary{
				ID:         e.ShareClassID,
				Name:       UnknownName,
				Priority:   UnknownPriority,
				TotalValue: decimal.Zero,
			}
			if sc, found := byID[e.ShareClassID]; found {
				s.Name = sc.Name
				s.Priority = sc.Priority
			}
			index[e.ShareClassID] = len(summaries)
			summaries = append(summaries, s)
			i = len(summaries) - 1
		}
		summaries[i].TotalShares += e.Shares
		summaries[i].TotalValue = summaries[i].TotalValue.Add(e.TotalValue)
		if !containsString(summaries[i].Rounds, e.Round) {
			summaries[i].Rounds = append(summaries[i].Rounds, e.Round)
		}
	}

	for i := range summaries {
		if grandTotal > 0 {
			summaries[i].Percentage = decimal.NewFromInt(summaries[i].TotalShares).
				Mul(hundred).
				Div(decimal.NewFromInt(grandTotal)).
				Round(2)
		} else {
			summaries[i].Percentage = decimal.Zero
		}
		if len(summaries[i].Rounds) == 1 {
			summaries[i].Round = summaries[i].Rounds[0]
		} else if len(summaries[i].Rounds) > 1 {
			summaries[i].Round = RoundMixed
		}
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Priority < summaries[b].Priority
	})
	return summaries
}

// SummarizeByHolder groups enriched issuances by shareholder, summing shares
// and value and keeping each issuance as a Holding in input order.
func SummarizeByHolder(enriched []EnrichedIssuance, shareholders []Shareholder) []ShareholderSummary {
	byID := make(map[int]Shareholder, len(shareholders))
	for _, sh := range shareholders {
		byID[sh.ID] = sh
	}

	index := make(map[int]int)
	var summaries []ShareholderSummary
	for _, e := range enriched {
		i, ok := index[e.ShareholderID]
		if !ok {
			s := ShareholderSummary{
				ID:         e.ShareholderID,
				Name:       UnknownName,
				TotalValue: decimal.Zero,
			}
			if sh, found := byID[e.ShareholderID]; found {
				s.Name = sh.Name
				s.Email = sh.Email
				s.Type = sh.Type
			}
			index[e.ShareholderID] = len(summaries)
			summaries = append(summaries, s)
			i = len(summaries) - 1
		}
		summaries[i].TotalShares += e.Shares
		summaries[i].TotalValue = summaries[i].TotalValue.Add(e.TotalValue)
		summaries[i].Holdings = append(summaries[i].Holdings, Holding{
			ID:             e.ID,
			Shares:         e.Shares,
			PricePerShare:  e.PricePerShare,
			IssueDate:      e.IssueDate,
			ShareClassName: e.ShareClassName,
			TotalValue:     e.TotalValue,
			Round:          e.Round,
		})
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].TotalShares > summaries[b].TotalShares
	})
	return summaries
}

// LatestPricePerShare returns the price of the most recent issuance: latest
// issue date wins, and issuances sharing a date are broken by the larger ID
// (IDs are an increasing sequence, so the most recently created row wins).
// Zero when there are no issuances.
func LatestPricePerShare(enriched []EnrichedIssuance) decimal.Decimal {
	latest := -1
	for i, e := range enriched {
		if latest < 0 {
			latest = i
			continue
		}
		l := enriched[latest]
		if e.IssueDate.After(l.IssueDate) || (e.IssueDate.Equal(l.IssueDate) && e.ID > l.ID) {
			latest = i
		}
	}
	if latest < 0 {
		return decimal.Zero
	}
	return enriched[latest].PricePerShare
}

// ComputeCapTable is the single entry point combining enrichment, both
// aggregations and valuation resolution. It is a pure function: no I/O, same
// inputs always produce the same output, and the inputs are never mutated.
func ComputeCapTable(issuances []ShareIssuance, shareholders []Shareholder, classes []ShareClass) *CapTable {
	enriched := EnrichIssuances(issuances, shareholders, classes)

	ct := &CapTable{
		TotalValue:              decimal.Zero,
		ClassSummary:            []ClassSummary{},
		ShareholderSummary:      []ShareholderSummary{},
		LatestValuationPerShare: decimal.Zero,
		CompanyValuation:        decimal.Zero,
	}
	for _, e := range enriched {
		ct.TotalShares += e.Shares
		ct.TotalValue = ct.TotalValue.Add(e.TotalValue)
	}
	// Empty inputs yield empty collections, never nil (and never an error).
	if cs := SummarizeByClass(enriched, classes); cs != nil {
		ct.ClassSummary = cs
	}
	if hs := SummarizeByHolder(enriched, shareholders); hs != nil {
		ct.ShareholderSummary = hs
	}
	ct.LatestValuationPerShare = LatestPricePerShare(enriched)
	ct.CompanyValuation = decimal.NewFromInt(ct.TotalShares).Mul(ct.LatestValuationPerShare)
	return ct
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
