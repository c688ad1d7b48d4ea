package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"captable/internal/core"
)

func TestRunScenario_DilutesExistingHolders(t *testing.T) {
	classes := []core.ShareClass{{ID: 1, Name: "Common", Priority: 10}}
	shareholders := []core.Shareholder{
		{ID: 1, Name: "Alice", Type: core.Founder},
		{ID: 2, Name: "Bob", Type: core.Investor},
	}
	issuances := []core.ShareIssuance{
		{ID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 750000, PricePerShare: price("0.01"), IssueDate: date("2022-01-01")},
		{ID: 2, ShareholderID: 2, ShareClassID: 1, Shares: 250000, PricePerShare: price("0.01"), IssueDate: date("2022-06-01")},
	}

	// Bob buys another 1,000,000 shares: 75/25 becomes 37.5/62.5.
	future := core.ShareIssuance{
		ShareholderID: 2, ShareClassID: 1, Shares: 1000000,
		PricePerShare: price("0.05"), IssueDate: date("2024-01-01"), Round: "Series A",
	}
	result := core.RunScenario(issuances, shareholders, classes, future)

	if result.Current.TotalShares != 1000000 {
		t.Errorf("expected current total 1000000, got %d", result.Current.TotalShares)
	}
	if result.Future.TotalShares != 2000000 {
		t.Errorf("expected future total 2000000, got %d", result.Future.TotalShares)
	}

	byName := map[string]core.ScenarioShareholder{}
	for _, sh := range result.Shareholders {
		byName[sh.Name] = sh
	}

	alice := byName["Alice"]
	if alice.CurrentPercentage.StringFixed(2) != "75.00" {
		t.Errorf("expected Alice current 75.00, got %s", alice.CurrentPercentage)
	}
	if alice.FuturePercentage.StringFixed(2) != "37.50" {
		t.Errorf("expected Alice future 37.50, got %s", alice.FuturePercentage)
	}
	if alice.PercentageChange.StringFixed(2) != "-37.50" {
		t.Errorf("expected Alice change -37.50, got %s", alice.PercentageChange)
	}

	bob := byName["Bob"]
	if bob.FuturePercentage.StringFixed(2) != "62.50" {
		t.Errorf("expected Bob future 62.50, got %s", bob.FuturePercentage)
	}

	// Future valuation marks everything at the hypothetical price.
	if !result.Future.CompanyValuation.Equal(price("100000")) {
		t.Errorf("expected future valuation 2000000×0.05=100000, got %s", result.Future.CompanyValuation)
	}
}

func TestRunScenario_NewShareholderStartsFromZero(t *testing.T) {
	classes := []core.ShareClass{{ID: 1, Name: "Common", Priority: 10}}
	shareholders := []core.Shareholder{
		{ID: 1, Name: "Alice", Type: core.Founder},
		{ID: 7, Name: "NewCo Ventures", Type: core.Investor},
	}
	issuances := []core.ShareIssuance{
		{ID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 900000, PricePerShare: price("0.01"), IssueDate: date("2022-01-01")},
	}

	future := core.ShareIssuance{
		ShareholderID: 7, ShareClassID: 1, Shares: 100000,
		PricePerShare: price("0.10"), IssueDate: date("2024-06-01"),
	}
	result := core.RunScenario(issuances, shareholders, classes, future)

	for _, sh := range result.Shareholders {
		if sh.Name == "NewCo Ventures" {
			if !sh.CurrentPercentage.IsZero() {
				t.Errorf("expected new investor to start from 0%%, got %s", sh.CurrentPercentage)
			}
			if sh.FuturePercentage.StringFixed(2) != "10.00" {
				t.Errorf("expected new investor future 10.00, got %s", sh.FuturePercentage)
			}
			return
		}
	}
	t.Fatal("new investor missing from scenario result")
}

func TestRunScenario_DoesNotMutateInputs(t *testing.T) {
	classes := []core.ShareClass{{ID: 1, Name: "Common", Priority: 10}}
	shareholders := []core.Shareholder{{ID: 1, Name: "Alice"}}
	issuances := []core.ShareIssuance{
		{ID: 3, ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("1"), IssueDate: date("2023-01-01")},
	}

	future := core.ShareIssuance{ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("2"), IssueDate: date("2024-01-01")}
	core.RunScenario(issuances, shareholders, classes, future)

	if len(issuances) != 1 {
		t.Errorf("input issuances were mutated: %d rows", len(issuances))
	}
}

func TestRunScenario_SyntheticIDWinsTieBreak(t *testing.T) {
	// The hypothetical issuance gets an ID above every stored row, so on a
	// shared issue date its price is still the latest.
	classes := []core.ShareClass{{ID: 1, Name: "Common", Priority: 10}}
	shareholders := []core.Shareholder{{ID: 1, Name: "Alice"}}
	issuances := []core.ShareIssuance{
		{ID: 10, ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("0.10"), IssueDate: date("2024-01-01")},
	}

	future := core.ShareIssuance{ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("0.20"), IssueDate: date("2024-01-01")}
	result := core.RunScenario(issuances, shareholders, classes, future)

	if !result.Future.LatestValuationPerShare.Equal(decimal.RequireFromString("0.20")) {
		t.Errorf("expected future latest price 0.20, got %s", result.Future.LatestValuationPerShare)
	}
}
