package core_test

import (
	"strings"
	"testing"

	"captable/internal/core"
)

func TestWriteHoldingsCSV(t *testing.T) {
	issuances, shareholders, classes := aliceFixture()
	ct := core.ComputeCapTable(issuances, shareholders, classes)

	var buf strings.Builder
	if err := core.WriteHoldingsCSV(&buf, ct); err != nil {
		t.Fatalf("WriteHoldingsCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 holdings, got %d lines", len(lines))
	}
	if lines[0] != "shareholderName,shareholderType,shareClassName,shares,pricePerShare,totalValue,issueDate,round" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Alice,Founder,Common,1000000,0.01,10000.00,2023-01-01") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
}

func TestWriteHoldingsCSV_StripsCommasFromNames(t *testing.T) {
	classes := []core.ShareClass{{ID: 1, Name: "Common", Priority: 10}}
	shareholders := []core.Shareholder{{ID: 1, Name: "Acme, Inc.", Type: core.Investor}}
	issuances := []core.ShareIssuance{
		{ID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("1"), IssueDate: date("2023-01-01")},
	}
	ct := core.ComputeCapTable(issuances, shareholders, classes)

	var buf strings.Builder
	if err := core.WriteHoldingsCSV(&buf, ct); err != nil {
		t.Fatalf("WriteHoldingsCSV: %v", err)
	}

	// The format has no quoting, so a comma in a name would corrupt rows.
	if strings.Contains(buf.String(), "Acme, Inc.") {
		t.Errorf("comma not stripped from name: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Acme  Inc.") {
		t.Errorf("expected comma replaced with space: %q", buf.String())
	}
}

func TestWriteClassSummaryCSV(t *testing.T) {
	classes := []core.ShareClass{
		{ID: 1, Name: "Common", Priority: 10},
		{ID: 2, Name: "Preference", Priority: 1},
	}
	shareholders := []core.Shareholder{{ID: 1, Name: "Alice"}}
	issuances := []core.ShareIssuance{
		{ID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 750, PricePerShare: price("1"), IssueDate: date("2023-01-01"), Round: "Seed"},
		{ID: 2, ShareholderID: 1, ShareClassID: 2, Shares: 250, PricePerShare: price("2"), IssueDate: date("2023-02-01"), Round: "Series A"},
	}
	ct := core.ComputeCapTable(issuances, shareholders, classes)

	var buf strings.Builder
	if err := core.WriteClassSummaryCSV(&buf, ct); err != nil {
		t.Fatalf("WriteClassSummaryCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 classes, got %d lines", len(lines))
	}
	// Priority order: Preference (1) before Common (10).
	if !strings.HasPrefix(lines[1], "Preference,1,250,500.00,25.00") {
		t.Errorf("unexpected first class row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Common,10,750,750.00,75.00") {
		t.Errorf("unexpected second class row: %q", lines[2])
	}
}
