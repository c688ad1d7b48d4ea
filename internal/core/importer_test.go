package core_test

import (
	"strings"
	"testing"

	"captable/internal/core"
)

func importFixture() ([]core.Shareholder, []core.ShareClass) {
	shareholders := []core.Shareholder{
		{ID: 1, CompanyID: 1, Name: "Alice"},
		{ID: 2, CompanyID: 1, Name: "Bob Jones"},
	}
	classes := []core.ShareClass{
		{ID: 10, CompanyID: 1, Name: "Common"},
		{ID: 11, CompanyID: 1, Name: "Preference Participating"},
	}
	return shareholders, classes
}

func TestParseIssuanceCSV_HappyPath(t *testing.T) {
	shareholders, classes := importFixture()
	data := strings.Join([]string{
		"shareholderName,shareClassName,shares,pricePerShare,issueDate,round",
		"Alice,Common,1000000,0.01,2023-01-01,Seed",
		"Bob Jones,Preference Participating,250000,0.50,2023-06-15,Series A",
	}, "\n")

	issuances, report := core.ParseIssuanceCSV(data, 1, shareholders, classes)

	if report.Imported != 2 || len(report.Skipped) != 0 {
		t.Fatalf("expected 2 imported / 0 skipped, got %d / %d", report.Imported, len(report.Skipped))
	}
	if issuances[0].ShareholderID != 1 || issuances[0].ShareClassID != 10 {
		t.Errorf("unexpected resolution for line 2: %+v", issuances[0])
	}
	if issuances[1].Shares != 250000 || !issuances[1].PricePerShare.Equal(price("0.50")) {
		t.Errorf("unexpected amounts for line 3: %+v", issuances[1])
	}
	if issuances[1].Round != "Series A" {
		t.Errorf("expected round 'Series A', got %q", issuances[1].Round)
	}
}

func TestParseIssuanceCSV_CaseInsensitiveNames(t *testing.T) {
	shareholders, classes := importFixture()
	data := "header\nALICE,common,100,0.01,2023-01-01,Seed"

	issuances, report := core.ParseIssuanceCSV(data, 1, shareholders, classes)
	if report.Imported != 1 {
		t.Fatalf("expected case-insensitive match, got report %+v", report)
	}
	if issuances[0].ShareholderID != 1 {
		t.Errorf("expected Alice (id 1), got %d", issuances[0].ShareholderID)
	}
}

func TestParseIssuanceCSV_SkipsBadLines(t *testing.T) {
	shareholders, classes := importFixture()
	data := strings.Join([]string{
		"shareholderName,shareClassName,shares,pricePerShare,issueDate,round",
		"Nobody,Common,100,0.01,2023-01-01,Seed",        // unknown shareholder
		"Alice,Imaginary,100,0.01,2023-01-01,Seed",      // unknown class
		"Alice,Common,-5,0.01,2023-01-01,Seed",          // non-positive shares
		"Alice,Common,abc,0.01,2023-01-01,Seed",         // non-numeric shares
		"Alice,Common,100,-0.01,2023-01-01,Seed",        // negative price
		"Alice,Common,100,0.01,01/01/2023,Seed",         // bad date
		"Alice,Common,100",                              // too few fields
		"Alice,Common,100,0.01,2023-01-01,Seed",         // valid
		"",                                              // blank, ignored
		"Bob Jones,Common,200,0.02,2023-02-01",          // valid, no round
	}, "\n")

	issuances, report := core.ParseIssuanceCSV(data, 1, shareholders, classes)

	if report.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", report.Imported)
	}
	if len(report.Skipped) != 7 {
		t.Errorf("expected 7 skipped, got %d: %+v", len(report.Skipped), report.Skipped)
	}
	if len(issuances) != 2 {
		t.Fatalf("expected 2 issuances, got %d", len(issuances))
	}
	if issuances[1].Round != "" {
		t.Errorf("expected empty round when the column is absent, got %q", issuances[1].Round)
	}

	// Skip reasons carry 1-based line numbers.
	if report.Skipped[0].Line != 2 {
		t.Errorf("expected first skip at line 2, got %d", report.Skipped[0].Line)
	}
}

func TestParseIssuanceCSV_CRLFAndEmptyInput(t *testing.T) {
	shareholders, classes := importFixture()

	issuances, report := core.ParseIssuanceCSV("header\r\nAlice,Common,100,0.01,2023-01-01,Seed\r\n", 1, shareholders, classes)
	if report.Imported != 1 || len(issuances) != 1 {
		t.Errorf("CRLF input not handled: %+v", report)
	}

	issuances, report = core.ParseIssuanceCSV("", 1, shareholders, classes)
	if report.Imported != 0 || len(issuances) != 0 || len(report.Skipped) != 0 {
		t.Errorf("empty input should import nothing, got %+v", report)
	}
}
