package core_test

import (
	"testing"
	"time"

	"captable/internal/core"
)

func TestScenarioProposal_NormalizationAndValidation(t *testing.T) {
	tests := []struct {
		name      string
		proposal  core.ScenarioProposal
		expectErr bool
	}{
		{
			name: "Happy Path",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          100000,
				PricePerShare:   "0.40",
				IssueDate:       "2024-03-01",
				Round:           "Series A",
				Confidence:      0.95,
			},
			expectErr: false,
		},
		{
			name: "Whitespace trimmed",
			proposal: core.ScenarioProposal{
				ShareholderName: "  Bob  ",
				ShareClassName:  " Common ",
				Shares:          100,
				PricePerShare:   " 0.40 ",
				IssueDate:       " 2024-03-01 ",
			},
			expectErr: false,
		},
		{
			name: "Null price normalizes to zero",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          100,
				PricePerShare:   "null",
				IssueDate:       "2024-03-01",
			},
			expectErr: false, // zero price is legal (option grants)
		},
		{
			name: "Missing shareholder name",
			proposal: core.ScenarioProposal{
				ShareClassName: "Common",
				Shares:         100,
				PricePerShare:  "0.40",
				IssueDate:      "2024-03-01",
			},
			expectErr: true,
		},
		{
			name: "Missing share class name",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				Shares:          100,
				PricePerShare:   "0.40",
				IssueDate:       "2024-03-01",
			},
			expectErr: true,
		},
		{
			name: "Zero shares",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          0,
				PricePerShare:   "0.40",
				IssueDate:       "2024-03-01",
			},
			expectErr: true,
		},
		{
			name: "Negative price",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          100,
				PricePerShare:   "-0.40",
				IssueDate:       "2024-03-01",
			},
			expectErr: true,
		},
		{
			name: "Garbage price",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          100,
				PricePerShare:   "forty cents",
				IssueDate:       "2024-03-01",
			},
			expectErr: true,
		},
		{
			name: "Bad date format",
			proposal: core.ScenarioProposal{
				ShareholderName: "Bob",
				ShareClassName:  "Common",
				Shares:          100,
				PricePerShare:   "0.40",
				IssueDate:       "03/01/2024",
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.proposal.Normalize()
			err := tt.proposal.Validate()
			if tt.expectErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestScenarioProposal_EmptyDateDefaultsToToday(t *testing.T) {
	p := core.ScenarioProposal{
		ShareholderName: "Bob",
		ShareClassName:  "Common",
		Shares:          100,
		PricePerShare:   "0.40",
	}
	p.Normalize()
	if p.IssueDate != time.Now().Format("2006-01-02") {
		t.Errorf("expected today's date, got %q", p.IssueDate)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScenarioProposal_Issuance(t *testing.T) {
	p := core.ScenarioProposal{
		ShareholderName: "Bob",
		ShareClassName:  "Common",
		Shares:          2500,
		PricePerShare:   "0.40",
		IssueDate:       "2024-03-01",
		Round:           "Seed",
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	iss := p.Issuance(3, 7, 9)
	if iss.CompanyID != 3 || iss.ShareholderID != 7 || iss.ShareClassID != 9 {
		t.Errorf("unexpected resolved IDs: %+v", iss)
	}
	if iss.Shares != 2500 || !iss.PricePerShare.Equal(price("0.40")) {
		t.Errorf("unexpected amounts: %+v", iss)
	}
	if iss.IssueDate.Format("2006-01-02") != "2024-03-01" || iss.Round != "Seed" {
		t.Errorf("unexpected date/round: %+v", iss)
	}
	if !iss.LineValue().Equal(price("1000")) {
		t.Errorf("expected line value 1000, got %s", iss.LineValue())
	}
}
