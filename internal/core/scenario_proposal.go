package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioProposal is the AI-generated hypothetical issuance extracted from a
// natural-language "what if" question. Names are resolved against the
// company's records before the scenario runs.
type ScenarioProposal struct {
	ShareholderName string  `json:"shareholder_name" jsonschema_description:"The exact shareholder name from the provided shareholder list, or the new investor's name"`
	ShareClassName  string  `json:"share_class_name" jsonschema_description:"The exact share class name from the provided share class list"`
	Shares          int64   `json:"shares" jsonschema_description:"The number of shares to issue (a positive whole number)"`
	PricePerShare   string  `json:"price_per_share" jsonschema_description:"The price per share as a decimal string (e.g. '0.40'), never negative"`
	IssueDate       string  `json:"issue_date" jsonschema_description:"The issue date in YYYY-MM-DD format. Use today's date if unspecified."`
	Round           string  `json:"round" jsonschema_description:"The fundraising round label (e.g. 'Seed', 'Series A'), or empty if unspecified"`
	Confidence      float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning       string  `json:"reasoning" jsonschema_description:"Explanation of how the event was interpreted"`
}

// ScenarioClarification is returned by the AI when the what-if question is
// ambiguous or missing critical information.
type ScenarioClarification struct {
	Message string `json:"message" jsonschema_description:"A message asking the user for missing details (e.g., 'Please specify the number of shares and the price per share.')."`
}

// ScenarioAgentResponse wraps the AI output to handle branching between a
// valid ScenarioProposal or a clarification request. The AI must return
// exactly one of these objects.
type ScenarioAgentResponse struct {
	IsClarificationRequest bool                   `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if you lack enough information to create a confident proposal."`
	Clarification          *ScenarioClarification `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Proposal               *ScenarioProposal      `json:"proposal,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}

// Normalize cleans up common LLM formatting issues before validation.
func (p *ScenarioProposal) Normalize() {
	p.ShareholderName = strings.TrimSpace(p.ShareholderName)
	p.ShareClassName = strings.TrimSpace(p.ShareClassName)
	p.Round = strings.TrimSpace(p.Round)
	p.IssueDate = strings.TrimSpace(p.IssueDate)
	p.PricePerShare = strings.TrimSpace(p.PricePerShare)

	if strings.ToLower(p.PricePerShare) == "null" || p.PricePerShare == "" {
		p.PricePerShare = "0"
	}
	if p.IssueDate == "" {
		p.IssueDate = time.Now().Format("2006-01-02")
	}
}

// Validate enforces the issuance invariants: positive whole shares, a
// non-negative decimal price, a parseable date, and both names present.
func (p *ScenarioProposal) Validate() error {
	if p.ShareholderName == "" {
		return errors.New("proposal must name a shareholder")
	}
	if p.ShareClassName == "" {
		return errors.New("proposal must name a share class")
	}
	if p.Shares <= 0 {
		return fmt.Errorf("shares must be > 0, got %d", p.Shares)
	}
	price, err := decimal.NewFromString(p.PricePerShare)
	if err != nil {
		return fmt.Errorf("invalid price per share %q: %v", p.PricePerShare, err)
	}
	if price.IsNegative() {
		return fmt.Errorf("price per share cannot be negative, got %s", p.PricePerShare)
	}
	if _, err := time.Parse("2006-01-02", p.IssueDate); err != nil {
		return fmt.Errorf("invalid issue date format: %w", err)
	}
	return nil
}

// Issuance converts a validated proposal into a ShareIssuance for the given
// resolved shareholder and share class. Validate must have passed.
func (p *ScenarioProposal) Issuance(companyID, shareholderID, shareClassID int) ShareIssuance {
	price, _ := decimal.NewFromString(p.PricePerShare)
	date, _ := time.Parse("2006-01-02", p.IssueDate)
	return ShareIssuance{
		CompanyID:     companyID,
		ShareholderID: shareholderID,
		ShareClassID:  shareClassID,
		Shares:        p.Shares,
		PricePerShare: price,
		IssueDate:     date,
		Round:         p.Round,
	}
}
