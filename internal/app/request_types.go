package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"captable/internal/core"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
}

func (r RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

type ProfileUpdateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CompanyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r CompanyRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("company name is required")
	}
	return nil
}

type ShareholderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

func (r *ShareholderRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		r.Type = string(core.OtherType)
	}
}

func (r ShareholderRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("shareholder name is required")
	}
	if !core.ValidShareholderType(core.ShareholderType(r.Type)) {
		return fmt.Errorf("unknown shareholder type %q", r.Type)
	}
	return nil
}

type ShareClassRequest struct {
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

func (r *ShareClassRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r ShareClassRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("share class name is required")
	}
	if r.Priority <= 0 {
		return fmt.Errorf("priority must be positive")
	}
	return nil
}

type IssuanceRequest struct {
	ShareholderID int             `json:"shareholder_id"`
	ShareClassID  int             `json:"share_class_id"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	IssueDate     string          `json:"issue_date"`
	Round         string          `json:"round"`
}

func (r *IssuanceRequest) Normalize() {
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.Round = strings.TrimSpace(r.Round)
}

func (r IssuanceRequest) Validate() error {
	if r.ShareholderID <= 0 {
		return fmt.Errorf("shareholder_id is required")
	}
	if r.ShareClassID <= 0 {
		return fmt.Errorf("share_class_id is required")
	}
	if r.Shares <= 0 {
		return fmt.Errorf("shares must be positive")
	}
	if r.PricePerShare.IsNegative() {
		return fmt.Errorf("price_per_share must not be negative")
	}
	if _, err := time.Parse("2006-01-02", r.IssueDate); err != nil {
		return fmt.Errorf("issue_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// Issuance builds the core record for a validated request.
func (r IssuanceRequest) Issuance(companyID int) core.ShareIssuance {
	date, _ := time.Parse("2006-01-02", r.IssueDate)
	return core.ShareIssuance{
		CompanyID:     companyID,
		ShareholderID: r.ShareholderID,
		ShareClassID:  r.ShareClassID,
		Shares:        r.Shares,
		PricePerShare: r.PricePerShare,
		IssueDate:     date,
		Round:         r.Round,
	}
}

type ScenarioRequest struct {
	ShareholderID int             `json:"shareholder_id"`
	ShareClassID  int             `json:"share_class_id"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	IssueDate     string          `json:"issue_date"`
	Round         string          `json:"round"`
}

func (r *ScenarioRequest) Normalize() {
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.Round = strings.TrimSpace(r.Round)
}

func (r ScenarioRequest) Validate() error {
	if r.ShareholderID <= 0 {
		return fmt.Errorf("shareholder_id is required")
	}
	if r.ShareClassID <= 0 {
		return fmt.Errorf("share_class_id is required")
	}
	if r.Shares <= 0 {
		return fmt.Errorf("shares must be positive")
	}
	if r.PricePerShare.IsNegative() {
		return fmt.Errorf("price_per_share must not be negative")
	}
	if r.IssueDate != "" {
		if _, err := time.Parse("2006-01-02", r.IssueDate); err != nil {
			return fmt.Errorf("issue_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// Date returns the parsed issue date; an unset date models the issuance as of
// today.
func (r ScenarioRequest) Date() time.Time {
	if r.IssueDate == "" {
		return time.Now()
	}
	d, _ := time.Parse("2006-01-02", r.IssueDate)
	return d
}

type RaiseNoteRequest struct {
	OfferingType string         `json:"offering_type"`
	Details      map[string]any `json:"details"`
}

func (r *RaiseNoteRequest) Normalize() {
	r.OfferingType = strings.ToLower(strings.TrimSpace(r.OfferingType))
}

func (r RaiseNoteRequest) Validate() error {
	if !core.ValidOfferingType(r.OfferingType) {
		return fmt.Errorf("unknown offering type %q", r.OfferingType)
	}
	return nil
}
