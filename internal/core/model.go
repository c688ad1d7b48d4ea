package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShareholderType string

const (
	Founder    ShareholderType = "Founder"
	Management ShareholderType = "Management"
	Investor   ShareholderType = "Investor"
	Advisor    ShareholderType = "Advisor"
	Employee   ShareholderType = "Employee"
	OtherType  ShareholderType = "Other"
)

// ShareholderTypes lists every accepted shareholder type, in display order.
var ShareholderTypes = []ShareholderType{Founder, Management, Investor, Advisor, Employee, OtherType}

// User is an account holder. IsAdmin gates the operator surface.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Company is owned by exactly one user. Deleting it cascades to its
// shareholders, share classes and issuances.
type Company struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShareClass is a category of equity. Priority drives display order only —
// lower sorts first, duplicates are allowed and broken by insertion order.
type ShareClass struct {
	ID          int       `json:"id"`
	CompanyID   int       `json:"company_id"`
	Name        string    `json:"name"`
	Priority    int       `json:"priority"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Shareholder struct {
	ID        int             `json:"id"`
	CompanyID int             `json:"company_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Type      ShareholderType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShareIssuance is one grant of shares to a shareholder at a price and date.
// Its line value (Shares × PricePerShare) is always derived, never stored.
type ShareIssuance struct {
	ID            int             `json:"id"`
	CompanyID     int             `json:"company_id"`
	ShareholderID int             `json:"shareholder_id"`
	ShareClassID  int             `json:"share_class_id"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	IssueDate     time.Time       `json:"issue_date"`
	Round         string          `json:"round,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineValue returns Shares × PricePerShare, computed fresh from the stored fields.
func (i ShareIssuance) LineValue() decimal.Decimal {
	return decimal.NewFromInt(i.Shares).Mul(i.PricePerShare)
}

// RaiseNote is a capital-raising term memo captured by the offering wizard.
// Details holds the free-form financial inputs as submitted (stored as JSONB).
type RaiseNote struct {
	ID           int            `json:"id"`
	CompanyID    int            `json:"company_id"`
	UserID       int            `json:"user_id"`
	OfferingType string         `json:"offering_type"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DefaultShareClasses is the seed set created for every new company.
func DefaultShareClasses() []ShareClass {
	return []ShareClass{
		{Name: "Common", Priority: 10, Description: "Common shares"},
		{Name: "Preference Participating", Priority: 1, Description: "Participating preference shares"},
		{Name: "Preference Non-Participating", Priority: 2, Description: "Non-participating preference shares"},
		{Name: "Convertible", Priority: 5, Description: "Convertible instruments"},
	}
}

// ValidShareholderType reports whether t is one of the accepted types.
func ValidShareholderType(t ShareholderType) bool {
	for _, v := range ShareholderTypes {
		if v == t {
			return true
		}
	}
	return false
}
