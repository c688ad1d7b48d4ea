package app

import (
	"context"
	"io"

	"captable/internal/core"
)

// Actor identifies the authenticated user performing a request. Admins bypass
// company ownership checks.
type Actor struct {
	UserID  int
	IsAdmin bool
}

// UserSession is the authenticated identity handed to the web adapter for
// token signing.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ApplicationService is the single boundary the adapters (web, CLI) talk to.
// Every company-scoped operation verifies the acting user owns the company
// (admins excepted) and returns core.ErrForbidden otherwise.
type ApplicationService interface {
	// ── Accounts ──────────────────────────────────────────────────────────────
	RegisterUser(ctx context.Context, req RegisterRequest) (*UserSession, error)
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
	GetUser(ctx context.Context, userID int) (*core.User, error)
	UpdateProfile(ctx context.Context, userID int, req ProfileUpdateRequest) error

	// ── Companies ─────────────────────────────────────────────────────────────
	ListCompanies(ctx context.Context, actor Actor) ([]core.Company, error)
	CreateCompany(ctx context.Context, actor Actor, req CompanyRequest) (*core.Company, error)
	GetCompany(ctx context.Context, actor Actor, companyID int) (*core.Company, error)
	UpdateCompany(ctx context.Context, actor Actor, companyID int, req CompanyRequest) (*core.Company, error)
	DeleteCompany(ctx context.Context, actor Actor, companyID int) error

	// ── Equity records ────────────────────────────────────────────────────────
	ListShareholders(ctx context.Context, actor Actor, companyID int) ([]core.Shareholder, error)
	CreateShareholder(ctx context.Context, actor Actor, companyID int, req ShareholderRequest) (*core.Shareholder, error)
	UpdateShareholder(ctx context.Context, actor Actor, shareholderID int, req ShareholderRequest) (*core.Shareholder, error)
	DeleteShareholder(ctx context.Context, actor Actor, shareholderID int) error

	ListShareClasses(ctx context.Context, actor Actor, companyID int) ([]core.ShareClass, error)
	CreateShareClass(ctx context.Context, actor Actor, companyID int, req ShareClassRequest) (*core.ShareClass, error)
	DeleteShareClass(ctx context.Context, actor Actor, shareClassID int) error

	ListIssuances(ctx context.Context, actor Actor, companyID int) ([]core.EnrichedIssuance, error)
	CreateIssuance(ctx context.Context, actor Actor, companyID int, req IssuanceRequest) (*core.ShareIssuance, error)
	DeleteIssuance(ctx context.Context, actor Actor, issuanceID int) error

	// ── Cap table ─────────────────────────────────────────────────────────────
	// GetCapTable loads the company snapshot (three concurrent reads) and
	// computes the full summary the dashboard and reports consume.
	GetCapTable(ctx context.Context, actor Actor, companyID int) (*core.CapTable, error)

	// RunScenario models a hypothetical issuance against the current state.
	RunScenario(ctx context.Context, actor Actor, companyID int, req ScenarioRequest) (*core.ScenarioResult, error)

	// InterpretScenario sends a natural-language what-if to the AI agent and,
	// when the proposal resolves against the company's records, runs it.
	InterpretScenario(ctx context.Context, actor Actor, companyID int, text string) (*AIScenarioResult, error)

	// ── Import / export ───────────────────────────────────────────────────────
	ImportIssuancesCSV(ctx context.Context, actor Actor, companyID int, data string) (*core.ImportReport, error)
	ExportHoldingsCSV(ctx context.Context, actor Actor, companyID int, w io.Writer) error
	ExportClassSummaryCSV(ctx context.Context, actor Actor, companyID int, w io.Writer) error

	// ── Notifications ─────────────────────────────────────────────────────────
	NotifyShareholders(ctx context.Context, actor Actor, companyID int, shareholderIDs []int) (*core.NotifyResult, error)

	// ── Capital raising ───────────────────────────────────────────────────────
	CreateRaiseNote(ctx context.Context, actor Actor, companyID int, req RaiseNoteRequest) (*core.RaiseNote, error)
	ListRaiseNotes(ctx context.Context, actor Actor, companyID int) ([]core.RaiseNote, error)

	// ── Admin surface ─────────────────────────────────────────────────────────
	AdminList(ctx context.Context, actor Actor, entity string) (any, error)
	AdminDelete(ctx context.Context, actor Actor, entity string, id int) error
}
