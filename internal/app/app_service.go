package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"captable/internal/ai"
	"captable/internal/core"
)

type applicationService struct {
	users        core.UserService
	companies    core.CompanyService
	shareholders core.ShareholderService
	classes      core.ShareClassService
	issuances    core.IssuanceService
	snapshots    core.SnapshotService
	raises       core.RaiseService
	admin        core.AdminService
	notify       core.NotifyService
	agent        ai.AgentService
	logger       *slog.Logger
}

// NewApplicationService wires the core services behind the single adapter
// boundary. agent and notify may be nil when the corresponding API keys are
// not configured; the operations then report unavailability.
func NewApplicationService(
	users core.UserService,
	companies core.CompanyService,
	shareholders core.ShareholderService,
	classes core.ShareClassService,
	issuances core.IssuanceService,
	snapshots core.SnapshotService,
	raises core.RaiseService,
	admin core.AdminService,
	notify core.NotifyService,
	agent ai.AgentService,
	logger *slog.Logger,
) ApplicationService {
	return &applicationService{
		users:        users,
		companies:    companies,
		shareholders: shareholders,
		classes:      classes,
		issuances:    issuances,
		snapshots:    snapshots,
		raises:       raises,
		admin:        admin,
		notify:       notify,
		agent:        agent,
		logger:       logger,
	}
}

// ── Accounts ──────────────────────────────────────────────────────────────────

func (s *applicationService) RegisterUser(ctx context.Context, req RegisterRequest) (*UserSession, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return sessionFor(user), nil
}

func (s *applicationService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, err
	}
	return sessionFor(user), nil
}

func (s *applicationService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *applicationService) UpdateProfile(ctx context.Context, userID int, req ProfileUpdateRequest) error {
	if email := strings.TrimSpace(req.Email); email != "" {
		if err := s.users.UpdateEmail(ctx, userID, email); err != nil {
			return err
		}
	}
	if req.Password != "" {
		if err := s.users.UpdatePassword(ctx, userID, req.Password); err != nil {
			return err
		}
	}
	return nil
}

func sessionFor(u *core.User) *UserSession {
	return &UserSession{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// ── Companies ─────────────────────────────────────────────────────────────────

func (s *applicationService) ListCompanies(ctx context.Context, actor Actor) ([]core.Company, error) {
	return s.companies.ListByOwner(ctx, actor.UserID)
}

func (s *applicationService) CreateCompany(ctx context.Context, actor Actor, req CompanyRequest) (*core.Company, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.companies.Create(ctx, actor.UserID, req.Name, req.Description)
}

func (s *applicationService) GetCompany(ctx context.Context, actor Actor, companyID int) (*core.Company, error) {
	return s.authorizeCompany(ctx, actor, companyID)
}

func (s *applicationService) UpdateCompany(ctx context.Context, actor Actor, companyID int, req CompanyRequest) (*core.Company, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.companies.Update(ctx, companyID, req.Name, req.Description)
}

func (s *applicationService) DeleteCompany(ctx context.Context, actor Actor, companyID int) error {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return err
	}
	s.logger.Info("deleting company", "company_id", companyID, "user_id", actor.UserID)
	return s.companies.Delete(ctx, companyID)
}

// authorizeCompany loads the company and checks the actor may touch it.
func (s *applicationService) authorizeCompany(ctx context.Context, actor Actor, companyID int) (*core.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.OwnerID != actor.UserID && !actor.IsAdmin {
		return nil, core.ErrForbidden
	}
	return company, nil
}

// ── Equity records ────────────────────────────────────────────────────────────

func (s *applicationService) ListShareholders(ctx context.Context, actor Actor, companyID int) ([]core.Shareholder, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	return s.shareholders.List(ctx, companyID)
}

func (s *applicationService) CreateShareholder(ctx context.Context, actor Actor, companyID int, req ShareholderRequest) (*core.Shareholder, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.shareholders.Create(ctx, core.Shareholder{
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Type:      core.ShareholderType(req.Type),
	})
}

func (s *applicationService) UpdateShareholder(ctx context.Context, actor Actor, shareholderID int, req ShareholderRequest) (*core.Shareholder, error) {
	companyID, err := s.authorizeRecord(ctx, actor, s.shareholders.CompanyID, shareholderID)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.shareholders.Update(ctx, core.Shareholder{
		ID:        shareholderID,
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Type:      core.ShareholderType(req.Type),
	})
}

func (s *applicationService) DeleteShareholder(ctx context.Context, actor Actor, shareholderID int) error {
	if _, err := s.authorizeRecord(ctx, actor, s.shareholders.CompanyID, shareholderID); err != nil {
		return err
	}
	return s.shareholders.Delete(ctx, shareholderID)
}

func (s *applicationService) ListShareClasses(ctx context.Context, actor Actor, companyID int) ([]core.ShareClass, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	return s.classes.List(ctx, companyID)
}

func (s *applicationService) CreateShareClass(ctx context.Context, actor Actor, companyID int, req ShareClassRequest) (*core.ShareClass, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.classes.Create(ctx, core.ShareClass{
		CompanyID:   companyID,
		Name:        req.Name,
		Priority:    req.Priority,
		Description: req.Description,
	})
}

func (s *applicationService) DeleteShareClass(ctx context.Context, actor Actor, shareClassID int) error {
	if _, err := s.authorizeRecord(ctx, actor, s.classes.CompanyID, shareClassID); err != nil {
		return err
	}
	return s.classes.Delete(ctx, shareClassID)
}

func (s *applicationService) ListIssuances(ctx context.Context, actor Actor, companyID int) ([]core.EnrichedIssuance, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	enriched := core.EnrichIssuances(snapshot.Issuances, snapshot.Shareholders, snapshot.ShareClasses)
	if enriched == nil {
		enriched = []core.EnrichedIssuance{}
	}
	return enriched, nil
}

func (s *applicationService) CreateIssuance(ctx context.Context, actor Actor, companyID int, req IssuanceRequest) (*core.ShareIssuance, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRecordsBelong(ctx, companyID, req.ShareholderID, req.ShareClassID); err != nil {
		return nil, err
	}
	return s.issuances.Create(ctx, req.Issuance(companyID))
}

func (s *applicationService) DeleteIssuance(ctx context.Context, actor Actor, issuanceID int) error {
	if _, err := s.authorizeRecord(ctx, actor, s.issuances.CompanyID, issuanceID); err != nil {
		return err
	}
	return s.issuances.Delete(ctx, issuanceID)
}

// authorizeRecord resolves a child record to its company and checks ownership.
func (s *applicationService) authorizeRecord(ctx context.Context, actor Actor, companyIDOf func(context.Context, int) (int, error), id int) (int, error) {
	companyID, err := companyIDOf(ctx, id)
	if err != nil {
		return 0, err
	}
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return 0, err
	}
	return companyID, nil
}

// checkRecordsBelong rejects issuances that reference records from another
// company.
func (s *applicationService) checkRecordsBelong(ctx context.Context, companyID, shareholderID, shareClassID int) error {
	shCompany, err := s.shareholders.CompanyID(ctx, shareholderID)
	if err != nil {
		return err
	}
	scCompany, err := s.classes.CompanyID(ctx, shareClassID)
	if err != nil {
		return err
	}
	if shCompany != companyID || scCompany != companyID {
		return fmt.Errorf("shareholder and share class must belong to company %d", companyID)
	}
	return nil
}

// ── Cap table ─────────────────────────────────────────────────────────────────

func (s *applicationService) GetCapTable(ctx context.Context, actor Actor, companyID int) (*core.CapTable, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return snapshot.CapTable(), nil
}

func (s *applicationService) RunScenario(ctx context.Context, actor Actor, companyID int, req ScenarioRequest) (*core.ScenarioResult, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	future := core.ShareIssuance{
		CompanyID:     companyID,
		ShareholderID: req.ShareholderID,
		ShareClassID:  req.ShareClassID,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		IssueDate:     req.Date(),
		Round:         req.Round,
	}
	return core.RunScenario(snapshot.Issuances, snapshot.Shareholders, snapshot.ShareClasses, future), nil
}

func (s *applicationService) InterpretScenario(ctx context.Context, actor Actor, companyID int, text string) (*AIScenarioResult, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	if s.agent == nil {
		return nil, fmt.Errorf("scenario assistant is not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("scenario text is required")
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}

	response, err := s.agent.InterpretScenario(ctx, text,
		shareholderNames(snapshot.Shareholders), shareClassNames(snapshot.ShareClasses))
	if err != nil {
		return nil, err
	}
	if response.IsClarificationRequest {
		return &AIScenarioResult{
			IsClarification: true,
			Clarification:   response.Clarification.Message,
		}, nil
	}

	proposal := response.Proposal
	out := &AIScenarioResult{Proposal: proposal}

	shareClass, ok := classByName(snapshot.ShareClasses, proposal.ShareClassName)
	if !ok {
		out.Unresolved = append(out.Unresolved, fmt.Sprintf("share class %q", proposal.ShareClassName))
		return out, nil
	}

	// An unknown shareholder name is a new investor: model them with a
	// synthetic record so the scenario still runs.
	shareholders := snapshot.Shareholders
	holder, ok := shareholderByName(shareholders, proposal.ShareholderName)
	if !ok {
		holder = core.Shareholder{
			ID:        maxShareholderID(shareholders) + 1,
			CompanyID: companyID,
			Name:      proposal.ShareholderName,
			Type:      core.Investor,
		}
		shareholders = append(append([]core.Shareholder(nil), shareholders...), holder)
	}

	future := proposal.Issuance(companyID, holder.ID, shareClass.ID)
	out.Result = core.RunScenario(snapshot.Issuances, shareholders, snapshot.ShareClasses, future)
	s.logger.Info("scenario interpreted",
		"company_id", companyID,
		"shareholder", proposal.ShareholderName,
		"confidence", proposal.Confidence)
	return out, nil
}

func shareholderNames(shareholders []core.Shareholder) string {
	names := make([]string, len(shareholders))
	for i, sh := range shareholders {
		names[i] = sh.Name
	}
	return strings.Join(names, ", ")
}

func shareClassNames(classes []core.ShareClass) string {
	names := make([]string, len(classes))
	for i, sc := range classes {
		names[i] = sc.Name
	}
	return strings.Join(names, ", ")
}

func shareholderByName(shareholders []core.Shareholder, name string) (core.Shareholder, bool) {
	for _, sh := range shareholders {
		if strings.EqualFold(sh.Name, name) {
			return sh, true
		}
	}
	return core.Shareholder{}, false
}

func classByName(classes []core.ShareClass, name string) (core.ShareClass, bool) {
	for _, sc := range classes {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	return core.ShareClass{}, false
}

func maxShareholderID(shareholders []core.Shareholder) int {
	max := 0
	for _, sh := range shareholders {
		if sh.ID > max {
			max = sh.ID
		}
	}
	return max
}

// ── Import / export ───────────────────────────────────────────────────────────

func (s *applicationService) ImportIssuancesCSV(ctx context.Context, actor Actor, companyID int, data string) (*core.ImportReport, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	parsed, report := core.ParseIssuanceCSV(data, companyID, snapshot.Shareholders, snapshot.ShareClasses)
	if len(parsed) > 0 {
		if err := s.issuances.CreateBatch(ctx, parsed); err != nil {
			return nil, err
		}
	}
	s.logger.Info("issuances imported",
		"company_id", companyID,
		"imported", report.Imported,
		"skipped", len(report.Skipped))
	return report, nil
}

func (s *applicationService) ExportHoldingsCSV(ctx context.Context, actor Actor, companyID int, w io.Writer) error {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return err
	}
	return core.WriteHoldingsCSV(w, snapshot.CapTable())
}

func (s *applicationService) ExportClassSummaryCSV(ctx context.Context, actor Actor, companyID int, w io.Writer) error {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return err
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return err
	}
	return core.WriteClassSummaryCSV(w, snapshot.CapTable())
}

// ── Notifications ─────────────────────────────────────────────────────────────

func (s *applicationService) NotifyShareholders(ctx context.Context, actor Actor, companyID int, shareholderIDs []int) (*core.NotifyResult, error) {
	company, err := s.authorizeCompany(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	if s.notify == nil {
		return nil, fmt.Errorf("e-mail notifications are not configured")
	}
	snapshot, err := s.snapshots.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.notify.NotifyShareholders(ctx, company, snapshot, shareholderIDs)
}

// ── Capital raising ───────────────────────────────────────────────────────────

func (s *applicationService) CreateRaiseNote(ctx context.Context, actor Actor, companyID int, req RaiseNoteRequest) (*core.RaiseNote, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.raises.CreateNote(ctx, companyID, actor.UserID, req.OfferingType, req.Details)
}

func (s *applicationService) ListRaiseNotes(ctx context.Context, actor Actor, companyID int) ([]core.RaiseNote, error) {
	if _, err := s.authorizeCompany(ctx, actor, companyID); err != nil {
		return nil, err
	}
	return s.raises.ListNotes(ctx, companyID)
}

// ── Admin surface ─────────────────────────────────────────────────────────────

func (s *applicationService) AdminList(ctx context.Context, actor Actor, entity string) (any, error) {
	if !actor.IsAdmin {
		return nil, core.ErrForbidden
	}
	switch entity {
	case "users":
		return s.admin.ListUsers(ctx)
	case "companies":
		return s.admin.ListCompanies(ctx)
	case "shareholders":
		return s.admin.ListShareholders(ctx)
	case "share-classes":
		return s.admin.ListShareClasses(ctx)
	case "issuances":
		return s.admin.ListIssuances(ctx)
	default:
		return nil, fmt.Errorf("unknown admin entity %q", entity)
	}
}

func (s *applicationService) AdminDelete(ctx context.Context, actor Actor, entity string, id int) error {
	if !actor.IsAdmin {
		return core.ErrForbidden
	}
	switch entity {
	case "users":
		s.logger.Info("admin deleting user", "target_user_id", id, "admin_id", actor.UserID)
		return s.admin.DeleteUser(ctx, id)
	case "companies":
		return s.companies.Delete(ctx, id)
	case "shareholders":
		return s.shareholders.Delete(ctx, id)
	case "share-classes":
		return s.classes.Delete(ctx, id)
	case "issuances":
		return s.issuances.Delete(ctx, id)
	default:
		return fmt.Errorf("unknown admin entity %q", entity)
	}
}
