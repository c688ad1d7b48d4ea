package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ShareholderService manages the shareholders of a company.
type ShareholderService interface {
	Create(ctx context.Context, sh Shareholder) (*Shareholder, error)
	List(ctx context.Context, companyID int) ([]Shareholder, error)
	Update(ctx context.Context, sh Shareholder) (*Shareholder, error)
	Delete(ctx context.Context, id int) error
	// CompanyID returns the owning company of a shareholder, or ErrNotFound.
	CompanyID(ctx context.Context, id int) (int, error)
}

// ShareClassService manages the share classes of a company.
type ShareClassService interface {
	Create(ctx context.Context, sc ShareClass) (*ShareClass, error)
	List(ctx context.Context, companyID int) ([]ShareClass, error)
	Delete(ctx context.Context, id int) error
	CompanyID(ctx context.Context, id int) (int, error)
}

// IssuanceService manages share issuances.
type IssuanceService interface {
	Create(ctx context.Context, iss ShareIssuance) (*ShareIssuance, error)
	// CreateBatch inserts all issuances in one transaction (bulk import).
	CreateBatch(ctx context.Context, issuances []ShareIssuance) error
	List(ctx context.Context, companyID int) ([]ShareIssuance, error)
	Delete(ctx context.Context, id int) error
	CompanyID(ctx context.Context, id int) (int, error)
}

type shareholderService struct{ pool *pgxpool.Pool }
type shareClassService struct{ pool *pgxpool.Pool }
type issuanceService struct{ pool *pgxpool.Pool }

func NewShareholderService(pool *pgxpool.Pool) ShareholderService { return &shareholderService{pool} }
func NewShareClassService(pool *pgxpool.Pool) ShareClassService   { return &shareClassService{pool} }
func NewIssuanceService(pool *pgxpool.Pool) IssuanceService       { return &issuanceService{pool} }

// ── Shareholders ──────────────────────────────────────────────────────────────

func (s *shareholderService) Create(ctx context.Context, sh Shareholder) (*Shareholder, error) {
	if sh.Name == "" {
		return nil, errors.New("shareholder name is required")
	}
	if sh.Type == "" {
		sh.Type = OtherType
	}
	if !ValidShareholderType(sh.Type) {
		return nil, fmt.Errorf("invalid shareholder type %q", sh.Type)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO shareholders (company_id, name, email, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		sh.CompanyID, sh.Name, sh.Email, sh.Type,
	).Scan(&sh.ID, &sh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shareholder: %w", err)
	}
	return &sh, nil
}

func (s *shareholderService) List(ctx context.Context, companyID int) ([]Shareholder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, COALESCE(email, ''), type, created_at
		FROM shareholders WHERE company_id = $1
		ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shareholders: %w", err)
	}
	defer rows.Close()

	var shareholders []Shareholder
	for rows.Next() {
		var sh Shareholder
		if err := rows.Scan(&sh.ID, &sh.CompanyID, &sh.Name, &sh.Email, &sh.Type, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shareholder: %w", err)
		}
		shareholders = append(shareholders, sh)
	}
	return shareholders, rows.Err()
}

func (s *shareholderService) Update(ctx context.Context, sh Shareholder) (*Shareholder, error) {
	if !ValidShareholderType(sh.Type) {
		return nil, fmt.Errorf("invalid shareholder type %q", sh.Type)
	}
	err := s.pool.QueryRow(ctx, `
		UPDATE shareholders SET name = $2, email = $3, type = $4
		WHERE id = $1
		RETURNING id, company_id, name, COALESCE(email, ''), type, created_at`,
		sh.ID, sh.Name, sh.Email, sh.Type,
	).Scan(&sh.ID, &sh.CompanyID, &sh.Name, &sh.Email, &sh.Type, &sh.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shareholder %d: %w", sh.ID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update shareholder %d: %w", sh.ID, err)
	}
	return &sh, nil
}

func (s *shareholderService) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "shareholders", id)
}

func (s *shareholderService) CompanyID(ctx context.Context, id int) (int, error) {
	return companyIDOf(ctx, s.pool, "shareholders", id)
}

// ── Share classes ─────────────────────────────────────────────────────────────

func (s *shareClassService) Create(ctx context.Context, sc ShareClass) (*ShareClass, error) {
	if sc.Name == "" {
		return nil, errors.New("share class name is required")
	}
	if sc.Priority <= 0 {
		return nil, fmt.Errorf("priority must be a positive integer, got %d", sc.Priority)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO share_classes (company_id, name, priority, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		sc.CompanyID, sc.Name, sc.Priority, sc.Description,
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert share class: %w", err)
	}
	return &sc, nil
}

func (s *shareClassService) List(ctx context.Context, companyID int) ([]ShareClass, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, priority, description, created_at
		FROM share_classes WHERE company_id = $1
		ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share classes: %w", err)
	}
	defer rows.Close()

	var classes []ShareClass
	for rows.Next() {
		var sc ShareClass
		if err := rows.Scan(&sc.ID, &sc.CompanyID, &sc.Name, &sc.Priority, &sc.Description, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan share class: %w", err)
		}
		classes = append(classes, sc)
	}
	return classes, rows.Err()
}

func (s *shareClassService) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "share_classes", id)
}

func (s *shareClassService) CompanyID(ctx context.Context, id int) (int, error) {
	return companyIDOf(ctx, s.pool, "share_classes", id)
}

// ── Issuances ─────────────────────────────────────────────────────────────────

func (s *issuanceService) Create(ctx context.Context, iss ShareIssuance) (*ShareIssuance, error) {
	if err := validateIssuance(iss); err != nil {
		return nil, err
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO share_issuances (company_id, shareholder_id, share_class_id, shares, price_per_share, issue_date, round)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		iss.CompanyID, iss.ShareholderID, iss.ShareClassID, iss.Shares, iss.PricePerShare, iss.IssueDate, iss.Round,
	).Scan(&iss.ID, &iss.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert issuance: %w", err)
	}
	return &iss, nil
}

func (s *issuanceService) CreateBatch(ctx context.Context, issuances []ShareIssuance) error {
	if len(issuances) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, iss := range issuances {
		if err := validateIssuance(iss); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO share_issuances (company_id, shareholder_id, share_class_id, shares, price_per_share, issue_date, round)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			iss.CompanyID, iss.ShareholderID, iss.ShareClassID, iss.Shares, iss.PricePerShare, iss.IssueDate, iss.Round,
		); err != nil {
			return fmt.Errorf("failed to insert issuance: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *issuanceService) List(ctx context.Context, companyID int) ([]ShareIssuance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, shareholder_id, share_class_id, shares, price_per_share, issue_date, COALESCE(round, ''), created_at
		FROM share_issuances WHERE company_id = $1
		ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issuances: %w", err)
	}
	defer rows.Close()

	var issuances []ShareIssuance
	for rows.Next() {
		var iss ShareIssuance
		if err := rows.Scan(&iss.ID, &iss.CompanyID, &iss.ShareholderID, &iss.ShareClassID,
			&iss.Shares, &iss.PricePerShare, &iss.IssueDate, &iss.Round, &iss.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan issuance: %w", err)
		}
		issuances = append(issuances, iss)
	}
	return issuances, rows.Err()
}

func (s *issuanceService) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "share_issuances", id)
}

func (s *issuanceService) CompanyID(ctx context.Context, id int) (int, error) {
	return companyIDOf(ctx, s.pool, "share_issuances", id)
}

// validateIssuance enforces the issuance invariants before any insert.
func validateIssuance(iss ShareIssuance) error {
	if iss.Shares <= 0 {
		return fmt.Errorf("shares must be a positive integer, got %d", iss.Shares)
	}
	if iss.PricePerShare.LessThan(decimal.Zero) {
		return fmt.Errorf("price per share cannot be negative, got %s", iss.PricePerShare)
	}
	if iss.IssueDate.IsZero() {
		return errors.New("issue date is required")
	}
	return nil
}

// ── shared query helpers ──────────────────────────────────────────────────────

func deleteByID(ctx context.Context, pool *pgxpool.Pool, table string, id int) error {
	tag, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s id=%d: %w", table, id, ErrNotFound)
	}
	return nil
}

func companyIDOf(ctx context.Context, pool *pgxpool.Pool, table string, id int) (int, error) {
	var companyID int
	err := pool.QueryRow(ctx, "SELECT company_id FROM "+table+" WHERE id = $1", id).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s id=%d: %w", table, id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve company for %s id=%d: %w", table, id, err)
	}
	return companyID, nil
}
