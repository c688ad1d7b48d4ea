package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService is the operator oversight surface: unscoped listings of every
// entity type plus deletion with the same cascade semantics as owner deletes.
type AdminService interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	ListShareholders(ctx context.Context) ([]Shareholder, error)
	ListShareClasses(ctx context.Context) ([]ShareClass, error)
	ListIssuances(ctx context.Context) ([]ShareIssuance, error)

	// DeleteUser removes a user and every company they own (and, via FK
	// cascade, everything under those companies).
	DeleteUser(ctx context.Context, id int) error
}

type adminService struct {
	pool *pgxpool.Pool
}

// NewAdminService constructs an AdminService backed by PostgreSQL.
func NewAdminService(pool *pgxpool.Pool) AdminService {
	return &adminService{pool: pool}
}

func (s *adminService) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, email, is_admin, is_active, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *adminService) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *adminService) ListShareholders(ctx context.Context) ([]Shareholder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, COALESCE(email, ''), type, created_at
		FROM shareholders ORDER BY id`)
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

func (s *adminService) ListShareClasses(ctx context.Context) ([]ShareClass, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, priority, description, created_at
		FROM share_classes ORDER BY id`)
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

func (s *adminService) ListIssuances(ctx context.Context) ([]ShareIssuance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, shareholder_id, share_class_id, shares, price_per_share, issue_date, COALESCE(round, ''), created_at
		FROM share_issuances ORDER BY id`)
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

func (s *adminService) DeleteUser(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Companies cascade to their shareholders/classes/issuances via FK.
	if _, err := tx.Exec(ctx, "DELETE FROM companies WHERE owner_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete companies of user %d: %w", id, err)
	}
	tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user id=%d: %w", id, ErrNotFound)
	}
	return tx.Commit(ctx)
}
