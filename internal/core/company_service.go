package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompanyService manages companies and their seeded share classes.
type CompanyService interface {
	// Create inserts a company and seeds the default share-class set in one
	// transaction.
	Create(ctx context.Context, ownerID int, name, description string) (*Company, error)

	// GetByID returns a company, or ErrNotFound.
	GetByID(ctx context.Context, id int) (*Company, error)

	// ListByOwner returns all companies owned by the user, oldest first.
	ListByOwner(ctx context.Context, ownerID int) ([]Company, error)

	// Update changes name and description.
	Update(ctx context.Context, id int, name, description string) (*Company, error)

	// Delete removes a company. Shareholders, share classes and issuances go
	// with it via FK cascade.
	Delete(ctx context.Context, id int) error
}

type companyService struct {
	pool *pgxpool.Pool
}

// NewCompanyService constructs a CompanyService backed by PostgreSQL.
func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

func (s *companyService) Create(ctx context.Context, ownerID int, name, description string) (*Company, error) {
	if name == "" {
		return nil, errors.New("company name is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &Company{OwnerID: ownerID, Name: name, Description: description}
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (owner_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		ownerID, name, description,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert company: %w", err)
	}

	for _, sc := range DefaultShareClasses() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO share_classes (company_id, name, priority, description)
			VALUES ($1, $2, $3, $4)`,
			c.ID, sc.Name, sc.Priority, sc.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to seed share class %s: %w", sc.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit company creation: %w", err)
	}
	return c, nil
}

func (s *companyService) GetByID(ctx context.Context, id int) (*Company, error) {
	c := &Company{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company %d: %w", id, err)
	}
	return c, nil
}

func (s *companyService) ListByOwner(ctx context.Context, ownerID int) ([]Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM companies WHERE owner_id = $1
		ORDER BY id`, ownerID)
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

func (s *companyService) Update(ctx context.Context, id int, name, description string) (*Company, error) {
	c := &Company{}
	err := s.pool.QueryRow(ctx, `
		UPDATE companies SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, owner_id, name, description, created_at`,
		id, name, description,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update company %d: %w", id, err)
	}
	return c, nil
}

func (s *companyService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete company %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	return nil
}
