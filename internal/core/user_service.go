package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"captable/internal/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService manages accounts and credentials.
type UserService interface {
	// Register creates a user and their starter company (with the default
	// share classes) in one transaction.
	Register(ctx context.Context, username, email, password string) (*User, error)

	// Authenticate verifies credentials and returns the active user.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// GetByID returns a user by primary key, or ErrNotFound.
	GetByID(ctx context.Context, id int) (*User, error)

	// UpdateEmail changes the account e-mail.
	UpdateEmail(ctx context.Context, id int, email string) error

	// UpdatePassword rehashes and stores a new password.
	UpdatePassword(ctx context.Context, id int, password string) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u := &User{Username: username, Email: email, IsActive: true}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, is_admin, is_active, created_at`,
		username, email, hash,
	).Scan(&u.ID, &u.IsAdmin, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user %q: %w", username, err)
	}

	// Starter company, so a fresh account lands on a working dashboard.
	var companyID int
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (owner_id, name, description)
		VALUES ($1, $2, 'Starter company')
		RETURNING id`,
		u.ID, username+"'s Company",
	).Scan(&companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create starter company: %w", err)
	}
	for _, sc := range DefaultShareClasses() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO share_classes (company_id, name, priority, description)
			VALUES ($1, $2, $3, $4)`,
			companyID, sc.Name, sc.Priority, sc.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to seed share class %s: %w", sc.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_admin, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = true
		LIMIT 1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %q not found: %w", username, err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errors.New("invalid credentials")
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_admin, is_active, created_at
		FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user id=%d: %w", id, err)
	}
	return u, nil
}

func (s *userService) UpdateEmail(ctx context.Context, id int, email string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE users SET email = $2 WHERE id = $1", id, email)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user id=%d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, id int, password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	tag, err := s.pool.Exec(ctx, "UPDATE users SET password_hash = $2 WHERE id = $1", id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user id=%d: %w", id, ErrNotFound)
	}
	return nil
}
