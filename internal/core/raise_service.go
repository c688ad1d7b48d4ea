package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Accepted offering types for capital-raising notes.
var OfferingTypes = []string{"common", "preference", "convertible", "safe"}

// RaiseService stores the capital-raising term memos produced by the
// offering wizard. The financial inputs are kept as-submitted in JSONB.
type RaiseService interface {
	CreateNote(ctx context.Context, companyID, userID int, offeringType string, details map[string]any) (*RaiseNote, error)
	ListNotes(ctx context.Context, companyID int) ([]RaiseNote, error)
}

type raiseService struct {
	pool *pgxpool.Pool
}

// NewRaiseService constructs a RaiseService backed by PostgreSQL.
func NewRaiseService(pool *pgxpool.Pool) RaiseService {
	return &raiseService{pool: pool}
}

func (s *raiseService) CreateNote(ctx context.Context, companyID, userID int, offeringType string, details map[string]any) (*RaiseNote, error) {
	if !ValidOfferingType(offeringType) {
		return nil, fmt.Errorf("invalid offering type %q", offeringType)
	}
	if details == nil {
		return nil, errors.New("financial details are required")
	}

	n := &RaiseNote{CompanyID: companyID, UserID: userID, OfferingType: offeringType, Details: details}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO capital_raising_notes (company_id, user_id, offering_type, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		companyID, userID, offeringType, details,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert raise note: %w", err)
	}
	return n, nil
}

func (s *raiseService) ListNotes(ctx context.Context, companyID int) ([]RaiseNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, user_id, offering_type, details, created_at
		FROM capital_raising_notes WHERE company_id = $1
		ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list raise notes: %w", err)
	}
	defer rows.Close()

	var notes []RaiseNote
	for rows.Next() {
		var n RaiseNote
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.OfferingType, &n.Details, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raise note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ValidOfferingType reports whether t is one of the accepted offering types.
func ValidOfferingType(t string) bool {
	for _, v := range OfferingTypes {
		if v == t {
			return true
		}
	}
	return false
}
