package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Snapshot is one company's full equity state at a point in time: the three
// collections the cap-table engine computes over. A snapshot is a fresh,
// disposable copy — the engine never mutates it and callers get a new one per
// load, so a company switch can never observe a torn mix of two companies.
type Snapshot struct {
	CompanyID    int             `json:"company_id"`
	Shareholders []Shareholder   `json:"shareholders"`
	ShareClasses []ShareClass    `json:"share_classes"`
	Issuances    []ShareIssuance `json:"issuances"`
}

// CapTable computes the cap table over this snapshot.
func (s *Snapshot) CapTable() *CapTable {
	return ComputeCapTable(s.Issuances, s.Shareholders, s.ShareClasses)
}

// SnapshotService loads per-company equity snapshots.
type SnapshotService interface {
	// Load fetches the shareholders, share classes and issuances of one
	// company. The three reads run concurrently and are joined before the
	// snapshot is returned; if any read fails the whole load fails.
	Load(ctx context.Context, companyID int) (*Snapshot, error)
}

type snapshotService struct {
	shareholders ShareholderService
	classes      ShareClassService
	issuances    IssuanceService
}

// NewSnapshotService constructs a SnapshotService over the three collection
// services.
func NewSnapshotService(shareholders ShareholderService, classes ShareClassService, issuances IssuanceService) SnapshotService {
	return &snapshotService{shareholders: shareholders, classes: classes, issuances: issuances}
}

func (s *snapshotService) Load(ctx context.Context, companyID int) (*Snapshot, error) {
	snap := &Snapshot{CompanyID: companyID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Shareholders, err = s.shareholders.List(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.ShareClasses, err = s.classes.List(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Issuances, err = s.issuances.List(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
