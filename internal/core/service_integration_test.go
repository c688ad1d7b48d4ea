package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"captable/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE capital_raising_notes, share_issuances, shareholders, share_classes, companies, users RESTART IDENTITY CASCADE;

		INSERT INTO users (id, username, email, password_hash, is_admin) VALUES
		(1, 'founder', 'founder@example.com', 'x', false),
		(2, 'operator', 'operator@example.com', 'x', true);

		INSERT INTO companies (id, owner_id, name) VALUES (1, 1, 'Test Startup');

		INSERT INTO share_classes (id, company_id, name, priority) VALUES
		(1, 1, 'Common', 10),
		(2, 1, 'Preference', 1);

		INSERT INTO shareholders (id, company_id, name, email, type) VALUES
		(1, 1, 'Alice', 'alice@example.com', 'Founder'),
		(2, 1, 'Bob', NULL, 'Investor');

		SELECT setval('users_id_seq', 100);
		SELECT setval('companies_id_seq', 100);
		SELECT setval('share_classes_id_seq', 100);
		SELECT setval('shareholders_id_seq', 100);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	users := core.NewUserService(pool)
	companies := core.NewCompanyService(pool)
	classes := core.NewShareClassService(pool)

	user, err := users.Register(ctx, "newfounder", "new@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "newfounder" || user.ID == 0 {
		t.Errorf("unexpected user: %+v", user)
	}

	t.Run("Authenticate_Success", func(t *testing.T) {
		got, err := users.Authenticate(ctx, "newfounder", "s3cret-pass")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, got.ID)
		}
	})

	t.Run("Authenticate_WrongPassword_Fails", func(t *testing.T) {
		if _, err := users.Authenticate(ctx, "newfounder", "wrong"); err == nil {
			t.Error("expected error for wrong password, got nil")
		}
	})

	t.Run("Register_SeedsStarterCompany", func(t *testing.T) {
		owned, err := companies.ListByOwner(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		if len(owned) != 1 {
			t.Fatalf("expected 1 starter company, got %d", len(owned))
		}
		seeded, err := classes.List(ctx, owned[0].ID)
		if err != nil {
			t.Fatalf("List classes: %v", err)
		}
		if len(seeded) != len(core.DefaultShareClasses()) {
			t.Errorf("expected %d default classes, got %d", len(core.DefaultShareClasses()), len(seeded))
		}
	})

	t.Run("Register_ShortPassword_Fails", func(t *testing.T) {
		if _, err := users.Register(ctx, "other", "o@example.com", "short"); err == nil {
			t.Error("expected error for short password, got nil")
		}
	})
}

func TestCompanyService_CreateSeedsDefaultClasses(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	companies := core.NewCompanyService(pool)
	classes := core.NewShareClassService(pool)

	company, err := companies.Create(ctx, 1, "Second Venture", "another one")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	seeded, err := classes.List(ctx, company.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(seeded) != 4 {
		t.Fatalf("expected 4 seeded classes, got %d", len(seeded))
	}
	want := map[string]int{}
	for _, sc := range core.DefaultShareClasses() {
		want[sc.Name] = sc.Priority
	}
	for _, sc := range seeded {
		if priority, ok := want[sc.Name]; !ok || sc.Priority != priority {
			t.Errorf("unexpected seeded class %q (priority %d)", sc.Name, sc.Priority)
		}
	}
}

func TestCompanyService_DeleteCascades(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	companies := core.NewCompanyService(pool)
	issuances := core.NewIssuanceService(pool)

	if _, err := issuances.Create(ctx, core.ShareIssuance{
		CompanyID: 1, ShareholderID: 1, ShareClassID: 1,
		Shares: 1000, PricePerShare: price("0.01"), IssueDate: date("2023-01-01"),
	}); err != nil {
		t.Fatalf("Create issuance: %v", err)
	}

	if err := companies.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM share_issuances WHERE company_id = 1").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected issuances cascade-deleted, %d remain", count)
	}

	if _, err := companies.GetByID(ctx, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIssuanceService_CRUDAndValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	issuances := core.NewIssuanceService(pool)

	t.Run("Create_Success", func(t *testing.T) {
		iss, err := issuances.Create(ctx, core.ShareIssuance{
			CompanyID: 1, ShareholderID: 1, ShareClassID: 1,
			Shares: 1000000, PricePerShare: price("0.01"), IssueDate: date("2023-01-01"), Round: "Seed",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if iss.ID == 0 {
			t.Error("expected issuance ID to be set")
		}
	})

	t.Run("Create_NonPositiveShares_Fails", func(t *testing.T) {
		_, err := issuances.Create(ctx, core.ShareIssuance{
			CompanyID: 1, ShareholderID: 1, ShareClassID: 1,
			Shares: 0, PricePerShare: price("0.01"), IssueDate: date("2023-01-01"),
		})
		if err == nil {
			t.Error("expected error for zero shares, got nil")
		}
	})

	t.Run("Create_NegativePrice_Fails", func(t *testing.T) {
		_, err := issuances.Create(ctx, core.ShareIssuance{
			CompanyID: 1, ShareholderID: 1, ShareClassID: 1,
			Shares: 100, PricePerShare: price("-0.01"), IssueDate: date("2023-01-01"),
		})
		if err == nil {
			t.Error("expected error for negative price, got nil")
		}
	})

	t.Run("List_ScopedByCompany", func(t *testing.T) {
		rows, err := issuances.List(ctx, 1)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("expected 1 issuance, got %d", len(rows))
		}
	})

	t.Run("Delete_ThenGone", func(t *testing.T) {
		rows, _ := issuances.List(ctx, 1)
		if err := issuances.Delete(ctx, rows[0].ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		rows, _ = issuances.List(ctx, 1)
		if len(rows) != 0 {
			t.Errorf("expected no issuances after delete, got %d", len(rows))
		}
	})
}

func TestIssuanceService_CreateBatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	issuances := core.NewIssuanceService(pool)

	batch := []core.ShareIssuance{
		{CompanyID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 100, PricePerShare: price("0.01"), IssueDate: date("2023-01-01")},
		{CompanyID: 1, ShareholderID: 2, ShareClassID: 2, Shares: 200, PricePerShare: price("0.02"), IssueDate: date("2023-02-01"), Round: "Seed"},
	}
	if err := issuances.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	rows, err := issuances.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 issuances, got %d", len(rows))
	}
}

func TestSnapshotService_LoadAndCapTable(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	shareholders := core.NewShareholderService(pool)
	classes := core.NewShareClassService(pool)
	issuances := core.NewIssuanceService(pool)
	snapshots := core.NewSnapshotService(shareholders, classes, issuances)

	if _, err := issuances.Create(ctx, core.ShareIssuance{
		CompanyID: 1, ShareholderID: 1, ShareClassID: 1,
		Shares: 750000, PricePerShare: price("0.01"), IssueDate: date("2023-01-01"),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := issuances.Create(ctx, core.ShareIssuance{
		CompanyID: 1, ShareholderID: 2, ShareClassID: 2,
		Shares: 250000, PricePerShare: price("0.40"), IssueDate: date("2023-06-01"), Round: "Seed",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapshot, err := snapshots.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snapshot.Shareholders) != 2 || len(snapshot.ShareClasses) != 2 || len(snapshot.Issuances) != 2 {
		t.Fatalf("unexpected snapshot sizes: %d/%d/%d",
			len(snapshot.Shareholders), len(snapshot.ShareClasses), len(snapshot.Issuances))
	}

	ct := snapshot.CapTable()
	if ct.TotalShares != 1000000 {
		t.Errorf("expected 1000000 total shares, got %d", ct.TotalShares)
	}
	if !ct.LatestValuationPerShare.Equal(price("0.40")) {
		t.Errorf("expected latest price 0.40, got %s", ct.LatestValuationPerShare)
	}
	// Preference has priority 1, so it leads the class summary.
	if ct.ClassSummary[0].Name != "Preference" {
		t.Errorf("expected Preference first, got %q", ct.ClassSummary[0].Name)
	}
}

func TestShareClassService_DeleteLeavesIssuancesDangling(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	shareholders := core.NewShareholderService(pool)
	classes := core.NewShareClassService(pool)
	issuances := core.NewIssuanceService(pool)
	snapshots := core.NewSnapshotService(shareholders, classes, issuances)

	if _, err := issuances.Create(ctx, core.ShareIssuance{
		CompanyID: 1, ShareholderID: 1, ShareClassID: 2,
		Shares: 500, PricePerShare: price("1"), IssueDate: date("2023-01-01"),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := classes.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete class: %v", err)
	}

	snapshot, err := snapshots.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snapshot.Issuances) != 1 {
		t.Fatalf("expected issuance to survive class delete, got %d", len(snapshot.Issuances))
	}

	ct := snapshot.CapTable()
	last := ct.ClassSummary[len(ct.ClassSummary)-1]
	if last.Name != core.UnknownName || last.Priority != core.UnknownPriority {
		t.Errorf("expected dangling class reported as Unknown/999, got %+v", last)
	}
}

func TestRaiseService_CreateAndList(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	raises := core.NewRaiseService(pool)

	note, err := raises.CreateNote(ctx, 1, 1, "safe", map[string]any{
		"target_amount": 500000,
		"valuation_cap": 4000000,
		"discount_rate": 20,
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.ID == 0 || note.OfferingType != "safe" {
		t.Errorf("unexpected note: %+v", note)
	}

	t.Run("UnknownOfferingType_Fails", func(t *testing.T) {
		if _, err := raises.CreateNote(ctx, 1, 1, "crypto", nil); err == nil {
			t.Error("expected error for unknown offering type, got nil")
		}
	})

	notes, err := raises.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if v, ok := notes[0].Details["target_amount"]; !ok || v == nil {
		t.Errorf("expected details round-tripped, got %+v", notes[0].Details)
	}
}

func TestAdminService_DeleteUserCascades(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	admin := core.NewAdminService(pool)
	companies := core.NewCompanyService(pool)

	users, err := admin.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 seeded users, got %d", len(users))
	}

	if err := admin.DeleteUser(ctx, 1); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	owned, err := companies.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 0 {
		t.Errorf("expected owned companies deleted with the user, got %d", len(owned))
	}
}
