package transaction

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/evcraddock/estatebi/internal/db"
)

func TestAddAndList(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	propID := insertProperty(t, d, "CHN001", "Chennai")

	if _, err := repo.Add(ctx, propID, "2026-03-01", 15000000, Completed, "Priya"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := repo.Add(ctx, propID, "2026-04-01", 15500000, Pending, "Ravi"); err != nil {
		t.Fatalf("add: %v", err)
	}

	txs, err := repo.ListByPropertyID(ctx, propID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].TransactionDate != "2026-04-01" {
		t.Errorf("first date = %q, want newest first", txs[0].TransactionDate)
	}
}

func TestAddValidation(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	propID := insertProperty(t, d, "CHN001", "Chennai")

	if _, err := repo.Add(ctx, propID, "2026-03-01", 1, "Lost", ""); err == nil {
		t.Error("expected error for invalid status")
	}
	if _, err := repo.Add(ctx, propID, "03/01/2026", 1, Pending, ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestListRecentAndCounts(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	chn := insertProperty(t, d, "CHN001", "Chennai")
	slm := insertProperty(t, d, "SLM001", "Salem")

	seed := []struct {
		prop   int64
		date   string
		amount float64
		status Status
	}{
		{chn, "2026-01-10", 100, Completed},
		{chn, "2026-01-20", 200, Pending},
		{slm, "2026-02-05", 300, Pending},
		{slm, "2026-02-06", 999, Cancelled},
	}
	for _, s := range seed {
		if _, err := repo.Add(ctx, s.prop, s.date, s.amount, s.status, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	recent, err := repo.ListRecent(ctx, "", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("got %d recent, want 4", len(recent))
	}
	if recent[0].Action != "Review" || recent[0].PropertyCode != "SLM001" {
		t.Errorf("recent[0] = %+v, want cancelled SLM001 with Review", recent[0])
	}

	chennai, err := repo.ListRecent(ctx, "Chennai", 10)
	if err != nil {
		t.Fatalf("recent chennai: %v", err)
	}
	if len(chennai) != 2 {
		t.Errorf("chennai recent = %d, want 2", len(chennai))
	}

	pending, err := repo.CountPending(ctx, "")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 2 {
		t.Errorf("pending = %d, want 2", pending)
	}
	pending, err = repo.CountPending(ctx, "Salem")
	if err != nil {
		t.Fatalf("pending salem: %v", err)
	}
	if pending != 1 {
		t.Errorf("salem pending = %d, want 1", pending)
	}

	amounts, err := repo.ListAmounts(ctx)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if len(amounts) != 3 {
		t.Errorf("amounts = %d, want 3 (cancelled excluded)", len(amounts))
	}
}

func TestStatusAction(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Completed, "View Receipt"},
		{Pending, "Follow Up"},
		{Cancelled, "Review"},
		{"Other", "Review"},
	}
	for _, tt := range tests {
		if got := tt.status.Action(); got != tt.want {
			t.Errorf("%s.Action() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func testRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewRepository(d), d
}

func insertProperty(t *testing.T, d *sql.DB, code, city string) int64 {
	t.Helper()
	res, err := d.Exec("INSERT INTO properties (property_code, city, price) VALUES (?, ?, ?)", code, city, 1000)
	if err != nil {
		t.Fatalf("insert property: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("property id: %v", err)
	}
	return id
}
