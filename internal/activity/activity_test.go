package activity

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/estatebi/internal/db"
)

func TestLogAndList(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	userID := insertUser(t, d, "Asha")

	if _, err := repo.Log(ctx, &userID, EventLogin, "Logged in", "127.0.0.1"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := repo.Log(ctx, nil, EventDataImport, "Imported 3 properties from a.csv (0 failed)", ""); err != nil {
		t.Fatalf("log: %v", err)
	}

	entries, err := repo.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].User != "System" || entries[0].Event != EventDataImport {
		t.Errorf("entries[0] = %+v, want system import", entries[0])
	}
	if entries[1].User != "Asha" {
		t.Errorf("entries[1].User = %q, want Asha", entries[1].User)
	}
	if time.Since(entries[0].Time) > time.Hour {
		t.Errorf("entry time %v looks wrong", entries[0].Time)
	}
}

func TestListFilters(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	userID := insertUser(t, d, "Asha")

	for _, ev := range []string{EventLogin, EventLogin, EventDataImport} {
		if _, err := repo.Log(ctx, &userID, ev, "", ""); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	if _, err := repo.Log(ctx, nil, EventDataImport, "", ""); err != nil {
		t.Fatalf("log: %v", err)
	}

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"event substring", ListOptions{Event: "Login"}, 2},
		{"user", ListOptions{UserID: userID}, 3},
		{"event and user", ListOptions{Event: "Import", UserID: userID}, 1},
		{"limit", ListOptions{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLogRequiresEvent(t *testing.T) {
	repo, _ := testRepo(t)
	if _, err := repo.Log(context.Background(), nil, "", "x", ""); !errors.Is(err, ErrEventRequired) {
		t.Errorf("error = %v, want ErrEventRequired", err)
	}
}

func TestStats(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	for _, ev := range []string{EventLogin, EventDataImport, EventLogin, EventLogin} {
		if _, err := repo.Log(ctx, nil, ev, "", ""); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(stats))
	}
	if stats[0].Event != EventLogin || stats[0].Count != 3 {
		t.Errorf("stats[0] = %+v, want login x3", stats[0])
	}
	if len(stats[0].LastOccurrence) != 10 {
		t.Errorf("last_occurrence = %q, want YYYY-MM-DD", stats[0].LastOccurrence)
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

func insertUser(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()
	res, err := d.Exec(
		"INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
		name, name+"@example.com", "x",
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return id
}
