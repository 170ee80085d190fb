package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "estatebi.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "estatebi.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "estatebi.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := d.Close(); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestOpenDriverRejectsUnknown(t *testing.T) {
	if _, err := OpenDriver("postgres", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"user:pw@tcp(localhost:3306)/estatebi", "user:pw@tcp(localhost:3306)/estatebi?parseTime=true&clientFoundRows=true"},
		{"user:pw@/estatebi?charset=utf8mb4", "user:pw@/estatebi?charset=utf8mb4&parseTime=true&clientFoundRows=true"},
		{"user:pw@/estatebi?parseTime=false", "user:pw@/estatebi?parseTime=false&clientFoundRows=true"},
	}
	for _, tt := range tests {
		if got := mysqlDSN(tt.in); got != tt.want {
			t.Errorf("mysqlDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		table string
		cols  []string
	}{
		{"users", []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}},
		{"regions", []string{"id", "name", "city", "state", "created_at", "pincode"}},
		{"properties", []string{"id", "property_code", "address", "city", "region_id", "type", "status", "price", "sqft", "bedrooms", "bathrooms", "year_built", "description", "created_at", "updated_at"}},
		{"transactions", []string{"id", "property_id", "transaction_date", "amount", "status", "buyer_name", "created_at"}},
		{"logs", []string{"id", "user_id", "event", "details", "ip_address", "created_at"}},
		{"upload_history", []string{"id", "user_id", "filename", "file_type", "records_processed", "records_failed", "status", "created_at"}},
	}

	d := openTestDB(t)

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			cols := tableColumns(t, d, tt.table)
			if len(cols) != len(tt.cols) {
				t.Fatalf("got %d columns, want %d: %v", len(cols), len(tt.cols), cols)
			}
			for i, want := range tt.cols {
				if cols[i] != want {
					t.Errorf("column %d = %q, want %q", i, cols[i], want)
				}
			}
		})
	}
}

func TestPropertyCodeUnique(t *testing.T) {
	d := openTestDB(t)

	insert := `INSERT INTO properties (property_code, city, price) VALUES (?, ?, ?)`
	if _, err := d.Exec(insert, "CHN001", "Chennai", 100); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := d.Exec(insert, "CHN001", "Chennai", 200); err == nil {
		t.Error("expected unique constraint error on duplicate property_code")
	}
}

func TestRegionDeleteNullsProperty(t *testing.T) {
	d := openTestDB(t)

	res, err := d.Exec(`INSERT INTO regions (name, city) VALUES (?, ?)`, "Adyar", "Chennai")
	if err != nil {
		t.Fatalf("insert region: %v", err)
	}
	regionID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	if _, err := d.Exec(
		`INSERT INTO properties (property_code, city, region_id, price) VALUES (?, ?, ?, ?)`,
		"CHN002", "Chennai", regionID, 100,
	); err != nil {
		t.Fatalf("insert property: %v", err)
	}

	if _, err := d.Exec(`DELETE FROM regions WHERE id = ?`, regionID); err != nil {
		t.Fatalf("delete region: %v", err)
	}

	var got sql.NullInt64
	if err := d.QueryRow(`SELECT region_id FROM properties WHERE property_code = ?`, "CHN002").Scan(&got); err != nil {
		t.Fatalf("select region_id: %v", err)
	}
	if got.Valid {
		t.Errorf("region_id = %d, want NULL", got.Int64)
	}
}

func TestCascadeDeleteTransactions(t *testing.T) {
	d := openTestDB(t)

	res, err := d.Exec(
		`INSERT INTO properties (property_code, city, price) VALUES (?, ?, ?)`,
		"SLM001", "Salem", 5000000,
	)
	if err != nil {
		t.Fatalf("insert property: %v", err)
	}
	propID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err = d.Exec(
			`INSERT INTO transactions (property_id, transaction_date, amount) VALUES (?, ?, ?)`,
			propID, fmt.Sprintf("2026-0%d-01", i+1), 5000000,
		)
		if err != nil {
			t.Fatalf("insert transaction %d: %v", i, err)
		}
	}

	if _, err := d.Exec(`DELETE FROM properties WHERE id = ?`, propID); err != nil {
		t.Fatalf("delete property: %v", err)
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM transactions WHERE property_id = ?`, propID).Scan(&count); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 transactions after cascade delete, got %d", count)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estatebi.db")

	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := d2.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(p) != "estatebi.db" {
		t.Errorf("expected filename estatebi.db, got %s", filepath.Base(p))
	}

	dir := filepath.Base(filepath.Dir(p))
	if dir != ".estatebi" {
		t.Errorf("expected directory .estatebi, got %s", dir)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "estatebi.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// tableColumns returns column names for a table using PRAGMA table_info.
func tableColumns(t *testing.T, d *sql.DB, table string) []string {
	t.Helper()
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("pragma table_info(%s): %v", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.Errorf("close rows: %v", err)
		}
	}()

	var cols []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate columns: %v", err)
	}
	return cols
}
