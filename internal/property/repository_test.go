package property

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/evcraddock/estatebi/internal/db"
)

func TestInsertAndGetByID(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	year := int64(2020)
	saved, err := repo.Insert(ctx, &Property{
		PropertyCode: "CHN001",
		Address:      "123 Example Road",
		City:         "Chennai",
		Type:         "Residential",
		Status:       "Active",
		Price:        15000000,
		Sqft:         1800,
		Bedrooms:     3,
		Bathrooms:    2,
		YearBuilt:    &year,
		Description:  "Sample property description",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := repo.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.PropertyCode != "CHN001" {
		t.Errorf("property_code = %q, want CHN001", got.PropertyCode)
	}
	if got.YearBuilt == nil || *got.YearBuilt != 2020 {
		t.Errorf("year_built = %v, want 2020", got.YearBuilt)
	}
	if got.RegionID != nil {
		t.Errorf("region_id = %v, want nil", *got.RegionID)
	}
}

func TestGetNotFound(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByCode(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByCode error = %v, want ErrNotFound", err)
	}
}

func TestUpsert(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	regionID := insertRegion(t, d, "Fairlands", "Salem")

	p := &Property{
		PropertyCode: "SLM001",
		Address:      "456 Sample Street",
		City:         "Salem",
		RegionID:     &regionID,
		Type:         "Commercial",
		Status:       "Active",
		Price:        8000000,
		Sqft:         2500,
	}

	created, err := repo.Upsert(ctx, p)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	p.Price = 9000000
	p.Status = "Sold"
	created, err = repo.Upsert(ctx, p)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should update")
	}

	got, err := repo.GetByCode(ctx, "SLM001")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got.Price != 9000000 || got.Status != "Sold" {
		t.Errorf("got price %v status %s, want 9000000 Sold", got.Price, got.Status)
	}
	if got.RegionName != "Fairlands" {
		t.Errorf("region_name = %q, want Fairlands", got.RegionName)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestList(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	seed := []*Property{
		{PropertyCode: "A", City: "Chennai", Type: "Residential", Status: "Active", Price: 1},
		{PropertyCode: "B", City: "Chennai", Type: "Land", Status: "Sold", Price: 2},
		{PropertyCode: "C", City: "Salem", Type: "Residential", Status: "Active", Price: 3},
	}
	for _, p := range seed {
		if _, err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("insert %s: %v", p.PropertyCode, err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"all", ListOptions{}, 3},
		{"by city", ListOptions{City: "Chennai"}, 2},
		{"by type", ListOptions{Type: "Residential"}, 2},
		{"by status and city", ListOptions{City: "Chennai", Status: "Sold"}, 1},
		{"limit", ListOptions{Limit: 2}, 2},
		{"offset", ListOptions{Limit: 2, Offset: 2}, 1},
		{"no match", ListOptions{City: "Madurai"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d properties, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	for _, p := range []*Property{
		{PropertyCode: "CHN100", Address: "12 Beach Road", City: "Chennai", Price: 1},
		{PropertyCode: "SLM100", Address: "4 Hill View", City: "Salem", Price: 1, Description: "near the beach"},
		{PropertyCode: "SLM101", Address: "9 Market St", City: "Salem", Price: 1},
	} {
		if _, err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := repo.Search(ctx, "beach")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("search beach = %d results, want 2", len(got))
	}

	got, err = repo.Search(ctx, "SLM")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("search SLM = %d results, want 2", len(got))
	}
}

func TestUpdate(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, &Property{PropertyCode: "U1", City: "Salem", Price: 100, Status: "Active"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	price := 250.0
	status := "Pending"
	if err := repo.Update(ctx, saved.ID, Changes{Price: &price, Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 250 || got.Status != "Pending" || got.City != "Salem" {
		t.Errorf("unexpected property after update: %+v", got)
	}

	if err := repo.Update(ctx, saved.ID, Changes{}); !errors.Is(err, ErrNoChanges) {
		t.Errorf("empty update error = %v, want ErrNoChanges", err)
	}
	if err := repo.Update(ctx, 9999, Changes{Price: &price}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing update error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, &Property{PropertyCode: "D1", City: "Salem", Price: 100})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func testRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
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

func insertRegion(t *testing.T, d *sql.DB, name, city string) int64 {
	t.Helper()
	res, err := d.Exec("INSERT INTO regions (name, city) VALUES (?, ?)", name, city)
	if err != nil {
		t.Fatalf("insert region: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("region id: %v", err)
	}
	return id
}
