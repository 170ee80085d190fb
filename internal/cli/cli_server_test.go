package cli

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/estatebi/internal/auth"
	"github.com/evcraddock/estatebi/internal/db"
	"github.com/evcraddock/estatebi/internal/web"
)

// testAPI starts an API server over a temp database with one account,
// ops@example.com / secret123.
func testAPI(t *testing.T) *httptest.Server {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	if _, err := auth.NewUserStore(d).Create(context.Background(), "Ops", "ops@example.com", "secret123", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}

	srv := httptest.NewServer(web.NewServer(d, web.Options{Issuer: auth.NewTokenIssuer("test-secret", time.Hour)}))
	t.Cleanup(srv.Close)
	return srv
}
