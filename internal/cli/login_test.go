package cli

import (
	"context"
	"strings"
	"testing"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "ops@example.com", "secret123", false},
		{"empty email", "", "secret123", true},
		{"empty password", "ops@example.com", "", true},
		{"not an email", "ops", "secret123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCredentials(tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCredentials(%q, %q) err = %v, wantErr = %v", tt.email, tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := testAPI(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ESTATEBI_SERVER_URL", "")
	t.Setenv("ESTATEBI_TOKEN", "")

	// Password comes from stdin.
	if err := runLogin(context.Background(), strings.NewReader("secret123\n"), srv.URL, "ops@example.com", ""); err != nil {
		t.Fatalf("login: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token == "" {
		t.Error("expected token to be saved")
	}
	if cfg.ServerURL != srv.URL {
		t.Errorf("server_url = %q, want %q", cfg.ServerURL, srv.URL)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := testAPI(t)
	t.Setenv("HOME", t.TempDir())

	err := runLogin(context.Background(), strings.NewReader(""), srv.URL, "ops@example.com", "wrong-pass")
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("error = %v, want Invalid credentials", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "" {
		t.Error("failed login should not save a token")
	}
}

func TestLoginNoInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := runLogin(context.Background(), strings.NewReader(""), "http://localhost:1", "", ""); err == nil {
		t.Fatal("expected error with no credentials")
	}
}
