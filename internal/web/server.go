// Package web provides the EstateBI JSON API server.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evcraddock/estatebi/internal/activity"
	"github.com/evcraddock/estatebi/internal/auth"
	"github.com/evcraddock/estatebi/internal/dashboard"
	"github.com/evcraddock/estatebi/internal/events"
	"github.com/evcraddock/estatebi/internal/ingest"
	"github.com/evcraddock/estatebi/internal/logging"
	"github.com/evcraddock/estatebi/internal/property"
	"github.com/evcraddock/estatebi/internal/region"
	"github.com/evcraddock/estatebi/internal/transaction"
	"github.com/evcraddock/estatebi/internal/upload"
)

// Version is reported by the system settings endpoint.
const Version = "2.0.0"

// DefaultMaxUploadBytes caps upload request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Options configures a Server.
type Options struct {
	Issuer         *auth.TokenIssuer
	Publisher      events.Publisher
	MaxUploadBytes int64
	CORSOrigin     string
}

// Server is the API HTTP server.
type Server struct {
	db           *sql.DB
	propRepo     *property.Repository
	propService  *property.Service
	txRepo       *transaction.Repository
	regionRepo   *region.Repository
	users        *auth.UserStore
	issuer       *auth.TokenIssuer
	loginLimiter *auth.RateLimiter
	activity     *activity.Repository
	history      *upload.Repository
	dashboard    *dashboard.Service
	ingester     *ingest.Ingester
	maxUpload    int64
	corsOrigin   string
	now          func() time.Time
	mux          *http.ServeMux
	handler      http.Handler
}

// NewServer creates an API server backed by db.
func NewServer(db *sql.DB, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	propRepo := property.NewRepository(db)
	s := &Server{
		db:           db,
		propRepo:     propRepo,
		propService:  property.NewService(propRepo),
		txRepo:       transaction.NewRepository(db),
		regionRepo:   region.NewRepository(db),
		users:        auth.NewUserStore(db),
		issuer:       opts.Issuer,
		loginLimiter: auth.NewRateLimiter(),
		activity:     activity.NewRepository(db),
		history:      upload.NewRepository(db),
		dashboard:    dashboard.NewService(db),
		ingester:     ingest.New(db, opts.Publisher),
		maxUpload:    opts.MaxUploadBytes,
		corsOrigin:   opts.CORSOrigin,
		now:          time.Now,
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/auth/", s.handleAuth)
	s.mux.HandleFunc("/api/dashboard/", s.handleDashboard)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/upload/", s.handleUpload)
	s.mux.HandleFunc("/api/logs", s.handleLogs)
	s.mux.HandleFunc("/api/logs/", s.handleLogs)
	s.mux.HandleFunc("/api/settings/", s.handleSettings)
	s.mux.HandleFunc("/api/properties", s.handleAPIProperties)
	s.mux.HandleFunc("/api/properties/", s.handleAPIProperties)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "Endpoint not found", http.StatusNotFound)
	})

	s.handler = logging.RequestLogger(s.cors(auth.OptionalAuth(s.issuer, s.mux)))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// protected wraps h so it requires a valid bearer token.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(s.issuer, h)
}

// admin wraps h so it requires a valid token with the admin role.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(s.issuer, auth.AdminOnly(h))
}

// cors answers preflight requests and sets the allowed origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if s.corsOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// subpath returns the request path below prefix without surrounding slashes.
func subpath(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}
