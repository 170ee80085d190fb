package web

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/estatebi/internal/activity"
	"github.com/evcraddock/estatebi/internal/auth"
)

// Preferences are the display preferences returned with user settings.
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

var defaultPreferences = Preferences{Theme: "light", Notifications: true, Language: "en"}

// UserSettings is the account view of the settings page.
type UserSettings struct {
	ID          int64       `json:"id,omitempty"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
	Preferences Preferences `json:"preferences"`
}

var guestSettings = UserSettings{
	Name:        "Guest User",
	Email:       "guest@estatebi.com",
	Role:        "viewer",
	Preferences: defaultPreferences,
}

// DatabaseStats are the row counts shown on the system settings page.
type DatabaseStats struct {
	TotalUsers        int64  `json:"total_users"`
	TotalProperties   int64  `json:"total_properties"`
	TotalTransactions int64  `json:"total_transactions"`
	TotalRegions      int64  `json:"total_regions"`
	Status            string `json:"status"`
}

// SystemSettings describes the running server.
type SystemSettings struct {
	Database DatabaseStats `json:"database"`
	Version  string        `json:"version"`
}

// handleSettings routes /api/settings/* requests.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch route := subpath(r, "/api/settings"); {
	case route == "user" && r.Method == http.MethodGet:
		s.apiUserSettings(w, r)
	case route == "user" && r.Method == http.MethodPut:
		s.protected(s.apiUpdateUserSettings).ServeHTTP(w, r)
	case route == "password" && r.Method == http.MethodPut:
		s.protected(s.apiChangePassword).ServeHTTP(w, r)
	case route == "system" && r.Method == http.MethodGet:
		s.apiSystemSettings(w, r)
	case route == "user" || route == "password" || route == "system":
		methodNotAllowed(w)
	default:
		apiError(w, "Endpoint not found", http.StatusNotFound)
	}
}

// apiUserSettings returns the caller's account, or guest defaults when the
// request carries no usable token.
func (s *Server) apiUserSettings(w http.ResponseWriter, r *http.Request) {
	c, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		apiJSON(w, guestSettings, http.StatusOK)
		return
	}

	user, err := s.users.GetByID(r.Context(), c.ID)
	if errors.Is(err, auth.ErrUserNotFound) {
		apiJSON(w, guestSettings, http.StatusOK)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to fetch user settings", err)
		return
	}

	apiJSON(w, UserSettings{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   &user.CreatedAt,
		Preferences: defaultPreferences,
	}, http.StatusOK)
}

// apiUpdateUserSettings changes the caller's name and/or email.
func (s *Server) apiUpdateUserSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, _ := auth.ClaimsFrom(r.Context())
	if _, ok := s.updateProfile(w, r, c.ID, req.Name, req.Email); !ok {
		return
	}

	s.logActivity(r, c.ID, activity.EventSettingsUpdate, "User updated profile settings")
	apiJSON(w, map[string]string{"message": "Settings updated successfully"}, http.StatusOK)
}

// apiSystemSettings reports row counts and the server version.
func (s *Server) apiSystemSettings(w http.ResponseWriter, r *http.Request) {
	stats := DatabaseStats{Status: "connected"}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { stats.TotalUsers, err = s.users.Count(ctx); return })
	g.Go(func() (err error) { stats.TotalProperties, err = s.propRepo.Count(ctx); return })
	g.Go(func() (err error) { stats.TotalTransactions, err = s.txRepo.Count(ctx); return })
	g.Go(func() (err error) { stats.TotalRegions, err = s.regionRepo.Count(ctx); return })

	if err := g.Wait(); err != nil {
		internalError(w, r, "Failed to fetch system settings", err)
		return
	}

	apiJSON(w, SystemSettings{Database: stats, Version: Version}, http.StatusOK)
}
