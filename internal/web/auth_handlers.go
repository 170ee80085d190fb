package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/estatebi/internal/activity"
	"github.com/evcraddock/estatebi/internal/auth"
)

// handleAuth routes /api/auth/* requests.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch route := subpath(r, "/api/auth"); {
	case route == "login" && r.Method == http.MethodPost:
		s.apiLogin(w, r)
	case route == "signup" && r.Method == http.MethodPost:
		s.apiSignup(w, r)
	case (route == "me" || route == "profile") && r.Method == http.MethodGet:
		s.protected(s.apiMe).ServeHTTP(w, r)
	case route == "profile" && r.Method == http.MethodPut:
		s.protected(s.apiUpdateProfile).ServeHTTP(w, r)
	case route == "change-password" && r.Method == http.MethodPut:
		s.protected(s.apiChangePassword).ServeHTTP(w, r)
	case route == "users" && r.Method == http.MethodGet:
		s.admin(s.apiListUsers).ServeHTTP(w, r)
	case strings.HasPrefix(route, "users/") && r.Method == http.MethodDelete:
		s.admin(s.apiDeleteUser).ServeHTTP(w, r)
	case route == "login" || route == "signup" || route == "me" || route == "profile" || route == "change-password" ||
		route == "users" || strings.HasPrefix(route, "users/"):
		methodNotAllowed(w)
	default:
		apiError(w, "Endpoint not found", http.StatusNotFound)
	}
}

// apiLogin exchanges email and password for a bearer token.
// Repeated failures from one IP are rate limited.
func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		apiError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	ip := clientIP(r)
	if s.loginLimiter.Limited(ip) {
		apiError(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.loginLimiter.RecordFailure(ip)
		apiError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		internalError(w, r, "Login failed", err)
		return
	}
	s.loginLimiter.Reset(ip)

	token, err := s.issuer.Issue(user)
	if err != nil {
		internalError(w, r, "Login failed", err)
		return
	}

	s.logActivity(r, user.ID, activity.EventLogin, fmt.Sprintf("User %s logged in", user.Email))

	apiJSON(w, map[string]interface{}{
		"token": token,
		"user":  user,
	}, http.StatusOK)
}

// apiSignup creates an account.
func (s *Server) apiSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// Only admins may create other admins.
	if req.Role == auth.RoleAdmin {
		if c, ok := auth.ClaimsFrom(r.Context()); !ok || !c.IsAdmin() {
			req.Role = auth.RoleAnalyst
		}
	}

	user, err := s.users.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		apiError(w, "Name, email, and password are required", http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		apiError(w, "Email already registered", http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, r, "Signup failed", err)
		return
	}

	s.logActivity(r, user.ID, activity.EventSignup, fmt.Sprintf("New user %s created", user.Email))

	apiJSON(w, map[string]interface{}{
		"message": "User created successfully",
		"userId":  user.ID,
	}, http.StatusCreated)
}

// apiMe returns the signed-in user's account.
func (s *Server) apiMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	user, err := s.users.GetByID(r.Context(), claims.ID)
	if errors.Is(err, auth.ErrUserNotFound) {
		apiError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get user info", err)
		return
	}
	apiJSON(w, user, http.StatusOK)
}

// apiUpdateProfile sets the signed-in user's name and email.
func (s *Server) apiUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		apiError(w, "Name and email are required", http.StatusBadRequest)
		return
	}

	claims, _ := auth.ClaimsFrom(r.Context())
	user, ok := s.updateProfile(w, r, claims.ID, req.Name, req.Email)
	if !ok {
		return
	}
	apiJSON(w, map[string]interface{}{"message": "Profile updated", "user": user}, http.StatusOK)
}

// apiChangePassword replaces the signed-in user's password.
func (s *Server) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		apiError(w, "Current and new passwords are required", http.StatusBadRequest)
		return
	}

	claims, _ := auth.ClaimsFrom(r.Context())
	err := s.users.ChangePassword(r.Context(), claims.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		apiError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrWrongPassword):
		apiError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrUserNotFound):
		apiError(w, "User not found", http.StatusNotFound)
		return
	case err != nil:
		internalError(w, r, "Failed to change password", err)
		return
	}

	s.logActivity(r, claims.ID, activity.EventPasswordChange, "User changed their password")
	apiJSON(w, map[string]string{"message": "Password changed successfully"}, http.StatusOK)
}

// apiListUsers returns every account. Admin only.
func (s *Server) apiListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		internalError(w, r, "Failed to fetch users", err)
		return
	}
	apiJSON(w, users, http.StatusOK)
}

// apiDeleteUser removes an account. Admin only; admins cannot delete
// themselves.
func (s *Server) apiDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(subpath(r, "/api/auth"), "users/"), 10, 64)
	if err != nil {
		apiError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	claims, _ := auth.ClaimsFrom(r.Context())
	if claims.ID == id {
		apiError(w, "Cannot delete your own account", http.StatusBadRequest)
		return
	}

	err = s.users.Delete(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		apiError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to delete user", err)
		return
	}
	apiJSON(w, map[string]string{"message": "User deleted successfully"}, http.StatusOK)
}

// updateProfile applies a profile change and writes any error response.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, id int64, name, email string) (*auth.User, bool) {
	user, err := s.users.UpdateProfile(r.Context(), id, name, email)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		apiError(w, "Email already in use", http.StatusBadRequest)
		return nil, false
	case errors.Is(err, auth.ErrUserNotFound):
		apiError(w, "User not found", http.StatusNotFound)
		return nil, false
	case err != nil:
		internalError(w, r, "Failed to update profile", err)
		return nil, false
	}
	return user, true
}

// logActivity records an event for userID. Failures are logged only.
func (s *Server) logActivity(r *http.Request, userID int64, event, details string) {
	if _, err := s.activity.Log(r.Context(), &userID, event, details, clientIP(r)); err != nil {
		slogWarn(r, "writing activity log", err)
	}
}
