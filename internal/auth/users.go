// Package auth provides password accounts, JWT bearer tokens and the HTTP
// middleware that checks them.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 6

// Account errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrMissingFields      = errors.New("name, email, and password are required")
)

// User is an account that can sign in.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore manages accounts.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const selectUser = "SELECT id, name, email, role, created_at FROM users"

// Create adds an account. An empty role becomes analyst.
func (s *UserStore) Create(ctx context.Context, name, email, password, role string) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if role == "" {
		role = RoleAnalyst
	}

	if err := s.checkEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)",
		name, email, hash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("adding user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user ID: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Authenticate returns the account matching email and password.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var (
		u    User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, created_at, password_hash FROM users WHERE email = ?",
		normalizeEmail(email),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// GetByID returns an account by ID.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, selectUser+" WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// List returns all accounts ordered by email.
func (s *UserStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, selectUser+" ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

// UpdateProfile changes name and email. Empty values are left unchanged.
func (s *UserStore) UpdateProfile(ctx context.Context, id int64, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if email != "" {
		if err := s.checkEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = COALESCE(NULLIF(?, ''), name),
			email = COALESCE(NULLIF(?, ''), email),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		name, email, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserStore) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return ErrWrongPassword
	}

	newHash, err := hashPassword(next)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		newHash, id,
	); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// Delete removes an account by ID.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireRow(result)
}

// Count returns the number of accounts.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func (s *UserStore) checkEmailFree(ctx context.Context, email string, exceptID int64) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", email, exceptID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if n > 0 {
		return ErrEmailTaken
	}
	return nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
