// Package activity records user-visible events such as logins and imports.
package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event names written by the application.
const (
	EventLogin          = "User Login"
	EventSignup         = "User Signup"
	EventDataImport     = "Data Import"
	EventSettingsUpdate = "Settings Update"
	EventPasswordChange = "Password Change"
)

// ErrEventRequired is returned when an entry has no event name.
var ErrEventRequired = errors.New("event is required")

// Entry is one activity log row joined with the acting user's name.
type Entry struct {
	ID        int64     `json:"id"`
	Time      time.Time `json:"time"`
	User      string    `json:"user"`
	Event     string    `json:"event"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
}

// EventStat summarizes how often an event occurred.
type EventStat struct {
	Event          string `json:"event"`
	Count          int64  `json:"count"`
	LastOccurrence string `json:"last_occurrence"` // YYYY-MM-DD
}

// Repository stores activity entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an activity repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Log appends an entry. A nil userID marks a system event.
func (r *Repository) Log(ctx context.Context, userID *int64, event, details, ip string) (int64, error) {
	if event == "" {
		return 0, ErrEventRequired
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO logs (user_id, event, details, ip_address) VALUES (?, ?, ?, ?)",
		userID, event, details, ip,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert id: %w", err)
	}
	return id, nil
}

// ListOptions filters List. Event matches as a substring.
type ListOptions struct {
	Event  string
	UserID int64
	Limit  int
	Offset int
}

// List returns entries newest first.
func (r *Repository) List(ctx context.Context, opts ListOptions) (entries []Entry, err error) {
	query := `SELECT l.id, l.created_at, COALESCE(u.name, 'System'), l.event,
		COALESCE(l.details, ''), l.ip_address
		FROM logs l
		LEFT JOIN users u ON l.user_id = u.id`
	var args []interface{}
	var conditions []string

	if opts.Event != "" {
		conditions = append(conditions, "l.event LIKE ?")
		args = append(args, "%"+opts.Event+"%")
	}
	if opts.UserID != 0 {
		conditions = append(conditions, "l.user_id = ?")
		args = append(args, opts.UserID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, max(opts.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	entries = []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Time, &e.User, &e.Event, &e.Details, &e.IPAddress); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating logs: %w", err)
	}

	return entries, nil
}

// Stats returns the ten most frequent events.
func (r *Repository) Stats(ctx context.Context) (stats []EventStat, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event, COUNT(*) AS n, MAX(created_at)
		FROM logs GROUP BY event ORDER BY n DESC, event LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying log stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	stats = []EventStat{}
	for rows.Next() {
		var s EventStat
		var last string
		if err := rows.Scan(&s.Event, &s.Count, &last); err != nil {
			return nil, fmt.Errorf("scanning log stat: %w", err)
		}
		if len(last) >= 10 {
			last = last[:10]
		}
		s.LastOccurrence = last
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log stats: %w", err)
	}

	return stats, nil
}

// Count returns the number of log entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting logs: %w", err)
	}
	return n, nil
}
