// Package upload records the outcome of every ingestion batch.
package upload

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Status summarizes how a batch went.
type Status string

const (
	Success Status = "Success"
	Partial Status = "Partial"
	Failed  Status = "Failed"
)

// StatusFor derives the batch status from row counts. A batch with no
// failures is a success even when it had no rows.
func StatusFor(processed, failed int) Status {
	switch {
	case failed == 0:
		return Success
	case processed > 0:
		return Partial
	default:
		return Failed
	}
}

// Entry is one row of upload history.
type Entry struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Filename         string    `json:"filename"`
	FileType         string    `json:"file_type"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsFailed    int       `json:"records_failed"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// HistoryLimit caps the number of entries returned by Recent.
const HistoryLimit = 20

// Repository stores upload history.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an upload history repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record appends an entry and returns its ID.
func (r *Repository) Record(ctx context.Context, e Entry) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO upload_history (user_id, filename, file_type, records_processed, records_failed, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Filename, e.FileType, e.RecordsProcessed, e.RecordsFailed, e.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting upload history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert id: %w", err)
	}
	return id, nil
}

// Recent returns the latest entries, newest first, capped at HistoryLimit.
func (r *Repository) Recent(ctx context.Context) (entries []Entry, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, filename, file_type, records_processed, records_failed, status, created_at
		FROM upload_history ORDER BY created_at DESC, id DESC LIMIT ?`,
		HistoryLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upload history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	entries = []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Filename, &e.FileType,
			&e.RecordsProcessed, &e.RecordsFailed, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning upload history: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating upload history: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded uploads.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM upload_history").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting uploads: %w", err)
	}
	return n, nil
}
