package transaction

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository provides CRUD operations for transactions.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a transaction repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = "id, property_id, transaction_date, amount, status, buyer_name, created_at"

// Add records a sale of a property.
func (r *Repository) Add(ctx context.Context, propertyID int64, date string, amount float64, status Status, buyer string) (*Transaction, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status: %q", status)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (property_id, transaction_date, amount, status, buyer_name) VALUES (?, ?, ?, ?, ?)",
		propertyID, date, amount, status, buyer,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	var tx Transaction
	err = r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM transactions WHERE id = ?", id,
	).Scan(&tx.ID, &tx.PropertyID, &tx.TransactionDate, &tx.Amount, &tx.Status, &tx.BuyerName, &tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading back transaction: %w", err)
	}

	return &tx, nil
}

// ListByPropertyID returns all transactions for a property, newest first.
func (r *Repository) ListByPropertyID(ctx context.Context, propertyID int64) (txs []*Transaction, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM transactions WHERE property_id = ? ORDER BY transaction_date DESC, id DESC",
		propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.PropertyID, &tx.TransactionDate, &tx.Amount, &tx.Status, &tx.BuyerName, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// ListRecent returns the latest transactions with their property code,
// optionally limited to one city.
func (r *Repository) ListRecent(ctx context.Context, city string, limit int) (recent []Recent, err error) {
	query := `SELECT t.id, p.property_code, p.city, t.status, t.amount, t.transaction_date
		FROM transactions t
		JOIN properties p ON t.property_id = p.id`
	var args []interface{}
	if city != "" {
		query += " WHERE p.city = ?"
		args = append(args, city)
	}
	query += " ORDER BY t.created_at DESC, t.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	recent = []Recent{}
	for rows.Next() {
		var rc Recent
		if err := rows.Scan(&rc.TransactionID, &rc.PropertyCode, &rc.City, &rc.Status, &rc.Value, &rc.Date); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		rc.Action = rc.Status.Action()
		recent = append(recent, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return recent, nil
}

// Amount is a dated sale amount used for trend aggregation.
type Amount struct {
	Date   string
	Amount float64
}

// ListAmounts returns the date and amount of every non-cancelled sale.
func (r *Repository) ListAmounts(ctx context.Context) (amounts []Amount, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT transaction_date, amount FROM transactions WHERE status != ? ORDER BY transaction_date",
		Cancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("listing amounts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var a Amount
		if err := rows.Scan(&a.Date, &a.Amount); err != nil {
			return nil, fmt.Errorf("scanning amount: %w", err)
		}
		amounts = append(amounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating amounts: %w", err)
	}

	return amounts, nil
}

// CountPending returns the number of pending sales, optionally in one city.
func (r *Repository) CountPending(ctx context.Context, city string) (int64, error) {
	query := "SELECT COUNT(*) FROM transactions t JOIN properties p ON t.property_id = p.id WHERE t.status = ?"
	args := []interface{}{Pending}
	if city != "" {
		query += " AND p.city = ?"
		args = append(args, city)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending transactions: %w", err)
	}
	return n, nil
}

// Count returns the number of stored transactions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}
