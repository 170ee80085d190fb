package db

import (
	"database/sql"
	"fmt"
)

// sqliteMigrations is an ordered list of SQL statements to run on SQLite.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT    NOT NULL,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		role          TEXT    NOT NULL DEFAULT 'analyst',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS regions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		city       TEXT    NOT NULL,
		state      TEXT    NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (name, city)
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		property_code TEXT    NOT NULL UNIQUE,
		address       TEXT    NOT NULL DEFAULT '',
		city          TEXT    NOT NULL,
		region_id     INTEGER REFERENCES regions(id) ON DELETE SET NULL,
		type          TEXT    NOT NULL DEFAULT 'Residential',
		status        TEXT    NOT NULL DEFAULT 'Active',
		price         REAL    NOT NULL,
		sqft          INTEGER NOT NULL DEFAULT 0,
		bedrooms      INTEGER NOT NULL DEFAULT 0,
		bathrooms     REAL    NOT NULL DEFAULT 0,
		year_built    INTEGER,
		description   TEXT    NOT NULL DEFAULT '',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id      INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		transaction_date TEXT    NOT NULL,
		amount           REAL    NOT NULL,
		status           TEXT    NOT NULL DEFAULT 'Pending',
		buyer_name       TEXT    NOT NULL DEFAULT '',
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER REFERENCES users(id) ON DELETE SET NULL,
		event      TEXT    NOT NULL,
		details    TEXT    NOT NULL DEFAULT '',
		ip_address TEXT    NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS upload_history (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id           INTEGER NOT NULL,
		filename          TEXT    NOT NULL,
		file_type         TEXT    NOT NULL,
		records_processed INTEGER NOT NULL DEFAULT 0,
		records_failed    INTEGER NOT NULL DEFAULT 0,
		status            TEXT    NOT NULL,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// mysqlMigrations mirrors sqliteMigrations in MySQL DDL.
var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INT AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(32)  NOT NULL DEFAULT 'analyst',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS regions (
		id         INT AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		city       VARCHAR(255) NOT NULL,
		state      VARCHAR(255) NOT NULL DEFAULT '',
		pincode    VARCHAR(16)  NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_regions_name_city (name, city)
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            INT AUTO_INCREMENT PRIMARY KEY,
		property_code VARCHAR(64)  NOT NULL UNIQUE,
		address       VARCHAR(512) NOT NULL DEFAULT '',
		city          VARCHAR(255) NOT NULL,
		region_id     INT NULL,
		type          VARCHAR(32)  NOT NULL DEFAULT 'Residential',
		status        VARCHAR(32)  NOT NULL DEFAULT 'Active',
		price         DOUBLE       NOT NULL,
		sqft          BIGINT       NOT NULL DEFAULT 0,
		bedrooms      INT          NOT NULL DEFAULT 0,
		bathrooms     DOUBLE       NOT NULL DEFAULT 0,
		year_built    INT NULL,
		description   TEXT,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_properties_city (city),
		FOREIGN KEY (region_id) REFERENCES regions(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               INT AUTO_INCREMENT PRIMARY KEY,
		property_id      INT          NOT NULL,
		transaction_date VARCHAR(10)  NOT NULL,
		amount           DOUBLE       NOT NULL,
		status           VARCHAR(32)  NOT NULL DEFAULT 'Pending',
		buyer_name       VARCHAR(255) NOT NULL DEFAULT '',
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id         INT AUTO_INCREMENT PRIMARY KEY,
		user_id    INT NULL,
		event      VARCHAR(255) NOT NULL,
		details    TEXT,
		ip_address VARCHAR(64)  NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS upload_history (
		id                INT AUTO_INCREMENT PRIMARY KEY,
		user_id           INT          NOT NULL,
		filename          VARCHAR(255) NOT NULL,
		file_type         VARCHAR(16)  NOT NULL,
		records_processed INT          NOT NULL DEFAULT 0,
		records_failed    INT          NOT NULL DEFAULT 0,
		status            VARCHAR(16)  NOT NULL,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// migrate runs all migrations for the driver in order.
func migrate(db *sql.DB, driver string) error {
	migrations := sqliteMigrations
	if driver == DriverMySQL {
		migrations = mysqlMigrations
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	if driver != DriverSQLite {
		return nil
	}

	// Column additions for databases created by earlier releases.
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"regions", "pincode", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a SQLite table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
