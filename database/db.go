package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB обертка для работы с базой должников
type DB struct {
	conn *sql.DB
}

// Open открывает базу, включает нужные pragma и применяет миграции.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Один writer: sqlite не любит конкурентные записи
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close закрывает подключение к базе
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS debtors (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		date_added TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued',
		raw_data TEXT DEFAULT '{}',
		lawyer TEXT DEFAULT 'urist1'
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debtor_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		is_generated INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (debtor_id) REFERENCES debtors (id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS processing_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debtor_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued',
		created_at TEXT NOT NULL,
		started_at TEXT,
		finished_at TEXT,
		error_message TEXT,
		FOREIGN KEY (debtor_id) REFERENCES debtors (id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_documents_debtor ON documents(debtor_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON processing_jobs(status, created_at);
	`

	if _, err := db.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
