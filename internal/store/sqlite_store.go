package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database, one row per report.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteStore{path: path, db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			key TEXT PRIMARY KEY,
			family TEXT NOT NULL,
			problem TEXT NOT NULL,
			fastest TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	return s.db, nil
}

func (s *SQLiteStore) Save(r *Report) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO reports (key, family, problem, fastest, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			family = excluded.family,
			problem = excluded.problem,
			fastest = excluded.fastest,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, r.Key, r.Family, r.Estimate.Problem, r.Estimate.Fastest, r.CreatedAt.UnixNano(), payload)
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.Key, err)
	}
	return nil
}

func (s *SQLiteStore) Load(key string) (*Report, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = db.QueryRow(`SELECT payload FROM reports WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Key: key}
	} else if err != nil {
		return nil, fmt.Errorf("load report %s: %w", key, err)
	}

	var r Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", key, err)
	}
	return &r, nil
}

func (s *SQLiteStore) List() ([]ReportInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT key, family, problem, fastest, created_at FROM reports`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	infos := []ReportInfo{}
	for rows.Next() {
		var (
			info    ReportInfo
			created int64
		)
		if err := rows.Scan(&info.Key, &info.Family, &info.Problem, &info.Fastest, &created); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	sortInfos(infos)
	return infos, nil
}

func (s *SQLiteStore) Delete(key string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.Exec(`DELETE FROM reports WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Key: key}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
