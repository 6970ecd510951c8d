package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := setupSQLiteStore(t)
	r := createTestReport(t, 100)

	if err := s.Save(r); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.Load(r.Key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Key != r.Key || loaded.Estimate.Problem != "SD" || len(loaded.Estimate.Algorithms) != 2 {
		t.Fatalf("unexpected report loaded: %+v", loaded)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded report invalid: %v", err)
	}

	r.Estimate.Fastest = "Stern"
	if err := s.Save(r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	infos, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Fastest != "Stern" {
		t.Errorf("upsert not reflected in listing: %+v", infos)
	}
}

func TestSQLiteStoreListOrder(t *testing.T) {
	s := setupSQLiteStore(t)
	older := createTestReport(t, 100)
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := createTestReport(t, 200)
	newer.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []*Report{older, newer} {
		if err := s.Save(r); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Key != newer.Key {
		t.Fatalf("expected newest first, got %+v", infos)
	}
	if !infos[1].CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("CreatedAt %v, want %v", infos[1].CreatedAt, older.CreatedAt)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	s := setupSQLiteStore(t)
	if _, err := s.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}

	r := createTestReport(t, 100)
	if err := s.Save(r); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(r.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(r.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted report still loads: %v", err)
	}
}

func TestSQLiteStoreClosed(t *testing.T) {
	s := setupSQLiteStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if _, err := s.List(); err == nil {
		t.Error("expected an error on a closed store")
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := NewStore(ctx, "", dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fs.(*FSStore); !ok {
		t.Errorf("default backend is %T, want *FSStore", fs)
	}
	if err := CloseIfSupported(fs); err != nil {
		t.Errorf("closing an FSStore: %v", err)
	}

	db, err := NewStore(ctx, "sqlite", filepath.Join(dir, "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := db.(*SQLiteStore); !ok {
		t.Errorf("sqlite backend is %T", db)
	}
	if err := CloseIfSupported(db); err != nil {
		t.Errorf("closing a SQLiteStore: %v", err)
	}

	if _, err := NewStore(ctx, "redis", dir); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if _, err := NewStore(ctx, "sqlite", ""); err == nil {
		t.Error("expected an error for an empty sqlite path")
	}
}
