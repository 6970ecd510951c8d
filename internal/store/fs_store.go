package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FSStore implements Store on the filesystem. Reports are stored as
// <baseDir>/reports/<key>.json.
//
// Thread-safety: writes go through a temp file and an atomic rename, so
// concurrent readers never observe a partial report.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store rooted at baseDir, creating the
// directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "reports"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string { return fs.baseDir }

func (fs *FSStore) reportPath(key string) string {
	return filepath.Join(fs.baseDir, "reports", key+".json")
}

// Save atomically writes r using the temp file + rename pattern.
func (fs *FSStore) Save(r *Report) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	finalPath := fs.reportPath(r.Key)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	slog.Debug("Report saved", "key", r.Key, "path", finalPath)
	return nil
}

// Load reads the report stored under key.
func (fs *FSStore) Load(key string) (*Report, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	path := fs.reportPath(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Key: key}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}

	slog.Debug("Report loaded", "key", key, "path", path)
	return &r, nil
}

// List returns metadata for every readable report, newest first.
func (fs *FSStore) List() ([]ReportInfo, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, "reports"))
	if os.IsNotExist(err) {
		return []ReportInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	infos := []ReportInfo{}
	for _, entry := range entries {
		key, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		r, err := fs.Load(key)
		if err != nil {
			slog.Warn("Failed to load report for listing", "key", key, "error", err)
			continue
		}
		infos = append(infos, r.ToInfo())
	}
	sortInfos(infos)

	slog.Debug("Listed reports", "count", len(infos))
	return infos, nil
}

// Delete removes the report stored under key along with its trace.
func (fs *FSStore) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	path := fs.reportPath(key)
	if err := os.Remove(path); os.IsNotExist(err) {
		return &NotFoundError{Key: key}
	} else if err != nil {
		return fmt.Errorf("failed to remove report file: %w", err)
	}
	if err := DeleteTrace(fs.baseDir, key); err != nil {
		return err
	}

	slog.Debug("Report deleted", "key", key, "path", path)
	return nil
}
