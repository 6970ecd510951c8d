package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
)

// TraceEntry records one finished algorithm of an estimation run. Each entry
// is one JSON line in <baseDir>/traces/<key>.jsonl.
type TraceEntry struct {
	Done      int            `json:"done"`
	Total     int            `json:"total"`
	Algorithm string         `json:"algorithm"`
	Time      estimator.Bits `json:"time"`
	Memory    estimator.Bits `json:"memory"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewTraceEntry converts an estimator progress callback into a trace entry.
func NewTraceEntry(done, total int, r estimator.AlgorithmReport) TraceEntry {
	e := TraceEntry{Done: done, Total: total, Algorithm: r.Name, Timestamp: time.Now().UTC()}
	if r.Estimate != nil {
		e.Time, e.Memory, e.Error = r.Estimate.Time, r.Estimate.Memory, r.Estimate.Error
	}
	return e
}

func tracePath(baseDir, key string) string {
	return filepath.Join(baseDir, "traces", key+".jsonl")
}

// TraceWriter writes trace entries to a JSONL file.
// It uses buffered I/O and is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewTraceWriter creates the trace of the report stored under key. If append
// is true, new entries are appended to an existing trace.
func NewTraceWriter(baseDir, key string, append bool) (*TraceWriter, error) {
	path := tracePath(baseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create traces directory: %w", err)
	}

	var (
		file *os.File
		err  error
	)
	if append {
		file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	} else {
		file, err = os.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &TraceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 16*1024),
		path:   path,
	}, nil
}

// Write appends an entry. It is buffered until Flush or Close.
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trace entry: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	if err := tw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes buffered entries and syncs the file.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace file: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := tw.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

func (tw *TraceWriter) Path() string { return tw.path }

// ReadTrace returns every entry of the trace stored under key.
func ReadTrace(baseDir, key string) ([]TraceEntry, error) {
	file, err := os.Open(tracePath(baseDir, key))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Key: key}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()

	var entries []TraceEntry
	dec := json.NewDecoder(bufio.NewReader(file))
	for {
		var e TraceEntry
		if err := dec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode trace entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteTrace removes the trace of key. A missing trace is not an error.
func DeleteTrace(baseDir, key string) error {
	err := os.Remove(tracePath(baseDir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}
