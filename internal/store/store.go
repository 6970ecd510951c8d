package store

// Store persists estimation reports under their content key.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if no report exists for the key (Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// Save stores r under r.Key, replacing any report with the same key.
	Save(r *Report) error

	// Load retrieves the report stored under key.
	Load(key string) (*Report, error)

	// List returns metadata for every stored report, newest first.
	List() ([]ReportInfo, error)

	// Delete removes the report stored under key.
	Delete(key string) error
}

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return "report not found: " + e.Key
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
