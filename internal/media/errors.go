package media

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem marks a snapshot item without an id or urls. Such items are skipped.
	ErrInvalidItem = errors.New("invalid external item")

	// ErrInvalidSnapshot is returned when the snapshot body is not a JSON array.
	ErrInvalidSnapshot = errors.New("snapshot must be a JSON array")

	// ErrNotFound is returned by a Store when the local record does not exist.
	ErrNotFound = errors.New("media record not found")
)

// Persistence operations.
const (
	OpIndex  = "index"
	OpLoad   = "load"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// PersistenceError reports a storage failure for one record.
type PersistenceError struct {
	Op         string
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.ExternalID == "" {
		return fmt.Sprintf("media %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("media %s failed for %q: %v", e.Op, e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// FatalRunError wraps whatever stopped a run, including recovered panics. Writes made before the
// failure are kept.
type FatalRunError struct {
	Err error
}

func (e *FatalRunError) Error() string {
	return e.Err.Error()
}

func (e *FatalRunError) Unwrap() error {
	return e.Err
}
