package uow

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTransition reports a registered change whose lifecycle kind is
	// not insert, update, or delete. The save aborts before any mutation.
	ErrUnknownTransition = errors.New("unknown change transition")

	// ErrInvalidEntity reports a registered entity that is not a non-nil
	// pointer to a struct.
	ErrInvalidEntity = errors.New("entity must be a non-nil pointer")

	// ErrMissingPrimaryKey reports a registered entity whose primary key is
	// unset where the pipeline needs one to address its row.
	ErrMissingPrimaryKey = errors.New("entity primary key is not set")

	// ErrCommit wraps storage failures. The transaction did not land:
	// registered changes and event buffers stay intact for a retry.
	ErrCommit = errors.New("commit failed")
)

// DispatchError reports subscriber failures that occurred after the
// transaction committed. The row count returned alongside it is valid; the
// data change is durable even though one or more events were not delivered.
type DispatchError struct {
	Errs []error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for %d event(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *DispatchError) Unwrap() []error { return e.Errs }
