package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure a Provider can return.
// Match with errors.Is; the concrete error is always a *Error wrapping
// one of these (possibly through the vendor error that caused it).
var (
	// ErrInvalidArgument is returned for a blank or malformed path.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists is returned by Add when the target exists and
	// overwrite is disabled.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when the path, or one of its segments,
	// does not resolve to an existing entry.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when the backend call fails for
	// transport, auth or quota reasons.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrPermissionDenied is returned when the backend rejects the
	// operation due to access control.
	ErrPermissionDenied = errors.New("permission denied")
)

// Error carries the operation name and the logical path alongside the
// underlying cause, so a failure deep in a resolver still names what
// was being done to which path.
type Error struct {
	Op   string // "add", "delete", "exists", "list", "read"
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// opError wraps err with operation context. A nil err returns nil so
// call sites can wrap unconditionally.
func opError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
