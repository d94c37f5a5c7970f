package repositories

import (
	"errors"
	"fmt"
)

// StoreError is the RepositoryError used by the redis and in-memory stores.
type StoreError struct {
	Op          string
	Err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *StoreError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error       { return e.Err }
func (e *StoreError) IsNotFound() bool    { return e.notFound }
func (e *StoreError) IsConflict() bool    { return e.conflict }
func (e *StoreError) IsUnavailable() bool { return e.unavailable }

func NotFound(op string, err error) error {
	return &StoreError{Op: op, Err: err, notFound: true}
}

func Conflict(op string, err error) error {
	return &StoreError{Op: op, Err: err, conflict: true}
}

func Unavailable(op string, err error) error {
	return &StoreError{Op: op, Err: err, unavailable: true}
}

// IsNotFound reports whether err carries repository not-found semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err carries repository conflict semantics.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err carries repository unavailable semantics.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
