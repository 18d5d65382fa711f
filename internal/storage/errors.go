package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrStorage    = errors.New("storage failure")
	ErrConstraint = errors.New("storage constraint violated")
)

// Error wraps a driver error with the repository operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if target == ErrStorage {
		return true
	}
	if target == ErrConstraint {
		var pqErr *pq.Error
		// class 23: integrity constraint violation
		return errors.As(e.Err, &pqErr) && pqErr.Code.Class() == "23"
	}
	return false
}

// Wrap returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}
