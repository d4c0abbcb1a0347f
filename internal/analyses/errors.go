package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid analysis record")
	ErrMalformed     = errors.New("malformed model reply")
)

// PersistenceError means the analysis could not be stored.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist analysis: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
