// Package store defines the persistence contract for notes.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/notish/internal/model"
)

// ErrNotFound is returned when the target row of a read or mutation does not exist.
var ErrNotFound = errors.New("note not found")

// Store is a durable table of notes keyed by id.
type Store interface {
	Insert(ctx context.Context, text string) (int64, error)
	Get(ctx context.Context, id int64) (model.Note, error)
	// All returns every note, newest first.
	All(ctx context.Context) ([]model.Note, error)
	Update(ctx context.Context, n model.Note) error
	Delete(ctx context.Context, n model.Note) error
	Count(ctx context.Context) (int, error)
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Wrap returns err as a *StorageError for op, or nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
