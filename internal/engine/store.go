// Package engine keeps validated batches in memory and on disk.
package engine

import (
	"errors"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// ErrBatchNotFound is returned when a requested batch does not exist.
var ErrBatchNotFound = errors.New("batch not found")

// BatchStore is what the HTTP API needs from a store.
type BatchStore interface {
	Put(b schema.Batch) error
	Get(id string) (schema.Batch, error)
	List() ([]string, error)
	Delete(id string) error
}
