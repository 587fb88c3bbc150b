package sdk

import (
	"context"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Checker validates registration records. Both the embedded engine and the
// remote HTTP client implement it.
type Checker interface {
	// Validate classifies one record.
	Validate(ctx context.Context, rec schema.RawRecord) (schema.ValidatedRecord, error)
	// ValidateBatch classifies recs, keeping their order, and returns them
	// as a batch with a summary.
	ValidateBatch(ctx context.Context, recs []schema.RawRecord) (schema.Batch, error)
}
