package sdk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/cadastro/internal/batch"
	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Local validates in-process.
type Local struct {
	v       *validator.Validator
	workers int
}

// NewLocal returns an embedded checker. workers bounds batch concurrency;
// zero means GOMAXPROCS.
func NewLocal(opts validator.Options, workers int) *Local {
	return &Local{v: validator.New(opts), workers: workers}
}

func (l *Local) Validate(_ context.Context, rec schema.RawRecord) (schema.ValidatedRecord, error) {
	return l.v.Validate(rec), nil
}

func (l *Local) ValidateBatch(ctx context.Context, recs []schema.RawRecord) (schema.Batch, error) {
	out, summary, err := batch.Run(ctx, l.v, recs, batch.Options{Workers: l.workers})
	if err != nil {
		return schema.Batch{}, err
	}
	return schema.Batch{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
		Records:   out,
	}, nil
}
