// Package batch validates many records concurrently while keeping their
// input order.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Observer is notified of every validated record. It is called from
// several goroutines at once.
type Observer interface {
	ObserveRecord(status schema.Status, failures []validator.Failure)
}

// Options controls a run.
type Options struct {
	// Workers bounds concurrency. Zero means GOMAXPROCS.
	Workers  int
	Observer Observer
}

// Run validates recs with v. Records are independent, so they are spread
// over a bounded worker group; out[i] always corresponds to recs[i].
// The only error is ctx's, when it is cancelled before the run completes.
func Run(ctx context.Context, v *validator.Validator, recs []schema.RawRecord, opts Options) ([]schema.ValidatedRecord, schema.Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]schema.ValidatedRecord, len(recs))
	failures := make([][]validator.Failure, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range recs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := v.Failures(recs[i])
			out[i] = validator.Verdict(recs[i], f)
			failures[i] = f
			if opts.Observer != nil {
				opts.Observer.ObserveRecord(out[i].Status, f)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, schema.Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, schema.Summary{}, err
	}
	return out, summarize(failures), nil
}

func summarize(failures [][]validator.Failure) schema.Summary {
	s := schema.Summary{Total: len(failures)}
	for _, fs := range failures {
		if len(fs) == 0 {
			s.Valid++
			continue
		}
		s.Invalid++
		if s.FieldFailures == nil {
			s.FieldFailures = make(map[string]int)
		}
		for _, f := range fs {
			s.FieldFailures[f.Field]++
		}
	}
	return s
}
