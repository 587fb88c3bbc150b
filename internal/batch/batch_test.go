package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

func record(i int) schema.RawRecord {
	return schema.RawRecord{
		Name:             "Maria Souza",
		Email:            "maria.souza@gmail.com",
		CPF:              "123.456.789-00",
		Phone:            "(11) 9888-77777",
		Age:              fmt.Sprint(i % 1500),
		BirthDate:        "01/01/1990",
		RegistrationDate: "15/03/2023",
	}
}

type countingObserver struct {
	mu       sync.Mutex
	statuses map[schema.Status]int
}

func (o *countingObserver) ObserveRecord(status schema.Status, _ []validator.Failure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[status]++
}

func TestRun_PreservesOrder(t *testing.T) {
	recs := make([]schema.RawRecord, 2000)
	for i := range recs {
		recs[i] = record(i)
	}

	obs := &countingObserver{statuses: map[schema.Status]int{}}
	out, sum, err := Run(context.Background(), validator.New(validator.Options{}), recs, Options{Workers: 8, Observer: obs})
	require.NoError(t, err)
	require.Len(t, out, len(recs))

	for i := range recs {
		assert.Equal(t, recs[i], out[i].RawRecord)
		assert.Equal(t, validator.Validate(recs[i]), out[i])
	}

	// Ages 1000-1499 have four digits and fail.
	assert.Equal(t, 2000, sum.Total)
	assert.Equal(t, 500, sum.Invalid)
	assert.Equal(t, 1500, sum.Valid)
	assert.Equal(t, map[string]int{schema.FieldAge: 500}, sum.FieldFailures)
	assert.Equal(t, 1500, obs.statuses[schema.StatusValid])
	assert.Equal(t, 500, obs.statuses[schema.StatusInvalid])
}

func TestRun_Empty(t *testing.T) {
	out, sum, err := Run(context.Background(), validator.New(validator.Options{}), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, schema.Summary{}, sum)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, validator.New(validator.Options{}), []schema.RawRecord{record(1)}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
