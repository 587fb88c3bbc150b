// Package validator classifies registration records. Every field check runs
// on every record; failures become human-readable reasons, never errors.
package validator

import (
	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Validator applies the field checks with a fixed rule set.
type Validator struct {
	rules *Rules
}

// New returns a Validator using the shared rules for opts.
func New(opts Options) *Validator {
	return &Validator{rules: RulesFor(opts)}
}

var std = New(Options{})

// Validate classifies rec with the default (permissive CPF) rules.
func Validate(rec schema.RawRecord) schema.ValidatedRecord {
	return std.Validate(rec)
}

// Failures runs every check and returns the failing ones in check order:
// name, email, cpf, phone, birth_date, registration_date, age.
func (v *Validator) Failures(rec schema.RawRecord) []Failure {
	var out []Failure
	for _, c := range checks {
		if msg, failed := c.run(v.rules, rec); failed {
			out = append(out, Failure{Field: c.field, Message: msg})
		}
	}
	return out
}

// Validate returns rec with its verdict attached. rec is not modified.
func (v *Validator) Validate(rec schema.RawRecord) schema.ValidatedRecord {
	return Verdict(rec, v.Failures(rec))
}

// Verdict folds failures into a ValidatedRecord.
func Verdict(rec schema.RawRecord, failures []Failure) schema.ValidatedRecord {
	out := schema.ValidatedRecord{RawRecord: rec, Status: schema.StatusValid}
	if len(failures) == 0 {
		return out
	}
	out.Status = schema.StatusInvalid
	out.Reasons = make([]string, len(failures))
	for i, f := range failures {
		out.Reasons[i] = f.Message
	}
	return out
}
