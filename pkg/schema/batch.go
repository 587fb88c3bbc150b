package schema

import "time"

// Summary counts the verdicts of a batch.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Valid   int `json:"valid" yaml:"valid"`
	Invalid int `json:"invalid" yaml:"invalid"`
	// FieldFailures maps a field name to the number of records failing it.
	FieldFailures map[string]int `json:"field_failures,omitempty" yaml:"field_failures,omitempty"`
}

// Batch is a set of records validated together, in input order.
type Batch struct {
	ID        string            `json:"id"`
	Source    string            `json:"source,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Summary   Summary           `json:"summary"`
	Records   []ValidatedRecord `json:"records"`
}
