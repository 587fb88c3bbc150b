// Package schema defines the registration record shapes shared by the
// validator, its sinks and the HTTP API.
package schema

import (
	"errors"
	"fmt"
)

// Field names, in the fixed column order of the source file.
const (
	FieldName             = "name"
	FieldEmail            = "email"
	FieldCPF              = "cpf"
	FieldPhone            = "phone"
	FieldAge              = "age"
	FieldBirthDate        = "birth_date"
	FieldRegistrationDate = "registration_date"
)

var fieldOrder = []string{
	FieldName,
	FieldEmail,
	FieldCPF,
	FieldPhone,
	FieldAge,
	FieldBirthDate,
	FieldRegistrationDate,
}

var (
	// ErrMissingField is returned when a record is built without one of its seven fields.
	ErrMissingField = errors.New("missing field")
	// ErrFieldCount is returned when a positional row does not carry exactly seven columns.
	ErrFieldCount = errors.New("wrong number of fields")
)

// Status is the record-level verdict.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Fields returns the seven field names in column order.
func Fields() []string {
	out := make([]string, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// RawRecord is one registrant as read from a source. Values are untyped so a
// non-text value (a JSON number, say) reaches the validator and is reported
// as a validation failure instead of being rejected at decode time.
type RawRecord struct {
	Name             any `json:"name" yaml:"name"`
	Email            any `json:"email" yaml:"email"`
	CPF              any `json:"cpf" yaml:"cpf"`
	Phone            any `json:"phone" yaml:"phone"`
	Age              any `json:"age" yaml:"age"`
	BirthDate        any `json:"birth_date" yaml:"birth_date"`
	RegistrationDate any `json:"registration_date" yaml:"registration_date"`
}

// FromMap builds a RawRecord from a flat field mapping. Every one of the
// seven keys must be present; extra keys are ignored.
func FromMap(m map[string]any) (RawRecord, error) {
	for _, f := range fieldOrder {
		if _, ok := m[f]; !ok {
			return RawRecord{}, fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}
	return RawRecord{
		Name:             m[FieldName],
		Email:            m[FieldEmail],
		CPF:              m[FieldCPF],
		Phone:            m[FieldPhone],
		Age:              m[FieldAge],
		BirthDate:        m[FieldBirthDate],
		RegistrationDate: m[FieldRegistrationDate],
	}, nil
}

// FromRow builds a RawRecord from positional columns in field order.
func FromRow(row []string) (RawRecord, error) {
	if len(row) != len(fieldOrder) {
		return RawRecord{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(row), len(fieldOrder))
	}
	return RawRecord{
		Name:             row[0],
		Email:            row[1],
		CPF:              row[2],
		Phone:            row[3],
		Age:              row[4],
		BirthDate:        row[5],
		RegistrationDate: row[6],
	}, nil
}

// Get returns the value of the named field.
func (r RawRecord) Get(field string) (any, bool) {
	switch field {
	case FieldName:
		return r.Name, true
	case FieldEmail:
		return r.Email, true
	case FieldCPF:
		return r.CPF, true
	case FieldPhone:
		return r.Phone, true
	case FieldAge:
		return r.Age, true
	case FieldBirthDate:
		return r.BirthDate, true
	case FieldRegistrationDate:
		return r.RegistrationDate, true
	}
	return nil, false
}

// ValidatedRecord is a RawRecord with its verdict attached. The embedded
// fields are the input values, untouched.
type ValidatedRecord struct {
	RawRecord `yaml:",inline"`
	Status    Status   `json:"status" yaml:"status"`
	Reasons   []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Valid reports whether the record passed every check.
func (v ValidatedRecord) Valid() bool {
	return v.Status == StatusValid
}
