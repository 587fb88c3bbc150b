// Package report renders validated records for a result sink, one record
// per line (or per YAML document).
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// ErrUnknownFormat is returned for a format name that has no encoder.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names a rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name to a Format. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension conventionally used for f.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".jsonl"
	case FormatYAML:
		return ".yaml"
	}
	return ".txt"
}

// Encoder writes validated records to w in a fixed format.
type Encoder struct {
	w      io.Writer
	format Format
	json   *json.Encoder
	yaml   *yaml.Encoder
}

// NewEncoder returns an encoder for format.
func NewEncoder(w io.Writer, format Format) (*Encoder, error) {
	e := &Encoder{w: w, format: format}
	switch format {
	case FormatText:
	case FormatJSON:
		e.json = json.NewEncoder(w)
		e.json.SetEscapeHTML(false)
	case FormatYAML:
		e.yaml = yaml.NewEncoder(w)
		e.yaml.SetIndent(2)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Encode writes one record.
func (e *Encoder) Encode(rec schema.ValidatedRecord) error {
	switch e.format {
	case FormatJSON:
		return e.json.Encode(rec)
	case FormatYAML:
		return e.yaml.Encode(rec)
	}
	_, err := io.WriteString(e.w, Line(rec)+"\n")
	return err
}

// Close flushes any buffered output. It does not close the writer.
func (e *Encoder) Close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}

// Line renders rec as a single line of text: the seven fields in column
// order, then the status and the reasons.
func Line(rec schema.ValidatedRecord) string {
	var b strings.Builder
	b.WriteString("{")
	for _, f := range schema.Fields() {
		v, _ := rec.Get(f)
		fmt.Fprintf(&b, "%s: %s, ", f, quote(v))
	}
	fmt.Fprintf(&b, "status: %s", rec.Status)
	if len(rec.Reasons) > 0 {
		b.WriteString(", reasons: [")
		for i, r := range rec.Reasons {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(r))
		}
		b.WriteString("]")
	}
	b.WriteString("}")
	return b.String()
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// Write encodes every record in recs to w.
func Write(w io.Writer, format Format, recs []schema.ValidatedRecord) error {
	enc, err := NewEncoder(w, format)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return enc.Close()
}
