package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField indicates a field name outside Fields.
	ErrUnknownField = errors.New("unknown field")

	// ErrAlreadySet indicates the draft already holds a value for the field.
	ErrAlreadySet = errors.New("field already set")

	// ErrEmptyValue indicates a blank value.
	ErrEmptyValue = errors.New("value cannot be empty")
)

// Draft is a record being entered. Every recognized field starts unset.
type Draft struct {
	values map[string]string
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{values: make(map[string]string, len(Fields))}
}

// Get returns the value of field and whether it is set.
func (d *Draft) Get(field string) (string, bool) {
	v, ok := d.values[field]
	return v, ok
}

// Set fills an unset field. The value is trimmed before it is stored.
func (d *Draft) Set(field, value string) error {
	if !ValidFields[field] {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if cur, ok := d.values[field]; ok {
		return fmt.Errorf("%w: %s = %q", ErrAlreadySet, field, cur)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s: %w", field, ErrEmptyValue)
	}
	d.values[field] = value
	return nil
}

// Unset clears a field and returns the value it held.
func (d *Draft) Unset(field string) (string, bool) {
	v, ok := d.values[field]
	if ok {
		delete(d.values, field)
	}
	return v, ok
}

// SetFields returns the set fields in display order.
func (d *Draft) SetFields() []string {
	var set []string
	for _, f := range Fields {
		if _, ok := d.values[f]; ok {
			set = append(set, f)
		}
	}
	return set
}

// Missing returns the unset fields in display order.
func (d *Draft) Missing() []string {
	var missing []string
	for _, f := range Fields {
		if _, ok := d.values[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every field is set.
func (d *Draft) Complete() bool { return len(d.values) == len(Fields) }

// Dirty reports whether any field is set.
func (d *Draft) Dirty() bool { return len(d.values) > 0 }

// Record copies the set fields into a Record.
func (d *Draft) Record() Record {
	r := make(Record, len(d.values))
	for k, v := range d.values {
		r[k] = v
	}
	return r
}

// Reset discards every value.
func (d *Draft) Reset() {
	clear(d.values)
}
