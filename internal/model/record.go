// Package model defines the core record data types.
package model

import (
	"maps"
	"slices"
)

// Recognized field names, in display order.
const (
	FieldNombre   = "nombre"
	FieldApellido = "apellido"
	FieldTelefono = "telefono"
	FieldEmail    = "email"
)

// Fields lists the recognized fields in the order the menu presents them.
var Fields = []string{FieldNombre, FieldApellido, FieldTelefono, FieldEmail}

// ValidFields are the recognized field names.
var ValidFields = map[string]bool{
	FieldNombre:   true,
	FieldApellido: true,
	FieldTelefono: true,
	FieldEmail:    true,
}

// Record is one stored record: field name to value. Keys outside Fields are
// kept as-is so records written by other tools round-trip unchanged.
type Record map[string]string

// Complete reports whether every recognized field has a non-empty value.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0
}

// Missing returns the recognized fields that are absent or empty.
func (r Record) Missing() []string {
	var missing []string
	for _, f := range Fields {
		if r[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Keys returns the record's keys with recognized fields first (in display
// order) followed by any extra keys sorted alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range Fields {
		if _, ok := r[f]; ok {
			keys = append(keys, f)
		}
	}
	var extra []string
	for k := range r {
		if !ValidFields[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}
