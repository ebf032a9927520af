package store

import (
	"context"
	"fmt"

	"github.com/rcliao/recordkeeper/internal/model"
)

// Entry is one named record in an export.
type Entry struct {
	Name   string       `json:"name" yaml:"name"`
	Record model.Record `json:"record" yaml:"record"`
}

// ExportResult holds every loadable record and the names that were skipped.
type ExportResult struct {
	Entries []Entry  `json:"entries" yaml:"entries"`
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Export returns all loadable records in listing order.
func Export(ctx context.Context, s Store) (*ExportResult, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	res := &ExportResult{Entries: []Entry{}}
	for _, name := range names {
		rec, err := s.Load(ctx, name)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		res.Entries = append(res.Entries, Entry{Name: name, Record: rec})
	}
	return res, nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported int `json:"imported" yaml:"imported"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// Import stores entries from an export. Names already present are skipped
// unless overwrite is set. It stops at the first failed save.
func Import(ctx context.Context, s Store, entries []Entry, overwrite bool) (ImportResult, error) {
	var res ImportResult
	existing := map[string]bool{}
	if !overwrite {
		names, err := s.List(ctx)
		if err != nil {
			return res, err
		}
		for _, n := range names {
			existing[n] = true
		}
	}

	for _, e := range entries {
		if existing[e.Name] {
			res.Skipped++
			continue
		}
		if err := s.Save(ctx, e.Name, e.Record); err != nil {
			return res, fmt.Errorf("entry %q: %w", e.Name, err)
		}
		existing[e.Name] = true
		res.Imported++
	}
	return res, nil
}
