package store

import (
	"context"
	"strings"

	"github.com/rcliao/recordkeeper/internal/model"
)

// Match is a record found by Search.
type Match struct {
	Name   string       `json:"name" yaml:"name"`
	Record model.Record `json:"record" yaml:"record"`
	Fields []string     `json:"fields" yaml:"fields"` // keys whose values matched
}

// Search returns every loadable record with a value containing query,
// ignoring case, in listing order. Unreadable records are skipped.
func Search(ctx context.Context, s Store, query string) ([]Match, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	results := []Match{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.Load(ctx, name)
		if err != nil {
			continue
		}
		var hits []string
		for _, k := range rec.Keys() {
			if strings.Contains(strings.ToLower(rec[k]), q) {
				hits = append(hits, k)
			}
		}
		if len(hits) > 0 {
			results = append(results, Match{Name: name, Record: rec, Fields: hits})
		}
	}
	return results, nil
}
