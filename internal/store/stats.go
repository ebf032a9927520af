package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rcliao/recordkeeper/internal/model"
)

// Stats holds store statistics.
type Stats struct {
	Backend         string         `json:"backend" yaml:"backend"`
	Location        string         `json:"location" yaml:"location"`
	SizeBytes       int64          `json:"size_bytes" yaml:"size_bytes"`
	TotalRecords    int            `json:"total_records" yaml:"total_records"`
	CompleteRecords int            `json:"complete_records" yaml:"complete_records"`
	CorruptRecords  int            `json:"corrupt_records" yaml:"corrupt_records"`
	FieldCounts     map[string]int `json:"field_counts" yaml:"field_counts"`
}

// CollectStats loads every record and counts it.
func CollectStats(ctx context.Context, s Store) (*Stats, error) {
	st := &Stats{FieldCounts: map[string]int{}}
	for _, f := range model.Fields {
		st.FieldCounts[f] = 0
	}

	switch b := s.(type) {
	case *FileStore:
		st.Backend = "file"
		st.Location = b.Root()
	case *SQLiteStore:
		st.Backend = "sqlite"
		st.Location = b.Path()
		for _, p := range []string{b.Path(), b.Path() + "-wal"} {
			if info, err := os.Stat(p); err == nil {
				st.SizeBytes += info.Size()
			}
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	st.TotalRecords = len(names)

	for _, name := range names {
		if fs, ok := s.(*FileStore); ok {
			if info, err := os.Stat(filepath.Join(fs.Root(), name)); err == nil {
				st.SizeBytes += info.Size()
			}
		}
		rec, err := s.Load(ctx, name)
		if err != nil {
			if errors.Is(err, ErrDecode) {
				st.CorruptRecords++
			}
			continue
		}
		if rec.Complete() {
			st.CompleteRecords++
		}
		for _, f := range model.Fields {
			if rec[f] != "" {
				st.FieldCounts[f]++
			}
		}
	}

	return st, nil
}
