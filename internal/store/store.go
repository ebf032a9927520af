// Package store provides the record storage interface with file and SQLite
// implementations.
package store

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/rcliao/recordkeeper/internal/model"
)

// DefaultSuffix is the extension that marks a file as a stored record.
const DefaultSuffix = ".txt"

// Store defines the record storage interface. Records are addressed by name;
// a name carries the store's suffix.
type Store interface {
	// Save writes rec under name, creating it or replacing it entirely.
	Save(ctx context.Context, name string, rec model.Record) error

	// Load reads the record stored under name.
	Load(ctx context.Context, name string) (model.Record, error)

	// FindByFieldValue returns the first record name whose field equals
	// value exactly. Records that fail to load are skipped.
	FindByFieldValue(ctx context.Context, field, value string) (string, bool, error)

	// Delete removes one record. A missing record is a failure.
	Delete(ctx context.Context, name string) error

	// DeleteAll attempts every deletion and reports all failures together.
	DeleteAll(ctx context.Context, names []string) error

	// List returns the stored record names in backend order.
	List(ctx context.Context) ([]string, error)

	// Rename moves a record to a new name. It fails if newName is taken.
	Rename(ctx context.Context, oldName, newName string) error

	// Suffix returns the extension every record name carries.
	Suffix() string

	// Close releases backend resources.
	Close() error
}

type options struct {
	suffix string
	logger *slog.Logger
}

// Option configures a store.
type Option func(*options)

// WithSuffix sets the record name extension (default ".txt").
func WithSuffix(suffix string) Option {
	return func(o *options) {
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

// WithLogger sets the logger used for skipped records and failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		suffix: DefaultSuffix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// deleteEach runs del for every name and joins the failures.
func deleteEach(ctx context.Context, names []string, del func(context.Context, string) error) error {
	var errs []error
	for _, name := range names {
		if err := del(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// findFirst scans names in order and returns the first loadable record whose
// field equals value.
func findFirst(ctx context.Context, s Store, logger *slog.Logger, names []string, field, value string) (string, bool, error) {
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		rec, err := s.Load(ctx, name)
		if err != nil {
			logger.Debug("skipping unreadable record", "name", name, "error", err)
			continue
		}
		if v, ok := rec[field]; ok && v == value {
			return name, true, nil
		}
	}
	return "", false, nil
}
