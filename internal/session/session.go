// Package session holds the record being entered and the operations the
// interactive menu performs on it and on saved records.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/store"
)

// ErrEmptyName indicates a blank record name.
var ErrEmptyName = errors.New("record name cannot be empty")

// IncompleteError reports the fields still missing when saving a draft.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "record incomplete, missing: " + strings.Join(e.Missing, ", ")
}

// Conflict describes a stored record that already holds a value being added.
type Conflict struct {
	Field string
	Value string
	Name  string
}

// Resolution is the caller's answer to a Conflict.
type Resolution int

const (
	// KeepExisting rejects the new value and leaves the stored record alone.
	KeepExisting Resolution = iota
	// DeleteExisting removes the conflicting stored record.
	DeleteExisting
)

// Resolver decides what to do about a duplicate value.
type Resolver func(Conflict) (Resolution, error)

// Outcome is the result of Add.
type Outcome int

const (
	// OutcomeAdded means the value is now in the draft.
	OutcomeAdded Outcome = iota + 1
	// OutcomeRejected means a stored record holds the value and was kept.
	OutcomeRejected
	// OutcomeConflictDeleted means the conflicting record was deleted. The
	// value is not added; the caller enters it again.
	OutcomeConflictDeleted
)

// Session owns one draft and talks to the store on its behalf.
type Session struct {
	store  store.Store
	draft  *model.Draft
	logger *slog.Logger
}

// New returns a session with an empty draft.
func New(s store.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{store: s, draft: model.NewDraft(), logger: logger}
}

// Draft exposes the record being entered.
func (s *Session) Draft() *model.Draft { return s.draft }

// Add checks value against every stored record before putting it in the
// draft. On a duplicate, resolve decides whether the stored record is deleted
// or the value rejected.
func (s *Session) Add(ctx context.Context, field, value string, resolve Resolver) (Outcome, error) {
	if !model.ValidFields[field] {
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownField, field)
	}
	if cur, ok := s.draft.Get(field); ok {
		return 0, fmt.Errorf("%w: %s = %q", model.ErrAlreadySet, field, cur)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%s: %w", field, model.ErrEmptyValue)
	}

	name, found, err := s.store.FindByFieldValue(ctx, field, value)
	if err != nil {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}
	if found {
		res, err := resolve(Conflict{Field: field, Value: value, Name: name})
		if err != nil {
			return 0, err
		}
		if res != DeleteExisting {
			return OutcomeRejected, nil
		}
		if err := s.store.Delete(ctx, name); err != nil {
			return 0, fmt.Errorf("delete conflicting record: %w", err)
		}
		s.logger.Info("deleted conflicting record", "name", name, "field", field)
		return OutcomeConflictDeleted, nil
	}

	if err := s.draft.Set(field, value); err != nil {
		return 0, err
	}
	return OutcomeAdded, nil
}

// Remove clears a draft field.
func (s *Session) Remove(field string) (string, bool) {
	return s.draft.Unset(field)
}

// Save stores the draft as stem plus the store suffix and resets the draft.
func (s *Session) Save(ctx context.Context, stem string) (string, error) {
	if !s.draft.Complete() {
		return "", &IncompleteError{Missing: s.draft.Missing()}
	}
	stem = strings.TrimSpace(stem)
	if stem == "" {
		return "", ErrEmptyName
	}
	name := store.FileName(stem, s.store.Suffix())
	if err := s.store.Save(ctx, name, s.draft.Record()); err != nil {
		return "", err
	}
	s.logger.Info("record saved", "name", name)
	s.draft.Reset()
	return name, nil
}

// Abandon discards the draft.
func (s *Session) Abandon() {
	s.draft.Reset()
}

// Dirty reports whether the draft holds unsaved values.
func (s *Session) Dirty() bool { return s.draft.Dirty() }

// Records lists saved record names.
func (s *Session) Records(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// View loads one saved record.
func (s *Session) View(ctx context.Context, name string) (model.Record, error) {
	return s.store.Load(ctx, name)
}

// Edit loads name, applies changes to keys the record already has, and saves
// it back under the same name.
func (s *Session) Edit(ctx context.Context, name string, changes map[string]string) (before, after model.Record, err error) {
	before, err = s.store.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	after = before.Clone()

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := after[k]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", model.ErrUnknownField, k)
		}
		v := strings.TrimSpace(changes[k])
		if v == "" {
			return nil, nil, fmt.Errorf("%s: %w", k, model.ErrEmptyValue)
		}
		after[k] = v
	}

	if err := s.store.Save(ctx, name, after); err != nil {
		return nil, nil, err
	}
	s.logger.Info("record updated", "name", name, "fields", len(keys))
	return before, after, nil
}

// Rename gives a saved record a new stem.
func (s *Session) Rename(ctx context.Context, oldName, newStem string) (string, error) {
	if strings.TrimSpace(newStem) == "" {
		return "", ErrEmptyName
	}
	newName := store.FileName(newStem, s.store.Suffix())
	if err := s.store.Rename(ctx, oldName, newName); err != nil {
		return "", err
	}
	s.logger.Info("record renamed", "from", oldName, "to", newName)
	return newName, nil
}

// Delete removes one saved record.
func (s *Session) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// DeleteAll removes every listed record, attempting each one.
func (s *Session) DeleteAll(ctx context.Context, names []string) error {
	return s.store.DeleteAll(ctx, names)
}
