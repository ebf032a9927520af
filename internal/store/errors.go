package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Sentinel errors for store operations. Every failure returned by a Store is
// an *Error whose Is method matches exactly one kind sentinel (ErrIO,
// ErrNotFound, ErrDecode or ErrInvalidName); ErrExists additionally marks a
// rename collision.
var (
	// ErrIO indicates a create, write, read, delete or rename failure.
	ErrIO = errors.New("store: i/o failure")

	// ErrNotFound indicates a read of a record that does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrDecode indicates stored content that is not a JSON object of strings.
	ErrDecode = errors.New("store: malformed record")

	// ErrInvalidName indicates a record name the store will not accept.
	ErrInvalidName = errors.New("store: invalid record name")

	// ErrExists indicates a rename onto a name that is already taken.
	ErrExists = errors.New("store: record already exists")
)

// Kind classifies a store failure.
type Kind int

const (
	KindIO Kind = iota + 1
	KindNotFound
	KindDecode
	KindInvalidName
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindDecode:
		return ErrDecode
	case KindInvalidName:
		return ErrInvalidName
	default:
		return ErrIO
	}
}

// Error is a store failure with operation and record context.
type Error struct {
	Op   string // save, load, delete, rename, list
	Name string
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func ioErr(op, name string, err error) *Error {
	return &Error{Op: op, Name: name, Kind: KindIO, Err: err}
}

func notFound(op, name string) *Error {
	return &Error{Op: op, Name: name, Kind: KindNotFound, Err: ErrNotFound}
}

func decodeErr(op, name string, err error) *Error {
	return &Error{Op: op, Name: name, Kind: KindDecode, Err: err}
}

// ValidateName checks that name is a plain, non-empty base name carrying
// suffix.
func ValidateName(name, suffix string) error {
	var reason string
	switch {
	case strings.TrimSpace(name) == "":
		reason = "name is empty"
	case name == "." || name == "..":
		reason = "name is a directory reference"
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		reason = "name contains a path separator"
	case !strings.HasSuffix(name, suffix) || name == suffix:
		reason = fmt.Sprintf("name must end in %q", suffix)
	}
	if reason == "" {
		return nil
	}
	return &Error{Op: "validate", Name: name, Kind: KindInvalidName, Err: errors.New(reason)}
}

// FileName appends suffix to stem unless it is already there.
func FileName(stem, suffix string) string {
	stem = strings.TrimSpace(stem)
	if strings.HasSuffix(stem, suffix) {
		return stem
	}
	return stem + suffix
}
