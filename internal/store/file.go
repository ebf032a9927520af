package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/recordkeeper/internal/model"
)

// FileStore implements Store with one JSON file per record under a root
// directory. It assumes exclusive access to the directory.
type FileStore struct {
	root    string
	suffix  string
	logger  *slog.Logger
	entropy *rand.Rand
	rename  func(oldpath, newpath string) error
}

// TempSuffix ends the name of every in-flight save. It cannot be used as the
// record suffix.
const TempSuffix = ".tmp"

// NewFileStore ensures root exists (creating missing parents) and returns a
// store over it.
func NewFileStore(root string, opts ...Option) (*FileStore, error) {
	o := buildOptions(opts)
	if o.suffix == TempSuffix {
		return nil, &Error{Op: "open", Name: root, Kind: KindInvalidName,
			Err: fmt.Errorf("suffix %q is reserved for temporary files", TempSuffix)}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		root:    root,
		suffix:  o.suffix,
		logger:  o.logger,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		rename:  os.Rename,
	}, nil
}

// Root returns the storage directory.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Suffix() string { return s.suffix }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.root, name)
}

// tempName never carries the record suffix, so List ignores leftovers.
func (s *FileStore) tempName(name string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	return "." + strings.TrimSuffix(name, s.suffix) + "." + id + TempSuffix
}

func (s *FileStore) Save(ctx context.Context, name string, rec model.Record) error {
	if err := ValidateName(name, s.suffix); err != nil {
		return err
	}
	if rec == nil {
		rec = model.Record{}
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return ioErr("save", name, fmt.Errorf("encode: %w", err))
	}
	data = append(data, '\n')

	tmp := s.path(s.tempName(name))
	if err := writeFileSync(tmp, data); err != nil {
		os.Remove(tmp)
		return ioErr("save", name, err)
	}
	if err := s.rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return ioErr("save", name, err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) Load(ctx context.Context, name string) (model.Record, error) {
	if err := ValidateName(name, s.suffix); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound("load", name)
		}
		return nil, ioErr("load", name, err)
	}
	return decodeRecord("load", name, data)
}

// decodeRecord accepts only a JSON object whose values are all strings.
func decodeRecord(op, name string, data []byte) (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, decodeErr(op, name, err)
	}
	if rec == nil {
		return nil, decodeErr(op, name, errors.New("content is not a JSON object"))
	}
	return rec, nil
}

func (s *FileStore) FindByFieldValue(ctx context.Context, field, value string) (string, bool, error) {
	names, err := s.List(ctx)
	if err != nil {
		return "", false, err
	}
	return findFirst(ctx, s, s.logger, names, field, value)
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name, s.suffix); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		s.logger.Warn("delete failed", "name", name, "error", err)
		return ioErr("delete", name, err)
	}
	return nil
}

func (s *FileStore) DeleteAll(ctx context.Context, names []string) error {
	return deleteEach(ctx, names, s.Delete)
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, ioErr("list", "", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), s.suffix) || e.Name() == s.suffix {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *FileStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := ValidateName(oldName, s.suffix); err != nil {
		return err
	}
	if err := ValidateName(newName, s.suffix); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(oldName)); err != nil {
		return ioErr("rename", oldName, err)
	}
	if oldName == newName {
		return nil
	}
	if _, err := os.Lstat(s.path(newName)); err == nil {
		return ioErr("rename", oldName, fmt.Errorf("%w: %s", ErrExists, newName))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ioErr("rename", oldName, err)
	}
	if err := os.Rename(s.path(oldName), s.path(newName)); err != nil {
		return ioErr("rename", oldName, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }
