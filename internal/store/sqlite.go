package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/recordkeeper/internal/model"
)

// SQLiteStore implements Store over a single SQLite table. Record names keep
// the same rules as file names so both backends are interchangeable.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	suffix  string
	logger  *slog.Logger
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		suffix:  o.suffix,
		logger:  o.logger,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		data        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Suffix() string { return s.suffix }

func (s *SQLiteStore) Save(ctx context.Context, name string, rec model.Record) error {
	if err := ValidateName(name, s.suffix); err != nil {
		return err
	}
	if rec == nil {
		rec = model.Record{}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return ioErr("save", name, fmt.Errorf("encode: %w", err))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.newID(), name, string(b), now, now)
	if err != nil {
		return ioErr("save", name, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (model.Record, error) {
	if err := ValidateName(name, s.suffix); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("load", name)
	}
	if err != nil {
		return nil, ioErr("load", name, err)
	}
	return decodeRecord("load", name, []byte(data))
}

func (s *SQLiteStore) FindByFieldValue(ctx context.Context, field, value string) (string, bool, error) {
	names, err := s.List(ctx)
	if err != nil {
		return "", false, err
	}
	return findFirst(ctx, s, s.logger, names, field, value)
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name, s.suffix); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE name = ?`, name)
	if err != nil {
		return ioErr("delete", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Warn("delete failed", "name", name, "error", os.ErrNotExist)
		return ioErr("delete", name, os.ErrNotExist)
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context, names []string) error {
	return deleteEach(ctx, names, s.Delete)
}

// List returns names in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM records ORDER BY rowid`)
	if err != nil {
		return nil, ioErr("list", "", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ioErr("list", "", err)
		}
		if strings.HasSuffix(name, s.suffix) {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list", "", err)
	}
	return names, nil
}

func (s *SQLiteStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := ValidateName(oldName, s.suffix); err != nil {
		return err
	}
	if err := ValidateName(newName, s.suffix); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ioErr("rename", oldName, err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM records WHERE name = ?`, oldName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ioErr("rename", oldName, os.ErrNotExist)
	}
	if err != nil {
		return ioErr("rename", oldName, err)
	}
	if oldName == newName {
		return nil
	}

	var taken int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE name = ?`, newName).Scan(&taken); err != nil {
		return ioErr("rename", oldName, err)
	}
	if taken > 0 {
		return ioErr("rename", oldName, fmt.Errorf("%w: %s", ErrExists, newName))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET name = ?, updated_at = ? WHERE id = ?`, newName, now, id); err != nil {
		return ioErr("rename", oldName, err)
	}
	if err := tx.Commit(); err != nil {
		return ioErr("rename", oldName, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
