package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/recordkeeper/internal/model"
)

// backend pairs a fresh store with a way to plant raw content under a name,
// bypassing Save.
type backend struct {
	name  string
	open  func(t *testing.T) Store
	plant func(t *testing.T, s Store, name, content string)
}

var backends = []backend{
	{
		name: "file",
		open: func(t *testing.T) Store { return newTestFileStore(t) },
		plant: func(t *testing.T, s Store, name, content string) {
			t.Helper()
			root := s.(*FileStore).Root()
			require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) Store { return newTestSQLiteStore(t) },
		plant: func(t *testing.T, s Store, name, content string) {
			t.Helper()
			ss := s.(*SQLiteStore)
			_, err := ss.db.Exec(
				`INSERT INTO records (id, name, data, created_at, updated_at) VALUES (?, ?, ?, '', '')`,
				ss.newID(), name, content)
			require.NoError(t, err)
		},
	},
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "datos"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func eachBackend(t *testing.T, fn func(t *testing.T, b backend, s Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b, b.open(t))
		})
	}
}

func person(nombre, apellido, telefono, email string) model.Record {
	return model.Record{
		model.FieldNombre:   nombre,
		model.FieldApellido: apellido,
		model.FieldTelefono: telefono,
		model.FieldEmail:    email,
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		rec := person("Ana", "Ruiz", "+34 600 000 000", "ana@example.com")
		require.NoError(t, s.Save(ctx, "ana.txt", rec))

		got, err := s.Load(ctx, "ana.txt")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})
}

func TestSaveReplacesContent(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		rec := person("Ana", "Ruiz", "1", "a@x")
		require.NoError(t, s.Save(ctx, "r.txt", rec))
		require.NoError(t, s.Save(ctx, "r.txt", rec))

		got, err := s.Load(ctx, "r.txt")
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		// No merge with the previous content.
		repl := model.Record{model.FieldNombre: "Luis"}
		require.NoError(t, s.Save(ctx, "r.txt", repl))
		got, err = s.Load(ctx, "r.txt")
		require.NoError(t, err)
		assert.Equal(t, repl, got)

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"r.txt"}, names)
	})
}

func TestFindByFieldValue(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		require.NoError(t, s.Save(ctx, "r1.txt", person("Ana", "Ruiz", "1", "ana@x")))
		require.NoError(t, s.Save(ctx, "r2.txt", person("Luis", "Gil", "2", "luis@x")))

		name, ok, err := s.FindByFieldValue(ctx, model.FieldNombre, "Ana")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "r1.txt", name)

		_, ok, err = s.FindByFieldValue(ctx, model.FieldNombre, "Carla")
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, _ = s.FindByFieldValue(ctx, model.FieldNombre, "ana")
		assert.False(t, ok, "match is case-sensitive")

		_, ok, _ = s.FindByFieldValue(ctx, model.FieldApellido, "Ana")
		assert.False(t, ok, "match is per field")
	})
}

func TestDeleteAllPartialFailure(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		require.NoError(t, s.Save(ctx, "a.txt", person("A", "A", "1", "a@x")))
		require.NoError(t, s.Save(ctx, "c.txt", person("C", "C", "3", "c@x")))

		err := s.DeleteAll(ctx, []string{"a.txt", "b.txt", "c.txt"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIO))

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names, "first and third are still deleted")
	})
}

func TestDeleteAllSuccess(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		require.NoError(t, s.Save(ctx, "a.txt", person("A", "A", "1", "a@x")))
		require.NoError(t, s.Save(ctx, "b.txt", person("B", "B", "2", "b@x")))
		assert.NoError(t, s.DeleteAll(ctx, []string{"a.txt", "b.txt"}))
		assert.NoError(t, s.DeleteAll(ctx, nil))
	})
}

func TestCorruptRecordIsolation(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, b backend, s Store) {
		b.plant(t, s, "broken.txt", "{not json")
		require.NoError(t, s.Save(ctx, "v1.txt", person("Ana", "Ruiz", "1", "ana@x")))
		require.NoError(t, s.Save(ctx, "v2.txt", person("Luis", "Gil", "2", "luis@x")))

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"broken.txt", "v1.txt", "v2.txt"}, names)

		name, ok, err := s.FindByFieldValue(ctx, model.FieldEmail, "luis@x")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v2.txt", name)

		name, ok, err = s.FindByFieldValue(ctx, model.FieldNombre, "Ana")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1.txt", name)

		_, err = s.Load(ctx, "broken.txt")
		assert.True(t, errors.Is(err, ErrDecode))
	})
}

func TestLoadRejectsNonStringContent(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"null.txt":   "null",
		"array.txt":  `["a", "b"]`,
		"number.txt": `{"nombre": 3}`,
		"nested.txt": `{"nombre": {"first": "Ana"}}`,
	}
	eachBackend(t, func(t *testing.T, b backend, s Store) {
		for name, content := range cases {
			b.plant(t, s, name, content)
			_, err := s.Load(ctx, name)
			assert.Truef(t, errors.Is(err, ErrDecode), "%s: got %v", name, err)
		}
	})
}

func TestRenameThenLoad(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		rec := person("Ana", "Ruiz", "1", "ana@x")
		require.NoError(t, s.Save(ctx, "a.txt", rec))
		require.NoError(t, s.Rename(ctx, "a.txt", "b.txt"))

		got, err := s.Load(ctx, "b.txt")
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		_, err = s.Load(ctx, "a.txt")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestRenameFailures(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		err := s.Rename(ctx, "missing.txt", "other.txt")
		assert.True(t, errors.Is(err, ErrIO))
		assert.True(t, errors.Is(err, fs.ErrNotExist))

		a := person("Ana", "Ruiz", "1", "ana@x")
		b := person("Luis", "Gil", "2", "luis@x")
		require.NoError(t, s.Save(ctx, "a.txt", a))
		require.NoError(t, s.Save(ctx, "b.txt", b))

		err = s.Rename(ctx, "a.txt", "b.txt")
		assert.True(t, errors.Is(err, ErrExists))
		assert.True(t, errors.Is(err, ErrIO))

		got, err := s.Load(ctx, "b.txt")
		require.NoError(t, err)
		assert.Equal(t, b, got, "collision leaves the target untouched")
		got, err = s.Load(ctx, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, a, got)

		assert.NoError(t, s.Rename(ctx, "a.txt", "a.txt"))
	})
}

func TestDeleteMissingFails(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		err := s.Delete(ctx, "ghost.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIO))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		for _, f := range model.Fields {
			_, ok, err := s.FindByFieldValue(ctx, f, "anything")
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	bad := []string{"", "   ", ".txt", "noext", "../escape.txt", "sub/dir.txt", "..", "."}
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		for _, name := range bad {
			err := s.Save(ctx, name, person("A", "B", "C", "D"))
			assert.Truef(t, errors.Is(err, ErrInvalidName), "%q: got %v", name, err)
			_, err = s.Load(ctx, name)
			assert.Truef(t, errors.Is(err, ErrInvalidName), "%q: got %v", name, err)
		}
	})
}

func TestErrorKindsAreExclusive(t *testing.T) {
	err := error(notFound("load", "x.txt"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrIO))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.Equal(t, `load "x.txt": store: record not found`, err.Error())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ana.txt", FileName("ana", ".txt"))
	assert.Equal(t, "ana.txt", FileName(" ana.txt ", ".txt"))
	assert.Equal(t, "ana.json", FileName("ana", ".json"))
}
