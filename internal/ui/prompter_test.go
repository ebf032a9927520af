package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/session"
	"github.com/rcliao/recordkeeper/internal/store"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(huh.ErrUserAborted), session.ErrAborted)
	assert.ErrorIs(t, mapErr(fmt.Errorf("read: %w", io.EOF)), session.ErrAborted)

	other := errors.New("boom")
	err := mapErr(other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, session.ErrAborted)
}

func TestNonTerminalInputIsAccessible(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)
	assert.True(t, p.accessible)
}

func TestNotifyAndDisplay(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)

	p.Notify(session.LevelSuccess, "Datos guardados")
	p.Display("Contenido de 'ana.txt'", []string{"Nombre: Ana", "Email: ana@x"})

	s := out.String()
	assert.Contains(t, s, "Datos guardados")
	assert.Contains(t, s, "Contenido de 'ana.txt'")
	assert.Contains(t, s, "Nombre: Ana")
	assert.Contains(t, s, "Email: ana@x")
}

func TestStylesMessageLevels(t *testing.T) {
	st := DefaultStyles()
	for _, lvl := range []session.Level{session.LevelInfo, session.LevelSuccess, session.LevelWarn, session.LevelError} {
		assert.Contains(t, st.Message(lvl, "hola"), "hola")
	}
}

func TestPipedAnswersOneLineEach(t *testing.T) {
	p := NewPrompter(strings.NewReader("2\nAna\nsí\n"), io.Discard)

	choice, err := p.Select("Elige", []session.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "b", choice)

	name, err := p.Input("Nombre:")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)

	ok, err := p.Confirm("¿Seguro?")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.Input("Otro:")
	assert.ErrorIs(t, err, session.ErrAborted)
}

func TestPipedInvalidAnswersAreSkipped(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("0\nx\n1\nquizá\nn\n"), &out)

	choice, err := p.Select("Elige", []session.Option{{Label: "A", Value: "a"}})
	require.NoError(t, err)
	assert.Equal(t, "a", choice)

	ok, err := p.Confirm("¿Seguro?")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Contains(t, out.String(), "Opción inválida")
	assert.Contains(t, out.String(), "Responde s o n.")
}

func TestPipedFinalLineWithoutNewline(t *testing.T) {
	p := NewPrompter(strings.NewReader("Ana"), io.Discard)
	v, err := p.Input("Nombre:")
	require.NoError(t, err)
	assert.Equal(t, "Ana", v)

	_, err = p.Confirm("¿Seguro?")
	assert.ErrorIs(t, err, session.ErrAborted)
}

// runMenu drives a real menu over piped input and fails instead of hanging.
func runMenu(t *testing.T, input string) (*store.FileStore, string) {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "datos"))
	require.NoError(t, err)

	var out bytes.Buffer
	m := session.NewMenu(session.New(st, nil), NewPrompter(strings.NewReader(input), &out))

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("menu did not finish")
	}
	return st, out.String()
}

func TestMenuOverPipedInputSaves(t *testing.T) {
	st, out := runMenu(t, "1\nAna\n2\nRuiz\n3\n600\n4\nana@x\n6\nana\n")

	assert.Contains(t, out, "Datos guardados exitosamente en 'ana.txt'")
	rec, err := st.Load(context.Background(), "ana.txt")
	require.NoError(t, err)
	assert.Equal(t, model.Record{
		model.FieldNombre:   "Ana",
		model.FieldApellido: "Ruiz",
		model.FieldTelefono: "600",
		model.FieldEmail:    "ana@x",
	}, rec)
}

func TestMenuOverPipedInputExits(t *testing.T) {
	_, out := runMenu(t, "9\n1\nAna\n8\ns\ns\n")
	assert.Contains(t, out, "Opción inválida")
	assert.Contains(t, out, "Los datos no guardados han sido anulados")
}

func TestMenuOverPipedInputEndsAtEOF(t *testing.T) {
	st, out := runMenu(t, "1\nAna\n")
	assert.Contains(t, out, "Sesión interrumpida")

	names, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
