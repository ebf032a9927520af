package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/store"
)

// ErrAborted is returned by a Prompter when the user cancels input (Ctrl-C).
var ErrAborted = errors.New("session aborted")

// Level tags a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// Option is one entry of a Select prompt.
type Option struct {
	Label string
	Value string
}

// Prompter is the menu's view of the terminal.
type Prompter interface {
	Select(title string, options []Option) (string, error)
	Input(title string) (string, error)
	Confirm(title string) (bool, error)
	Notify(level Level, msg string)
	Display(title string, lines []string)
}

// Label renders a field name for display.
func Label(field string) string {
	return cases.Title(language.Spanish).String(field)
}

// Menu runs the interactive main menu over a Session.
type Menu struct {
	s *Session
	p Prompter
}

// NewMenu binds a session to a prompter.
func NewMenu(s *Session, p Prompter) *Menu {
	return &Menu{s: s, p: p}
}

const (
	optBack   = "back"
	optCancel = "cancel"
)

// Run loops until the user saves, exits, or aborts. An abort is not an error;
// unsaved draft values are discarded.
func (m *Menu) Run(ctx context.Context) error {
	err := m.loop(ctx)
	if errors.Is(err, ErrAborted) {
		m.p.Notify(LevelWarn, "Sesión interrumpida. Los datos no guardados se han descartado.")
		m.s.Abandon()
		return nil
	}
	return err
}

func (m *Menu) loop(ctx context.Context) error {
	options := make([]Option, 0, 8)
	for i, f := range model.Fields {
		options = append(options, Option{Label: "Agregar " + Label(f), Value: fmt.Sprint(i + 1)})
	}
	options = append(options,
		Option{Label: "Eliminar dato (temporal)", Value: "5"},
		Option{Label: "Guardar y salir", Value: "6"},
		Option{Label: "Datos guardados", Value: "7"},
		Option{Label: "Salir", Value: "8"},
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		choice, err := m.p.Select("Menú principal", options)
		if err != nil {
			return err
		}

		switch choice {
		case "1", "2", "3", "4":
			idx := int(choice[0] - '1')
			err = m.addField(ctx, model.Fields[idx])
		case "5":
			err = m.removeDraftField()
		case "6":
			var saved bool
			saved, err = m.saveAndExit(ctx)
			if err == nil && saved {
				return nil
			}
		case "7":
			err = m.savedRecords(ctx)
		case "8":
			var quit bool
			quit, err = m.confirmExit()
			if err == nil && quit {
				return nil
			}
		default:
			m.p.Notify(LevelError, "Opción inválida.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) addField(ctx context.Context, field string) error {
	if cur, ok := m.s.Draft().Get(field); ok {
		m.p.Notify(LevelWarn, fmt.Sprintf("¡Ya has ingresado un %s: %s!", field, cur))
		return nil
	}

	value, err := m.p.Input(fmt.Sprintf("Ingresa el %s:", field))
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		m.p.Notify(LevelError, fmt.Sprintf("El %s no puede estar vacío.", field))
		return nil
	}

	var conflict Conflict
	outcome, err := m.s.Add(ctx, field, value, func(c Conflict) (Resolution, error) {
		conflict = c
		return m.resolveConflict(c)
	})
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return err
		}
		m.p.Notify(LevelError, fmt.Sprintf("No se pudo comprobar el %s: %v", field, err))
		return nil
	}

	value = strings.TrimSpace(value)
	switch outcome {
	case OutcomeAdded:
		m.p.Notify(LevelSuccess, fmt.Sprintf("%s '%s' agregado temporalmente.", Label(field), value))
	case OutcomeRejected:
		m.p.Notify(LevelInfo, fmt.Sprintf("El %s '%s' no se agregará para evitar duplicidad.", field, value))
	case OutcomeConflictDeleted:
		m.p.Notify(LevelSuccess, fmt.Sprintf("Archivo '%s' eliminado correctamente.", conflict.Name))
		m.p.Notify(LevelInfo, fmt.Sprintf("Ingresa de nuevo el %s para agregarlo.", field))
	}
	return nil
}

func (m *Menu) resolveConflict(c Conflict) (Resolution, error) {
	m.p.Notify(LevelWarn, fmt.Sprintf("¡Advertencia! Ya existe un archivo '%s' que contiene el %s '%s'.", c.Name, c.Field, c.Value))
	ok, err := m.p.Confirm("¿Deseas eliminar este archivo existente?")
	if err != nil {
		return KeepExisting, err
	}
	if ok {
		return DeleteExisting, nil
	}
	return KeepExisting, nil
}

func (m *Menu) removeDraftField() error {
	set := m.s.Draft().SetFields()
	if len(set) == 0 {
		m.p.Notify(LevelInfo, "No hay datos temporales para eliminar.")
		return nil
	}

	options := make([]Option, 0, len(set)+1)
	for _, f := range set {
		v, _ := m.s.Draft().Get(f)
		options = append(options, Option{Label: fmt.Sprintf("%s: %s", Label(f), v), Value: f})
	}
	options = append(options, Option{Label: "Cancelar", Value: optCancel})

	choice, err := m.p.Select("Datos temporales ingresados", options)
	if err != nil {
		return err
	}
	if choice == optCancel {
		m.p.Notify(LevelInfo, "Operación cancelada.")
		return nil
	}
	if v, ok := m.s.Remove(choice); ok {
		m.p.Notify(LevelSuccess, fmt.Sprintf("El %s '%s' ha sido eliminado temporalmente.", choice, v))
	}
	return nil
}

// saveAndExit reports true when the draft was saved and the menu should end.
func (m *Menu) saveAndExit(ctx context.Context) (bool, error) {
	if missing := m.s.Draft().Missing(); len(missing) > 0 {
		lines := make([]string, len(missing))
		for i, f := range missing {
			lines[i] = "- Falta: " + Label(f)
		}
		m.p.Notify(LevelError, "¡Error! Faltan datos por ingresar para guardar el archivo.")
		m.p.Display("Datos faltantes", lines)
		return false, nil
	}

	suffix := m.s.store.Suffix()
	for {
		stem, err := m.p.Input(fmt.Sprintf("Ingresa un nombre para el archivo (sin %s):", suffix))
		if err != nil {
			return false, err
		}
		name, err := m.s.Save(ctx, stem)
		if errors.Is(err, ErrEmptyName) {
			m.p.Notify(LevelError, "El nombre del archivo no puede estar vacío.")
			continue
		}
		if err != nil {
			m.p.Notify(LevelError, fmt.Sprintf("Hubo un error al guardar los datos: %v", err))
			return false, nil
		}
		m.p.Notify(LevelSuccess, fmt.Sprintf("Datos guardados exitosamente en '%s'.", name))
		return true, nil
	}
}

func (m *Menu) confirmExit() (bool, error) {
	ok, err := m.p.Confirm("¿Estás seguro de salir?")
	if err != nil {
		return false, err
	}
	if !ok {
		m.p.Notify(LevelInfo, "Operación de salida cancelada.")
		return false, nil
	}
	if !m.s.Dirty() {
		m.p.Notify(LevelInfo, "Saliendo del programa.")
		return true, nil
	}

	m.p.Notify(LevelWarn, "¡Advertencia! Tienes datos ingresados que no han sido guardados.")
	ok, err = m.p.Confirm("Si continúas, los datos se anularán. ¿Deseas salir de todas formas?")
	if err != nil {
		return false, err
	}
	if !ok {
		m.p.Notify(LevelInfo, "Operación de salida cancelada.")
		return false, nil
	}
	m.s.Abandon()
	m.p.Notify(LevelInfo, "Saliendo del programa. Los datos no guardados han sido anulados.")
	return true, nil
}

func (m *Menu) savedRecords(ctx context.Context) error {
	options := []Option{
		{Label: "Ver datos", Value: "1"},
		{Label: "Editar datos", Value: "2"},
		{Label: "Eliminar datos", Value: "3"},
		{Label: "Regresar", Value: "4"},
	}
	for {
		choice, err := m.p.Select("Gestión de datos guardados", options)
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = m.viewRecords(ctx)
		case "2":
			err = m.editRecord(ctx)
		case "3":
			err = m.deleteRecords(ctx)
		case "4":
			return nil
		default:
			m.p.Notify(LevelError, "Opción inválida. Intenta de nuevo.")
		}
		if err != nil {
			return err
		}
	}
}

// pickRecord lists saved records and returns the chosen name, or "" when
// there is nothing to pick or the user goes back.
func (m *Menu) pickRecord(ctx context.Context, title, empty string) (string, error) {
	names, err := m.s.Records(ctx)
	if err != nil {
		m.p.Notify(LevelError, fmt.Sprintf("No se pudieron listar los archivos: %v", err))
		return "", nil
	}
	if len(names) == 0 {
		m.p.Notify(LevelInfo, empty)
		return "", nil
	}
	options := make([]Option, 0, len(names)+1)
	for i, n := range names {
		options = append(options, Option{Label: fmt.Sprintf("%d. %s", i+1, n), Value: n})
	}
	options = append(options, Option{Label: "Regresar", Value: optBack})

	choice, err := m.p.Select(title, options)
	if err != nil || choice == optBack {
		return "", err
	}
	return choice, nil
}

func (m *Menu) showRecord(name string, rec model.Record) {
	lines := make([]string, 0, len(rec))
	for _, k := range rec.Keys() {
		lines = append(lines, fmt.Sprintf("%s: %s", Label(k), rec[k]))
	}
	m.p.Display(fmt.Sprintf("Contenido de '%s'", name), lines)
}

func (m *Menu) viewRecords(ctx context.Context) error {
	for {
		name, err := m.pickRecord(ctx, "Archivos de datos guardados", "No hay archivos de datos guardados.")
		if err != nil || name == "" {
			return err
		}
		rec, err := m.s.View(ctx, name)
		if err != nil {
			m.p.Notify(LevelError, fmt.Sprintf("No se pudo cargar el contenido del archivo '%s': %v", name, err))
			continue
		}
		m.showRecord(name, rec)
	}
}

func (m *Menu) editRecord(ctx context.Context) error {
	name, err := m.pickRecord(ctx, "Selecciona el archivo a editar", "No hay archivos para editar.")
	if err != nil || name == "" {
		return err
	}

	action, err := m.p.Select(fmt.Sprintf("Editando '%s'", name), []Option{
		{Label: "Renombrar archivo", Value: "rename"},
		{Label: "Editar contenido", Value: "content"},
		{Label: "Cancelar", Value: optCancel},
	})
	if err != nil {
		return err
	}

	switch action {
	case "rename":
		return m.renameRecord(ctx, name)
	case "content":
		return m.editContent(ctx, name)
	default:
		m.p.Notify(LevelInfo, "Edición cancelada.")
		return nil
	}
}

func (m *Menu) renameRecord(ctx context.Context, name string) error {
	stem, err := m.p.Input(fmt.Sprintf("Ingresa el nuevo nombre para el archivo (sin %s):", m.s.store.Suffix()))
	if err != nil {
		return err
	}
	newName, err := m.s.Rename(ctx, name, stem)
	switch {
	case errors.Is(err, ErrEmptyName):
		m.p.Notify(LevelError, "El nuevo nombre no puede estar vacío.")
	case errors.Is(err, store.ErrExists):
		m.p.Notify(LevelError, fmt.Sprintf("Ya existe un archivo llamado '%s'.", store.FileName(stem, m.s.store.Suffix())))
	case err != nil:
		m.p.Notify(LevelError, fmt.Sprintf("No se pudo renombrar el archivo: %v", err))
	default:
		m.p.Notify(LevelSuccess, fmt.Sprintf("Archivo renombrado a '%s' exitosamente.", newName))
	}
	return nil
}

func (m *Menu) editContent(ctx context.Context, name string) error {
	rec, err := m.s.View(ctx, name)
	if err != nil {
		m.p.Notify(LevelError, fmt.Sprintf("No se pudo cargar el contenido del archivo: %v", err))
		return nil
	}
	m.showRecord(name, rec)

	changes := map[string]string{}
	for {
		options := make([]Option, 0, len(rec)+1)
		for _, k := range rec.Keys() {
			cur := rec[k]
			if v, ok := changes[k]; ok {
				cur = v
			}
			options = append(options, Option{Label: fmt.Sprintf("%s (%s)", Label(k), cur), Value: k})
		}
		options = append(options, Option{Label: "Terminar", Value: optBack})

		field, err := m.p.Select("¿Qué campo deseas editar?", options)
		if err != nil {
			return err
		}
		if field == optBack {
			break
		}
		value, err := m.p.Input(fmt.Sprintf("Ingresa el nuevo valor para '%s':", field))
		if err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			m.p.Notify(LevelError, "El valor no puede estar vacío.")
			continue
		}
		changes[field] = value
		m.p.Notify(LevelSuccess, fmt.Sprintf("'%s' actualizado a '%s'.", Label(field), value))
	}

	if _, _, err := m.s.Edit(ctx, name, changes); err != nil {
		m.p.Notify(LevelError, fmt.Sprintf("No se pudo actualizar el contenido del archivo: %v", err))
		return nil
	}
	m.p.Notify(LevelSuccess, "Contenido del archivo actualizado exitosamente.")
	return nil
}

func (m *Menu) deleteRecords(ctx context.Context) error {
	names, err := m.s.Records(ctx)
	if err != nil {
		m.p.Notify(LevelError, fmt.Sprintf("No se pudieron listar los archivos: %v", err))
		return nil
	}
	if len(names) == 0 {
		m.p.Notify(LevelInfo, "No hay archivos para eliminar.")
		return nil
	}

	action, err := m.p.Select("Opciones de eliminación", []Option{
		{Label: "Eliminar un archivo específico", Value: "one"},
		{Label: "Eliminar todos los archivos", Value: "all"},
		{Label: "Cancelar", Value: optCancel},
	})
	if err != nil {
		return err
	}

	switch action {
	case "one":
		name, err := m.pickRecord(ctx, "Selecciona el archivo a eliminar", "No hay archivos para eliminar.")
		if err != nil || name == "" {
			return err
		}
		ok, err := m.p.Confirm(fmt.Sprintf("¿Estás seguro de eliminar '%s'?", name))
		if err != nil {
			return err
		}
		if !ok {
			m.p.Notify(LevelInfo, "Eliminación cancelada.")
			return nil
		}
		if err := m.s.Delete(ctx, name); err != nil {
			m.p.Notify(LevelError, fmt.Sprintf("No se pudo eliminar el archivo: %v", err))
			return nil
		}
		m.p.Notify(LevelSuccess, fmt.Sprintf("Archivo '%s' eliminado exitosamente.", name))
	case "all":
		ok, err := m.p.Confirm("¿Estás seguro de eliminar TODOS los archivos? Esta acción es irreversible.")
		if err != nil {
			return err
		}
		if !ok {
			m.p.Notify(LevelInfo, "Eliminación de todos los archivos cancelada.")
			return nil
		}
		if err := m.s.DeleteAll(ctx, names); err != nil {
			m.p.Notify(LevelError, fmt.Sprintf("Hubo un error al intentar eliminar todos los archivos: %v", err))
			return nil
		}
		m.p.Notify(LevelSuccess, "Todos los archivos han sido eliminados exitosamente.")
	default:
		m.p.Notify(LevelInfo, "Operación de eliminación cancelada.")
	}
	return nil
}
