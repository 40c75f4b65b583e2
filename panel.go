package lightlab

import (
	"strings"
)

// FieldKind identifies the control used to edit a panel field.
type FieldKind int

const (
	FieldFloat FieldKind = iota
	FieldBool
	FieldColor
	FieldChoice
)

// Field is one bound, interactively editable parameter.
// Every mutation goes through the field so its change callback fires
// synchronously on the caller's goroutine.
type Field interface {
	Label() string
	Kind() FieldKind
	// Display renders the current value for the panel surface.
	Display() string
	// Nudge moves the value by a number of steps (slider step, next option, toggle, hue).
	Nudge(steps int)
	// Value is a JSON-friendly snapshot of the current value.
	Value() any
	// SetValue applies a loosely typed value; it reports false when the value
	// cannot be represented by the control.
	SetValue(v any) bool
}

type folderItem struct {
	field  Field
	folder *Folder
}

// Folder groups fields and nested folders in declaration order.
type Folder struct {
	name   string
	parent *Folder
	open   bool
	items  []folderItem
}

func (f *Folder) Name() string { return f.name }

func (f *Folder) Open() *Folder {
	f.open = true
	return f
}

func (f *Folder) Close() *Folder {
	f.open = false
	return f
}

func (f *Folder) IsOpen() bool { return f.open }

func (f *Folder) AddFolder(name string) *Folder {
	child := &Folder{name: name, parent: f}
	f.items = append(f.items, folderItem{folder: child})
	return child
}

// Folder returns the direct child folder with the given name.
func (f *Folder) Folder(name string) (*Folder, bool) {
	for _, it := range f.items {
		if it.folder != nil && it.folder.name == name {
			return it.folder, true
		}
	}
	return nil, false
}

func (f *Folder) add(field Field) {
	f.items = append(f.items, folderItem{field: field})
}

func (f *Folder) path() string {
	if f.parent == nil {
		return ""
	}
	if p := f.parent.path(); p != "" {
		return p + "/" + f.name
	}
	return f.name
}

// Panel is the root of a tree of folders and fields.
type Panel struct {
	Title      string
	PresetPath string
	root       *Folder
}

func NewPanel(title string) *Panel {
	return &Panel{Title: title, root: &Folder{name: title, open: true}}
}

// Root is the top-level folder; fields added to it appear without a folder prefix.
func (p *Panel) Root() *Folder { return p.root }

func (p *Panel) AddFolder(name string) *Folder { return p.root.AddFolder(name) }

// Field looks a field up by its slash-separated path, e.g. "Spotlight Settings/Intensity".
func (p *Panel) Field(path string) (Field, bool) {
	var found Field
	p.Walk(func(fieldPath string, field Field) bool {
		if fieldPath == path {
			found = field
			return false
		}
		return true
	})
	return found, found != nil
}

// Set applies a value to the field at path. Missing fields are a silent no-op.
func (p *Panel) Set(path string, v any) bool {
	field, ok := p.Field(path)
	if !ok {
		return false
	}
	return field.SetValue(v)
}

// Walk visits every field depth-first in declaration order until fn returns false.
func (p *Panel) Walk(fn func(path string, field Field) bool) {
	walkFolder(p.root, fn)
}

func walkFolder(f *Folder, fn func(string, Field) bool) bool {
	prefix := f.path()
	for _, it := range f.items {
		if it.field != nil {
			path := it.field.Label()
			if prefix != "" {
				path = prefix + "/" + path
			}
			if !fn(path, it.field) {
				return false
			}
			continue
		}
		if !walkFolder(it.folder, fn) {
			return false
		}
	}
	return true
}

// PanelRow is one visible line of the panel: a folder header or a field.
type PanelRow struct {
	Depth  int
	Folder *Folder
	Field  Field
	Path   string
}

func (r PanelRow) Text() string {
	indent := strings.Repeat("  ", r.Depth)
	if r.Folder != nil {
		marker := "▸"
		if r.Folder.open {
			marker = "▾"
		}
		return indent + marker + " " + r.Folder.name
	}
	return indent + r.Field.Label() + ": " + r.Field.Display()
}

// Rows lists what an interactive surface should draw: closed folders hide their contents.
func (p *Panel) Rows() []PanelRow {
	var rows []PanelRow
	var visit func(f *Folder, depth int)
	visit = func(f *Folder, depth int) {
		prefix := f.path()
		for _, it := range f.items {
			if it.field != nil {
				path := it.field.Label()
				if prefix != "" {
					path = prefix + "/" + path
				}
				rows = append(rows, PanelRow{Depth: depth, Field: it.field, Path: path})
				continue
			}
			rows = append(rows, PanelRow{Depth: depth, Folder: it.folder, Path: it.folder.path()})
			if it.folder.open {
				visit(it.folder, depth+1)
			}
		}
	}
	visit(p.root, 0)
	return rows
}
