package form

import "github.com/goliatone/go-widgetlist/pkg/widget"

// Option is one resolved select entry. Value is what gets stored in the form
// data; it is the choice key.
type Option struct {
	Key   string
	Label string
	Value any
}

// Input is the closed set of inputs a session renders. Switch on the concrete
// type: *TextField, *TextareaField or *SelectField.
type Input interface {
	Field() widget.FieldDescriptor
	Key() string
	Label() string
	Kind() string
	input()
}

type baseInput struct {
	session *Session
	field   widget.FieldDescriptor
}

func (b baseInput) Field() widget.FieldDescriptor { return b.field }
func (b baseInput) Key() string                   { return b.field.Key }
func (b baseInput) Label() string                 { return b.field.Label }
func (b baseInput) Kind() string                  { return b.field.Input.Kind() }

// Props returns the pass-through props of the field.
func (b baseInput) Props() map[string]any { return b.field.ExtraProps }

// TextField edits a single line string.
type TextField struct{ baseInput }

// TextareaField edits a multi line string.
type TextareaField struct{ baseInput }

// SelectField picks one or many values from resolved options.
type SelectField struct {
	baseInput
	kind widget.SelectKind
}

func (*TextField) input()     {}
func (*TextareaField) input() {}
func (*SelectField) input()   {}

// Value returns the current string value.
func (f *TextField) Value() string { return f.session.textValue(f.field.Key) }

// Set stores v verbatim.
func (f *TextField) Set(v string) error { return f.session.SetText(f.field.Key, v) }

// Value returns the current string value.
func (f *TextareaField) Value() string { return f.session.textValue(f.field.Key) }

// Set stores v verbatim.
func (f *TextareaField) Set(v string) error { return f.session.SetText(f.field.Key, v) }

// Multi reports whether the field stores a list of values.
func (f *SelectField) Multi() bool { return f.kind.Multi }

// Options resolves the field's choices in declaration order.
func (f *SelectField) Options() []Option { return resolveOptions(f.kind.Choices) }

// Selected returns the options currently selected. For multi selects the
// order follows the stored values; stored values that match no option are
// left out.
func (f *SelectField) Selected() []Option {
	return f.session.selected(f.field.Key, f.kind)
}

// Select replaces the selection. See Session.Select.
func (f *SelectField) Select(values ...any) error {
	return f.session.Select(f.field.Key, values...)
}

func resolveOptions(choices widget.Choices) []Option {
	out := make([]Option, 0, len(choices))
	for _, choice := range choices {
		out = append(out, Option{Key: choice.Key, Label: choice.Label, Value: choice.Key})
	}
	return out
}

func newInput(s *Session, field widget.FieldDescriptor) Input {
	base := baseInput{session: s, field: field}
	switch kind := field.Input.(type) {
	case widget.SelectKind:
		return &SelectField{baseInput: base, kind: kind}
	case widget.TextareaKind:
		return &TextareaField{baseInput: base}
	default:
		return &TextField{baseInput: base}
	}
}
