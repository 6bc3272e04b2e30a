package form

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// TitleKey is the form data key split off into Payload.Title on submit.
const TitleKey = "title"

// Mode is the shape of a session.
type Mode int

const (
	// ModeCreate builds a new widget; the class may be chosen.
	ModeCreate Mode = iota
	// ModeEdit updates an existing widget; the class is fixed.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Payload is what a session hands to its submit callback.
type Payload struct {
	Title         string         `json:"title"`
	Configuration map[string]any `json:"configuration"`
}

// SubmitFunc receives the chosen class and the split form data.
type SubmitFunc func(widgetClass string, payload Payload) error

// SessionOption configures a session.
type SessionOption func(*Session)

// WithStrictKeys makes Submit reject data keys the active schema does not
// define. Off by default.
func WithStrictKeys() SessionOption {
	return func(s *Session) {
		s.strict = true
	}
}

// Session is the working state of one open form. It is rebuilt for every
// open and discards everything on Close.
type Session struct {
	mu sync.Mutex

	mode    Mode
	schemas *widget.ClassSchemas
	class   string
	fields  []widget.FieldDescriptor
	data    map[string]any
	closed  bool
	strict  bool
}

// NewCreate opens a new-widget session over every class in schemas. A single
// class is chosen up front; with several the caller picks via SelectClass.
func NewCreate(schemas *widget.ClassSchemas, options ...SessionOption) *Session {
	s := &Session{
		mode:    ModeCreate,
		schemas: schemas,
		data:    make(map[string]any),
	}
	s.apply(options)
	if names := schemas.Names(); len(names) == 1 {
		s.class = names[0]
		s.fields, _ = schemas.Fields(names[0])
	}
	return s
}

// NewEdit opens an edit session fixed to class and pre-populated from data.
func NewEdit(schemas *widget.ClassSchemas, class string, data map[string]any, options ...SessionOption) (*Session, error) {
	only, ok := schemas.Only(class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	fields, _ := only.Fields(class)
	s := &Session{
		mode:    ModeEdit,
		schemas: only,
		class:   class,
		fields:  fields,
		data:    make(map[string]any, len(data)),
	}
	for key, value := range data {
		s.data[key] = cloneValue(value)
	}
	s.apply(options)
	return s, nil
}

// FromEditable opens an edit session from a get_widget response.
func FromEditable(editable widget.Editable, options ...SessionOption) (*Session, error) {
	return NewEdit(editable.Classes, editable.Class(), editable.Data, options...)
}

func (s *Session) apply(options []SessionOption) {
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
}

// Mode returns the session shape.
func (s *Session) Mode() Mode { return s.mode }

// Class returns the chosen class, or "" before one is chosen.
func (s *Session) Class() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class
}

// Classes returns the classes offered by the class selector.
func (s *Session) Classes() []string { return s.schemas.Names() }

// HasClassSelector reports whether the user must or may pick a class.
func (s *Session) HasClassSelector() bool {
	return s.mode == ModeCreate && s.schemas.Len() > 1
}

// SelectClass swaps the active schema and resets working values. Edit
// sessions accept only their own class.
func (s *Session) SelectClass(class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.mode == ModeEdit {
		if class == s.class {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrClassFixed, s.class)
	}
	fields, ok := s.schemas.Fields(class)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	s.class = class
	s.fields = fields
	s.data = make(map[string]any)
	return nil
}

// Inputs returns one input per field of the active schema, in schema order.
func (s *Session) Inputs() []Input {
	s.mu.Lock()
	fields := append([]widget.FieldDescriptor(nil), s.fields...)
	s.mu.Unlock()

	out := make([]Input, 0, len(fields))
	for _, field := range fields {
		out = append(out, newInput(s, field))
	}
	return out
}

// Input returns the input for key.
func (s *Session) Input(key string) (Input, bool) {
	field, ok := s.field(key)
	if !ok {
		return nil, false
	}
	return newInput(s, field), true
}

// SetText stores v for a text or textarea field.
func (s *Session) SetText(key, v string) error {
	field, ok := s.field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	switch field.Input.(type) {
	case widget.SelectKind:
		return fmt.Errorf("%w: %q is a select", ErrWrongKind, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = v
	return nil
}

// Select replaces the selection of a select field. Multi selects store the
// matching option values in the order given; single selects take at most one
// value and store it as a scalar. Calling with no values clears the field.
func (s *Session) Select(key string, values ...any) error {
	field, ok := s.field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	kind, ok := field.Input.(widget.SelectKind)
	if !ok {
		return fmt.Errorf("%w: %q is not a select", ErrWrongKind, key)
	}
	if !kind.Multi && len(values) > 1 {
		return fmt.Errorf("%w: %q accepts a single value", ErrWrongKind, key)
	}

	options := resolveOptions(kind.Choices)
	picked := make([]any, 0, len(values))
	for _, value := range values {
		opt, ok := matchOption(options, value)
		if !ok {
			return fmt.Errorf("%w: %v for %q", ErrUnknownOption, value, key)
		}
		picked = append(picked, opt.Value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	switch {
	case kind.Multi:
		s.data[key] = picked
	case len(picked) == 1:
		s.data[key] = picked[0]
	default:
		delete(s.data, key)
	}
	return nil
}

// Value returns the stored value for key.
func (s *Session) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Data returns a copy of the working form data.
func (s *Session) Data() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.data))
	for key, value := range s.data {
		out[key] = cloneValue(value)
	}
	return out
}

// Validate reports data keys the active schema does not define.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]struct{}, len(s.fields))
	for _, field := range s.fields {
		known[field.Key] = struct{}{}
	}
	var unknown []string
	for key := range s.data {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: class %q has no field %s", ErrSchemaMismatch, s.class, strings.Join(unknown, ", "))
}

// Submit splits title from the rest of the form data and hands both to fn.
// The session does not talk to the network and stays open; callers close it
// once the submission succeeded.
func (s *Session) Submit(fn SubmitFunc) error {
	if fn == nil {
		return fmt.Errorf("form: submit callback is required")
	}
	if s.strict {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	class := s.class
	if class == "" {
		s.mu.Unlock()
		return ErrNoClass
	}
	payload := Payload{Configuration: make(map[string]any, len(s.data))}
	for key, value := range s.data {
		if key == TitleKey {
			payload.Title = titleString(value)
			continue
		}
		payload.Configuration[key] = cloneValue(value)
	}
	s.mu.Unlock()

	return fn(class, payload)
}

// Close discards the session's working values.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = make(map[string]any)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) field(key string) (widget.FieldDescriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, field := range s.fields {
		if field.Key == key {
			return field, true
		}
	}
	return widget.FieldDescriptor{}, false
}

func (s *Session) textValue(key string) string {
	v, ok := s.Value(key)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

func (s *Session) selected(key string, kind widget.SelectKind) []Option {
	v, ok := s.Value(key)
	if !ok || v == nil {
		return nil
	}
	options := resolveOptions(kind.Choices)

	var stored []any
	if list, isList := v.([]any); isList {
		stored = list
	} else {
		stored = []any{v}
	}
	if !kind.Multi && len(stored) > 1 {
		stored = stored[:1]
	}

	var out []Option
	for _, value := range stored {
		if opt, ok := matchOption(options, value); ok {
			out = append(out, opt)
		}
	}
	return out
}

func matchOption(options []Option, value any) (Option, bool) {
	want := widget.ValueKey(value)
	for _, opt := range options {
		if widget.ValueKey(opt.Value) == want {
			return opt, true
		}
	}
	return Option{}, false
}

func titleString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		return append([]any(nil), t...)
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}
