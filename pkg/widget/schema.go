package widget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Input kind names as they appear on the wire.
const (
	KindText     = "text"
	KindTextarea = "textarea"
	KindSelect   = "select"
)

// ErrDuplicateClass is returned when a schema set defines a class twice.
var ErrDuplicateClass = errors.New("widget: duplicate widget class")

// InputKind is the closed set of input variants a field can use. Switch on
// the concrete type; the unexported method keeps the set closed.
type InputKind interface {
	Kind() string
	inputKind()
}

// TextKind is a single line string input.
type TextKind struct{}

// TextareaKind is a multi line string input.
type TextareaKind struct{}

// SelectKind picks one value, or many when Multi is set, from Choices.
type SelectKind struct {
	Multi   bool
	Choices Choices
}

func (TextKind) Kind() string     { return KindText }
func (TextareaKind) Kind() string { return KindTextarea }
func (SelectKind) Kind() string   { return KindSelect }

func (TextKind) inputKind()     {}
func (TextareaKind) inputKind() {}
func (SelectKind) inputKind()   {}

// FieldDescriptor describes one editable configuration key of a widget class.
type FieldDescriptor struct {
	Key        string
	Label      string
	Input      InputKind
	ExtraProps map[string]any
}

type fieldWire struct {
	Key            string         `json:"key" yaml:"key"`
	Label          string         `json:"label" yaml:"label"`
	InputType      string         `json:"inputType,omitempty" yaml:"inputType,omitempty"`
	InputTypeSnake string         `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Props          map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Choices        Choices        `json:"choices,omitempty" yaml:"choices,omitempty"`
}

func (f *FieldDescriptor) fromWire(w fieldWire) error {
	key := strings.TrimSpace(w.Key)
	if key == "" {
		return fmt.Errorf("widget: field key is required")
	}
	kind := w.InputType
	if kind == "" {
		kind = w.InputTypeSnake
	}

	props := make(map[string]any, len(w.Props))
	for k, v := range w.Props {
		props[k] = v
	}
	multi, _ := props["isMulti"].(bool)
	delete(props, "isMulti")
	if len(props) == 0 {
		props = nil
	}

	var input InputKind
	switch kind {
	case KindSelect:
		input = SelectKind{Multi: multi, Choices: w.Choices}
	case KindTextarea:
		input = TextareaKind{}
	default:
		// Unknown kinds render as plain text, matching the backend's default.
		input = TextKind{}
	}

	*f = FieldDescriptor{
		Key:        key,
		Label:      w.Label,
		Input:      input,
		ExtraProps: props,
	}
	return nil
}

func (f FieldDescriptor) toWire() fieldWire {
	w := fieldWire{Key: f.Key, Label: f.Label}
	if len(f.ExtraProps) > 0 {
		w.Props = make(map[string]any, len(f.ExtraProps)+1)
		for k, v := range f.ExtraProps {
			w.Props[k] = v
		}
	}
	switch in := f.Input.(type) {
	case SelectKind:
		w.InputType = KindSelect
		w.Choices = in.Choices
		if w.Props == nil {
			w.Props = map[string]any{}
		}
		w.Props["isMulti"] = in.Multi
	case TextareaKind:
		w.InputType = KindTextarea
	default:
		w.InputType = KindText
	}
	return w
}

// UnmarshalJSON decodes the backend field shape {key, label, inputType, props, choices}.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("widget: decode field: %w", err)
	}
	return f.fromWire(w)
}

// MarshalJSON encodes the descriptor back into the backend field shape.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toWire())
}

// UnmarshalYAML decodes schema files using the same keys as the JSON form.
func (f *FieldDescriptor) UnmarshalYAML(node *yaml.Node) error {
	var w fieldWire
	if err := node.Decode(&w); err != nil {
		return fmt.Errorf("widget: decode field: %w", err)
	}
	return f.fromWire(w)
}

// ClassSchemas maps widget class names to their ordered field lists while
// remembering the order classes were declared in.
type ClassSchemas struct {
	names  []string
	fields map[string][]FieldDescriptor
}

// NewClassSchemas returns an empty schema set.
func NewClassSchemas() *ClassSchemas {
	return &ClassSchemas{fields: make(map[string][]FieldDescriptor)}
}

// Add registers a class. Duplicate names return ErrDuplicateClass.
func (s *ClassSchemas) Add(name string, fields []FieldDescriptor) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("widget: class name is required")
	}
	if s.fields == nil {
		s.fields = make(map[string][]FieldDescriptor)
	}
	if _, exists := s.fields[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateClass, name)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("widget: class %q defines field %q twice", name, field.Key)
		}
		seen[field.Key] = struct{}{}
	}
	s.names = append(s.names, name)
	s.fields[name] = append([]FieldDescriptor(nil), fields...)
	return nil
}

// Names returns class names in declaration order.
func (s *ClassSchemas) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Fields returns the field list for class.
func (s *ClassSchemas) Fields(class string) ([]FieldDescriptor, bool) {
	if s == nil {
		return nil, false
	}
	fields, ok := s.fields[class]
	if !ok {
		return nil, false
	}
	return append([]FieldDescriptor(nil), fields...), true
}

// Has reports whether class is defined.
func (s *ClassSchemas) Has(class string) bool {
	if s == nil {
		return false
	}
	_, ok := s.fields[class]
	return ok
}

// Len returns the number of classes.
func (s *ClassSchemas) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Only returns a schema set holding just class, used for edit sessions where
// the class is fixed.
func (s *ClassSchemas) Only(class string) (*ClassSchemas, bool) {
	fields, ok := s.Fields(class)
	if !ok {
		return nil, false
	}
	out := NewClassSchemas()
	_ = out.Add(class, fields)
	return out, true
}

// UnmarshalJSON keeps the class order of the JSON object.
func (s *ClassSchemas) UnmarshalJSON(data []byte) error {
	out := NewClassSchemas()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = *out
		return nil
	}
	err := decodeOrderedObject(trimmed, func(name string, raw json.RawMessage) error {
		var fields []FieldDescriptor
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("class %q: %w", name, err)
		}
		return out.Add(name, fields)
	})
	if err != nil {
		return fmt.Errorf("widget: decode class schemas: %w", err)
	}
	*s = *out
	return nil
}

// MarshalJSON writes classes in declaration order.
func (s ClassSchemas) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		fields, err := json.Marshal(s.fields[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(fields)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML keeps the class order of the YAML mapping.
func (s *ClassSchemas) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("widget: decode class schemas: line %d: expected mapping", node.Line)
	}
	out := NewClassSchemas()
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var fields []FieldDescriptor
		if err := node.Content[i+1].Decode(&fields); err != nil {
			return fmt.Errorf("widget: class %q: %w", name, err)
		}
		if err := out.Add(name, fields); err != nil {
			return err
		}
	}
	*s = *out
	return nil
}

// Configurations is the get_configurations response body.
type Configurations struct {
	Classes *ClassSchemas `json:"widgetClassConfigurations"`
}

// Editable is the get_widget response body: the schema of the widget's class
// and its current configuration flattened with title.
type Editable struct {
	Classes *ClassSchemas  `json:"widgetClassConfigurations"`
	Data    map[string]any `json:"widgetData"`
}

// Class returns the class an edit session is fixed to. The backend sends a
// single entry; widget_class in the data wins when present.
func (e Editable) Class() string {
	if class, ok := e.Data["widget_class"].(string); ok && e.Classes.Has(class) {
		return class
	}
	names := e.Classes.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
