package widget

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Choice is one selectable entry of a select field.
type Choice struct {
	Key   string
	Label string
}

// Choices keeps select entries in the order the backend declared them.
type Choices []Choice

// Keys returns the choice keys in declaration order.
func (c Choices) Keys() []string {
	out := make([]string, 0, len(c))
	for _, choice := range c {
		out = append(out, choice.Key)
	}
	return out
}

// Label returns the label for key.
func (c Choices) Label(key string) (string, bool) {
	for _, choice := range c {
		if choice.Key == key {
			return choice.Label, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts an object of key to label, an array of [key, label]
// pairs, or an array of scalars where key and label are the same.
func (c *Choices) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}

	switch trimmed[0] {
	case '{':
		var out Choices
		err := decodeOrderedObject(trimmed, func(key string, raw json.RawMessage) error {
			var label any
			if err := json.Unmarshal(raw, &label); err != nil {
				return err
			}
			out = append(out, Choice{Key: key, Label: scalarString(label)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("widget: decode choices: %w", err)
		}
		*c = out
		return nil
	case '[':
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("widget: decode choices: %w", err)
		}
		out, err := choicesFromList(items)
		if err != nil {
			return err
		}
		*c = out
		return nil
	default:
		return fmt.Errorf("widget: decode choices: unsupported JSON %s", string(trimmed[:1]))
	}
}

// MarshalJSON writes choices as an ordered JSON object.
func (c Choices) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, choice := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(choice.Key)
		if err != nil {
			return nil, err
		}
		label, err := json.Marshal(choice.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(label)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML mirrors UnmarshalJSON for schema files.
func (c *Choices) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Choices, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, Choice{Key: node.Content[i].Value, Label: node.Content[i+1].Value})
		}
		*c = out
		return nil
	case yaml.SequenceNode:
		var items []any
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("widget: decode choices: %w", err)
		}
		out, err := choicesFromList(items)
		if err != nil {
			return err
		}
		*c = out
		return nil
	default:
		return fmt.Errorf("widget: decode choices: line %d: expected mapping or sequence", node.Line)
	}
}

func choicesFromList(items []any) (Choices, error) {
	out := make(Choices, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case []any:
			if len(v) != 2 {
				return nil, fmt.Errorf("widget: decode choices: pair must have 2 entries, got %d", len(v))
			}
			out = append(out, Choice{Key: scalarString(v[0]), Label: scalarString(v[1])})
		case map[string]any, map[any]any:
			return nil, fmt.Errorf("widget: decode choices: nested objects are not supported")
		default:
			s := scalarString(v)
			out = append(out, Choice{Key: s, Label: s})
		}
	}
	return out, nil
}

// scalarString renders choice keys and configured values the same way so
// numeric JSON values compare equal to their object-key form.
func scalarString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%v", value)
	case json.Number:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

// ValueKey exposes the comparison form used to match stored values against
// choice keys.
func ValueKey(v any) string {
	return scalarString(v)
}

func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
