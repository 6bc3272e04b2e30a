package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input the server-rendered slots emit inside every
// action form, typically the anti-forgery token.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs the hidden anti-forgery field. Callers pick the input
// name their host expects, for example "csrfmiddlewaretoken".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// HiddenFields collects hidden inputs by name. Later values win.
type HiddenFields map[string]string

// With returns a copy of h with fields applied. Empty names are ignored.
func (h HiddenFields) With(fields ...HiddenField) HiddenFields {
	out := make(HiddenFields, len(h)+len(fields))
	for name, value := range h {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	return out
}

// Sorted returns the fields ordered by name for deterministic markup.
func (h HiddenFields) Sorted() []HiddenField {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: strings.TrimSpace(name), Value: h[name]})
	}
	return out
}
