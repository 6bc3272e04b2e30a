package widget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Instance is one persisted widget in an ordered list. The backend owns it;
// callers treat a decoded sequence as read-only server state.
type Instance struct {
	ID            string
	Position      int
	WidgetClass   string
	RendererKey   string
	Configuration map[string]any
	Title         string

	// Props carries any additional keys the backend merged into the entry,
	// such as pre-rendered html.
	Props map[string]any
}

var instanceKeys = map[string]struct{}{
	"id":             {},
	"position":       {},
	"widget_class":   {},
	"widgetClass":    {},
	"react_renderer": {},
	"renderer":       {},
	"rendererKey":    {},
	"configuration":  {},
	"title":          {},
}

// UnmarshalJSON accepts the backend's snake_case keys as well as the camelCase
// aliases used by older list endpoints. Numeric and string ids both decode to
// the string form.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("widget: decode instance: %w", err)
	}

	var out Instance
	if v, ok := raw["id"]; ok {
		id, err := decodeID(v)
		if err != nil {
			return err
		}
		out.ID = id
	}
	if v, ok := raw["position"]; ok {
		if err := json.Unmarshal(v, &out.Position); err != nil {
			return fmt.Errorf("widget: decode position: %w", err)
		}
	}
	out.WidgetClass = firstString(raw, "widget_class", "widgetClass")
	out.RendererKey = firstString(raw, "react_renderer", "rendererKey", "renderer")
	out.Title = firstString(raw, "title")
	if v, ok := raw["configuration"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &out.Configuration); err != nil {
			return fmt.Errorf("widget: decode configuration: %w", err)
		}
	}

	for key, value := range raw {
		if _, known := instanceKeys[key]; known {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("widget: decode prop %q: %w", key, err)
		}
		if out.Props == nil {
			out.Props = make(map[string]any)
		}
		out.Props[key] = decoded
	}

	*i = out
	return nil
}

// MarshalJSON emits the canonical snake_case form plus any extra props.
func (i Instance) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Props)+6)
	for key, value := range i.Props {
		out[key] = value
	}
	out["id"] = encodeID(i.ID)
	out["position"] = i.Position
	out["widget_class"] = i.WidgetClass
	out["react_renderer"] = i.RendererKey
	out["title"] = i.Title
	configuration := i.Configuration
	if configuration == nil {
		configuration = map[string]any{}
	}
	out["configuration"] = configuration
	return json.Marshal(out)
}

// HTML returns the server rendered body when the backend supplied one.
func (i Instance) HTML() string {
	if i.Props == nil {
		return ""
	}
	if s, ok := i.Props["html"].(string); ok {
		return s
	}
	return ""
}

// Clone returns a deep enough copy for callers that want to mutate maps.
func (i Instance) Clone() Instance {
	out := i
	out.Configuration = cloneMap(i.Configuration)
	out.Props = cloneMap(i.Props)
	return out
}

// ErrEmptyPayload is returned when a list response carries no body at all.
var ErrEmptyPayload = errors.New("widget: empty list payload")

// DecodeList parses a list read or mutation response. A JSON null is an empty
// list; a missing body is an error.
func DecodeList(data []byte) ([]Instance, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return []Instance{}, nil
	}
	var out []Instance
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("widget: decode list: %w", err)
	}
	if out == nil {
		out = []Instance{}
	}
	return out, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("widget: decode id: %w", err)
	}
	return n.String(), nil
}

func encodeID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return n
	}
	return id
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case []any:
			out[key] = append([]any(nil), v...)
		case map[string]any:
			out[key] = cloneMap(v)
		default:
			out[key] = v
		}
	}
	return out
}
