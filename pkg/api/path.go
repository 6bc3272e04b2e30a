package api

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBase is the API root used when callers pass an empty base.
const DefaultBase = "/api/v1/"

// Operation names understood by ResolvePath.
const (
	GetLists          = "get_lists"
	GetConfigurations = "get_configurations"
	CreateList        = "create_list"
	GetList           = "get_list"
	DeleteList        = "delete_list"
	CreateWidget      = "create_widget"
	GetWidget         = "get_widget"
	DeleteWidget      = "delete_widget"
	UpdateWidget      = "update_widget"
	MoveWidget        = "move_widget"

	// WidgetList is an alias of GetList.
	WidgetList = "widget_list"
	// Widget resolves to GetWidget when a widget id is supplied and to
	// CreateWidget otherwise.
	Widget = "widget"
)

const (
	listParam     = "{listId}"
	widgetParam   = "{widgetId}"
	positionQuery = "position"
)

var (
	// ErrUnknownOperation is returned for operation names outside the contract.
	ErrUnknownOperation = errors.New("api: unknown operation")
	// ErrMissingIdentifier is returned when a path needs an id that was not given.
	ErrMissingIdentifier = errors.New("api: missing identifier")
	// ErrMissingArgument is returned when a required query argument is absent.
	ErrMissingArgument = errors.New("api: missing argument")
)

// OperationError attaches the requested operation name to a resolution failure.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Operation)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Args carries operation arguments that end up in the query string.
type Args map[string]any

// ResolvePath maps an operation name and identifiers to a resource path under
// base. Query arguments are only emitted for parameters the operation declares;
// move_widget requires a position.
func ResolvePath(base, op, listID, widgetID string, args Args) (string, error) {
	name := strings.TrimSpace(op)
	if name == Widget {
		if widgetID != "" {
			name = GetWidget
		} else {
			name = CreateWidget
		}
	}

	route, err := Lookup(name)
	if err != nil {
		var opErr *OperationError
		if errors.As(err, &opErr) {
			opErr.Operation = op
		}
		return "", err
	}

	path := route.Path
	if strings.Contains(path, listParam) {
		if listID == "" {
			return "", &OperationError{Operation: op, Err: fmt.Errorf("%w: list id", ErrMissingIdentifier)}
		}
		path = strings.ReplaceAll(path, listParam, url.PathEscape(listID))
	}
	if strings.Contains(path, widgetParam) {
		if widgetID == "" {
			return "", &OperationError{Operation: op, Err: fmt.Errorf("%w: widget id", ErrMissingIdentifier)}
		}
		path = strings.ReplaceAll(path, widgetParam, url.PathEscape(widgetID))
	}

	if name == MoveWidget {
		if _, ok := args[positionQuery]; !ok {
			return "", &OperationError{Operation: op, Err: fmt.Errorf("%w: %s", ErrMissingArgument, positionQuery)}
		}
	}

	query := url.Values{}
	for _, param := range route.Query {
		value, ok := args[param]
		if !ok || value == nil {
			continue
		}
		query.Set(param, fmt.Sprint(value))
	}

	out := joinBase(base, path)
	if encoded := query.Encode(); encoded != "" {
		out += "?" + encoded
	}
	return out, nil
}

func joinBase(base, path string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultBase
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
