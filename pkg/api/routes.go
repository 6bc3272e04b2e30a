package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contract []byte

const aliasExtension = "x-aliases"

// Route is one resolved REST operation.
type Route struct {
	Operation string
	Method    string
	Path      string
	// Query lists the query parameters the operation accepts.
	Query []string
}

var (
	routesOnce sync.Once
	routes     map[string]Route
	aliases    map[string]string
	routesErr  error
)

// Document returns the embedded OpenAPI contract the route table is built from.
func Document() []byte {
	return append([]byte(nil), contract...)
}

// Routes returns every route of the contract sorted by operation name.
func Routes() ([]Route, error) {
	table, _, err := loadRoutes()
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(table))
	for _, route := range table {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out, nil
}

// Lookup returns the route for an operation name or alias.
func Lookup(op string) (Route, error) {
	table, aliasTable, err := loadRoutes()
	if err != nil {
		return Route{}, err
	}
	name := strings.TrimSpace(op)
	if target, ok := aliasTable[name]; ok {
		name = target
	}
	route, ok := table[name]
	if !ok {
		return Route{}, &OperationError{Operation: op, Err: ErrUnknownOperation}
	}
	return route, nil
}

// Method returns the HTTP method of op.
func Method(op string) (string, error) {
	route, err := Lookup(op)
	if err != nil {
		return "", err
	}
	return route.Method, nil
}

func loadRoutes() (map[string]Route, map[string]string, error) {
	routesOnce.Do(func() {
		routes, aliases, routesErr = parseContract(context.Background(), contract)
	})
	return routes, aliases, routesErr
}

func parseContract(ctx context.Context, raw []byte) (map[string]Route, map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil, errors.New("api: contract is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("api: load contract: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, nil, fmt.Errorf("api: validate contract: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, nil, errors.New("api: contract does not define any paths")
	}

	table := make(map[string]Route)
	aliasTable := make(map[string]string)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil || operation.OperationID == "" {
				continue
			}
			id := operation.OperationID
			if _, exists := table[id]; exists {
				return nil, nil, fmt.Errorf("api: operation %q defined twice", id)
			}
			table[id] = Route{
				Operation: id,
				Method:    strings.ToUpper(method),
				Path:      strings.TrimPrefix(path, "/"),
				Query:     queryParams(item.Parameters, operation.Parameters),
			}
			for _, alias := range extensionStrings(operation.Extensions[aliasExtension]) {
				aliasTable[alias] = id
			}
		}
	}
	return table, aliasTable, nil
}

func queryParams(groups ...openapi3.Parameters) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, params := range groups {
		for _, ref := range params {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			if _, ok := seen[ref.Value.Name]; ok {
				continue
			}
			seen[ref.Value.Name] = struct{}{}
			out = append(out, ref.Value.Name)
		}
	}
	sort.Strings(out)
	return out
}

func extensionStrings(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Mutating reports whether the route changes server state.
func (r Route) Mutating() bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
