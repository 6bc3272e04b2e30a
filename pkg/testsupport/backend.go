package testsupport

import (
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-widgetlist/pkg/api"
	"github.com/goliatone/go-widgetlist/pkg/transport"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

//go:embed schemas/*.yaml
var schemaFiles embed.FS

// CSRFToken is the token the backend expects on mutating requests.
const CSRFToken = "test-csrf-token"

// Request is one recorded call against the Backend.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     string
	Body      map[string]any
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithSchemas replaces the embedded class schemas.
func WithSchemas(schemas *widget.ClassSchemas) BackendOption {
	return func(b *Backend) {
		if schemas != nil {
			b.schemas = schemas
		}
	}
}

// WithList seeds a list. Positions are resequenced in slice order and each
// entry gets rendered html unless it already carries some.
func WithList(listID string, instances ...widget.Instance) BackendOption {
	return func(b *Backend) {
		list := make([]widget.Instance, 0, len(instances))
		for _, inst := range instances {
			inst = inst.Clone()
			if inst.HTML() == "" {
				applyContent(&inst, nil)
			}
			list = append(list, inst)
		}
		b.lists[listID] = resequence(list)
		b.listOrder = append(b.listOrder, listID)
	}
}

// Backend is an in-memory persistence service implementing the REST contract
// of pkg/api. It resequences positions on every mutation and answers with
// the full ordered list, the way the production service does.
type Backend struct {
	Server *httptest.Server
	Base   string

	mu          sync.Mutex
	schemas     *widget.ClassSchemas
	lists       map[string][]widget.Instance
	listOrder   []string
	nextID      int
	requests    []Request
	failNext    []int
	requireCSRF bool
}

// NewBackend starts a Backend and registers its shutdown with t.Cleanup.
func NewBackend(t testing.TB, options ...BackendOption) *Backend {
	t.Helper()

	b := &Backend{
		Base:        strings.TrimRight(api.DefaultBase, "/"),
		lists:       make(map[string][]widget.Instance),
		nextID:      100,
		requireCSRF: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.schemas == nil {
		schemas, err := DefaultSchemas()
		if err != nil {
			t.Fatalf("load backend schemas: %v", err)
		}
		b.schemas = schemas
	}

	router, err := b.router()
	if err != nil {
		t.Fatalf("build backend router: %v", err)
	}
	b.Server = httptest.NewServer(router)
	t.Cleanup(b.Server.Close)
	return b
}

// DefaultSchemas returns the class schemas the Backend serves unless
// WithSchemas is given.
func DefaultSchemas() (*widget.ClassSchemas, error) {
	sub, err := fs.Sub(schemaFiles, "schemas")
	if err != nil {
		return nil, err
	}
	return widget.LoadSchemasFS(sub)
}

// URL returns the server root.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Client returns a transport client pointed at the backend with the expected
// CSRF token.
func (b *Backend) Client() *transport.Client {
	return transport.New(transport.Config{BaseURL: b.Server.URL, CSRFToken: CSRFToken})
}

// Fetch is shorthand for Client().Fetch().
func (b *Backend) Fetch() transport.FetchFunc {
	return b.Client().Fetch()
}

// FailNext makes the next request answer with status.
func (b *Backend) FailNext(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = append(b.failNext, status)
}

// Requests returns the recorded calls in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestsFor filters the recorded calls by operation name.
func (b *Backend) RequestsFor(op string) []Request {
	var out []Request
	for _, req := range b.Requests() {
		if req.Operation == op {
			out = append(out, req)
		}
	}
	return out
}

// ResetRequests clears the recorded calls.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// List returns a copy of the stored list.
func (b *Backend) List(listID string) []widget.Instance {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneList(b.lists[listID])
}

type backendHandler func(r *http.Request, body map[string]any) (any, int)

func (b *Backend) router() (http.Handler, error) {
	routes, err := api.Routes()
	if err != nil {
		return nil, err
	}
	handlers := map[string]backendHandler{
		api.GetLists:          b.getLists,
		api.GetConfigurations: b.getConfigurations,
		api.CreateList:        b.createList,
		api.GetList:           b.getList,
		api.DeleteList:        b.deleteList,
		api.CreateWidget:      b.createWidget,
		api.GetWidget:         b.getWidget,
		api.DeleteWidget:      b.deleteWidget,
		api.UpdateWidget:      b.updateWidget,
	}

	r := chi.NewRouter()
	r.Route(b.Base, func(r chi.Router) {
		for _, route := range routes {
			handler, ok := handlers[route.Operation]
			if !ok {
				continue
			}
			r.Method(route.Method, "/"+route.Path, b.wrap(route, handler))
		}
	})
	return r, nil
}

func (b *Backend) wrap(route api.Route, handler backendHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if raw, _ := io.ReadAll(r.Body); len(strings.TrimSpace(string(raw))) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid json"})
				return
			}
		}

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Operation: route.Operation,
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Body:      body,
		})
		var failStatus int
		if len(b.failNext) > 0 {
			failStatus = b.failNext[0]
			b.failNext = b.failNext[1:]
		}
		b.mu.Unlock()

		if failStatus != 0 {
			writeJSON(w, failStatus, map[string]any{"detail": "forced failure"})
			return
		}
		if route.Mutating() && b.requireCSRF && r.Header.Get(transport.DefaultCSRFHeader) != CSRFToken {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "csrf token missing"})
			return
		}

		b.mu.Lock()
		payload, status := handler(r, body)
		raw, err := json.Marshal(payload)
		b.mu.Unlock()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(raw)
	})
}

func (b *Backend) getLists(_ *http.Request, _ map[string]any) (any, int) {
	out := make([]map[string]any, 0, len(b.listOrder))
	for _, id := range b.listOrder {
		out = append(out, map[string]any{"id": id, "widgets": len(b.lists[id])})
	}
	return out, http.StatusOK
}

func (b *Backend) getConfigurations(_ *http.Request, _ map[string]any) (any, int) {
	return widget.Configurations{Classes: b.schemas}, http.StatusOK
}

func (b *Backend) createList(_ *http.Request, _ map[string]any) (any, int) {
	id := b.newID()
	b.lists[id] = []widget.Instance{}
	b.listOrder = append(b.listOrder, id)
	return map[string]any{"id": id}, http.StatusCreated
}

func (b *Backend) getList(r *http.Request, _ map[string]any) (any, int) {
	list, ok := b.lists[chi.URLParam(r, "listId")]
	if !ok {
		return notFound("list")
	}
	return list, http.StatusOK
}

func (b *Backend) deleteList(r *http.Request, _ map[string]any) (any, int) {
	listID := chi.URLParam(r, "listId")
	if _, ok := b.lists[listID]; !ok {
		return notFound("list")
	}
	delete(b.lists, listID)
	for i, id := range b.listOrder {
		if id == listID {
			b.listOrder = append(b.listOrder[:i], b.listOrder[i+1:]...)
			break
		}
	}
	return []widget.Instance{}, http.StatusOK
}

func (b *Backend) createWidget(r *http.Request, body map[string]any) (any, int) {
	listID := chi.URLParam(r, "listId")
	list, ok := b.lists[listID]
	if !ok {
		return notFound("list")
	}
	class, _ := body["widget_class"].(string)
	if !b.schemas.Has(class) {
		return map[string]any{"detail": fmt.Sprintf("unknown widget class %q", class)}, http.StatusBadRequest
	}

	inst := widget.Instance{
		ID:          b.newID(),
		WidgetClass: class,
		RendererKey: "default",
	}
	applyContent(&inst, body)

	position := len(list)
	if p, ok := intValue(body["position"]); ok {
		position = p
	}
	b.lists[listID] = resequence(insertAt(list, inst, position))
	return b.lists[listID], http.StatusCreated
}

func (b *Backend) getWidget(r *http.Request, _ map[string]any) (any, int) {
	list, idx, ok := b.lookup(r)
	if !ok {
		return notFound("widget")
	}
	inst := list[idx]
	schemas, ok := b.schemas.Only(inst.WidgetClass)
	if !ok {
		return map[string]any{"detail": "widget class no longer exists"}, http.StatusConflict
	}
	data := make(map[string]any, len(inst.Configuration)+1)
	for k, v := range inst.Configuration {
		data[k] = v
	}
	data["title"] = inst.Title
	return widget.Editable{Classes: schemas, Data: data}, http.StatusOK
}

func (b *Backend) deleteWidget(r *http.Request, _ map[string]any) (any, int) {
	list, idx, ok := b.lookup(r)
	if !ok {
		return notFound("widget")
	}
	listID := chi.URLParam(r, "listId")
	next := append(cloneList(list[:idx]), cloneList(list[idx+1:])...)
	b.lists[listID] = resequence(next)
	return b.lists[listID], http.StatusOK
}

func (b *Backend) updateWidget(r *http.Request, body map[string]any) (any, int) {
	list, idx, ok := b.lookup(r)
	if !ok {
		return notFound("widget")
	}
	listID := chi.URLParam(r, "listId")
	inst := list[idx].Clone()

	if class, ok := body["widget_class"].(string); ok && class != "" {
		if class != inst.WidgetClass {
			return map[string]any{"detail": "widget class cannot change"}, http.StatusBadRequest
		}
	}
	applyContent(&inst, body)

	position := inst.Position
	if p, ok := intValue(body["position"]); ok {
		position = p
	}
	if raw := r.URL.Query().Get("position"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return map[string]any{"detail": "position must be an integer"}, http.StatusBadRequest
		}
		position = p
	}

	rest := append(cloneList(list[:idx]), cloneList(list[idx+1:])...)
	b.lists[listID] = resequence(insertAt(rest, inst, position))
	return b.lists[listID], http.StatusOK
}

func (b *Backend) lookup(r *http.Request) ([]widget.Instance, int, bool) {
	list, ok := b.lists[chi.URLParam(r, "listId")]
	if !ok {
		return nil, -1, false
	}
	idx := widget.IndexOf(list, chi.URLParam(r, "widgetId"))
	if idx < 0 {
		return nil, -1, false
	}
	return list, idx, true
}

func (b *Backend) newID() string {
	b.nextID++
	return strconv.Itoa(b.nextID)
}

func applyContent(inst *widget.Instance, body map[string]any) {
	if title, ok := body["title"].(string); ok {
		inst.Title = title
	}
	if cfg, ok := body["configuration"].(map[string]any); ok {
		inst.Configuration = cfg
	}
	if inst.Props == nil {
		inst.Props = make(map[string]any)
	}
	inst.Props["html"] = "<p>" + html.EscapeString(inst.Title) + "</p>"
}

func insertAt(list []widget.Instance, inst widget.Instance, position int) []widget.Instance {
	if position < 0 {
		position = 0
	}
	if position > len(list) {
		position = len(list)
	}
	out := make([]widget.Instance, 0, len(list)+1)
	out = append(out, list[:position]...)
	out = append(out, inst)
	return append(out, list[position:]...)
}

// resequence assigns positions 0..n-1 in slice order.
func resequence(list []widget.Instance) []widget.Instance {
	for i := range list {
		list[i].Position = i
	}
	return list
}

func cloneList(list []widget.Instance) []widget.Instance {
	if list == nil {
		return nil
	}
	out := make([]widget.Instance, len(list))
	for i, inst := range list {
		out[i] = inst.Clone()
	}
	return out
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

func notFound(what string) (any, int) {
	return map[string]any{"detail": what + " not found"}, http.StatusNotFound
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// SortedIDs returns the instance ids ordered by position.
func SortedIDs(instances []widget.Instance) []string {
	sorted := append([]widget.Instance(nil), instances...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	ids := make([]string, len(sorted))
	for i, inst := range sorted {
		ids[i] = inst.ID
	}
	return ids
}
