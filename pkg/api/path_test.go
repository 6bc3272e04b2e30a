package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		listID   string
		widgetID string
		args     Args
		want     string
	}{
		{name: "lists", op: GetLists, want: "/api/v1/lists"},
		{name: "configurations", op: GetConfigurations, want: "/api/v1/configurations"},
		{name: "create list", op: CreateList, want: "/api/v1/list/create"},
		{name: "get list", op: GetList, listID: "4", want: "/api/v1/list/4"},
		{name: "widget list alias", op: WidgetList, listID: "4", want: "/api/v1/list/4"},
		{name: "delete list", op: DeleteList, listID: "4", want: "/api/v1/list/4/delete"},
		{name: "create widget", op: CreateWidget, listID: "4", want: "/api/v1/list/4/widget/create"},
		{name: "widget alias without id creates", op: Widget, listID: "4", want: "/api/v1/list/4/widget/create"},
		{name: "widget alias with id reads", op: Widget, listID: "4", widgetID: "9", want: "/api/v1/list/4/widget/9"},
		{name: "get widget", op: GetWidget, listID: "4", widgetID: "9", want: "/api/v1/list/4/widget/9"},
		{name: "delete widget", op: DeleteWidget, listID: "4", widgetID: "9", want: "/api/v1/list/4/widget/9/delete"},
		{name: "update widget", op: UpdateWidget, listID: "4", widgetID: "9", want: "/api/v1/list/4/widget/9/update"},
		{name: "move widget", op: MoveWidget, listID: "4", widgetID: "9", args: Args{"position": 2}, want: "/api/v1/list/4/widget/9/update?position=2"},
		{name: "undeclared args are dropped", op: GetList, listID: "4", args: Args{"position": 1}, want: "/api/v1/list/4"},
		{name: "ids are escaped", op: GetWidget, listID: "a b", widgetID: "x/y", want: "/api/v1/list/a%20b/widget/x%2Fy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath("", tt.op, tt.listID, tt.widgetID, tt.args)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolvePathCustomBase(t *testing.T) {
	got, err := ResolvePath("https://example.test/widgets/api/", GetList, "1", "", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://example.test/widgets/api/list/1" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestResolvePathUnknownOperation(t *testing.T) {
	_, err := ResolvePath("", "rename_widget", "1", "2", nil)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Operation != "rename_widget" {
		t.Fatalf("expected operation name on error, got %#v", err)
	}
}

func TestResolvePathMissingInputs(t *testing.T) {
	if _, err := ResolvePath("", GetWidget, "1", "", nil); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier for widget id, got %v", err)
	}
	if _, err := ResolvePath("", GetList, "", "", nil); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier for list id, got %v", err)
	}
	if _, err := ResolvePath("", MoveWidget, "1", "2", nil); !errors.Is(err, ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestRoutesFollowContract(t *testing.T) {
	routes, err := Routes()
	if err != nil {
		t.Fatalf("routes: %v", err)
	}

	got := make(map[string]string, len(routes))
	for _, route := range routes {
		got[route.Operation] = route.Method
	}
	want := map[string]string{
		GetLists:          http.MethodGet,
		GetConfigurations: http.MethodGet,
		CreateList:        http.MethodPost,
		GetList:           http.MethodGet,
		DeleteList:        http.MethodPost,
		CreateWidget:      http.MethodPost,
		GetWidget:         http.MethodGet,
		DeleteWidget:      http.MethodDelete,
		UpdateWidget:      http.MethodPatch,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("route methods mismatch (-want +got):\n%s", diff)
	}

	method, err := Method(MoveWidget)
	if err != nil {
		t.Fatalf("method: %v", err)
	}
	if method != http.MethodPatch {
		t.Fatalf("expected move_widget to PATCH, got %s", method)
	}

	update, err := Lookup(UpdateWidget)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"position"}, update.Query); diff != "" {
		t.Fatalf("query params mismatch (-want +got):\n%s", diff)
	}
	if !update.Mutating() {
		t.Fatalf("expected update to be mutating")
	}
}

func TestDocumentIsCopy(t *testing.T) {
	doc := Document()
	doc[0] = 'X'
	if Document()[0] == 'X' {
		t.Fatalf("expected Document to return a copy")
	}
}
