package slots

import (
	"context"
	"html/template"

	"github.com/goliatone/go-widgetlist/pkg/form"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// Prop keys the default slots understand.
const (
	// PropActionBase prefixes the action URLs of the default markup, for
	// example "/dashboard/widgets".
	PropActionBase = "action_base"
	// PropHiddenFields carries a render.HiddenFields emitted in every action
	// form.
	PropHiddenFields = "hidden_fields"
)

// State names used in FormData.State.
const (
	StateCreating = "creating"
	StateEditing  = "editing"
)

// ListData is handed to the list slot on every render.
type ListData struct {
	ListID string
	// Items holds the rendered item slots in position order.
	Items      []template.HTML
	ListLength int
	// Form is the rendered form slot, empty while no form is open.
	Form     template.HTML
	FormOpen bool
	EditMode bool
	Props    map[string]any

	OpenNewForm    func(ctx context.Context) error `json:"-"`
	CloseForm      func()                          `json:"-"`
	ToggleEditMode func() bool                     `json:"-"`
}

// ItemData is handed to the item slot once per widget. Callbacks are bound
// to the item's id.
type ItemData struct {
	Instance   widget.Instance
	Body       template.HTML
	ListLength int
	IsFirst    bool
	IsLast     bool
	EditMode   bool
	Props      map[string]any

	OpenEditForm func(ctx context.Context) error               `json:"-"`
	Delete       func(ctx context.Context) error               `json:"-"`
	Move         func(ctx context.Context, position int) error `json:"-"`
}

// FormData is handed to the form slot while a form is open. Session is nil
// until the schema has been fetched.
type FormData struct {
	State    string
	WidgetID string
	Session  *form.Session
	Loader   template.HTML
	Props    map[string]any

	Submit func(ctx context.Context, widgetClass string, payload form.Payload) error `json:"-"`
	Close  func()                                                                  `json:"-"`
}

// Loading reports whether the schema is still missing.
func (d FormData) Loading() bool {
	return d.Session == nil
}

// ListSlot renders the list wrapper.
type ListSlot interface {
	Render(ctx context.Context, data ListData) (template.HTML, error)
}

// ItemSlot renders the wrapper around one widget body.
type ItemSlot interface {
	Render(ctx context.Context, data ItemData) (template.HTML, error)
}

// FormSlot renders the wrapper around the open form.
type FormSlot interface {
	Render(ctx context.Context, data FormData) (template.HTML, error)
}

// ListFunc adapts a function to ListSlot.
type ListFunc func(ctx context.Context, data ListData) (template.HTML, error)

func (f ListFunc) Render(ctx context.Context, data ListData) (template.HTML, error) {
	return f(ctx, data)
}

// ItemFunc adapts a function to ItemSlot.
type ItemFunc func(ctx context.Context, data ItemData) (template.HTML, error)

func (f ItemFunc) Render(ctx context.Context, data ItemData) (template.HTML, error) {
	return f(ctx, data)
}

// FormFunc adapts a function to FormSlot.
type FormFunc func(ctx context.Context, data FormData) (template.HTML, error)

func (f FormFunc) Render(ctx context.Context, data FormData) (template.HTML, error) {
	return f(ctx, data)
}
