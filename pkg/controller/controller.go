package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/goliatone/go-widgetlist/internal/logx"
	"github.com/goliatone/go-widgetlist/pkg/api"
	"github.com/goliatone/go-widgetlist/pkg/form"
	"github.com/goliatone/go-widgetlist/pkg/render"
	"github.com/goliatone/go-widgetlist/pkg/slots"
	"github.com/goliatone/go-widgetlist/pkg/transport"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// State is the form session state.
type State int

const (
	Closed State = iota
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Creating:
		return slots.StateCreating
	case Editing:
		return slots.StateEditing
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FormState describes the open form. WidgetID is set only while Editing.
type FormState struct {
	State    State
	WidgetID string
	// Loaded reports whether the schema for the form has arrived.
	Loaded bool
	Class  string
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	ListID string
	// Instances is nil until the first successful load.
	Instances []widget.Instance
	Form      FormState
	EditMode  bool
}

type formSession struct {
	state    State
	widgetID string
	session  *form.Session
	token    uint64
}

// Controller is the single owner of one widget list. It is safe for use from
// several goroutines; the mutex is never held across a network call.
//
// Concurrent mutations on the same list are last-write-wins: whichever
// response arrives last becomes the cached sequence. Responses that arrive
// after the list id changed are discarded.
type Controller struct {
	cfg Config

	mu         sync.Mutex
	listID     string
	generation uint64
	instances  []widget.Instance
	form       formSession
	formTokens uint64
	editMode   bool
}

// New builds a Controller from cfg with options applied on top. Slots left
// nil get the default implementations.
func New(cfg Config, options ...Option) (*Controller, error) {
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Fetch == nil {
		return nil, ErrNoFetch
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = LogErrors
	}
	if cfg.Loader == "" {
		cfg.Loader = slots.DefaultLoader
	}
	if cfg.DefaultRenderer == nil {
		cfg.DefaultRenderer = render.Default
	}
	if cfg.ListSlot == nil || cfg.ItemSlot == nil || cfg.FormSlot == nil {
		defaults, err := slots.NewDefaults()
		if err != nil {
			return nil, fmt.Errorf("controller: default slots: %w", err)
		}
		if cfg.ListSlot == nil {
			cfg.ListSlot = defaults.List()
		}
		if cfg.ItemSlot == nil {
			cfg.ItemSlot = defaults.Item()
		}
		if cfg.FormSlot == nil {
			cfg.FormSlot = defaults.Form()
		}
	}
	return &Controller{cfg: cfg, listID: cfg.ListID}, nil
}

// ListID returns the current list id.
func (c *Controller) ListID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listID
}

// Instances returns a copy of the cached sequence, nil before the first load.
func (c *Controller) Instances() []widget.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneInstances(c.instances)
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		ListID:    c.listID,
		Instances: cloneInstances(c.instances),
		EditMode:  c.editMode,
		Form: FormState{
			State:    c.form.state,
			WidgetID: c.form.widgetID,
			Loaded:   c.form.session != nil,
		},
	}
	if c.form.session != nil {
		snap.Form.Class = c.form.session.Class()
	}
	return snap
}

// Session returns the open form session, or nil when no form is open or its
// schema is still loading.
func (c *Controller) Session() *form.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.session
}

// Load fetches the list and replaces the cached sequence. On failure the
// error handler is called and the cache is left untouched.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	listID, gen := c.listID, c.generation
	c.mu.Unlock()
	if listID == "" {
		return ErrNoList
	}

	raw, err := c.call(ctx, api.GetList, listID, "", nil, nil)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: load list %s: %w", listID, err))
	}
	return c.replace(ctx, gen, api.GetList, raw)
}

// SetListID switches the controller to another list. Any open form is closed,
// edit mode is turned off and the new list is loaded. Setting the current id
// is a no-op.
func (c *Controller) SetListID(ctx context.Context, id string) error {
	c.mu.Lock()
	if id == c.listID {
		c.mu.Unlock()
		return nil
	}
	c.listID = id
	c.generation++
	c.instances = nil
	c.editMode = false
	c.closeFormLocked()
	c.mu.Unlock()

	logx.WithList(ctx, id).Debug("widget list switched")
	if id == "" {
		return nil
	}
	return c.Load(ctx)
}

// OpenNewForm opens a create session, closing any other open form, and
// fetches the class schemas.
func (c *Controller) OpenNewForm(ctx context.Context) error {
	token, gen := c.openForm(Creating, "")

	raw, err := c.call(ctx, api.GetConfigurations, "", "", nil, nil)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: load widget classes: %w", err))
	}
	var configurations widget.Configurations
	if err := json.Unmarshal(raw, &configurations); err != nil {
		return c.report(ctx, fmt.Errorf("controller: decode widget classes: %w", err))
	}
	classes := configurations.Classes
	if classes == nil {
		classes = widget.NewClassSchemas()
	}
	return c.attachSession(ctx, token, gen, form.NewCreate(classes, c.sessionOptions()...))
}

// OpenEditForm opens an edit session for id, closing any other open form,
// and fetches the widget's schema and current data.
func (c *Controller) OpenEditForm(ctx context.Context, id string) error {
	listID := c.ListID()
	if listID == "" {
		return ErrNoList
	}
	token, gen := c.openForm(Editing, id)

	raw, err := c.call(ctx, api.GetWidget, listID, id, nil, nil)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: load widget %s: %w", id, err))
	}
	var editable widget.Editable
	if err := json.Unmarshal(raw, &editable); err != nil {
		return c.report(ctx, fmt.Errorf("controller: decode widget %s: %w", id, err))
	}
	session, err := form.FromEditable(editable, c.sessionOptions()...)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: open widget %s: %w", id, err))
	}
	return c.attachSession(ctx, token, gen, session)
}

// CloseForm discards the open form and its unsaved edits.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormLocked()
}

// ToggleEditMode flips the edit mode flag, closes any open form and returns
// the new value.
func (c *Controller) ToggleEditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = !c.editMode
	c.closeFormLocked()
	return c.editMode
}

// EditMode reports whether the item edit controls are shown.
func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// DeleteWidget deletes id and adopts the server's resequenced list.
func (c *Controller) DeleteWidget(ctx context.Context, id string) error {
	c.mu.Lock()
	listID, gen := c.listID, c.generation
	c.mu.Unlock()
	if listID == "" {
		return ErrNoList
	}

	raw, err := c.call(ctx, api.DeleteWidget, listID, id, nil, nil)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: delete widget %s: %w", id, err))
	}
	return c.replace(ctx, gen, api.DeleteWidget, raw)
}

// MoveWidget asks the server to move id to position and adopts the
// resequenced list. Position bounds are the server's concern.
func (c *Controller) MoveWidget(ctx context.Context, id string, position int) error {
	c.mu.Lock()
	listID, gen := c.listID, c.generation
	c.mu.Unlock()
	if listID == "" {
		return ErrNoList
	}

	args := api.Args{"position": position}
	body := map[string]any{"position": position}
	raw, err := c.call(ctx, api.MoveWidget, listID, id, args, body)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: move widget %s: %w", id, err))
	}
	return c.replace(ctx, gen, api.MoveWidget, raw)
}

// SubmitForm persists a form submission: a create while Creating, an update
// of the edited widget while Editing. On success the list is replaced and
// the form closes; on failure the form stays open.
func (c *Controller) SubmitForm(ctx context.Context, widgetClass string, payload form.Payload) error {
	c.mu.Lock()
	listID, gen := c.listID, c.generation
	state, widgetID, token := c.form.state, c.form.widgetID, c.form.token
	length := len(c.instances)
	c.mu.Unlock()

	if state == Closed {
		return ErrNoSession
	}
	if listID == "" {
		return ErrNoList
	}

	configuration := payload.Configuration
	if configuration == nil {
		configuration = map[string]any{}
	}
	var (
		raw json.RawMessage
		err error
		op  string
	)
	switch state {
	case Creating:
		op = api.CreateWidget
		raw, err = c.call(ctx, op, listID, "", nil, map[string]any{
			"title":         payload.Title,
			"configuration": configuration,
			"widget_class":  widgetClass,
			"widget_list":   listID,
			"position":      length,
		})
	case Editing:
		op = api.UpdateWidget
		raw, err = c.call(ctx, op, listID, widgetID, nil, map[string]any{
			"title":         payload.Title,
			"configuration": configuration,
			"widget_class":  widgetClass,
		})
	}
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: submit %s form: %w", state, err))
	}

	list, err := widget.DecodeList(raw)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: decode %s response: %w", op, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		logx.WithOperation(logx.WithList(ctx, listID), op).Debug("discarding response for previous list")
		return nil
	}
	c.adoptLocked(ctx, list)
	if c.form.token == token {
		c.closeFormLocked()
	}
	return nil
}

// Submit hands the open session to SubmitForm.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	state, session := c.form.state, c.form.session
	c.mu.Unlock()
	if state == Closed {
		return ErrNoSession
	}
	if session == nil {
		return ErrSchemaPending
	}
	return session.Submit(func(widgetClass string, payload form.Payload) error {
		return c.SubmitForm(ctx, widgetClass, payload)
	})
}

func (c *Controller) openForm(state State, widgetID string) (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormLocked()
	c.form = formSession{state: state, widgetID: widgetID, token: c.formTokens}
	return c.form.token, c.generation
}

func (c *Controller) attachSession(ctx context.Context, token, gen uint64, session *form.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.token != token || c.form.state == Closed || gen != c.generation {
		session.Close()
		logx.WithWidget(logx.WithList(ctx, c.listID), c.form.widgetID).Debug("discarding schema for replaced form")
		return nil
	}
	c.form.session = session
	return nil
}

func (c *Controller) closeFormLocked() {
	if c.form.session != nil {
		c.form.session.Close()
	}
	c.formTokens++
	c.form = formSession{state: Closed, token: c.formTokens}
}

func (c *Controller) sessionOptions() []form.SessionOption {
	if c.cfg.StrictKeys {
		return []form.SessionOption{form.WithStrictKeys()}
	}
	return nil
}

func (c *Controller) replace(ctx context.Context, gen uint64, op string, raw json.RawMessage) error {
	list, err := widget.DecodeList(raw)
	if err != nil {
		return c.report(ctx, fmt.Errorf("controller: decode %s response: %w", op, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		logx.WithOperation(logx.Ctx(ctx), op).Debug("discarding response for previous list")
		return nil
	}
	c.adoptLocked(ctx, list)
	return nil
}

// adoptLocked installs the server's list as returned. Order is never
// repaired locally.
func (c *Controller) adoptLocked(ctx context.Context, list []widget.Instance) {
	c.instances = list
	if err := widget.CheckSequence(c.instances); err != nil {
		logx.WithList(ctx, c.listID).With("err", err).Debug("server returned a non contiguous sequence")
	}
}

func (c *Controller) call(ctx context.Context, op, listID, widgetID string, args api.Args, body any) (json.RawMessage, error) {
	path, err := api.ResolvePath(c.cfg.BaseURL, op, listID, widgetID, args)
	if err != nil {
		return nil, err
	}
	method, err := api.Method(op)
	if err != nil {
		return nil, err
	}

	var init *transport.Init
	if method != http.MethodGet || body != nil {
		init = &transport.Init{Method: method, Body: body}
	}
	logx.WithWidget(logx.WithOperation(logx.WithList(ctx, listID), op), widgetID).Trace("widget list request", "method", method, "path", path)
	return c.cfg.Fetch(ctx, path, init)
}

func (c *Controller) report(ctx context.Context, err error) error {
	c.cfg.ErrorHandler(ctx, err)
	return err
}

func cloneInstances(list []widget.Instance) []widget.Instance {
	if list == nil {
		return nil
	}
	out := make([]widget.Instance, len(list))
	for i, inst := range list {
		out[i] = inst.Clone()
	}
	return out
}
