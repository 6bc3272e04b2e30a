package controller

import (
	"context"
	"fmt"
	"html/template"

	"github.com/goliatone/go-widgetlist/pkg/slots"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// Render composes the whole list. It returns nothing when the widget
// framework is disabled and the loader while the list has not been loaded.
func (c *Controller) Render(ctx context.Context) (template.HTML, error) {
	if c.cfg.DisableWidgetFramework {
		return "", nil
	}
	c.mu.Lock()
	loaded := c.instances != nil
	c.mu.Unlock()
	if !loaded {
		return c.cfg.Loader, nil
	}
	return c.RenderListSlot(ctx)
}

// RenderListSlot renders every item and the form, then hands them to the
// list slot.
func (c *Controller) RenderListSlot(ctx context.Context) (template.HTML, error) {
	snap := c.Snapshot()

	items := make([]template.HTML, 0, len(snap.Instances))
	for _, inst := range snap.Instances {
		item, err := c.renderItem(ctx, inst, len(snap.Instances), snap.EditMode)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}

	formView, err := c.RenderFormSlot(ctx)
	if err != nil {
		return "", err
	}

	return c.cfg.ListSlot.Render(ctx, slots.ListData{
		ListID:         snap.ListID,
		Items:          items,
		ListLength:     len(snap.Instances),
		Form:           formView,
		FormOpen:       snap.Form.State != Closed,
		EditMode:       snap.EditMode,
		Props:          c.cfg.ListProps,
		OpenNewForm:    c.OpenNewForm,
		CloseForm:      c.CloseForm,
		ToggleEditMode: c.ToggleEditMode,
	})
}

// RenderItemSlot renders one widget inside the item slot with callbacks
// bound to its id.
func (c *Controller) RenderItemSlot(ctx context.Context, inst widget.Instance) (template.HTML, error) {
	c.mu.Lock()
	length, editMode := len(c.instances), c.editMode
	c.mu.Unlock()
	return c.renderItem(ctx, inst, length, editMode)
}

// RenderFormSlot renders the open form, or nothing when no form is open.
func (c *Controller) RenderFormSlot(ctx context.Context) (template.HTML, error) {
	c.mu.Lock()
	state := c.form
	c.mu.Unlock()
	if state.state == Closed {
		return "", nil
	}

	return c.cfg.FormSlot.Render(ctx, slots.FormData{
		State:    state.state.String(),
		WidgetID: state.widgetID,
		Session:  state.session,
		Loader:   c.cfg.Loader,
		Props:    c.cfg.FormProps,
		Submit:   c.SubmitForm,
		Close:    c.CloseForm,
	})
}

func (c *Controller) renderItem(ctx context.Context, inst widget.Instance, length int, editMode bool) (template.HTML, error) {
	renderer := c.cfg.Renderers.Resolve(inst.RendererKey, c.cfg.DefaultRenderer)
	body, err := renderer.RenderWidget(ctx, inst)
	if err != nil {
		return "", fmt.Errorf("controller: render widget %s with %q: %w", inst.ID, renderer.Name(), err)
	}

	id := inst.ID
	return c.cfg.ItemSlot.Render(ctx, slots.ItemData{
		Instance:   inst,
		Body:       body,
		ListLength: length,
		IsFirst:    inst.Position == 0,
		IsLast:     inst.Position == length-1,
		EditMode:   editMode,
		Props:      c.cfg.ItemProps,
		OpenEditForm: func(ctx context.Context) error {
			return c.OpenEditForm(ctx, id)
		},
		Delete: func(ctx context.Context) error {
			return c.DeleteWidget(ctx, id)
		},
		Move: func(ctx context.Context, position int) error {
			return c.MoveWidget(ctx, id, position)
		},
	})
}
