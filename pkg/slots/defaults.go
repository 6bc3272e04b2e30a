package slots

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-widgetlist/pkg/form"
	"github.com/goliatone/go-widgetlist/pkg/render"
	tmpl "github.com/goliatone/go-widgetlist/pkg/render/template"
	"github.com/goliatone/go-widgetlist/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var templateFiles embed.FS

// DefaultLoader is shown while list data or a form schema is missing.
const DefaultLoader template.HTML = `<p>Loading</p>`

// Template names looked up by the default slots.
const (
	ListTemplate = "list"
	ItemTemplate = "item"
	FormTemplate = "form"
)

// Defaults renders the built-in markup through a template engine.
type Defaults struct {
	engine tmpl.TemplateRenderer
}

// Templates returns the embedded default templates.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewDefaults builds the default slots on a pongo2 engine over the embedded
// templates. Templates under gotemplate.WithBaseDir shadow the embedded ones.
func NewDefaults(options ...gotemplate.Option) (*Defaults, error) {
	opts := append([]gotemplate.Option{}, options...)
	opts = append(opts, gotemplate.WithFS(Templates()))
	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("slots: build template engine: %w", err)
	}
	return &Defaults{engine: engine}, nil
}

// WithEngine builds the default slots on a caller supplied engine, such as
// gotemplate.NewGoTemplate over Templates(). The engine must resolve the list,
// item and form templates.
func WithEngine(engine tmpl.TemplateRenderer) (*Defaults, error) {
	if engine == nil {
		return nil, errors.New("slots: template engine is required")
	}
	return &Defaults{engine: engine}, nil
}

// List returns the default list slot.
func (d *Defaults) List() ListSlot { return ListFunc(d.renderList) }

// Item returns the default item slot.
func (d *Defaults) Item() ItemSlot { return ItemFunc(d.renderItem) }

// Form returns the default form slot.
func (d *Defaults) Form() FormSlot { return FormFunc(d.renderForm) }

// Numbers are passed as strings so engines that flatten view data through
// JSON print them the same way.
func (d *Defaults) renderList(_ context.Context, data ListData) (template.HTML, error) {
	base := actionBase(data.Props)
	view := map[string]any{
		"list_id":       data.ListID,
		"items":         data.Items,
		"list_length":   strconv.Itoa(data.ListLength),
		"form":          data.Form,
		"form_open":     data.FormOpen,
		"edit_mode":     data.EditMode,
		"hidden":        hiddenView(data.Props),
		"props":         scalarProps(data.Props),
		"edit_mode_url": base + "/edit-mode",
		"new_url":       base + "/forms/new",
	}
	return d.execute(ListTemplate, view)
}

func (d *Defaults) renderItem(_ context.Context, data ItemData) (template.HTML, error) {
	base := actionBase(data.Props)
	inst := data.Instance
	widgetPath := base + "/widgets/" + url.PathEscape(inst.ID)
	view := map[string]any{
		"id":           inst.ID,
		"position":     strconv.Itoa(inst.Position),
		"title":        inst.Title,
		"widget_class": inst.WidgetClass,
		"body":         data.Body,
		"list_length":  strconv.Itoa(data.ListLength),
		"is_first":     data.IsFirst,
		"is_last":      data.IsLast,
		"edit_mode":    data.EditMode,
		"hidden":       hiddenView(data.Props),
		"props":        scalarProps(data.Props),
		"edit_url":     base + "/forms/edit/" + url.PathEscape(inst.ID),
		"delete_url":   widgetPath + "/delete",
		"up_url":       widgetPath + "/move?position=" + strconv.Itoa(inst.Position-1),
		"down_url":     widgetPath + "/move?position=" + strconv.Itoa(inst.Position+1),
	}
	return d.execute(ItemTemplate, view)
}

func (d *Defaults) renderForm(_ context.Context, data FormData) (template.HTML, error) {
	base := actionBase(data.Props)
	loader := data.Loader
	if loader == "" {
		loader = DefaultLoader
	}
	view := map[string]any{
		"state":      data.State,
		"widget_id":  data.WidgetID,
		"loading":    data.Loading(),
		"loader":     loader,
		"hidden":     hiddenView(data.Props),
		"props":      scalarProps(data.Props),
		"submit_url": base + "/forms/submit",
		"close_url":  base + "/forms/close",
		"class_url":  base + "/forms/class",
	}
	if session := data.Session; session != nil {
		view["class"] = session.Class()
		view["classes"] = session.Classes()
		view["class_selector"] = session.HasClassSelector()
		view["fields"] = fieldViews(session)
	}
	return d.execute(FormTemplate, view)
}

func (d *Defaults) execute(name string, view map[string]any) (template.HTML, error) {
	out, err := d.engine.RenderTemplate(name, view)
	if err != nil {
		return "", fmt.Errorf("slots: render %s: %w", name, err)
	}
	return template.HTML(out), nil
}

func fieldViews(session *form.Session) []any {
	inputs := session.Inputs()
	out := make([]any, 0, len(inputs))
	for _, input := range inputs {
		field := map[string]any{
			"key":   input.Key(),
			"label": input.Label(),
			"kind":  input.Kind(),
			"id":    "widget-field-" + input.Key(),
		}
		if placeholder, ok := input.Field().ExtraProps["placeholder"].(string); ok {
			field["placeholder"] = placeholder
		}
		switch in := input.(type) {
		case *form.TextField:
			field["value"] = in.Value()
		case *form.TextareaField:
			field["value"] = in.Value()
		case *form.SelectField:
			selected := make(map[string]bool)
			for _, opt := range in.Selected() {
				selected[opt.Key] = true
			}
			options := make([]any, 0, len(in.Options()))
			for _, opt := range in.Options() {
				options = append(options, map[string]any{
					"key":      opt.Key,
					"label":    opt.Label,
					"selected": selected[opt.Key],
				})
			}
			field["multi"] = in.Multi()
			field["options"] = options
		}
		out = append(out, field)
	}
	return out
}

func actionBase(props map[string]any) string {
	base, _ := props[PropActionBase].(string)
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

func hiddenView(props map[string]any) []any {
	var fields []render.HiddenField
	switch v := props[PropHiddenFields].(type) {
	case render.HiddenFields:
		fields = v.Sorted()
	case []render.HiddenField:
		fields = v
	}
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

// scalarProps keeps the props a template can print. Callbacks and nested
// values stay reachable to custom slots through the data structs.
func scalarProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		switch value.(type) {
		case string, bool, int, int64, float64, template.HTML:
			out[key] = value
		}
	}
	return out
}
