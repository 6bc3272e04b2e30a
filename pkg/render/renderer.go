package render

import (
	"context"
	"html/template"

	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// WidgetRenderer turns one widget instance into its body markup. The list
// controller picks a renderer by the instance's renderer key.
type WidgetRenderer interface {
	Name() string
	RenderWidget(ctx context.Context, instance widget.Instance) (template.HTML, error)
}

// Func adapts a plain function into a named WidgetRenderer.
func Func(name string, fn func(ctx context.Context, instance widget.Instance) (template.HTML, error)) WidgetRenderer {
	return funcRenderer{name: name, fn: fn}
}

type funcRenderer struct {
	name string
	fn   func(ctx context.Context, instance widget.Instance) (template.HTML, error)
}

func (f funcRenderer) Name() string { return f.name }

func (f funcRenderer) RenderWidget(ctx context.Context, instance widget.Instance) (template.HTML, error) {
	if f.fn == nil {
		return "", nil
	}
	return f.fn(ctx, instance)
}
