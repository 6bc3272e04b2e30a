package widgetlist

import (
	"net/http"

	"github.com/goliatone/go-widgetlist/pkg/controller"
)

// Component bundles a controller with its HTTP options and routing helpers.
type Component struct {
	ctrl *controller.Controller
	opts Options
}

// New constructs a component serving ctrl with default options plus any
// overrides.
func New(ctrl *controller.Controller, fns ...OptionFn) *Component {
	return &Component{ctrl: ctrl, opts: NewOptions(fns...)}
}

// Controller returns the controller behind the component.
func (c *Component) Controller() *controller.Controller {
	if c == nil {
		return nil
	}
	return c.ctrl
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler rooted at the component path.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.ctrl, c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, c.ctrl, c.opts)
}
