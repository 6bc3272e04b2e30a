package widgetlist

import (
	"net/http"

	"pkt.systems/pslog"

	"github.com/goliatone/go-widgetlist/pkg/render"
	"github.com/goliatone/go-widgetlist/pkg/slots"
)

const defaultRoutePath = "/widgets"

// GuardFunc rejects a request by returning an error. Errors implementing
// HTTPError choose the status code.
type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath string
	// BasePath is the prefix the component is mounted under. RegisterRoutes
	// sets it; it is used for redirects.
	BasePath string
	Guard    GuardFunc
	// Logger is attached to request contexts that carry none.
	Logger pslog.Logger
	// LoadOnRender loads the list on GET while nothing has been loaded yet.
	LoadOnRender bool
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		LoadOnRender: true,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger pslog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithLoadOnRender(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LoadOnRender = enabled
	}
}

// SlotProps returns the props the default slots need to post back to a
// component mounted at mountPath. hidden is emitted in every action form.
func SlotProps(mountPath string, hidden render.HiddenFields) map[string]any {
	props := map[string]any{slots.PropActionBase: mountPath}
	if len(hidden) > 0 {
		props[slots.PropHiddenFields] = hidden
	}
	return props
}
