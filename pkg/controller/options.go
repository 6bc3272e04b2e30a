package controller

import (
	"html/template"

	"github.com/goliatone/go-widgetlist/pkg/render"
	"github.com/goliatone/go-widgetlist/pkg/slots"
	"github.com/goliatone/go-widgetlist/pkg/transport"
)

// Config is the explicit configuration of a Controller. It is read once by
// New.
type Config struct {
	ListID string
	Fetch  transport.FetchFunc
	// BaseURL is the API root passed to the path builder. Empty means
	// api.DefaultBase.
	BaseURL      string
	ErrorHandler ErrorHandler
	// Loader is rendered while the list has not been loaded.
	Loader template.HTML
	// DisableWidgetFramework makes Render return empty output without
	// invoking any slot.
	DisableWidgetFramework bool

	Renderers       *render.Registry
	DefaultRenderer render.WidgetRenderer

	ListSlot slots.ListSlot
	ItemSlot slots.ItemSlot
	FormSlot slots.FormSlot

	ListProps map[string]any
	ItemProps map[string]any
	FormProps map[string]any

	// StrictKeys makes form submissions reject keys outside the schema.
	StrictKeys bool
}

// Option adjusts the Config before the Controller is built.
type Option func(*Config)

// WithListID sets the initial list id.
func WithListID(id string) Option {
	return func(c *Config) { c.ListID = id }
}

// WithFetch sets the transport seam.
func WithFetch(fetch transport.FetchFunc) Option {
	return func(c *Config) { c.Fetch = fetch }
}

// WithBaseURL sets the API root.
func WithBaseURL(base string) Option {
	return func(c *Config) { c.BaseURL = base }
}

// WithErrorHandler routes network failures to fn.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *Config) { c.ErrorHandler = fn }
}

// WithLoader overrides the loading view.
func WithLoader(loader template.HTML) Option {
	return func(c *Config) { c.Loader = loader }
}

// WithWidgetFrameworkDisabled turns rendering off entirely.
func WithWidgetFrameworkDisabled() Option {
	return func(c *Config) { c.DisableWidgetFramework = true }
}

// WithRenderers sets the widget renderer table.
func WithRenderers(registry *render.Registry) Option {
	return func(c *Config) { c.Renderers = registry }
}

// WithDefaultRenderer overrides the renderer used when a widget's renderer
// key is not registered.
func WithDefaultRenderer(renderer render.WidgetRenderer) Option {
	return func(c *Config) { c.DefaultRenderer = renderer }
}

// WithListSlot replaces the list wrapper.
func WithListSlot(slot slots.ListSlot) Option {
	return func(c *Config) { c.ListSlot = slot }
}

// WithItemSlot replaces the item wrapper.
func WithItemSlot(slot slots.ItemSlot) Option {
	return func(c *Config) { c.ItemSlot = slot }
}

// WithFormSlot replaces the form wrapper.
func WithFormSlot(slot slots.FormSlot) Option {
	return func(c *Config) { c.FormSlot = slot }
}

// WithDefaultSlots fills the list, item and form wrappers from d, for
// example defaults built over a host template directory.
func WithDefaultSlots(d *slots.Defaults) Option {
	return func(c *Config) {
		if d == nil {
			return
		}
		c.ListSlot = d.List()
		c.ItemSlot = d.Item()
		c.FormSlot = d.Form()
	}
}

// WithListProps, WithItemProps and WithFormProps set the auxiliary props
// handed to each slot.
func WithListProps(props map[string]any) Option {
	return func(c *Config) { c.ListProps = props }
}

func WithItemProps(props map[string]any) Option {
	return func(c *Config) { c.ItemProps = props }
}

func WithFormProps(props map[string]any) Option {
	return func(c *Config) { c.FormProps = props }
}

// WithSlotProps sets the same props on all three slots.
func WithSlotProps(props map[string]any) Option {
	return func(c *Config) {
		c.ListProps = props
		c.ItemProps = props
		c.FormProps = props
	}
}

// WithStrictKeys enables strict form key checking on submit.
func WithStrictKeys() Option {
	return func(c *Config) { c.StrictKeys = true }
}
