package main

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-widgetlist/internal/appconfig"
	"github.com/goliatone/go-widgetlist/internal/logx"
	"github.com/goliatone/go-widgetlist/pkg/controller"
	"github.com/goliatone/go-widgetlist/pkg/render/template/gotemplate"
	"github.com/goliatone/go-widgetlist/pkg/renderers/tui"
	"github.com/goliatone/go-widgetlist/pkg/slots"
	"github.com/goliatone/go-widgetlist/pkg/transport"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// app carries the persistent flags and the collaborators tests replace.
type app struct {
	cfgPath string
	listID  string
	backend string

	driver     tui.PromptDriver
	httpClient *http.Client
}

func (a *app) config() (appconfig.Config, error) {
	cfg, err := appconfig.Load(a.cfgPath)
	if err != nil {
		return appconfig.Config{}, err
	}
	if a.listID != "" {
		cfg.ListID = a.listID
	}
	if a.backend != "" {
		cfg.Backend.URL = a.backend
	}
	return cfg, nil
}

func (a *app) controller(cfg appconfig.Config, extra ...controller.Option) (*controller.Controller, error) {
	client := a.httpClient
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second}
	}
	fetch := transport.New(transport.Config{
		BaseURL:    cfg.Backend.URL,
		CSRFToken:  cfg.Backend.CSRFToken,
		CSRFHeader: cfg.Backend.CSRFHeader,
	}, transport.WithHTTPClient(client)).Fetch()

	options := []controller.Option{
		controller.WithListID(cfg.ListID),
		controller.WithFetch(fetch),
		controller.WithBaseURL(cfg.Backend.APIBase),
		controller.WithLoader(template.HTML(cfg.Render.Loader)),
		// Commands return the error themselves; keep the handler quiet.
		controller.WithErrorHandler(func(ctx context.Context, err error) {
			logx.Ctx(ctx).With("err", err).Debug("backend request failed")
		}),
	}
	if cfg.Render.StrictKeys {
		options = append(options, controller.WithStrictKeys())
	}
	if cfg.Render.DisableWidgetFramework {
		options = append(options, controller.WithWidgetFrameworkDisabled())
	}
	if cfg.Render.TemplatesDir != "" || len(cfg.Render.TemplateGlobals) > 0 || cfg.Render.TemplateEngine == appconfig.EngineGoTemplate {
		defaults, err := slotDefaults(cfg.Render)
		if err != nil {
			return nil, err
		}
		options = append(options, controller.WithDefaultSlots(defaults))
	}
	return controller.New(controller.Config{}, append(options, extra...)...)
}

// slotDefaults builds the default slots on the configured engine. Templates
// in the configured directory shadow the embedded ones.
func slotDefaults(cfg appconfig.RenderConfig) (*slots.Defaults, error) {
	var opts []gotemplate.Option
	if cfg.TemplatesDir != "" {
		opts = append(opts, gotemplate.WithBaseDir(cfg.TemplatesDir))
	}
	if len(cfg.TemplateGlobals) > 0 {
		opts = append(opts, gotemplate.WithGlobalData(cfg.TemplateGlobals))
	}
	if cfg.TemplateEngine != appconfig.EngineGoTemplate {
		return slots.NewDefaults(opts...)
	}
	engine, err := gotemplate.NewGoTemplate(append(opts, gotemplate.WithFS(slots.Templates()))...)
	if err != nil {
		return nil, err
	}
	return slots.WithEngine(engine)
}

// loaded builds a controller and loads its list.
func (a *app) loaded(ctx context.Context) (*controller.Controller, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	if cfg.ListID == "" {
		return nil, fmt.Errorf("no widget list selected; pass --list or set list_id")
	}
	ctrl, err := a.controller(cfg)
	if err != nil {
		return nil, err
	}
	ctx = logx.ContextWithListLogger(ctx, logx.Ctx(ctx), cfg.ListID)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (a *app) prompts(out io.Writer) *tui.Renderer {
	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(out)
	}
	return tui.New(tui.WithPromptDriver(driver), tui.WithPageSize(10))
}

func printList(w io.Writer, instances []widget.Instance) {
	if len(instances) == 0 {
		_, _ = fmt.Fprintln(w, "(empty)")
		return
	}
	for _, inst := range instances {
		_, _ = fmt.Fprintf(w, "%3d  %-6s %-12s %s\n", inst.Position, inst.ID, inst.WidgetClass, inst.Title)
	}
}
