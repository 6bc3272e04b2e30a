package slots_test

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-widgetlist/pkg/form"
	"github.com/goliatone/go-widgetlist/pkg/render"
	"github.com/goliatone/go-widgetlist/pkg/render/template/gotemplate"
	"github.com/goliatone/go-widgetlist/pkg/slots"
	"github.com/goliatone/go-widgetlist/pkg/testsupport"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

func defaults(t *testing.T) *slots.Defaults {
	t.Helper()
	d, err := slots.NewDefaults()
	if err != nil {
		t.Fatalf("new defaults: %v", err)
	}
	return d
}

func assertContains(t *testing.T, got template.HTML, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(string(got), want) {
			t.Fatalf("expected output to contain %q\n%s", want, got)
		}
	}
}

func assertNotContains(t *testing.T, got template.HTML, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(string(got), s) {
			t.Fatalf("expected output without %q\n%s", s, got)
		}
	}
}

func TestDefaultListSlot(t *testing.T) {
	d := defaults(t)
	props := map[string]any{
		slots.PropActionBase:   "/dash/",
		slots.PropHiddenFields: render.HiddenFields{}.With(render.CSRFToken("csrfmiddlewaretoken", "tok")),
	}

	out, err := d.List().Render(context.Background(), slots.ListData{
		ListID:     "7",
		Items:      []template.HTML{`<div id="widget-1"></div>`, `<div id="widget-2"></div>`},
		ListLength: 2,
		EditMode:   true,
		Props:      props,
	})
	if err != nil {
		t.Fatalf("render list: %v", err)
	}
	assertContains(t, out,
		`id="widget-list-7"`,
		`<div id="widget-1"></div><div id="widget-2"></div>`,
		`action="/dash/edit-mode"`,
		`action="/dash/forms/new"`,
		`name="csrfmiddlewaretoken" value="tok"`,
		">Done<",
	)

	out, err = d.List().Render(context.Background(), slots.ListData{
		ListID:   "7",
		Form:     `<div class="widget-form"></div>`,
		FormOpen: true,
	})
	if err != nil {
		t.Fatalf("render list: %v", err)
	}
	assertContains(t, out, `<div class="widget-form"></div>`, ">Edit<")
	assertNotContains(t, out, "widget-list-add")
}

func TestDefaultItemSlot(t *testing.T) {
	d := defaults(t)
	inst := widget.Instance{ID: "42", Position: 0, WidgetClass: "Text", Title: "T"}

	out, err := d.Item().Render(context.Background(), slots.ItemData{
		Instance:   inst,
		Body:       `<p class="body">hello</p>`,
		ListLength: 2,
		IsFirst:    true,
		EditMode:   true,
	})
	if err != nil {
		t.Fatalf("render item: %v", err)
	}
	assertContains(t, out,
		`id="widget-42"`,
		`<p class="body">hello</p>`,
		`action="/widgets/42/move?position=1"`,
		`action="/widgets/42/delete"`,
		`action="/forms/edit/42"`,
		`widget-move-up" disabled`,
	)
	assertNotContains(t, out, `widget-move-down" disabled`)

	out, err = d.Item().Render(context.Background(), slots.ItemData{Instance: inst, Body: "<p>x</p>"})
	if err != nil {
		t.Fatalf("render item: %v", err)
	}
	assertNotContains(t, out, "widget-edit-bar")
}

func TestDefaultFormSlot(t *testing.T) {
	d := defaults(t)
	schemas, err := testsupport.DefaultSchemas()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}

	out, err := d.Form().Render(context.Background(), slots.FormData{State: slots.StateCreating})
	if err != nil {
		t.Fatalf("render loading form: %v", err)
	}
	assertContains(t, out, `<div class="widget-form"`, string(slots.DefaultLoader))

	session := form.NewCreate(schemas)
	if err := session.SelectClass("Links"); err != nil {
		t.Fatalf("select class: %v", err)
	}
	if err := session.SetText("title", `"quoted" <title>`); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := session.Select("tags", "docs", "news"); err != nil {
		t.Fatalf("select tags: %v", err)
	}

	out, err = d.Form().Render(context.Background(), slots.FormData{State: slots.StateCreating, Session: session})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	assertContains(t, out,
		`name="widget_class"`,
		`<option value="Links" selected>Links</option>`,
		`value="&quot;quoted&quot; &lt;title&gt;"`,
		`name="tags" class="form-control" multiple`,
		`<option value="news" selected>News</option>`,
		`<option value="docs" selected>Docs</option>`,
		`<option value="blog">Blog</option>`,
		`action="/forms/submit"`,
		`formaction="/forms/close"`,
		"widget-form-save",
	)
	assertNotContains(t, out, string(slots.DefaultLoader))
}

func TestFuncAdapters(t *testing.T) {
	var called bool
	slot := slots.ItemFunc(func(_ context.Context, data slots.ItemData) (template.HTML, error) {
		called = true
		return template.HTML("item-" + data.Instance.ID), nil
	})
	out, err := slot.Render(context.Background(), slots.ItemData{Instance: widget.Instance{ID: "1"}})
	if err != nil || out != "item-1" || !called {
		t.Fatalf("unexpected adapter result %q, %v", out, err)
	}
}

func TestGoTemplateEngineMatchesDefaults(t *testing.T) {
	engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(slots.Templates()))
	if err != nil {
		t.Fatalf("go-template engine: %v", err)
	}
	alt, err := slots.WithEngine(engine)
	if err != nil {
		t.Fatalf("with engine: %v", err)
	}
	d := defaults(t)
	ctx := context.Background()

	props := map[string]any{
		slots.PropActionBase:   "/dash",
		slots.PropHiddenFields: render.HiddenFields{}.With(render.CSRFToken("csrf", "tok")),
	}
	list := slots.ListData{
		ListID:     "7",
		Items:      []template.HTML{`<div id="widget-1"></div>`},
		ListLength: 1,
		EditMode:   true,
		Props:      props,
	}
	item := slots.ItemData{
		Instance:   widget.Instance{ID: "42", Position: 3, WidgetClass: "Text"},
		Body:       `<p>hello</p>`,
		ListLength: 5,
		EditMode:   true,
		Props:      props,
	}

	want, err := d.List().Render(ctx, list)
	if err != nil {
		t.Fatalf("pongo2 list: %v", err)
	}
	got, err := alt.List().Render(ctx, list)
	if err != nil {
		t.Fatalf("go-template list: %v", err)
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("list output differs (-pongo2 +go-template):\n%s", diff)
	}

	want, err = d.Item().Render(ctx, item)
	if err != nil {
		t.Fatalf("pongo2 item: %v", err)
	}
	got, err = alt.Item().Render(ctx, item)
	if err != nil {
		t.Fatalf("go-template item: %v", err)
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("item output differs (-pongo2 +go-template):\n%s", diff)
	}
	assertContains(t, got, `data-position="3"`, `<p>hello</p>`)

	if _, err := slots.WithEngine(nil); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}

func TestBaseDirTemplatesShadowDefaults(t *testing.T) {
	dir := t.TempDir()
	custom := `<ul class="custom" data-site="{{ site }}">{% for item in items %}{{ item|safe }}{% endfor %}</ul>`
	if err := os.WriteFile(filepath.Join(dir, slots.ListTemplate+".tpl"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	d, err := slots.NewDefaults(gotemplate.WithBaseDir(dir), gotemplate.WithGlobalData(map[string]any{"site": "docs"}))
	if err != nil {
		t.Fatalf("new defaults: %v", err)
	}

	out, err := d.List().Render(context.Background(), slots.ListData{Items: []template.HTML{"<li>a</li>"}})
	if err != nil {
		t.Fatalf("render list: %v", err)
	}
	if diff := testsupport.CompareGolden(template.HTML(`<ul class="custom" data-site="docs"><li>a</li></ul>`), out); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	out, err = d.Item().Render(context.Background(), slots.ItemData{Instance: widget.Instance{ID: "1"}, Body: "<p>x</p>"})
	if err != nil {
		t.Fatalf("render item: %v", err)
	}
	assertContains(t, out, `id="widget-1"`)
}
