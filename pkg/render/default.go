package render

import (
	"context"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-widgetlist/pkg/widget"
)

// DefaultName is the key of the built-in renderer.
const DefaultName = "default"

var (
	bodyPolicyOnce sync.Once
	bodyPolicy     *bluemonday.Policy
)

// Default renders the widget title followed by the server supplied html,
// sanitized for user generated content.
var Default WidgetRenderer = Func(DefaultName, renderDefault)

func renderDefault(_ context.Context, instance widget.Instance) (template.HTML, error) {
	var b strings.Builder
	b.WriteString(`<div class="widget-body card-body">`)
	b.WriteString(`<h5 class="widget-title card-title">`)
	b.WriteString(html.EscapeString(instance.Title))
	b.WriteString(`</h5>`)
	b.WriteString(`<div class="widget-text card-text text-truncate">`)
	b.WriteString(SanitizeBody(instance.HTML()))
	b.WriteString(`</div></div>`)
	return template.HTML(b.String()), nil
}

// SanitizeBody strips scripts, handlers and other unsafe markup from widget
// html produced by the backend.
func SanitizeBody(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(bodySanitizer().Sanitize(trimmed))
}

func bodySanitizer() *bluemonday.Policy {
	bodyPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.RequireNoReferrerOnLinks(true)
		bodyPolicy = policy
	})
	return bodyPolicy
}
