package widgetlist

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-widgetlist/internal/logx"
	"github.com/goliatone/go-widgetlist/pkg/api"
	"github.com/goliatone/go-widgetlist/pkg/controller"
	"github.com/goliatone/go-widgetlist/pkg/form"
)

// Handler builds the component handler with default options plus overrides.
func Handler(ctrl *controller.Controller, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(ctrl, NewOptions(fns...))
}

// HandlerWithOptions builds the component handler from a pre-built Options
// value. Paths are relative to the component root.
func HandlerWithOptions(ctrl *controller.Controller, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	mount := ""
	if opts.BasePath != "" {
		mount = mountPath(opts.BasePath, opts.RoutePath)
	}
	return newHandler(ctrl, opts, mount)
}

// newHandler builds the router. mount is the public path of the component
// root; redirects after mutations point there.
func newHandler(ctrl *controller.Controller, opts Options, mount string) http.Handler {
	h := &handler{ctrl: ctrl, opts: opts, mount: strings.TrimRight(mount, "/")}

	r := chi.NewRouter()
	r.Use(withRequestLogging(opts.Logger))
	if opts.Guard != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if err := opts.Guard(req); err != nil {
					writeGuardError(w, err)
					return
				}
				next.ServeHTTP(w, req)
			})
		})
	}

	r.Get("/", h.render)
	r.Get("/openapi.yaml", h.contract)
	r.Post("/edit-mode", h.toggleEditMode)
	r.Route("/forms", func(r chi.Router) {
		r.Post("/new", h.openNew)
		r.Post("/edit/{widgetID}", h.openEdit)
		r.Post("/close", h.closeForm)
		r.Post("/class", h.selectClass)
		r.Post("/submit", h.submit)
	})
	r.Route("/widgets/{widgetID}", func(r chi.Router) {
		r.Post("/delete", h.deleteWidget)
		r.Post("/move", h.moveWidget)
	})
	return r
}

type handler struct {
	ctrl  *controller.Controller
	opts  Options
	mount string
}

func (h *handler) render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.opts.LoadOnRender && h.ctrl.Instances() == nil && h.ctrl.ListID() != "" {
		// Failures reach the error handler; the loader is rendered instead.
		_ = h.ctrl.Load(ctx)
	}
	out, err := h.ctrl.Render(ctx)
	if err != nil {
		logx.WithList(ctx, h.ctrl.ListID()).With("err", err).Warn("widget list render failed")
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (h *handler) contract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.Document())
}

func (h *handler) toggleEditMode(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ToggleEditMode()
	h.redirect(w, r)
}

func (h *handler) openNew(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.ctrl.OpenNewForm(r.Context()))
}

func (h *handler) openEdit(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.ctrl.OpenEditForm(r.Context(), chi.URLParam(r, "widgetID")))
}

func (h *handler) closeForm(w http.ResponseWriter, r *http.Request) {
	h.ctrl.CloseForm()
	h.redirect(w, r)
}

func (h *handler) selectClass(w http.ResponseWriter, r *http.Request) {
	session, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	h.finish(w, r, session.SelectClass(r.PostForm.Get("widget_class")))
}

// submit copies the posted values into the open session and submits it. A
// class change posted together with field values only switches the class;
// the fields belong to the previous schema.
func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	session, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	if class := strings.TrimSpace(r.PostForm.Get("widget_class")); class != "" && class != session.Class() {
		h.finish(w, r, session.SelectClass(class))
		return
	}
	if err := applyValues(session, r.PostForm); err != nil {
		writeError(w, err)
		return
	}
	h.finish(w, r, h.ctrl.Submit(r.Context()))
}

func (h *handler) deleteWidget(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.ctrl.DeleteWidget(r.Context(), chi.URLParam(r, "widgetID")))
}

func (h *handler) moveWidget(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("position")
	position, err := strconv.Atoi(raw)
	if err != nil || position < 0 {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("widgetlist: invalid position %q", raw)})
		return
	}
	h.finish(w, r, h.ctrl.MoveWidget(r.Context(), chi.URLParam(r, "widgetID"), position))
}

func (h *handler) session() (*form.Session, error) {
	session := h.ctrl.Session()
	if session != nil {
		return session, nil
	}
	if h.ctrl.Snapshot().Form.State == controller.Closed {
		return nil, controller.ErrNoSession
	}
	return nil, controller.ErrSchemaPending
}

func (h *handler) finish(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	h.redirect(w, r)
}

func (h *handler) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.mount+"/", http.StatusSeeOther)
}

// applyValues writes posted fields into the session. Multi selects arrive as
// repeated keys; an empty single select clears the value.
func applyValues(session *form.Session, values map[string][]string) error {
	for _, input := range session.Inputs() {
		posted, ok := values[input.Key()]
		switch in := input.(type) {
		case *form.SelectField:
			selected := make([]any, 0, len(posted))
			for _, v := range posted {
				if v = strings.TrimSpace(v); v != "" {
					selected = append(selected, v)
				}
			}
			if err := in.Select(selected...); err != nil {
				return err
			}
		case *form.TextField:
			if ok {
				if err := in.Set(first(posted)); err != nil {
					return err
				}
			}
		case *form.TextareaField:
			if ok {
				if err := in.Set(first(posted)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
