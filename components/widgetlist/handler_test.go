package widgetlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-widgetlist/pkg/controller"
	"github.com/goliatone/go-widgetlist/pkg/render"
	"github.com/goliatone/go-widgetlist/pkg/testsupport"
	"github.com/goliatone/go-widgetlist/pkg/widget"
)

type fixture struct {
	mux     *http.ServeMux
	ctrl    *controller.Controller
	backend *testsupport.Backend
	mount   string
}

func newFixture(t *testing.T, fns ...OptionFn) *fixture {
	t.Helper()
	backend := testsupport.NewBackend(t, testsupport.WithList("1",
		widget.Instance{ID: "10", WidgetClass: "Text", Title: "First", RendererKey: "default"},
		widget.Instance{ID: "11", WidgetClass: "Links", Title: "Second", RendererKey: "default"},
		widget.Instance{ID: "12", WidgetClass: "Text", Title: "Third", RendererKey: "default"},
	))

	mount := MountPath("/dash", fns...)
	hidden := render.HiddenFields{}.With(render.CSRFToken("csrfmiddlewaretoken", "tok"))
	ctrl, err := controller.New(controller.Config{},
		controller.WithListID("1"),
		controller.WithFetch(backend.Fetch()),
		controller.WithErrorHandler(func(context.Context, error) {}),
		controller.WithSlotProps(SlotProps(mount, hidden)),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "/dash", ctrl, fns...)
	require.NoError(t, err)
	require.Equal(t, mount, pattern)
	return &fixture{mux: mux, ctrl: ctrl, backend: backend, mount: mount}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, f.mount+path, nil))
	return rec
}

func (f *fixture) post(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, f.mount+path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) requireRedirect(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, f.mount+"/", rec.Header().Get("Location"))
}

func ids(list []widget.Instance) []string {
	out := make([]string, len(list))
	for i, inst := range list {
		out[i] = inst.ID
	}
	return out
}

func TestMountPathJoinsBasePath(t *testing.T) {
	assert.Equal(t, "/admin/widgets", MountPath("/admin"))
	assert.Equal(t, "/admin/widgets", MountPath("admin"))
	assert.Equal(t, "/admin/blocks", MountPath("/admin/", WithRoutePath("blocks")))
	assert.Equal(t, "/widgets", MountPath(""))
}

func TestRegisterRoutesRequiresMuxAndController(t *testing.T) {
	_, err := RegisterRoutes(nil, "/", nil)
	require.Error(t, err)
	_, err = RegisterRoutes(http.NewServeMux(), "/", nil)
	require.Error(t, err)
}

func TestRenderLoadsListOnFirstGet(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="widget-list-1"`)
	assert.Contains(t, body, `<p>First</p>`)
	assert.Contains(t, body, `action="/dash/widgets/edit-mode"`)
	assert.Contains(t, body, `name="csrfmiddlewaretoken" value="tok"`)
	require.Len(t, f.backend.RequestsFor("get_list"), 1)

	rec = f.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.backend.RequestsFor("get_list"), 1, "loaded list is reused")
}

func TestRenderShowsLoaderWhenLoadFails(t *testing.T) {
	f := newFixture(t)
	f.backend.FailNext(http.StatusInternalServerError)

	rec := f.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading")
}

func TestMountRedirectsToTrailingSlash(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, f.mount, nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, f.mount+"/", rec.Header().Get("Location"))
}

func TestEditModeToggles(t *testing.T) {
	f := newFixture(t)
	f.requireRedirect(t, f.post(t, "/edit-mode", nil))
	assert.True(t, f.ctrl.EditMode())

	body := f.get(t, "/").Body.String()
	assert.Contains(t, body, `action="/dash/widgets/widgets/12/delete"`)
	assert.Contains(t, body, `action="/dash/widgets/forms/new"`)

	f.requireRedirect(t, f.post(t, "/edit-mode", nil))
	assert.False(t, f.ctrl.EditMode())
}

func TestCreateFlowPostsWidget(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))

	f.requireRedirect(t, f.post(t, "/forms/new", nil))
	require.NotNil(t, f.ctrl.Session())
	assert.Equal(t, controller.Creating, f.ctrl.Snapshot().Form.State)

	// Picking a class only switches the schema.
	f.requireRedirect(t, f.post(t, "/forms/submit", url.Values{"widget_class": {"Links"}, "title": {"ignored"}}))
	assert.Equal(t, "Links", f.ctrl.Session().Class())
	assert.Empty(t, f.backend.RequestsFor("create_widget"))

	f.requireRedirect(t, f.post(t, "/forms/submit", url.Values{
		"widget_class": {"Links"},
		"title":        {"New links"},
		"style":        {"list"},
		"tags":         {"news", "", "blog"},
	}))

	creates := f.backend.RequestsFor("create_widget")
	require.Len(t, creates, 1)
	assert.Equal(t, "Links", creates[0].Body["widget_class"])
	assert.Equal(t, "New links", creates[0].Body["title"])

	list := f.backend.List("1")
	require.Len(t, list, 4)
	assert.Equal(t, "New links", list[3].Title)
	assert.Equal(t, []any{"news", "blog"}, list[3].Configuration["tags"])
	assert.Equal(t, controller.Closed, f.ctrl.Snapshot().Form.State)
	assert.Len(t, f.ctrl.Instances(), 4)
}

func TestEditFlowUpdatesWidget(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))

	f.requireRedirect(t, f.post(t, "/forms/edit/10", nil))
	require.NotNil(t, f.ctrl.Session())

	body := f.get(t, "/").Body.String()
	assert.Contains(t, body, `value="First"`)

	f.requireRedirect(t, f.post(t, "/forms/submit", url.Values{
		"widget_class": {"Text"},
		"title":        {"Renamed"},
		"body":         {"Hello"},
	}))
	updates := f.backend.RequestsFor("update_widget")
	require.Len(t, updates, 1)
	assert.Equal(t, http.MethodPatch, updates[0].Method)
	assert.Equal(t, "Renamed", f.backend.List("1")[0].Title)
}

func TestCloseFormDropsSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))
	f.requireRedirect(t, f.post(t, "/forms/new", nil))
	f.requireRedirect(t, f.post(t, "/forms/close", nil))
	assert.Nil(t, f.ctrl.Session())
}

func TestSubmitWithoutFormConflicts(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, "/forms/submit", url.Values{"title": {"x"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = f.post(t, "/forms/class", url.Values{"widget_class": {"Text"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSelectClassRejectsUnknownClass(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))
	f.requireRedirect(t, f.post(t, "/forms/new", nil))

	rec := f.post(t, "/forms/class", url.Values{"widget_class": {"Missing"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.requireRedirect(t, f.post(t, "/forms/class", url.Values{"widget_class": {"Text"}}))
	assert.Equal(t, "Text", f.ctrl.Session().Class())
}

func TestMoveAndDelete(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))

	f.requireRedirect(t, f.post(t, "/widgets/12/move?position=0", nil))
	assert.Equal(t, []string{"12", "10", "11"}, ids(f.ctrl.Instances()))

	rec := f.post(t, "/widgets/12/move?position=up", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.requireRedirect(t, f.post(t, "/widgets/10/delete", nil))
	assert.Equal(t, []string{"12", "11"}, ids(f.ctrl.Instances()))
	assert.Equal(t, []string{"12", "11"}, ids(f.backend.List("1")))
}

func TestBackendFailureMapsToBadGateway(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Load(testsupport.Context()))
	f.backend.FailNext(http.StatusInternalServerError)

	rec := f.post(t, "/widgets/10/delete", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Len(t, f.ctrl.Instances(), 3)
}

func TestGuardRejectsRequests(t *testing.T) {
	f := newFixture(t, WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Allow") == "" {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("missing header")}
		}
		return nil
	}))

	rec := f.get(t, "/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, f.mount+"/", nil)
	req.Header.Set("X-Allow", "1")
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServesContract(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/openapi.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi:")
}

func TestComponentWrapsHandler(t *testing.T) {
	f := newFixture(t)
	c := New(f.ctrl, WithRoutePath("/blocks"), WithLoadOnRender(false))
	assert.Equal(t, "/blocks", c.Options().RoutePath)
	assert.Same(t, f.ctrl, c.Controller())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading", "nothing is loaded without LoadOnRender")

	mux := http.NewServeMux()
	pattern, err := c.RegisterRoutes(mux, "/x")
	require.NoError(t, err)
	assert.Equal(t, "/x/blocks", pattern)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x/blocks/edit-mode", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/x/blocks/", rec.Header().Get("Location"))
}

func TestStatusForMapsErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(controller.ErrNoList))
	assert.Equal(t, http.StatusConflict, statusFor(controller.ErrSchemaPending))
	assert.Equal(t, http.StatusTeapot, statusFor(StatusError{Code: http.StatusTeapot}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
