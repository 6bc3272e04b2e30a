package widgetlist

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-widgetlist/pkg/controller"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for the component route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the widget list handler under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, ctrl *controller.Controller, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, ctrl, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers a handler under basePath using a
// pre-built Options value. The component answers on the mount path and
// everything below it.
func RegisterRoutesWithOptions(mux Mux, basePath string, ctrl *controller.Controller, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("widgetlist: missing mux")
	}
	if ctrl == nil {
		return "", fmt.Errorf("widgetlist: missing controller")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	opts.BasePath = basePath

	pattern := mountPath(basePath, opts.RoutePath)
	prefix := strings.TrimRight(pattern, "/")
	handler := http.StripPrefix(prefix, newHandler(ctrl, opts, prefix))
	mux.Handle(prefix+"/", handler)
	if prefix != "" {
		mux.Handle(prefix, http.RedirectHandler(prefix+"/", http.StatusMovedPermanently))
	}
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
