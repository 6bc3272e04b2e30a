package widgetlist

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-widgetlist/pkg/api"
	"github.com/goliatone/go-widgetlist/pkg/controller"
	"github.com/goliatone/go-widgetlist/pkg/form"
	"github.com/goliatone/go-widgetlist/pkg/transport"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor maps controller and form failures onto response codes.
func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr != nil:
		return httpErr.StatusCode()
	case transport.IsError(err):
		return http.StatusBadGateway
	case errors.Is(err, controller.ErrNoSession),
		errors.Is(err, controller.ErrSchemaPending),
		errors.Is(err, form.ErrClosed),
		errors.Is(err, form.ErrClassFixed):
		return http.StatusConflict
	case errors.Is(err, form.ErrUnknownClass),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrUnknownOption),
		errors.Is(err, form.ErrWrongKind),
		errors.Is(err, form.ErrNoClass),
		errors.Is(err, form.ErrSchemaMismatch),
		errors.Is(err, api.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, controller.ErrNoList):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	http.Error(w, http.StatusText(code), code)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}
