package form

import "errors"

var (
	// ErrClosed is returned by mutating calls on a closed session.
	ErrClosed = errors.New("form: session closed")
	// ErrUnknownClass signals a class that the session's schema set lacks.
	ErrUnknownClass = errors.New("form: unknown widget class")
	// ErrClassFixed is returned when an edit session is asked to change class.
	ErrClassFixed = errors.New("form: widget class is fixed while editing")
	// ErrNoClass is returned when submitting before a class was chosen.
	ErrNoClass = errors.New("form: no widget class chosen")
	// ErrUnknownField signals a key absent from the active schema.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrWrongKind is returned when a setter does not match the field's input kind.
	ErrWrongKind = errors.New("form: wrong input kind")
	// ErrUnknownOption is returned when a select value matches no choice.
	ErrUnknownOption = errors.New("form: unknown option")
	// ErrSchemaMismatch reports form data keys the active schema does not define.
	ErrSchemaMismatch = errors.New("form: data does not match schema")
)
