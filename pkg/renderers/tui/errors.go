package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned for a select field without choices.
	ErrNoOptions = errors.New("tui: select field has no options")
)
