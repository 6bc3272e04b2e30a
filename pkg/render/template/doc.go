// Package template defines the engine contract used by the default slot
// views. The gotemplate subpackage provides a pongo2 implementation.
package template
