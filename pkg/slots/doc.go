// Package slots defines the three extension points of a widget list: the
// list wrapper, the per-item wrapper and the form wrapper. The controller
// fills a data contract for each slot and hands it to whatever
// implementation the host configured. Defaults render embedded pongo2
// templates.
package slots
