// Package widget holds the wire model shared by the widget list controller:
// persisted instances, per-class field schemas and the closed set of input
// kinds a field can render as.
package widget
