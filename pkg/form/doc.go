// Package form turns a widget class schema into typed inputs, tracks the
// values a user edits and splits them into a submission payload. Sessions
// never issue network requests; the caller's submit callback does.
package form
