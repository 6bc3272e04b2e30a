// Package widgetlist exposes a controller.Controller as a small
// server-rendered net/http component. GET renders the list; every action the
// default slots emit is a form POST that calls the matching controller
// operation and redirects back with 303 See Other.
//
// The action URLs in the default markup come from the slots.PropActionBase
// prop, so controllers served here should be built with SlotProps for the
// same mount path.
package widgetlist
