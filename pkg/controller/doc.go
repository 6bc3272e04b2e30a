// Package controller owns a widget list: the cached ordered sequence, the
// open form session and the edit mode flag. It is the only component that
// issues mutating requests, and it composes the list, item and form slots
// when rendering.
//
// Every mutation replaces the cached sequence with the list the server
// returns; positions are never computed locally. Operations block the
// calling goroutine for one network round trip and never retry.
package controller
