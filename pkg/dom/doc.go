// Package dom provides the live document that ripple renders into.
//
// A Document is a mutable tree of element, text and comment nodes with
// attributes and event listeners. It plays the role a browser document
// plays for a client-side runtime: the reactive layers above mutate it in
// place, and it can be parsed from and serialized to HTML markup.
//
// # Threading
//
// A Document is not safe for concurrent use. All reads and mutations must
// happen on the goroutine that owns the document (see scheduler.Loop).
//
// # Markup
//
// Parse and ParseFragment build nodes from HTML using golang.org/x/net/html.
// Render and OuterHTML serialize nodes back to HTML.
package dom
