// Package server provides HTTP routing, middleware, and the local redirect listener used during user authorization.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [LogRequests] is the only middleware shipped; it never logs query strings.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] captures the browser redirect that ends the user authorization flow and sends the
// full redirected URL through a channel. The backend performs the code exchange, so the handler does not
// inspect the query beyond an explicit error parameter. It only processes one callback.
//
// [CallbackServer] wraps the handler in a temporary listener. The mix command and the TUI start one when
// auth.callback_addr is set, feed the captured URL to the workflow, and shut it down afterwards.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
