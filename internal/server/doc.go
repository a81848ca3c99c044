// Package server exposes a deck over HTTP for browsers and followers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [MuxRouter] implementation uses gorilla/mux internally, so method mismatches answer 405 and path variables
// such as {n} are available through mux.Vars.
//
// # Routes
//
//	GET /              print-ready HTML of every slide
//	GET /slides/{n}    a single slide
//	GET /api/deck      the deck as JSON
//	GET /api/progress  the saved slide
//	PUT /api/progress  save a slide
//	GET /ws            websocket stream of activation events
//
// # Followers
//
// A [Hub] is a navigation listener: every activation is broadcast to connected websocket clients as an [Event].
// New followers first receive the most recent activation. The hub runs on a single goroutine started with
// [Hub.Run] and disconnects everyone when its context is cancelled.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
