// Package bridge connects a navkit.Navigator to a real browser tab
// over a WebSocket thin client.
//
// Each accepted connection gets its own Bridge, which implements
// navkit.Host: history mutations travel to the browser as binary
// navigation frames, and the browser reports traversals and fragment
// changes back as location frames. Inbound frames and scheduled
// functions are dispatched on a single per-connection loop goroutine,
// which gives the Navigator the cooperative, single-threaded scheduling
// it expects.
//
// Server mounts the WebSocket endpoint on a chi router; see
// Server.Routes.
package bridge
