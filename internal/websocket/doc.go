// Package websocket pushes directory audit progress to browser clients.
// A Hub owns the client set; each Client runs a read and a write pump
// over one gorilla/websocket connection. The Hub implements
// inspect.ProgressReporter.
package websocket
