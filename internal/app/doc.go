// Package app wires the inspection API server: logging, telemetry, the
// inspector, the chi router with its middleware chain, and the HTTP
// server lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (config.Load)
//  2. Initialize logging and OpenTelemetry
//  3. Build the inspector from the data defaults, reporting directory
//     audit progress to the websocket hub
//  4. Set up handlers and middleware
//  5. Listen, serve, and shut down gracefully on SIGINT or SIGTERM
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app never
// calls os.Exit, leaving the exit code to main.
package app
