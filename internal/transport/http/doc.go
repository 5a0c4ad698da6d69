// Package http exposes the inspection routines as a read-only JSON API
// over one configured data directory.
//
// Handlers are thin: they parse and validate query parameters, call the
// InspectionService and render the result with chi/render. Errors are
// never rendered directly; they go through the shared errors.ErrorHandler
// which turns them into RFC 7807 problem documents:
//
//	NOT_FOUND app error      -> 404
//	validation failure       -> 400
//	CSV the reader rejected  -> 422
//	deadline exceeded        -> 504
//
// Routes (mounted under /api by the application):
//
//	GET /files                     listing of the data directory
//	GET /files/pick?preferred=     picked file name
//	GET /files/{name}/audit        per-file audit report
//	GET /files/{name}/summary      numeric summary
//	GET /files/{name}/columns      column names and suspicious columns
//	GET /audit                     audit of every CSV in the directory
//
// ProgressHandler serves GET /ws at the root: a websocket that receives
// one audit:progress message per directory audit event.
package http
