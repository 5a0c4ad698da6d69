// Package inspect is the instrumented entry point to the inspection
// routines. An Inspector delegates to files, table and audit, wrapping
// every call in a span, a duration metric and a log line, and adds the
// composite per-file and per-directory audits used by the CLI and the
// HTTP API.
package inspect
