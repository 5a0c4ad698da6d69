// Package shared holds code used across layers. Its testutil subpackage
// provides the slog capture handler and CSV fixtures the package tests
// build on.
package shared
