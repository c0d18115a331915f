// Package git wraps read-only queries against a local Git checkout for the
// history-resolution engine: log traversal restricted to a path, tracked-file
// checks, and shallow-clone boundary detection. It contains no resolution
// policy; that lives in internal/history.
package git
