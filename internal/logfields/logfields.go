package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyRepo       = "repository"
	KeyCommit     = "commit"
	KeyWarning    = "warning"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyAuthor     = "author"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Repository(r string) slog.Attr    { return slog.String(KeyRepo, r) }
func Commit(h string) slog.Attr        { return slog.String(KeyCommit, h) }
func Warning(kind string) slog.Attr    { return slog.String(KeyWarning, kind) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Author(name string) slog.Attr     { return slog.String(KeyAuthor, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
