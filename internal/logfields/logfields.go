package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFile       = "file"
	KeyOutput     = "output"
	KeyConfig     = "config"
	KeyDirective  = "directive"
	KeyLine       = "line"
	KeyDepth      = "depth"
	KeyDurationMS = "duration_ms"
	KeyHeadings   = "headings"
	KeyBytes      = "bytes"
	KeyIssues     = "issues"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func Config(path string) slog.Attr    { return slog.String(KeyConfig, path) }
func Directive(name string) slog.Attr { return slog.String(KeyDirective, name) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Depth(n int) slog.Attr           { return slog.Int(KeyDepth, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Headings(n int) slog.Attr        { return slog.Int(KeyHeadings, n) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Issues(n int) slog.Attr          { return slog.Int(KeyIssues, n) }
func Event(op string) slog.Attr       { return slog.String(KeyEvent, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
