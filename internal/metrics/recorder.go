package metrics

import "time"

// ResultLabel enumerates render result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultError   ResultLabel = "error"
)

// Fallback reasons reported through IncFallback.
const (
	FallbackUnclosed   = "unclosed_directive"
	FallbackStrayFence = "stray_fence"
)

// Recorder defines observability hooks for markdown rendering. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveRenderDuration(d time.Duration)
	IncRenderResult(result ResultLabel)
	AddDirectives(kind string, n int)
	IncFallback(reason string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration) {}
func (NoopRecorder) IncRenderResult(ResultLabel)         {}
func (NoopRecorder) AddDirectives(string, int)           {}
func (NoopRecorder) IncFallback(string)                  {}
