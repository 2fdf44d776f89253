package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	durations  int
	results    map[ResultLabel]int
	directives map[string]int
	fallbacks  map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{results: map[ResultLabel]int{}, directives: map[string]int{}, fallbacks: map[string]int{}}
}

func (t *testRecorder) ObserveRenderDuration(time.Duration) { t.durations++ }
func (t *testRecorder) IncRenderResult(result ResultLabel)  { t.results[result]++ }
func (t *testRecorder) AddDirectives(kind string, n int)    { t.directives[kind] += n }
func (t *testRecorder) IncFallback(reason string)           { t.fallbacks[reason]++ }

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var _ Recorder = newTestRecorder()
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRenderDuration(time.Second)
	r.IncRenderResult(ResultSuccess)
	r.AddDirectives("card", 2)
	r.IncFallback(FallbackUnclosed)
}

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.AddDirectives("card", 2)
	r.AddDirectives("card", 1)
	r.IncFallback(FallbackStrayFence)
	if r.directives["card"] != 3 {
		t.Fatalf("expected 3 card directives, got %d", r.directives["card"])
	}
	if r.fallbacks[FallbackStrayFence] != 1 {
		t.Fatalf("expected 1 stray fence fallback, got %d", r.fallbacks[FallbackStrayFence])
	}
}
