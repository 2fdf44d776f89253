package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRenderDuration(150 * time.Millisecond)
	pr.IncRenderResult(ResultSuccess)
	pr.AddDirectives("callout", 3)
	pr.AddDirectives("callout", 0)
	pr.IncFallback(FallbackUnclosed)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.InDelta(t, 3, testutil.ToFloat64(pr.directives.WithLabelValues("callout")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.fallbacks.WithLabelValues(FallbackUnclosed)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.renderResults.WithLabelValues(string(ResultSuccess))), 0)
	require.Same(t, reg, pr.Registry())
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRenderDuration(time.Second)
	pr.IncRenderResult(ResultError)
	pr.AddDirectives("card", 1)
	pr.IncFallback(FallbackStrayFence)
	require.Nil(t, pr.Registry())
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddDirectives("tabs", 2)

	path := filepath.Join(t.TempDir(), "docmd.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `docmd_directives_total{kind="tabs"} 2`), string(data))
}

func TestWriteTextfile_EmptyPath(t *testing.T) {
	require.Error(t, WriteTextfile("", prom.NewRegistry()))
}
