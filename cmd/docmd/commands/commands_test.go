package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/markdown"
	"git.home.luguber.info/inful/docmd/internal/markdown/toc"
)

// runCLI parses args like the docmd binary and runs the selected command
// inside a fresh working directory.
func runCLI(t *testing.T, stdin string, args ...string) (string, *Global, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	g := &Global{
		Logger: slog.Default(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docmd"),
		kong.Vars{"version": "test"},
		kong.Bind(g),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return "", g, err
	}
	err = kctx.Run(g, cli)
	return stdout.String(), g, err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRender_Stdin(t *testing.T) {
	t.Chdir(t.TempDir())

	out, g, err := runCLI(t, "# Guide\n\n::: callout info\nBody\n:::\n", "render")
	require.NoError(t, err)
	assert.Equal(t, 0, g.ExitCode)
	assert.Contains(t, out, `<h1 id="guide">Guide</h1>`)
	assert.Contains(t, out, "callout-info")
	assert.Contains(t, out, "<p>Body</p>")
}

func TestRender_TOCUsesFrontmatterTitle(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "page.md"), "---\ntitle: From Frontmatter\n---\n## Setup\n\ntext\n")

	out, _, err := runCLI(t, "", "render", "--toc", "page.md")
	require.NoError(t, err)

	var res markdown.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "From Frontmatter", res.Title)
	assert.Equal(t, []toc.Heading{{ID: "setup", Level: 2, Text: "Setup"}}, res.Headings)
	assert.NotContains(t, res.HTML, "title:")
}

func TestRender_OutputFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "in.md"), "::: button Go /start\n")

	out, _, err := runCLI(t, "", "render", "in.md", "-o", "out.html")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "out.html"))
	require.NoError(t, err)
	assert.Equal(t, "<a href=\"/start\" class=\"docmd-button\">Go</a>\n", string(data))
}

func TestRender_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "", "render", "nope.md")
	require.Error(t, err)
	assert.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRender_WatchRequiresFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "", "render", "--watch")
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryValidation, classified.Category())
}

func TestRender_ExplicitConfigMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "x", "-c", "other.yaml", "render")
	require.Error(t, err)
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestTOC(t *testing.T) {
	t.Chdir(t.TempDir())

	src := "# Top\n\n::: tabs\n== tab One\n## Inside\n:::\n"
	out, _, err := runCLI(t, src, "toc")
	require.NoError(t, err)

	var headings []toc.Heading
	require.NoError(t, json.Unmarshal([]byte(out), &headings))
	assert.Equal(t, []toc.Heading{
		{ID: "top", Level: 1, Text: "Top"},
		{ID: "inside", Level: 2, Text: "Inside"},
	}, headings)
}

func TestTOC_NoHeadings(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := runCLI(t, "plain text\n", "toc")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCheck(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "docs", "ok.md"), "::: card\nfine\n:::\n")

		out, g, err := runCLI(t, "", "check", "docs")
		require.NoError(t, err)
		assert.Equal(t, 0, g.ExitCode)
		assert.Contains(t, out, "1 file checked, no issues")
	})

	t.Run("errors", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "bad.md"), "::: card\nnever closed\n")

		out, g, err := runCLI(t, "", "check")
		require.NoError(t, err)
		assert.Equal(t, ExitErrors, g.ExitCode)
		assert.Contains(t, out, "[directive-unclosed]")
	})

	t.Run("warnings", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "stray.md"), "text\n\n:::\n")

		_, g, err := runCLI(t, "", "check", "stray.md")
		require.NoError(t, err)
		assert.Equal(t, ExitWarnings, g.ExitCode)
	})

	t.Run("quiet hides warnings", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "stray.md"), "text\n\n:::\n")

		out, g, err := runCLI(t, "", "check", "-q", "stray.md")
		require.NoError(t, err)
		assert.Equal(t, 0, g.ExitCode)
		assert.NotContains(t, out, "directive-stray-close")
	})

	t.Run("json", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "bad.md"), "::: card\nnever closed\n")

		out, _, err := runCLI(t, "", "check", "-f", "json", "bad.md")
		require.NoError(t, err)
		var parsed struct {
			ErrorCount int `json:"error_count"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, 1, parsed.ErrorCount)
	})
}

func TestCheck_Fix(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "fixme.md")
	writeFile(t, path, "---\ntitle: T\n---\n::: card\nbody\n")

	out, g, err := runCLI(t, "", "check", "--fix", "fixme.md")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed fixme.md")
	assert.Equal(t, 0, g.ExitCode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: T\n---\n::: card\nbody\n:::\n", string(data))
}

func TestCheck_DryRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "fixme.md")
	writeFile(t, path, "::: card\nbody\n")

	_, _, err := runCLI(t, "", "check", "--dry-run", "fixme.md")
	require.Error(t, err)

	out, g, err := runCLI(t, "", "check", "--fix", "--dry-run", "fixme.md")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Equal(t, ExitErrors, g.ExitCode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "::: card\nbody\n", string(data))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := runCLI(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")

	data, err := os.ReadFile(filepath.Join(dir, "docmd.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_depth: 16")

	_, _, err = runCLI(t, "", "init")
	require.Error(t, err)

	_, _, err = runCLI(t, "", "init", "--force")
	require.NoError(t, err)
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	textfile := filepath.Join(dir, "docmd.prom")
	writeFile(t, filepath.Join(dir, "docmd.yaml"), "metrics:\n  enabled: true\n  textfile: "+textfile+"\n")

	_, g, err := runCLI(t, "::: card\nx\n:::\n", "render")
	require.NoError(t, err)
	require.NoError(t, g.FlushMetrics())

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docmd_directives_total{kind="card"} 1`)
	assert.Contains(t, string(data), `docmd_render_results_total{result="success"} 1`)
}

func TestFlushMetrics_Disabled(t *testing.T) {
	t.Chdir(t.TempDir())

	_, g, err := runCLI(t, "text\n", "render")
	require.NoError(t, err)
	require.NoError(t, g.FlushMetrics())
}

func TestLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelInfo, logLevel(slog.LevelInfo, false))
	assert.Equal(t, slog.LevelError, logLevel(slog.LevelError, false))
	assert.Equal(t, slog.LevelDebug, logLevel(slog.LevelError, true))

	t.Setenv(LogLevelEnv, "warn")
	assert.Equal(t, slog.LevelWarn, logLevel(slog.LevelInfo, true))

	t.Setenv(LogLevelEnv, "loud")
	assert.Equal(t, slog.LevelInfo, logLevel(slog.LevelInfo, false))
}

func TestLoadConfig_JSONLogging(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(LogLevelEnv, "")
	writeFile(t, filepath.Join(dir, "docmd.yaml"), "logging:\n  level: debug\n  format: json\n")

	var stderr bytes.Buffer
	g := &Global{Logger: slog.Default(), Stderr: &stderr}
	_, err := g.LoadConfig(&CLI{Config: "docmd.yaml"})
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), `"msg":"Loaded configuration"`)
}

func TestDebouncer(t *testing.T) {
	ch, trigger := debouncer(20 * time.Millisecond)
	for range 5 {
		trigger()
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("debounced signal not delivered")
	}
	select {
	case <-ch:
		t.Fatal("burst delivered more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.md")
	writeFile(t, path, "# v1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, logger, path, func() { calls.Add(1) })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("# v2\n"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 250*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Contains(t, logs.String(), "File change detected")
	assert.Contains(t, logs.String(), "watched.md")
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
