package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "markdown:\n  max_depth: 4\n  typographer: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Markdown.MaxDepth)
	assert.False(t, cfg.Markdown.Typographer)
	assert.True(t, cfg.Markdown.CodeHighlight)
	assert.True(t, cfg.Markdown.UnsafeHTML)
	assert.True(t, cfg.Lint.WarnUnknownDirectives)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCMD_TEST_TEXTFILE", "/tmp/docmd.prom")
	path := writeConfig(t, "metrics:\n  enabled: true\n  textfile: ${DOCMD_TEST_TEXTFILE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/docmd.prom", cfg.Metrics.Textfile)
}

func TestLoad_ZeroDepthGetsDefault(t *testing.T) {
	path := writeConfig(t, "markdown:\n  max_depth: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, cfg.Markdown.MaxDepth)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "markdown: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, ce.Category())
	p, _ := ce.Context().GetString("path")
	assert.Equal(t, path, p)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"depth too low", func(c *Config) { c.Markdown.MaxDepth = -1 }, true},
		{"depth too high", func(c *Config) { c.Markdown.MaxDepth = 257 }, true},
		{"depth upper bound", func(c *Config) { c.Markdown.MaxDepth = 256 }, false},
		{"textfile without metrics", func(c *Config) { c.Metrics.Textfile = "out.prom" }, true},
		{"textfile with metrics", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Textfile = "out.prom"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_EnvFileDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("DOCMD_TEST_DEPTH=9\nDOCMD_TEST_KEEP=file\n"), 0o600))
	t.Setenv("DOCMD_TEST_KEEP", "process")
	require.NoError(t, os.WriteFile(DefaultPath, []byte("markdown:\n  max_depth: ${DOCMD_TEST_DEPTH}\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOCMD_TEST_DEPTH") })

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Markdown.MaxDepth)
	assert.Equal(t, "process", os.Getenv("DOCMD_TEST_KEEP"))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docmd.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}

func TestLoad_NormalizesLogging(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: DeBuG\n  format: JSON\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level.Slog())
}

func TestLoad_UnknownLoggingFallsBack(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: verbose\n  format: pretty\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}
