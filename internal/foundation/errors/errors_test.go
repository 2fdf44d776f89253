package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	err := NewError(CategoryConfig, "invalid configuration").
		WithSeverity(SeverityFatal).
		WithContext("file", "docmd.yaml").
		Build()

	assert.Equal(t, CategoryConfig, err.Category())
	assert.Equal(t, SeverityFatal, err.Severity())
	assert.Equal(t, "invalid configuration", err.Message())
	assert.Equal(t, "[config] invalid configuration", err.Error())

	file, ok := err.Context().GetString("file")
	require.True(t, ok)
	assert.Equal(t, "docmd.yaml", file)
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, CategoryFileSystem, "write failed").
		Warning().
		WithContext("path", "out/index.html").
		WithContext("bytes", 443).
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[filesystem] write failed: disk full", err.Error())

	wrapped := fmt.Errorf("render: %w", err)
	assert.True(t, IsClassified(wrapped))
	assert.True(t, HasCategory(wrapped, CategoryFileSystem))
	assert.False(t, HasCategory(wrapped, CategoryConfig))
	assert.False(t, HasCategory(cause, CategoryFileSystem))
}

func TestBuilder_BuildCopiesContext(t *testing.T) {
	b := ValidationError("bad").WithContext("n", 1)
	first := b.Build()
	b.WithContext("n", 2)
	second := b.Build()

	n, _ := first.Context().Get("n")
	assert.Equal(t, 1, n)
	n, _ = second.Context().Get("n")
	assert.Equal(t, 2, n)
}

func TestSentinelComparison(t *testing.T) {
	sentinel := ValidationError("frontmatter is broken").Build()
	err := fmt.Errorf("page: %w", ValidationError("frontmatter is broken").WithContext("line", 3).Build())

	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, ValidationError("something else").Build())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		hinted   bool
	}{
		{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, false},
		{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, false},
		{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityError, true},
		{"RenderError", RenderError("test"), CategoryRender, SeverityError, false},
		{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError, false},
		{"RuntimeError", RuntimeError("test"), CategoryRuntime, SeverityFatal, false},
		{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.hinted, err.Hint() != "")
		})
	}
}

func TestLogAttrs(t *testing.T) {
	err := WrapError(errors.New("boom"), CategoryRender, "render failed").
		WithContext("depth", 3).
		WithContext("file", "a.md").
		Build()

	attrs := err.LogAttrs()
	require.Len(t, attrs, 4)
	assert.Equal(t, slog.String("category", "render"), attrs[0])
	assert.Equal(t, "depth", attrs[1].Key)
	assert.Equal(t, "file", attrs[2].Key)
	assert.Equal(t, slog.String("cause", "boom"), attrs[3])
}

func TestErrorContext(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("key1", "value1")
	ctx = ctx.Set("key2", 42)

	v1, ok := ctx.GetString("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", v1)

	_, ok = ctx.GetString("key2")
	assert.False(t, ok, "non-string value")

	v2, ok := ctx.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, 42, v2)

	_, ok = ctx.Get("missing")
	assert.False(t, ok)
}
