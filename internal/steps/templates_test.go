package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The three template styles diverge on missing fields: template falls
// back to the original base name, join silently omits, and stringsmith
// collapses the section with its separators.

func TestTemplateFormatter(t *testing.T) {
	t.Run("substitutes single-brace fields", func(t *testing.T) {
		fn, err := newTemplateFormatter([]string{"{dept}-{type}"}, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR", "type", "employee"))
		require.NoError(t, err)
		assert.Equal(t, "HR-employee", out)
	})

	t.Run("any absent field falls back to base name", func(t *testing.T) {
		fn, err := newTemplateFormatter([]string{"{dept}-{missing}"}, nil)
		require.NoError(t, err)
		ctx := ctxWithFields("dept", "HR")
		ctx.Filename = "original_name.pdf"
		out, err := fn(ctx)
		require.NoError(t, err)
		assert.Equal(t, "original_name", out)
	})

	t.Run("present but empty field still substitutes", func(t *testing.T) {
		fn, err := newTemplateFormatter([]string{"{dept}-{type}"}, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR", "type", ""))
		require.NoError(t, err)
		assert.Equal(t, "HR-", out)
	})

	t.Run("no extracted data falls back to base name", func(t *testing.T) {
		fn, err := newTemplateFormatter([]string{"{dept}"}, nil)
		require.NoError(t, err)
		out, err := fn(fileCtx("untouched.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "untouched", out)
	})

	t.Run("template argument required", func(t *testing.T) {
		_, err := newTemplateFormatter(nil, nil)
		assert.Error(t, err)
	})
}

func TestJoinFormatter(t *testing.T) {
	t.Run("joins named fields with separator", func(t *testing.T) {
		fn, err := newJoinFormatter([]string{"dept", "year"}, map[string]string{"separator": "-"})
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR", "type", "employee", "year", "2024"))
		require.NoError(t, err)
		assert.Equal(t, "HR-2024", out)
	})

	t.Run("missing and empty fields are omitted", func(t *testing.T) {
		fn, err := newJoinFormatter([]string{"dept", "gone", "year"}, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR", "year", ""))
		require.NoError(t, err)
		assert.Equal(t, "HR", out)
	})

	t.Run("no arguments joins all fields in extraction order", func(t *testing.T) {
		fn, err := newJoinFormatter(nil, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("b", "two", "a", "one", "c", "three"))
		require.NoError(t, err)
		assert.Equal(t, "two_one_three", out)
	})

	t.Run("empty separator allowed", func(t *testing.T) {
		fn, err := newJoinFormatter([]string{"a", "b"}, map[string]string{"separator": ""})
		require.NoError(t, err)
		out, err := fn(ctxWithFields("a", "X", "b", "Y"))
		require.NoError(t, err)
		assert.Equal(t, "XY", out)
	})

	t.Run("no surviving values falls back to base name", func(t *testing.T) {
		fn, err := newJoinFormatter([]string{"gone"}, nil)
		require.NoError(t, err)
		ctx := ctxWithFields("dept", "HR")
		ctx.Filename = "fallback.pdf"
		out, err := fn(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fallback", out)
	})
}

func TestStringsmithFormatter(t *testing.T) {
	t.Run("collapses missing sections with separators", func(t *testing.T) {
		fn, err := newStringsmithFormatter([]string{"{{dept}}_{{type}}_{{year}}"}, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR", "year", "2024"))
		require.NoError(t, err)
		assert.Equal(t, "HR_2024", out)
	})

	t.Run("mandatory field failure is a per-file error", func(t *testing.T) {
		fn, err := newStringsmithFormatter([]string{"{{!dept}}_{{year}}"}, nil)
		require.NoError(t, err)
		_, err = fn(ctxWithFields("year", "2024"))
		assert.Error(t, err)
	})

	t.Run("empty template is valid and renders empty", func(t *testing.T) {
		fn, err := newStringsmithFormatter([]string{""}, nil)
		require.NoError(t, err)
		out, err := fn(ctxWithFields("dept", "HR"))
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("absent template argument fails at build", func(t *testing.T) {
		_, err := newStringsmithFormatter(nil, nil)
		assert.Error(t, err)
	})

	t.Run("malformed template fails at build", func(t *testing.T) {
		_, err := newStringsmithFormatter([]string{"{{never closed"}, nil)
		assert.Error(t, err)
	})

	t.Run("no extracted data falls back to base name", func(t *testing.T) {
		fn, err := newStringsmithFormatter([]string{"{{dept}}"}, nil)
		require.NoError(t, err)
		out, err := fn(fileCtx("plain.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "plain", out)
	})
}
