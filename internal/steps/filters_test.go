package steps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

func TestPatternFilter(t *testing.T) {
	t.Run("include only", func(t *testing.T) {
		fn, err := newPatternFilter([]string{"report_*"}, nil)
		require.NoError(t, err)
		keep, err := fn(fileCtx("report_2024.pdf"))
		require.NoError(t, err)
		assert.True(t, keep)
		keep, err = fn(fileCtx("invoice_2024.pdf"))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		fn, err := newPatternFilter([]string{"*.pdf", "draft_*"}, nil)
		require.NoError(t, err)
		keep, err := fn(fileCtx("draft_report.pdf"))
		require.NoError(t, err)
		assert.False(t, keep)
		keep, err = fn(fileCtx("final_report.pdf"))
		require.NoError(t, err)
		assert.True(t, keep)
	})

	t.Run("no patterns keeps everything", func(t *testing.T) {
		fn, err := newPatternFilter(nil, nil)
		require.NoError(t, err)
		keep, err := fn(fileCtx("anything.bin"))
		require.NoError(t, err)
		assert.True(t, keep)
	})

	t.Run("malformed glob fails at build", func(t *testing.T) {
		_, err := newPatternFilter([]string{"[unclosed"}, nil)
		assert.Error(t, err)
	})
}

func TestFileTypeFilter(t *testing.T) {
	fn, err := newFileTypeFilter([]string{"pdf,.TXT"}, nil)
	require.NoError(t, err)

	for name, want := range map[string]bool{
		"doc.pdf":    true,
		"doc.PDF":    true,
		"notes.txt":  true,
		"image.png":  false,
		"extensionless": false,
	} {
		keep, err := fn(fileCtx(name))
		require.NoError(t, err)
		assert.Equal(t, want, keep, name)
	}

	t.Run("empty list keeps everything", func(t *testing.T) {
		fn, err := newFileTypeFilter(nil, nil)
		require.NoError(t, err)
		keep, err := fn(fileCtx("whatever.xyz"))
		require.NoError(t, err)
		assert.True(t, keep)
	})
}

func TestFileSizeFilter(t *testing.T) {
	fn, err := newFileSizeFilter([]string{"100", "200"}, nil)
	require.NoError(t, err)

	sized := func(size int64) *rename.Context {
		return rename.NewContext("f.bin", "/tmp/f.bin", rename.Metadata{Size: size})
	}

	for size, want := range map[int64]bool{99: false, 100: true, 150: true, 200: true, 201: false} {
		keep, err := fn(sized(size))
		require.NoError(t, err)
		assert.Equal(t, want, keep, size)
	}

	t.Run("min only", func(t *testing.T) {
		fn, err := newFileSizeFilter(nil, map[string]string{"min_size": "1024"})
		require.NoError(t, err)
		keep, err := fn(sized(2048))
		require.NoError(t, err)
		assert.True(t, keep)
		keep, err = fn(sized(512))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("non-numeric bound fails at build", func(t *testing.T) {
		_, err := newFileSizeFilter([]string{"big"}, nil)
		assert.Error(t, err)
	})
}

func TestNameLengthFilter(t *testing.T) {
	fn, err := newNameLengthFilter([]string{"3", "6"}, nil)
	require.NoError(t, err)

	// Length counts the base name only, in runes.
	for name, want := range map[string]bool{
		"ab.txt":      false,
		"abc.txt":     true,
		"abcdef.txt":  true,
		"abcdefg.txt": false,
		"héllo.txt":   true,
	} {
		keep, err := fn(fileCtx(name))
		require.NoError(t, err)
		assert.Equal(t, want, keep, name)
	}
}

func TestDateModifiedFilter(t *testing.T) {
	modCtx := func(mod time.Time) *rename.Context {
		return rename.NewContext("f.txt", "/tmp/f.txt", rename.Metadata{Modified: mod})
	}
	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)

	t.Run("after threshold", func(t *testing.T) {
		fn, err := newDateModifiedFilter([]string{">", "2024-06-01"}, nil)
		require.NoError(t, err)
		keep, err := fn(modCtx(june1.Add(48 * time.Hour)))
		require.NoError(t, err)
		assert.True(t, keep)
		keep, err = fn(modCtx(june1.Add(-48 * time.Hour)))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("equality compares the calendar date", func(t *testing.T) {
		fn, err := newDateModifiedFilter([]string{"==", "2024-06-01"}, nil)
		require.NoError(t, err)
		keep, err := fn(modCtx(june1.Add(15 * time.Hour)))
		require.NoError(t, err)
		assert.True(t, keep)
		keep, err = fn(modCtx(june1.Add(25 * time.Hour)))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("missing timestamp never passes", func(t *testing.T) {
		fn, err := newDateModifiedFilter([]string{">", "2000-01-01"}, nil)
		require.NoError(t, err)
		keep, err := fn(modCtx(time.Time{}))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("unparsable threshold never passes", func(t *testing.T) {
		fn, err := newDateModifiedFilter([]string{">", "June 1st"}, nil)
		require.NoError(t, err)
		keep, err := fn(modCtx(june1))
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("no threshold keeps everything", func(t *testing.T) {
		fn, err := newDateModifiedFilter(nil, nil)
		require.NoError(t, err)
		keep, err := fn(modCtx(time.Time{}))
		require.NoError(t, err)
		assert.True(t, keep)
	})

	t.Run("invalid operator fails at build", func(t *testing.T) {
		_, err := newDateModifiedFilter([]string{"!=", "2024-06-01"}, nil)
		assert.Error(t, err)
	})
}
