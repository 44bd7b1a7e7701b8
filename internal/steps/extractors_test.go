package steps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

func fileCtx(filename string) *rename.Context {
	return rename.NewContext(filename, "/tmp/"+filename, rename.Metadata{})
}

func TestSplitExtractor(t *testing.T) {
	build := func(t *testing.T, args ...string) ExtractorFunc {
		t.Helper()
		fn, err := newSplitExtractor(args, nil)
		require.NoError(t, err)
		return fn
	}

	t.Run("maps segments to fields in order", func(t *testing.T) {
		fn := build(t, "_", "dept", "type", "category", "year")
		fields, err := fn(fileCtx("HR_employee_data_2024.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []string{"dept", "type", "category", "year"}, fields.Keys())
		for key, want := range map[string]string{"dept": "HR", "type": "employee", "category": "data", "year": "2024"} {
			got, _ := fields.Get(key)
			assert.Equal(t, want, got, key)
		}
	})

	t.Run("extra segments are dropped", func(t *testing.T) {
		fn := build(t, "_", "dept")
		fields, err := fn(fileCtx("HR_employee_data.pdf"))
		require.NoError(t, err)
		assert.Equal(t, 1, fields.Len())
		got, _ := fields.Get("dept")
		assert.Equal(t, "HR", got)
	})

	t.Run("missing segments yield empty fields", func(t *testing.T) {
		fn := build(t, "_", "company", "quarter", "year")
		fields, err := fn(fileCtx("CompanyReport_Q1.pdf"))
		require.NoError(t, err)
		got, _ := fields.Get("year")
		assert.Equal(t, "", got)
		got, _ = fields.Get("quarter")
		assert.Equal(t, "Q1", got)
	})

	t.Run("delimiter absent puts whole base name in first field", func(t *testing.T) {
		fn := build(t, "-", "a", "b")
		fields, err := fn(fileCtx("no_dashes_here.pdf"))
		require.NoError(t, err)
		a, _ := fields.Get("a")
		b, _ := fields.Get("b")
		assert.Equal(t, "no_dashes_here", a)
		assert.Equal(t, "", b)
	})

	t.Run("argument validation", func(t *testing.T) {
		_, err := newSplitExtractor(nil, nil)
		assert.Error(t, err)
		_, err = newSplitExtractor([]string{"_"}, nil)
		assert.Error(t, err)
	})
}

func TestRegexExtractor(t *testing.T) {
	t.Run("named groups map to fields", func(t *testing.T) {
		fn, err := newRegexExtractor([]string{`(?P<dept>[A-Z]+)(?P<num>\d+)_(?P<type>\w+)`}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("DEPT123_report.pdf"))
		require.NoError(t, err)
		for key, want := range map[string]string{"dept": "DEPT", "num": "123", "type": "report"} {
			got, _ := fields.Get(key)
			assert.Equal(t, want, got, key)
		}
	})

	t.Run("positional groups map through fieldN kwargs", func(t *testing.T) {
		fn, err := newRegexExtractor([]string{`([A-Z]+)_(\d+)`}, map[string]string{"field1": "dept", "field2": "num"})
		require.NoError(t, err)
		fields, err := fn(fileCtx("HR_12345.pdf"))
		require.NoError(t, err)
		dept, _ := fields.Get("dept")
		num, _ := fields.Get("num")
		assert.Equal(t, "HR", dept)
		assert.Equal(t, "12345", num)
	})

	t.Run("no match yields empty mapping, not an error", func(t *testing.T) {
		fn, err := newRegexExtractor([]string{`^\d{8}_`}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("nomatch.pdf"))
		require.NoError(t, err)
		assert.Equal(t, 0, fields.Len())
	})

	t.Run("invalid pattern fails at build", func(t *testing.T) {
		_, err := newRegexExtractor([]string{`([unclosed`}, nil)
		assert.Error(t, err)
	})

	t.Run("pattern required", func(t *testing.T) {
		_, err := newRegexExtractor(nil, nil)
		assert.Error(t, err)
	})

	t.Run("matches the filename including extension", func(t *testing.T) {
		fn, err := newRegexExtractor([]string{`(?P<ext>pdf)$`}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("doc.pdf"))
		require.NoError(t, err)
		assert.Equal(t, 1, fields.Len())
	})
}

func TestPositionExtractor(t *testing.T) {
	t.Run("inclusive ranges", func(t *testing.T) {
		fn, err := newPositionExtractor([]string{"0-2:dept", "3-5:code"}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("HRX123report.pdf"))
		require.NoError(t, err)
		dept, _ := fields.Get("dept")
		code, _ := fields.Get("code")
		assert.Equal(t, "HRX", dept)
		assert.Equal(t, "123", code)
	})

	t.Run("comma-separated specs in one argument", func(t *testing.T) {
		fn, err := newPositionExtractor([]string{"0:first, 1-3:next"}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("A123report.pdf"))
		require.NoError(t, err)
		first, _ := fields.Get("first")
		next, _ := fields.Get("next")
		assert.Equal(t, "A", first)
		assert.Equal(t, "123", next)
	})

	t.Run("out of range yields empty string", func(t *testing.T) {
		fn, err := newPositionExtractor([]string{"40-50:tail"}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("short.pdf"))
		require.NoError(t, err)
		tail, ok := fields.Get("tail")
		assert.True(t, ok)
		assert.Equal(t, "", tail)
	})

	t.Run("range clamped at the end", func(t *testing.T) {
		fn, err := newPositionExtractor([]string{"0-100:all"}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("abc.pdf"))
		require.NoError(t, err)
		all, _ := fields.Get("all")
		assert.Equal(t, "abc.pdf", all)
	})

	t.Run("malformed specs fail at build", func(t *testing.T) {
		for _, spec := range []string{"nofield", "x-y:field", "1-2:"} {
			_, err := newPositionExtractor([]string{spec}, nil)
			assert.Error(t, err, spec)
		}
	})
}

func TestMetadataExtractor(t *testing.T) {
	meta := rename.Metadata{
		Size:     5 * 1024,
		Created:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Modified: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	ctx := rename.NewContext("doc.pdf", "/tmp/doc.pdf", meta)

	t.Run("surfaces requested fields as strings", func(t *testing.T) {
		fn, err := newMetadataExtractor([]string{"created", "modified", "size"}, nil)
		require.NoError(t, err)
		fields, err := fn(ctx)
		require.NoError(t, err)
		created, _ := fields.Get("created")
		modified, _ := fields.Get("modified")
		size, _ := fields.Get("size")
		assert.Equal(t, "2024-03-01", created)
		assert.Equal(t, "2024-06-15", modified)
		assert.Equal(t, "5", size)
	})

	t.Run("size is floor-divided kilobytes", func(t *testing.T) {
		fn, err := newMetadataExtractor([]string{"size"}, nil)
		require.NoError(t, err)
		small := rename.NewContext("s.txt", "/tmp/s.txt", rename.Metadata{Size: 1023})
		fields, err := fn(small)
		require.NoError(t, err)
		size, _ := fields.Get("size")
		assert.Equal(t, "0", size)
	})

	t.Run("missing timestamps yield empty strings", func(t *testing.T) {
		fn, err := newMetadataExtractor([]string{"created"}, nil)
		require.NoError(t, err)
		fields, err := fn(fileCtx("bare.txt"))
		require.NoError(t, err)
		created, ok := fields.Get("created")
		assert.True(t, ok)
		assert.Equal(t, "", created)
	})

	t.Run("unknown field fails at build", func(t *testing.T) {
		_, err := newMetadataExtractor([]string{"owner"}, nil)
		assert.Error(t, err)
	})

	t.Run("no args means all fields", func(t *testing.T) {
		fn, err := newMetadataExtractor(nil, nil)
		require.NoError(t, err)
		fields, err := fn(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"created", "modified", "size"}, fields.Keys())
	})
}
