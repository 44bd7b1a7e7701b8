package steps

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// newSplitExtractor splits the base name on a delimiter and assigns the
// segments to field names in order. Extra segments are dropped; missing
// segments yield empty fields.
func newSplitExtractor(args []string, kwargs map[string]string) (ExtractorFunc, error) {
	if len(args) == 0 {
		return nil, errors.New("split extractor requires delimiter and field names")
	}
	delimiter := args[0]
	fieldNames := args[1:]
	if len(fieldNames) == 0 {
		return nil, errors.New("split extractor requires at least one field name")
	}
	if delimiter == "" {
		return nil, errors.New("split extractor requires a non-empty delimiter")
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		segments := strings.Split(ctx.BaseName(), delimiter)
		fields := rename.NewFields()
		for i, name := range fieldNames {
			if i < len(segments) {
				fields.Set(name, segments[i])
			} else {
				fields.Set(name, "")
			}
		}
		return fields, nil
	}, nil
}

// newRegexExtractor matches a pattern against the filename. Named
// capture groups map directly to fields; purely positional groups map
// through field1=, field2=, ... keyword arguments. No match yields an
// empty mapping, which the processor treats as "no rename possible".
func newRegexExtractor(args []string, kwargs map[string]string) (ExtractorFunc, error) {
	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	} else {
		pattern = kwargs["pattern"]
	}
	if pattern == "" {
		return nil, errors.New("regex extractor requires pattern")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		match := re.FindStringSubmatch(ctx.Filename)
		if match == nil {
			return rename.NewFields(), nil
		}

		fields := rename.NewFields()
		names := re.SubexpNames()
		named := false
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			named = true
			fields.Set(name, match[i])
		}
		if named {
			return fields, nil
		}

		for i := 1; i < len(match); i++ {
			if name, ok := kwargs[fmt.Sprintf("field%d", i)]; ok {
				fields.Set(name, match[i])
			}
		}
		return fields, nil
	}, nil
}

type positionSpec struct {
	start int
	end   int // inclusive
	field string
}

// newPositionExtractor extracts fields from inclusive character ranges
// of the filename. Specs are "start-end:field" or "start:field", given
// as separate arguments or comma-separated in one.
func newPositionExtractor(args []string, kwargs map[string]string) (ExtractorFunc, error) {
	if len(args) == 0 {
		return nil, errors.New("position extractor requires position specifications")
	}

	raw := args
	if len(args) == 1 && strings.Contains(args[0], ",") {
		raw = strings.Split(args[0], ",")
	}

	var specs []positionSpec
	for _, item := range raw {
		item = strings.TrimSpace(item)
		spec, err := parsePositionSpec(item)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		runes := []rune(ctx.Filename)
		fields := rename.NewFields()
		for _, spec := range specs {
			fields.Set(spec.field, sliceRunes(runes, spec.start, spec.end))
		}
		return fields, nil
	}, nil
}

func parsePositionSpec(spec string) (positionSpec, error) {
	pos, field, ok := strings.Cut(spec, ":")
	if !ok || field == "" {
		return positionSpec{}, fmt.Errorf("invalid position spec %q: format is 'start-end:fieldname' or 'start:fieldname'", spec)
	}

	if start, end, ranged := strings.Cut(pos, "-"); ranged {
		s, err := strconv.Atoi(start)
		if err != nil {
			return positionSpec{}, fmt.Errorf("invalid position specification %q: %w", pos, err)
		}
		e, err := strconv.Atoi(end)
		if err != nil {
			return positionSpec{}, fmt.Errorf("invalid position specification %q: %w", pos, err)
		}
		return positionSpec{start: s, end: e, field: field}, nil
	}

	p, err := strconv.Atoi(pos)
	if err != nil {
		return positionSpec{}, fmt.Errorf("invalid position specification %q: %w", pos, err)
	}
	return positionSpec{start: p, end: p, field: field}, nil
}

// sliceRunes takes an inclusive range, clamping out-of-range indices to
// an empty result instead of panicking.
func sliceRunes(runes []rune, start, end int) string {
	if start < 0 || start >= len(runes) || end < start {
		return ""
	}
	if end >= len(runes) {
		end = len(runes) - 1
	}
	return string(runes[start : end+1])
}

// newMetadataExtractor surfaces file metadata as string fields:
// created and modified as ISO dates, size as whole kilobytes.
func newMetadataExtractor(args []string, kwargs map[string]string) (ExtractorFunc, error) {
	available := []string{"created", "modified", "size"}

	requested := args
	if len(requested) == 0 {
		requested = available
	}
	for _, field := range requested {
		known := false
		for _, name := range available {
			if field == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown metadata field %q, available: %s", field, strings.Join(available, ", "))
		}
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		fields := rename.NewFields()
		for _, field := range requested {
			switch field {
			case "created":
				if ctx.Meta.Created.IsZero() {
					fields.Set(field, "")
				} else {
					fields.Set(field, ctx.Meta.Created.Format("2006-01-02"))
				}
			case "modified":
				if ctx.Meta.Modified.IsZero() {
					fields.Set(field, "")
				} else {
					fields.Set(field, ctx.Meta.Modified.Format("2006-01-02"))
				}
			case "size":
				fields.Set(field, strconv.FormatInt(ctx.Meta.Size/1024, 10))
			}
		}
		return fields, nil
	}, nil
}
