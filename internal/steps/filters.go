package steps

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// newPatternFilter keeps files matching a glob include pattern and not
// matching a glob exclude pattern. No patterns means pass.
func newPatternFilter(args []string, kwargs map[string]string) (FilterFunc, error) {
	var include, exclude string
	if len(args) > 0 {
		include = args[0]
		if len(args) > 1 {
			exclude = args[1]
		}
	} else {
		include = kwargs["include"]
		exclude = kwargs["exclude"]
	}

	for _, pattern := range []string{include, exclude} {
		if pattern == "" {
			continue
		}
		if _, err := path.Match(pattern, "probe"); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	}

	return func(ctx *rename.Context) (bool, error) {
		if include != "" {
			if ok, _ := path.Match(include, ctx.Filename); !ok {
				return false, nil
			}
		}
		if exclude != "" {
			if ok, _ := path.Match(exclude, ctx.Filename); ok {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

// newFileTypeFilter keeps files whose extension matches one of the
// allowed types, case-insensitively, dot optional.
func newFileTypeFilter(args []string, kwargs map[string]string) (FilterFunc, error) {
	var raw []string
	if len(args) > 0 {
		for _, arg := range args {
			raw = append(raw, strings.Split(arg, ",")...)
		}
	} else if types := kwargs["types"]; types != "" {
		raw = strings.Split(types, ",")
	}

	var allowed []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			allowed = append(allowed, t)
		}
	}

	return func(ctx *rename.Context) (bool, error) {
		if len(allowed) == 0 {
			return true, nil
		}
		ext := strings.ToLower(strings.TrimPrefix(ctx.Extension(), "."))
		for _, t := range allowed {
			if ext == t {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

func rangeBound(args []string, kwargs map[string]string, idx int, key string, fallback int64) (int64, error) {
	raw := ""
	if len(args) > idx {
		raw = args[idx]
	} else {
		raw = kwargs[key]
	}
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

// newFileSizeFilter keeps files within an inclusive byte range. Files
// with no size metadata count as size 0.
func newFileSizeFilter(args []string, kwargs map[string]string) (FilterFunc, error) {
	minSize, err := rangeBound(args, kwargs, 0, "min_size", 0)
	if err != nil {
		return nil, err
	}
	maxSize, err := rangeBound(args, kwargs, 1, "max_size", math.MaxInt64)
	if err != nil {
		return nil, err
	}

	return func(ctx *rename.Context) (bool, error) {
		size := ctx.Meta.Size
		return size >= minSize && size <= maxSize, nil
	}, nil
}

// newNameLengthFilter keeps files whose base name length falls within
// an inclusive character-count range.
func newNameLengthFilter(args []string, kwargs map[string]string) (FilterFunc, error) {
	minLen, err := rangeBound(args, kwargs, 0, "min_length", 0)
	if err != nil {
		return nil, err
	}
	maxLen, err := rangeBound(args, kwargs, 1, "max_length", math.MaxInt64)
	if err != nil {
		return nil, err
	}

	return func(ctx *rename.Context) (bool, error) {
		length := int64(len([]rune(ctx.BaseName())))
		return length >= minLen && length <= maxLen, nil
	}, nil
}

// newDateModifiedFilter compares the file's modification time against a
// threshold date. A missing timestamp or an unparsable threshold never
// errors; the file is simply not kept.
func newDateModifiedFilter(args []string, kwargs map[string]string) (FilterFunc, error) {
	operator := ">"
	dateArg := ""
	if len(args) >= 2 {
		operator = args[0]
		dateArg = args[1]
	} else {
		if op := kwargs["operator"]; op != "" {
			operator = op
		}
		dateArg = kwargs["date"]
	}

	switch operator {
	case ">", "<", ">=", "<=", "==":
	default:
		return nil, fmt.Errorf("invalid date-modified operator %q", operator)
	}

	if dateArg == "" {
		// No threshold configured: nothing to filter on.
		return func(*rename.Context) (bool, error) { return true, nil }, nil
	}

	threshold, parseErr := time.ParseInLocation("2006-01-02", dateArg, time.Local)

	return func(ctx *rename.Context) (bool, error) {
		if parseErr != nil || ctx.Meta.Modified.IsZero() {
			return false, nil
		}
		modified := ctx.Meta.Modified
		switch operator {
		case ">":
			return modified.After(threshold), nil
		case "<":
			return modified.Before(threshold), nil
		case ">=":
			return !modified.Before(threshold), nil
		case "<=":
			return !modified.After(threshold), nil
		case "==":
			y1, m1, d1 := modified.Date()
			y2, m2, d2 := threshold.Date()
			return y1 == y2 && m1 == m2 && d1 == d2, nil
		}
		return false, nil
	}, nil
}
