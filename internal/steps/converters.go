package steps

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Converters are best-effort: a field that is missing from the mapping
// or whose value cannot be transformed is left untouched, never an
// error. A missing field-name *argument* is an error at build time.
// Tests pin this asymmetry.

func convArg(args []string, kwargs map[string]string, idx int, key string) string {
	if len(args) > idx {
		return args[idx]
	}
	return kwargs[key]
}

// currentFields returns a copy of the context's extracted fields, or an
// empty mapping when extraction produced nothing.
func currentFields(ctx *rename.Context) *rename.Fields {
	if ctx.Extracted == nil {
		return rename.NewFields()
	}
	return ctx.Extracted.Clone()
}

var titleCaser = cases.Title(language.Und)

// newCaseConverter rewrites one field's text case.
func newCaseConverter(args []string, kwargs map[string]string) (ConverterFunc, error) {
	field := convArg(args, kwargs, 0, "field")
	if field == "" {
		return nil, errors.New("case converter requires field name")
	}
	caseType := convArg(args, kwargs, 1, "case")
	if caseType == "" {
		caseType = "lower"
	}
	switch caseType {
	case "upper", "lower", "title", "capitalize":
	default:
		return nil, fmt.Errorf("invalid case type %q: must be upper, lower, title or capitalize", caseType)
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		fields := currentFields(ctx)
		value, ok := fields.Get(field)
		if !ok || value == "" {
			return fields, nil
		}
		switch caseType {
		case "upper":
			fields.Set(field, strings.ToUpper(value))
		case "lower":
			fields.Set(field, strings.ToLower(value))
		case "title":
			fields.Set(field, titleCaser.String(value))
		case "capitalize":
			fields.Set(field, capitalize(value))
		}
		return fields, nil
	}, nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

var numericValue = regexp.MustCompile(`^[0-9]+$`)

// newPadNumbersConverter left-pads a purely numeric field value with
// zeros to at least the target width.
func newPadNumbersConverter(args []string, kwargs map[string]string) (ConverterFunc, error) {
	field := convArg(args, kwargs, 0, "field")
	if field == "" {
		return nil, errors.New("pad_numbers converter requires field name")
	}
	widthArg := convArg(args, kwargs, 1, "width")
	if widthArg == "" {
		widthArg = "3"
	}
	width, err := strconv.Atoi(widthArg)
	if err != nil {
		return nil, fmt.Errorf("pad_numbers width %q is not a number: %w", widthArg, err)
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		fields := currentFields(ctx)
		value, ok := fields.Get(field)
		if !ok || value == "" {
			return fields, nil
		}
		if numericValue.MatchString(value) && len(value) < width {
			fields.Set(field, strings.Repeat("0", width-len(value))+value)
		}
		return fields, nil
	}, nil
}

// newDateFormatConverter re-renders a date field from one layout to
// another. Unparsable values are preserved unchanged.
func newDateFormatConverter(args []string, kwargs map[string]string) (ConverterFunc, error) {
	field := convArg(args, kwargs, 0, "field")
	if field == "" {
		return nil, errors.New("date_format converter requires field name")
	}
	inputFmt := convArg(args, kwargs, 1, "input_format")
	if inputFmt == "" {
		inputFmt = "20060102"
	}
	outputFmt := convArg(args, kwargs, 2, "output_format")
	if outputFmt == "" {
		outputFmt = "2006-01-02"
	}

	return func(ctx *rename.Context) (*rename.Fields, error) {
		fields := currentFields(ctx)
		value, ok := fields.Get(field)
		if !ok || value == "" {
			return fields, nil
		}
		parsed, err := time.Parse(inputFmt, value)
		if err != nil {
			return fields, nil
		}
		fields.Set(field, parsed.Format(outputFmt))
		return fields, nil
	}, nil
}
