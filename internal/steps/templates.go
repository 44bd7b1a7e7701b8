package steps

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/batchrename/internal/rename"
	"git.home.luguber.info/inful/batchrename/internal/stringsmith"
)

// Every template falls back to the original base name when no
// extracted data is present at all.

var templateField = regexp.MustCompile(`\{([^{}]+)\}`)

// newTemplateFormatter renders a single-brace {field} format string.
// If any referenced field is entirely absent from the extracted data,
// resolution falls back to the context's original base name.
func newTemplateFormatter(args []string, kwargs map[string]string) (TemplateFunc, error) {
	tmpl := ""
	if len(args) > 0 {
		tmpl = args[0]
	} else {
		tmpl = kwargs["template"]
	}
	if tmpl == "" {
		return nil, errors.New("template formatter requires template string")
	}

	fieldRefs := templateField.FindAllStringSubmatch(tmpl, -1)

	return func(ctx *rename.Context) (string, error) {
		if !ctx.HasExtracted() {
			return ctx.BaseName(), nil
		}
		for _, ref := range fieldRefs {
			if !ctx.Extracted.Has(ref[1]) {
				return ctx.BaseName(), nil
			}
		}
		return templateField.ReplaceAllStringFunc(tmpl, func(token string) string {
			name := token[1 : len(token)-1]
			value, _ := ctx.Extracted.Get(name)
			return value
		}), nil
	}, nil
}

// newStringsmithFormatter renders a stringsmith template; sections with
// missing or empty fields collapse without orphaning their separators.
func newStringsmithFormatter(args []string, kwargs map[string]string) (TemplateFunc, error) {
	tmpl := ""
	found := len(args) > 0
	if found {
		tmpl = args[0]
	} else {
		tmpl, found = kwargs["template"]
	}
	if !found {
		return nil, errors.New("stringsmith formatter requires template string")
	}

	formatter, err := stringsmith.New(tmpl)
	if err != nil {
		return nil, fmt.Errorf("invalid stringsmith template: %w", err)
	}

	return func(ctx *rename.Context) (string, error) {
		if tmpl == "" {
			return "", nil
		}
		if !ctx.HasExtracted() {
			return ctx.BaseName(), nil
		}
		out, err := formatter.Format(ctx.Extracted.Map())
		if err != nil {
			return "", fmt.Errorf("stringsmith formatting failed: %w", err)
		}
		return out, nil
	}, nil
}

// newJoinFormatter joins the named fields with a separator, skipping
// missing and empty fields entirely. With no field arguments it joins
// every extracted field in extraction order.
func newJoinFormatter(args []string, kwargs map[string]string) (TemplateFunc, error) {
	separator, ok := kwargs["separator"]
	if !ok {
		separator = "_"
	}
	fieldNames := args

	return func(ctx *rename.Context) (string, error) {
		if !ctx.HasExtracted() {
			return ctx.BaseName(), nil
		}

		names := fieldNames
		if len(names) == 0 {
			names = ctx.Extracted.Keys()
		}

		var values []string
		for _, name := range names {
			if value, ok := ctx.Extracted.Get(name); ok && value != "" {
				values = append(values, value)
			}
		}
		if len(values) == 0 {
			return ctx.BaseName(), nil
		}
		return strings.Join(values, separator), nil
	}, nil
}
