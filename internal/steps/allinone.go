package steps

import (
	"errors"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// All-in-one steps combine extraction, conversion and formatting in a
// single function operating directly on the base name.

// newReplaceAllInOne applies find/replace pairs to the base name.
func newReplaceAllInOne(args []string, kwargs map[string]string) (AllInOneFunc, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errors.New("replace requires pairs of find/replace arguments")
	}
	pairs := make([]string, len(args))
	copy(pairs, args)

	return func(ctx *rename.Context) (string, error) {
		name := ctx.BaseName()
		for i := 0; i < len(pairs); i += 2 {
			name = strings.ReplaceAll(name, pairs[i], pairs[i+1])
		}
		return name, nil
	}, nil
}

func newLowercaseAllInOne(args []string, kwargs map[string]string) (AllInOneFunc, error) {
	return func(ctx *rename.Context) (string, error) {
		return strings.ToLower(ctx.BaseName()), nil
	}, nil
}

func newUppercaseAllInOne(args []string, kwargs map[string]string) (AllInOneFunc, error) {
	return func(ctx *rename.Context) (string, error) {
		return strings.ToUpper(ctx.BaseName()), nil
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\-]`)

// newCleanFilenameAllInOne scrubs special characters, collapses runs of
// the replacement character and trims it from both ends. An empty
// result falls back to the original base name.
func newCleanFilenameAllInOne(args []string, kwargs map[string]string) (AllInOneFunc, error) {
	replacement := "_"
	if len(args) > 0 && args[0] != "" {
		replacement = args[0]
	}
	runs, err := regexp.Compile(regexp.QuoteMeta(replacement) + `+`)
	if err != nil {
		return nil, err
	}

	return func(ctx *rename.Context) (string, error) {
		name := strings.ReplaceAll(ctx.BaseName(), " ", replacement)
		name = unsafeChars.ReplaceAllString(name, replacement)
		name = runs.ReplaceAllString(name, replacement)
		name = strings.Trim(name, replacement)
		if name == "" {
			return ctx.BaseName(), nil
		}
		return name, nil
	}, nil
}
