package loader

import (
	"fmt"
	"strings"
)

// ValidationResult reports whether a custom function's declared
// signature matches the expected shape for its step kind. Validation is
// advisory: a mismatch is surfaced as a warning by tooling, but the
// factory still builds a best-effort executable.
type ValidationResult struct {
	Valid      bool
	Message    string
	Parameters []string
}

// Expected custom-function shapes per step kind:
//
//	extractor: func(filename, path string, metadata map[string]any) map[string]string
//	converter: func(ctx map[string]any) map[string]string
//	template:  func(ctx map[string]any) string
//	filter:    func(ctx map[string]any) bool
//	           func(ctx map[string]any, kwargs map[string]string) bool
//	allinone:  func(ctx map[string]any) string

// Validate checks a loaded symbol's arity against the expected shape
// for the given step kind ("extractor", "converter", "filter",
// "template" or "allinone").
func Validate(kind string, sym *Symbol) ValidationResult {
	arity := len(sym.Params)

	var notes []string
	valid := true

	switch kind {
	case "extractor":
		if arity != 3 {
			valid = false
			notes = append(notes, fmt.Sprintf("expected 3 parameters (filename, path, metadata), found %d", arity))
		}
	case "converter", "template", "allinone":
		if arity != 1 {
			valid = false
			notes = append(notes, fmt.Sprintf("expected 1 context parameter, found %d", arity))
		}
	case "filter":
		if arity != 1 && arity != 2 {
			valid = false
			notes = append(notes, fmt.Sprintf("expected 1 context parameter plus optional keyword parameters, found %d", arity))
		}
	default:
		valid = false
		notes = append(notes, fmt.Sprintf("unknown step kind %q", kind))
	}

	if len(sym.Results) == 0 {
		valid = false
		notes = append(notes, "function declares no return value")
	}

	if valid {
		notes = append(notes, fmt.Sprintf("%s %s(%s) looks usable", kind, sym.Name, strings.Join(sym.Params, ", ")))
	}

	return ValidationResult{
		Valid:      valid,
		Message:    strings.Join(notes, "; "),
		Parameters: sym.Params,
	}
}
