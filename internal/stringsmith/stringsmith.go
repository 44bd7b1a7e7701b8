// Package stringsmith implements the conditional template mini-language
// used by the stringsmith rename template. Sections are written with
// doubled braces and collapse entirely when their field is missing or
// empty, and a literal separator between two sections is dropped when
// the section it joins collapses, so no orphaned delimiters remain:
//
//	{{field}}                 value or nothing
//	{{prefix;field}}          prefix+value, or nothing
//	{{prefix;field;suffix}}   prefix+value+suffix, or nothing
//	{{!field}}                mandatory: formatting fails when missing
//
// A backslash escapes a literal brace pair: \{{ renders as {{.
// Templates are parsed once at construction; a Formatter is immutable
// and safe for concurrent use.
package stringsmith

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeSection
)

type node struct {
	kind      nodeKind
	text      string // literal text
	separator bool   // literal lies between two sections
	field     string
	prefix    string
	suffix    string
	mandatory bool
}

// Formatter is a compiled template.
type Formatter struct {
	template string
	nodes    []node
}

// New parses a template. Unterminated sections, empty field names and
// sections with more than three parts are parse errors.
func New(template string) (*Formatter, error) {
	f := &Formatter{template: template}

	var literal strings.Builder
	rest := template
	for len(rest) > 0 {
		idx := strings.Index(rest, "{{")
		if idx < 0 {
			literal.WriteString(rest)
			break
		}

		// Escaped opener: emit literal braces and continue scanning.
		if idx > 0 && rest[idx-1] == '\\' {
			literal.WriteString(rest[:idx-1])
			literal.WriteString("{{")
			rest = rest[idx+2:]
			continue
		}

		literal.WriteString(rest[:idx])
		rest = rest[idx+2:]

		end := strings.Index(rest, "}}")
		if end < 0 {
			return nil, fmt.Errorf("stringsmith: unterminated section in %q", template)
		}
		body := rest[:end]
		rest = rest[end+2:]

		if literal.Len() > 0 {
			f.nodes = append(f.nodes, node{kind: nodeLiteral, text: literal.String()})
			literal.Reset()
		}

		sec, err := parseSection(body)
		if err != nil {
			return nil, err
		}
		f.nodes = append(f.nodes, sec)
	}
	if literal.Len() > 0 {
		f.nodes = append(f.nodes, node{kind: nodeLiteral, text: literal.String()})
	}

	f.markSeparators()
	return f, nil
}

// markSeparators flags literals that sit strictly between two sections.
// Such a literal acts as a field separator and is suppressed when the
// section it joins collapses. Leading and trailing literals always
// render.
func (f *Formatter) markSeparators() {
	first, last := -1, -1
	for i, n := range f.nodes {
		if n.kind == nodeSection {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	for i := range f.nodes {
		if f.nodes[i].kind == nodeLiteral && i > first && i < last {
			f.nodes[i].separator = true
		}
	}
}

func parseSection(body string) (node, error) {
	parts := strings.Split(body, ";")

	var sec node
	sec.kind = nodeSection
	switch len(parts) {
	case 1:
		sec.field = parts[0]
	case 2:
		sec.prefix = parts[0]
		sec.field = parts[1]
	case 3:
		sec.prefix = parts[0]
		sec.field = parts[1]
		sec.suffix = parts[2]
	default:
		return node{}, fmt.Errorf("stringsmith: section {{%s}} has too many parts", body)
	}

	if strings.HasPrefix(sec.field, "!") {
		sec.mandatory = true
		sec.field = sec.field[1:]
	}
	if sec.field == "" {
		return node{}, fmt.Errorf("stringsmith: section {{%s}} has no field name", body)
	}
	return sec, nil
}

// Format renders the template against the given fields. Sections whose
// field is absent or empty collapse to nothing, taking their adjoining
// separator with them; a collapsed mandatory field is an error.
func (f *Formatter) Format(fields map[string]string) (string, error) {
	var out strings.Builder
	var pendingSep string
	emitted := false

	for _, n := range f.nodes {
		if n.kind == nodeLiteral {
			if n.separator {
				pendingSep = n.text
			} else {
				out.WriteString(n.text)
			}
			continue
		}

		value, ok := fields[n.field]
		if !ok || value == "" {
			if n.mandatory {
				return "", fmt.Errorf("stringsmith: missing mandatory field %q", n.field)
			}
			pendingSep = ""
			continue
		}

		if emitted && pendingSep != "" {
			out.WriteString(pendingSep)
		}
		pendingSep = ""
		emitted = true
		out.WriteString(n.prefix)
		out.WriteString(value)
		out.WriteString(n.suffix)
	}
	return out.String(), nil
}

// Fields returns the field names referenced by the template, in order
// of first appearance.
func (f *Formatter) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range f.nodes {
		if n.kind == nodeSection && !seen[n.field] {
			seen[n.field] = true
			out = append(out, n.field)
		}
	}
	return out
}
