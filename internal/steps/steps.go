// Package steps provides the built-in processing steps of the rename
// pipeline (extractors, converters, filters, templates and all-in-one
// steps), the registries that name them, and the factory that resolves
// step configurations into bound executables.
package steps

import (
	"sort"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Kind identifies a step's role in the pipeline.
type Kind string

const (
	KindExtractor Kind = "extractor"
	KindConverter Kind = "converter"
	KindFilter    Kind = "filter"
	KindTemplate  Kind = "template"
	KindAllInOne  Kind = "allinone"
)

// ExtractorFunc derives named fields from a file's context. An empty
// mapping means "no match"; it is not an error.
type ExtractorFunc func(ctx *rename.Context) (*rename.Fields, error)

// ConverterFunc returns the entire extracted-field mapping with zero or
// more fields rewritten or added. Unrelated fields are never dropped.
type ConverterFunc func(ctx *rename.Context) (*rename.Fields, error)

// FilterFunc reports whether the file should be processed.
type FilterFunc func(ctx *rename.Context) (bool, error)

// TemplateFunc produces the proposed new base name.
type TemplateFunc func(ctx *rename.Context) (string, error)

// AllInOneFunc extracts, converts and formats in a single step.
type AllInOneFunc func(ctx *rename.Context) (string, error)

// Builders bind declared arguments once, so malformed arguments fail
// while the step is constructed rather than per file.
type (
	ExtractorBuilder func(args []string, kwargs map[string]string) (ExtractorFunc, error)
	ConverterBuilder func(args []string, kwargs map[string]string) (ConverterFunc, error)
	FilterBuilder    func(args []string, kwargs map[string]string) (FilterFunc, error)
	TemplateBuilder  func(args []string, kwargs map[string]string) (TemplateFunc, error)
	AllInOneBuilder  func(args []string, kwargs map[string]string) (AllInOneFunc, error)
)

// Registries holds the built-in step registries. Construct once at
// startup and pass into the factory; the registries are immutable so
// concurrent jobs cannot interfere through shared state.
type Registries struct {
	extractors map[string]ExtractorBuilder
	converters map[string]ConverterBuilder
	filters    map[string]FilterBuilder
	templates  map[string]TemplateBuilder
	allInOnes  map[string]AllInOneBuilder
}

// NewRegistries builds the registries with every built-in registered.
func NewRegistries() *Registries {
	return &Registries{
		extractors: map[string]ExtractorBuilder{
			"split":    newSplitExtractor,
			"regex":    newRegexExtractor,
			"position": newPositionExtractor,
			"metadata": newMetadataExtractor,
		},
		converters: map[string]ConverterBuilder{
			"case":        newCaseConverter,
			"pad_numbers": newPadNumbersConverter,
			"date_format": newDateFormatConverter,
		},
		filters: map[string]FilterBuilder{
			"pattern":       newPatternFilter,
			"file-type":     newFileTypeFilter,
			"file-size":     newFileSizeFilter,
			"name-length":   newNameLengthFilter,
			"date-modified": newDateModifiedFilter,
		},
		templates: map[string]TemplateBuilder{
			"template":    newTemplateFormatter,
			"stringsmith": newStringsmithFormatter,
			"join":        newJoinFormatter,
		},
		allInOnes: map[string]AllInOneBuilder{
			"replace":        newReplaceAllInOne,
			"lowercase":      newLowercaseAllInOne,
			"uppercase":      newUppercaseAllInOne,
			"clean_filename": newCleanFilenameAllInOne,
		},
	}
}

// Names returns the registered built-in names for a step kind, sorted.
func (r *Registries) Names(kind Kind) []string {
	var out []string
	switch kind {
	case KindExtractor:
		for name := range r.extractors {
			out = append(out, name)
		}
	case KindConverter:
		for name := range r.converters {
			out = append(out, name)
		}
	case KindFilter:
		for name := range r.filters {
			out = append(out, name)
		}
	case KindTemplate:
		for name := range r.templates {
			out = append(out, name)
		}
	case KindAllInOne:
		for name := range r.allInOnes {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
