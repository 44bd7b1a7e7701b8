package steps

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/batchrename/internal/loader"
	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Factory resolves step configurations into bound executables. Built-in
// identities resolve through the registries; identities ending in the
// source suffix load through the function loader. Custom-function shape
// validation is advisory: mismatches are logged as warnings while a
// best-effort executable is still produced.
type Factory struct {
	registries *Registries
}

// NewFactory creates a factory over the given registries.
func NewFactory(registries *Registries) *Factory {
	return &Factory{registries: registries}
}

// Extractor builds an extractor step.
func (f *Factory) Extractor(cfg rename.StepConfig) (ExtractorFunc, error) {
	if builder, ok := f.registries.extractors[cfg.Name]; ok {
		return builder(cfg.Args, cfg.Kwargs)
	}
	sym, err := f.loadCustom(KindExtractor, cfg)
	if err != nil {
		return nil, err
	}
	return adaptExtractor(sym), nil
}

// Converter builds one converter step.
func (f *Factory) Converter(cfg rename.StepConfig) (ConverterFunc, error) {
	if builder, ok := f.registries.converters[cfg.Name]; ok {
		return builder(cfg.Args, cfg.Kwargs)
	}
	sym, err := f.loadCustom(KindConverter, cfg)
	if err != nil {
		return nil, err
	}
	return adaptConverter(sym), nil
}

// Filter builds one filter step, applying the config's inverted flag to
// that filter's own verdict only.
func (f *Factory) Filter(cfg rename.StepConfig) (FilterFunc, error) {
	fn, err := f.filter(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Inverted {
		return fn, nil
	}
	return func(ctx *rename.Context) (bool, error) {
		keep, err := fn(ctx)
		if err != nil {
			return false, err
		}
		return !keep, nil
	}, nil
}

func (f *Factory) filter(cfg rename.StepConfig) (FilterFunc, error) {
	if builder, ok := f.registries.filters[cfg.Name]; ok {
		return builder(cfg.Args, cfg.Kwargs)
	}
	sym, err := f.loadCustom(KindFilter, cfg)
	if err != nil {
		return nil, err
	}
	return adaptFilter(sym, cfg.Kwargs), nil
}

// Template builds the template step.
func (f *Factory) Template(cfg rename.StepConfig) (TemplateFunc, error) {
	if builder, ok := f.registries.templates[cfg.Name]; ok {
		return builder(cfg.Args, cfg.Kwargs)
	}
	sym, err := f.loadCustom(KindTemplate, cfg)
	if err != nil {
		return nil, err
	}
	return adaptTemplate(sym), nil
}

// AllInOne builds a combined extract-and-convert step.
func (f *Factory) AllInOne(cfg rename.StepConfig) (AllInOneFunc, error) {
	if builder, ok := f.registries.allInOnes[cfg.Name]; ok {
		return builder(cfg.Args, cfg.Kwargs)
	}
	sym, err := f.loadCustom(KindAllInOne, cfg)
	if err != nil {
		return nil, err
	}
	return adaptAllInOne(sym), nil
}

// loadCustom resolves an external-source step reference. The first
// positional argument names the function inside the source file.
func (f *Factory) loadCustom(kind Kind, cfg rename.StepConfig) (*loader.Symbol, error) {
	if !rename.IsSourceRef(cfg.Name) {
		return nil, fmt.Errorf("unknown %s %q", kind, cfg.Name)
	}
	if len(cfg.Args) == 0 {
		return nil, fmt.Errorf("custom %s %s requires function name as first argument", kind, cfg.Name)
	}

	sym, err := loader.Load(cfg.Name, cfg.Args[0])
	if err != nil {
		return nil, fmt.Errorf("load custom %s: %w", kind, err)
	}

	if validation := loader.Validate(string(kind), sym); !validation.Valid {
		slog.Warn("custom function signature mismatch",
			"kind", string(kind),
			"function", sym.Name,
			"source", sym.Source,
			"detail", validation.Message)
	}
	return sym, nil
}

// ValidateCustom loads and validates a custom function without
// building an executable. Used by tooling to surface signature
// diagnostics.
func (f *Factory) ValidateCustom(kind Kind, sourcePath, funcName string) (loader.ValidationResult, error) {
	sym, err := loader.Load(sourcePath, funcName)
	if err != nil {
		return loader.ValidationResult{}, err
	}
	return loader.Validate(string(kind), sym), nil
}
