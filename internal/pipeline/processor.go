// Package pipeline drives batch rename runs: file discovery, the
// per-file filter → extract → convert → template chain, batch-level
// collision detection and the rename executor.
package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/batchrename/internal/rename"
	"git.home.luguber.info/inful/batchrename/internal/steps"
)

// Processor executes rename jobs. It is stateless across runs; all
// per-run state lives in the Result owned by the running call.
type Processor struct {
	factory *steps.Factory
}

// New creates a processor over the given step factory.
func New(factory *steps.Factory) *Processor {
	return &Processor{factory: factory}
}

// NewDefault creates a processor with the built-in registries.
func NewDefault() *Processor {
	return New(steps.NewFactory(steps.NewRegistries()))
}

// boundSteps is the executable form of a job's step configuration.
type boundSteps struct {
	filters   []steps.FilterFunc
	extractor steps.ExtractorFunc
	converters []struct {
		name string
		fn   steps.ConverterFunc
	}
	template steps.TemplateFunc
	allInOne steps.AllInOneFunc
}

// Process runs one batch rename job. Configuration and step-resolution
// errors abort before any file is touched; per-file errors and
// collisions are aggregated into the result.
func (p *Processor) Process(cfg *rename.Config) (*rename.Result, error) {
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bound, err := p.buildSteps(cfg)
	if err != nil {
		return nil, err
	}

	files, err := listFiles(cfg)
	if err != nil {
		return nil, err
	}

	result := &rename.Result{FilesFound: len(files)}

	var proposals []proposal
	for _, path := range files {
		if prop, ok := p.processFile(cfg, bound, path, result); ok {
			proposals = append(proposals, prop)
		}
	}

	p.finalize(cfg, proposals, result)
	result.ProcessingTime = time.Since(started)
	return result, nil
}

func (p *Processor) buildSteps(cfg *rename.Config) (*boundSteps, error) {
	bound := &boundSteps{}

	for _, fc := range cfg.Filters {
		fn, err := p.factory.Filter(fc)
		if err != nil {
			return nil, err
		}
		bound.filters = append(bound.filters, fn)
	}

	if cfg.ExtractAndConvert != nil {
		fn, err := p.factory.AllInOne(*cfg.ExtractAndConvert)
		if err != nil {
			return nil, err
		}
		bound.allInOne = fn
		return bound, nil
	}

	extractor, err := p.factory.Extractor(*cfg.Extractor)
	if err != nil {
		return nil, err
	}
	bound.extractor = extractor

	for _, cc := range cfg.Converters {
		fn, err := p.factory.Converter(cc)
		if err != nil {
			return nil, err
		}
		bound.converters = append(bound.converters, struct {
			name string
			fn   steps.ConverterFunc
		}{cc.Name, fn})
	}

	switch {
	case cfg.Template != nil:
		bound.template, err = p.factory.Template(*cfg.Template)
	case cfg.Extractor.Name == "split":
		// A bare split is usable standalone: its fields are already
		// well-formed name components. Join them all back in order.
		bound.template, err = p.factory.Template(rename.StepConfig{Name: "join"})
	}
	if err != nil {
		return nil, err
	}
	return bound, nil
}

// processFile runs one file through the pipeline. It returns the
// proposed rename and whether the file produced one; filtered files,
// empty extractions and per-file errors produce none.
func (p *Processor) processFile(cfg *rename.Config, bound *boundSteps, path string, result *rename.Result) (proposal, bool) {
	ctx := rename.NewContext(filepath.Base(path), path, statMetadata(path))

	for _, filter := range bound.filters {
		keep, err := filter(ctx)
		if err != nil {
			// A filter that cannot decide rejects the file.
			slog.Debug("filter failed, rejecting file", "file", ctx.Filename, "error", err)
			keep = false
		}
		if !keep {
			result.FilesFilteredOut++
			return proposal{}, false
		}
	}

	newBase, err := p.proposeName(bound, ctx)
	if err != nil {
		result.Errors++
		result.ErrorDetails = append(result.ErrorDetails, rename.ErrorDetail{File: ctx.Filename, Message: err.Error()})
		return proposal{}, false
	}
	if newBase == "" {
		// Extraction produced nothing: no rename possible, not an error.
		return proposal{}, false
	}

	newName := attachExtension(newBase, ctx.Extension())
	return proposal{
		oldPath: path,
		oldName: ctx.Filename,
		newName: newName,
		newPath: targetPath(cfg, path, newName),
	}, true
}

// proposeName produces the new base name for a file, or "" when the
// extractor yielded no fields.
func (p *Processor) proposeName(bound *boundSteps, ctx *rename.Context) (string, error) {
	if bound.allInOne != nil {
		return bound.allInOne(ctx)
	}

	fields, err := bound.extractor(ctx)
	if err != nil {
		return "", err
	}
	if fields.Len() == 0 {
		return "", nil
	}
	ctx.Extracted = fields

	for _, conv := range bound.converters {
		before := ctx.Extracted
		after, err := conv.fn(ctx)
		if err != nil {
			return "", err
		}
		if err := checkConverterFields(conv.name, before, after); err != nil {
			return "", err
		}
		ctx.Extracted = after
	}

	if bound.template == nil {
		return ctx.BaseName(), nil
	}
	return bound.template(ctx)
}

// checkConverterFields enforces the converter contract: the entire
// mapping comes back, unrelated fields intact. Dropped fields are
// logged; an emptied mapping is an error.
func checkConverterFields(name string, before, after *rename.Fields) error {
	if after.Len() == 0 && before.Len() > 0 {
		return fmt.Errorf("converter %q returned empty field data", name)
	}
	var removed []string
	for _, key := range before.Keys() {
		if !after.Has(key) {
			removed = append(removed, key)
		}
	}
	if len(removed) > 0 {
		slog.Warn("converter removed fields", "converter", name, "fields", removed)
	}
	return nil
}

// attachExtension reattaches the original extension unless the
// template already produced it.
func attachExtension(base, ext string) string {
	if ext != "" && strings.HasSuffix(base, ext) {
		return base
	}
	return base + ext
}

// targetPath composes the proposed path. A name containing directory
// separators is taken as a path relative to the input folder root
// (hierarchical renaming); otherwise the file stays in its directory.
func targetPath(cfg *rename.Config, oldPath, newName string) string {
	if strings.ContainsRune(newName, '/') {
		return filepath.Join(cfg.InputFolder, filepath.FromSlash(newName))
	}
	return filepath.Join(filepath.Dir(oldPath), newName)
}

func listFiles(cfg *rename.Config) ([]string, error) {
	var files []string

	if cfg.Recursive {
		err := filepath.WalkDir(cfg.InputFolder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan input folder: %w", err)
		}
	} else {
		entries, err := os.ReadDir(cfg.InputFolder)
		if err != nil {
			return nil, fmt.Errorf("read input folder: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(cfg.InputFolder, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// statMetadata gathers filesystem metadata. Platforms without a birth
// time fall back to the modification time for created.
func statMetadata(path string) rename.Metadata {
	info, err := os.Stat(path)
	if err != nil {
		return rename.Metadata{}
	}
	return rename.Metadata{
		Size:     info.Size(),
		Created:  info.ModTime(),
		Modified: info.ModTime(),
	}
}
