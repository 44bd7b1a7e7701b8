// Package rename defines the data model for batch rename jobs: the
// per-file processing context, the validated job configuration, and the
// aggregated result object returned to callers.
package rename

import (
	"strings"
	"time"
)

// Metadata holds filesystem metadata for a candidate file. It is
// supplied by the processor when the context is created and read-only
// afterwards. Zero timestamps mean the platform did not provide them.
type Metadata struct {
	Size     int64
	Created  time.Time
	Modified time.Time
}

// Context carries one file through the pipeline. A fresh Context is
// created per file per run and discarded after the file produces (or
// fails to produce) a proposed name; it is never shared across files.
type Context struct {
	// Filename is the file's name without any directory components.
	Filename string

	// Path is the full path to the file.
	Path string

	// Meta is the file's filesystem metadata.
	Meta Metadata

	// Extracted is the field mapping produced by the extractor and
	// refined by converters. Nil until an extractor has run.
	Extracted *Fields
}

// NewContext creates a processing context for a single file.
func NewContext(filename, path string, meta Metadata) *Context {
	return &Context{Filename: filename, Path: path, Meta: meta}
}

// splitName splits a filename at its last dot-delimited suffix.
// A leading dot (dotfiles) does not start a suffix. The two halves
// always concatenate back to the original name.
func splitName(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// BaseName returns the filename without its last dot-delimited suffix.
func (c *Context) BaseName() string {
	base, _ := splitName(c.Filename)
	return base
}

// Extension returns the last dot-delimited suffix including the dot,
// or the empty string when the filename has none.
func (c *Context) Extension() string {
	_, ext := splitName(c.Filename)
	return ext
}

// HasExtracted reports whether extraction ran and produced any fields.
func (c *Context) HasExtracted() bool {
	return c.Extracted != nil && c.Extracted.Len() > 0
}

// Field returns the named extracted field value, or "" when extraction
// has not run or the field is absent.
func (c *Context) Field(name string) (string, bool) {
	if c.Extracted == nil {
		return "", false
	}
	return c.Extracted.Get(name)
}
