package rename

import (
	"errors"
	"fmt"
	"strings"
)

// SourceSuffix is the file suffix recognized as an external function
// source reference in step identities.
const SourceSuffix = ".go"

// IsSourceRef reports whether a step identity refers to an external
// source file rather than a built-in registry entry.
func IsSourceRef(name string) bool {
	return strings.HasSuffix(name, SourceSuffix)
}

// TemplateNames lists the recognized built-in template identities.
// The steps package registers exactly these; a config test pins the
// two lists together.
var TemplateNames = []string{"template", "stringsmith", "join"}

// StepConfig identifies one processing step: a built-in name or an
// external source reference, plus its arguments. Inverted applies to
// filters only and negates that filter's own verdict.
type StepConfig struct {
	Name     string            `yaml:"name" json:"name"`
	Args     []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Kwargs   map[string]string `yaml:"kwargs,omitempty" json:"kwargs,omitempty"`
	Inverted bool              `yaml:"inverted,omitempty" json:"inverted,omitempty"`
}

// Config is a validated batch rename job specification. Construct it,
// call Validate, and treat it as read-only afterwards; mutation after
// construction is not re-validated.
type Config struct {
	InputFolder string `yaml:"input_folder" json:"input_folder"`
	Recursive   bool   `yaml:"recursive" json:"recursive"`

	// Preview computes proposals and collisions without touching the
	// filesystem. Defaults to true when loaded from a job file.
	Preview bool `yaml:"preview" json:"preview"`

	Extractor         *StepConfig  `yaml:"extractor,omitempty" json:"extractor,omitempty"`
	ExtractAndConvert *StepConfig  `yaml:"extract_and_convert,omitempty" json:"extract_and_convert,omitempty"`
	Converters        []StepConfig `yaml:"converters,omitempty" json:"converters,omitempty"`
	Filters           []StepConfig `yaml:"filters,omitempty" json:"filters,omitempty"`
	Template          *StepConfig  `yaml:"template,omitempty" json:"template,omitempty"`
}

// Validate checks configuration consistency. It fails fast with a
// descriptive error; a config that passes is safe to hand to the
// processor.
func (c *Config) Validate() error {
	if err := c.validateFolder(); err != nil {
		return err
	}
	if err := c.validateSteps(); err != nil {
		return err
	}
	return c.validateTemplate()
}

func (c *Config) validateFolder() error {
	if c.InputFolder == "" {
		return errors.New("input_folder is required")
	}
	return nil
}

func (c *Config) validateSteps() error {
	if c.Extractor == nil && c.ExtractAndConvert == nil {
		return errors.New("must specify either extractor or extract_and_convert")
	}
	if c.Extractor != nil && c.ExtractAndConvert != nil {
		return errors.New("cannot specify both extractor and extract_and_convert")
	}

	// split produces well-formed name components on its own; every
	// other extractor needs something downstream to shape the name.
	if c.Extractor != nil && len(c.Converters) == 0 && c.Template == nil {
		if c.Extractor.Name != "split" {
			return fmt.Errorf("extractor %q requires at least one converter or a template", c.Extractor.Name)
		}
	}
	return nil
}

func (c *Config) validateTemplate() error {
	if c.Template == nil {
		return nil
	}
	name := c.Template.Name
	for _, known := range TemplateNames {
		if name == known {
			return nil
		}
	}
	if IsSourceRef(name) {
		return nil
	}
	return fmt.Errorf("invalid template %q: must be one of %s or a %s file",
		name, strings.Join(TemplateNames, ", "), SourceSuffix)
}
