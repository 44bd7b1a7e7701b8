// Package loader loads custom step functions from external Go source
// files. Sources are interpreted with yaegi, so user-supplied steps
// need no compilation or plugin build step; the loaded symbol carries
// enough signature introspection for advisory validation.
package loader

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Each failure mode is a distinct error so callers can branch.
var (
	ErrSourceNotFound   = errors.New("function source file not found")
	ErrWrongSuffix      = errors.New("function source must be a .go file")
	ErrFunctionNotFound = errors.New("function not found in source file")
	ErrNotFunction      = errors.New("named symbol is not a function")
)

// Symbol is a loaded custom function together with its declared
// signature.
type Symbol struct {
	Name   string
	Source string
	Value  reflect.Value

	// Params and Results hold the declared parameter and result type
	// names, in order.
	Params  []string
	Results []string
}

// Load interprets the source file and resolves the named function.
func Load(sourcePath, funcName string) (*Symbol, error) {
	if !strings.HasSuffix(sourcePath, ".go") {
		return nil, fmt.Errorf("%w: %s", ErrWrongSuffix, sourcePath)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
		}
		return nil, fmt.Errorf("read function source %s: %w", sourcePath, err)
	}

	// The package clause determines how the symbol is addressed inside
	// the interpreter.
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, sourcePath, data, parser.PackageClauseOnly)
	if err != nil {
		return nil, fmt.Errorf("parse function source %s: %w", sourcePath, err)
	}
	pkgName := file.Name.Name

	interpreter := interp.New(interp.Options{})
	if err := interpreter.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("initialize interpreter: %w", err)
	}
	if _, err := interpreter.Eval(string(data)); err != nil {
		return nil, fmt.Errorf("compile function source %s: %w", sourcePath, err)
	}

	value, err := interpreter.Eval(pkgName + "." + funcName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrFunctionNotFound, funcName, sourcePath)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFunction, funcName, sourcePath)
	}

	sym := &Symbol{Name: funcName, Source: sourcePath, Value: value}
	fnType := value.Type()
	for i := 0; i < fnType.NumIn(); i++ {
		sym.Params = append(sym.Params, fnType.In(i).String())
	}
	for i := 0; i < fnType.NumOut(); i++ {
		sym.Results = append(sym.Results, fnType.Out(i).String())
	}
	return sym, nil
}
