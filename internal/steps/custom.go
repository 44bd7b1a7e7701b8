package steps

import (
	"fmt"
	"reflect"
	"sort"

	"git.home.luguber.info/inful/batchrename/internal/loader"
	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Adapters bridge loaded custom functions into the internal step
// function types. The canonical custom signatures are:
//
//	extractor: func(filename, path string, metadata map[string]any) map[string]string
//	converter: func(ctx map[string]any) map[string]string
//	template:  func(ctx map[string]any) string
//	filter:    func(ctx map[string]any) bool
//	           func(ctx map[string]any, kwargs map[string]string) bool
//	allinone:  func(ctx map[string]any) string
//
// A function with a different shape still gets a best-effort call via
// reflection (validation is advisory, not blocking); the call may then
// fail per file with a descriptive error.

// contextMap exposes the processing context to interpreted code.
func contextMap(ctx *rename.Context) map[string]any {
	m := map[string]any{
		"filename":  ctx.Filename,
		"path":      ctx.Path,
		"base_name": ctx.BaseName(),
		"extension": ctx.Extension(),
		"metadata":  metadataMap(ctx),
	}
	if ctx.Extracted != nil {
		m["extracted"] = ctx.Extracted.Map()
	} else {
		m["extracted"] = map[string]string(nil)
	}
	return m
}

func metadataMap(ctx *rename.Context) map[string]any {
	return map[string]any{
		"size":     ctx.Meta.Size,
		"created":  ctx.Meta.Created,
		"modified": ctx.Meta.Modified,
	}
}

func adaptExtractor(sym *loader.Symbol) ExtractorFunc {
	return func(ctx *rename.Context) (*rename.Fields, error) {
		if fn, ok := sym.Value.Interface().(func(string, string, map[string]any) map[string]string); ok {
			return mapToFields(fn(ctx.Filename, ctx.Path, metadataMap(ctx)), nil), nil
		}
		out, err := callBestEffort(sym,
			reflect.ValueOf(ctx.Filename),
			reflect.ValueOf(ctx.Path),
			reflect.ValueOf(metadataMap(ctx)))
		if err != nil {
			return nil, err
		}
		result, err := asStringMap(sym, out)
		if err != nil {
			return nil, err
		}
		return mapToFields(result, nil), nil
	}
}

func adaptConverter(sym *loader.Symbol) ConverterFunc {
	return func(ctx *rename.Context) (*rename.Fields, error) {
		var result map[string]string
		if fn, ok := sym.Value.Interface().(func(map[string]any) map[string]string); ok {
			result = fn(contextMap(ctx))
		} else {
			out, err := callBestEffort(sym, reflect.ValueOf(contextMap(ctx)))
			if err != nil {
				return nil, err
			}
			if result, err = asStringMap(sym, out); err != nil {
				return nil, err
			}
		}
		return mapToFields(result, ctx.Extracted), nil
	}
}

func adaptFilter(sym *loader.Symbol, kwargs map[string]string) FilterFunc {
	return func(ctx *rename.Context) (bool, error) {
		switch fn := sym.Value.Interface().(type) {
		case func(map[string]any) bool:
			return fn(contextMap(ctx)), nil
		case func(map[string]any, map[string]string) bool:
			return fn(contextMap(ctx), kwargs), nil
		}
		out, err := callBestEffort(sym, reflect.ValueOf(contextMap(ctx)), reflect.ValueOf(kwargs))
		if err != nil {
			return false, err
		}
		if out.Kind() != reflect.Bool {
			return false, fmt.Errorf("custom filter %s returned %s, want bool", sym.Name, out.Kind())
		}
		return out.Bool(), nil
	}
}

func adaptTemplate(sym *loader.Symbol) TemplateFunc {
	return adaptNamer(sym, "template")
}

func adaptAllInOne(sym *loader.Symbol) AllInOneFunc {
	return AllInOneFunc(adaptNamer(sym, "extract_and_convert"))
}

func adaptNamer(sym *loader.Symbol, kind string) TemplateFunc {
	return func(ctx *rename.Context) (string, error) {
		if fn, ok := sym.Value.Interface().(func(map[string]any) string); ok {
			return fn(contextMap(ctx)), nil
		}
		out, err := callBestEffort(sym, reflect.ValueOf(contextMap(ctx)))
		if err != nil {
			return "", err
		}
		if out.Kind() != reflect.String {
			return "", fmt.Errorf("custom %s %s returned %s, want string", kind, sym.Name, out.Kind())
		}
		return out.String(), nil
	}
}

// callBestEffort invokes the symbol with as many of the canonical
// arguments as its declared signature accepts, zero-filling parameters
// that do not line up. The first return value is the result.
func callBestEffort(sym *loader.Symbol, canonical ...reflect.Value) (out reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("custom function %s call failed: %v", sym.Name, r)
		}
	}()

	fnType := sym.Value.Type()
	in := make([]reflect.Value, fnType.NumIn())
	for i := range in {
		want := fnType.In(i)
		if i < len(canonical) && canonical[i].Type().AssignableTo(want) {
			in[i] = canonical[i]
		} else {
			in[i] = reflect.Zero(want)
		}
	}

	results := sym.Value.Call(in)
	if len(results) == 0 {
		return reflect.Value{}, fmt.Errorf("custom function %s returned nothing", sym.Name)
	}
	return results[0], nil
}

func asStringMap(sym *loader.Symbol, v reflect.Value) (map[string]string, error) {
	if m, ok := v.Interface().(map[string]string); ok {
		return m, nil
	}
	return nil, fmt.Errorf("custom function %s returned %s, want map[string]string", sym.Name, v.Type())
}

// mapToFields rebuilds an ordered field mapping from a plain map.
// Previous field order is preserved where it exists; newly added keys
// follow in sorted order for determinism.
func mapToFields(m map[string]string, previous *rename.Fields) *rename.Fields {
	fields := rename.NewFields()
	if previous != nil {
		for _, key := range previous.Keys() {
			if value, ok := m[key]; ok {
				fields.Set(key, value)
			}
		}
	}
	var added []string
	for key := range m {
		if !fields.Has(key) {
			added = append(added, key)
		}
	}
	sort.Strings(added)
	for _, key := range added {
		fields.Set(key, m[key])
	}
	return fields
}
