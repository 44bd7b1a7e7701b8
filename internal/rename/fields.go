package rename

// Fields is an insertion-ordered mapping of field names to string
// values. Order matters: templates that join "all fields" must emit
// them in the order the extractor produced them.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields creates an empty field mapping.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set stores a value, appending the key to the order on first use.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key and whether it is present.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.keys)
}

// Keys returns the field names in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Clone returns an independent copy preserving order.
func (f *Fields) Clone() *Fields {
	out := NewFields()
	for _, k := range f.keys {
		out.Set(k, f.values[k])
	}
	return out
}

// Map returns the fields as a plain map (order lost).
func (f *Fields) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
