package types

import (
	"reflect"
	"sync"
)

// Registry is the process-wide Type Registry. It is built once
// during startup, before any graph is constructed, and is read-only
// thereafter: downstream plugin code may only call Get/CheckCompatibility/
// Validate/Convert.
type Registry struct {
	mu    sync.RWMutex
	types map[string]DataType
}

// NewRegistry creates an empty registry and auto-registers the built-in
// descriptors (Image, BoundingBox, DetectionList, Metadata, String,
// Number, Boolean).
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]DataType)}
	for _, d := range builtinDescriptors() {
		// Built-ins can never collide with each other or a fresh registry,
		// so the error is unreachable here.
		_ = r.Register(d)
	}
	return r
}

// Register adds a descriptor under its own name. Registering is idempotent
// when called again with the same name and a deeply equal descriptor;
// registering a different descriptor under a name already in use is a
// configuration error.
func (r *Registry) Register(d DataType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[d.Name()]; ok {
		if !reflect.DeepEqual(existing, d) {
			return &DuplicateError{TypeName: d.Name()}
		}
		return nil
	}
	r.types[d.Name()] = d
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (DataType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[name]
	if !ok {
		return nil, &NotFoundError{TypeName: name}
	}
	return d, nil
}

// CheckCompatibility reports whether a value declared as srcName may flow
// into a port declared as dstName. Unknown names are never compatible.
func (r *Registry) CheckCompatibility(srcName, dstName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.types[srcName]
	if !ok {
		return false
	}
	dst, ok := r.types[dstName]
	if !ok {
		return false
	}
	return src.CompatibleWith(dst)
}

// ValidateValue delegates to the named descriptor's Validate method.
func (r *Registry) ValidateValue(name string, value any) (bool, error) {
	d, err := r.Get(name)
	if err != nil {
		return false, err
	}
	return d.Validate(value), nil
}

// ConvertValue delegates to the named descriptor's Convert method.
func (r *Registry) ConvertValue(name string, value any) (any, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return d.Convert(value)
}

// Names returns every registered type name. Order is unspecified.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	return names
}
