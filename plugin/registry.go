package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/streamdag/log"
)

// DependencyProbe reports whether a named build-time dependency is
// available in this binary.
type DependencyProbe func(dependency string) bool

// entry is the registry's bookkeeping for one registered plugin type.
type entry struct {
	metadata             Metadata
	factory              Factory
	instantiationDisabled bool
	missingDependencies  []string
}

// Registry is the Plugin Registry. It is populated once at
// process startup (by calling Register/MustRegister from plugin package
// init functions or from main) and is frozen, read-only, once the
// executor starts.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	probe   DependencyProbe
}

// NewRegistry creates an empty registry. probe, if non-nil, is used to
// check declared plugin dependencies at registration time; a nil probe
// treats every dependency as available.
func NewRegistry(probe DependencyProbe) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		probe:   probe,
	}
}

// Register records factory under metadata.Type. A later registration of
// the same type wins over an earlier one, with a warning logged.
func (r *Registry) Register(metadata Metadata, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[metadata.Type]; exists {
		log.Warn("plugin type %q re-registered; later registration wins", metadata.Type)
	}

	e := &entry{metadata: metadata, factory: factory}
	for _, dep := range metadata.Dependencies {
		if r.probe != nil && !r.probe(dep) {
			e.instantiationDisabled = true
			e.missingDependencies = append(e.missingDependencies, dep)
		}
	}
	r.entries[metadata.Type] = e
}

// MustRegister is a convenience for use in package init functions, where a
// registration failure (there is none today, but the name documents
// intent for callers) should abort the program rather than continue
// silently.
func (r *Registry) MustRegister(metadata Metadata, factory Factory) {
	r.Register(metadata, factory)
}

// List returns the metadata of every registered plugin type.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// ListByCategory returns every registered plugin type's metadata in the
// given category.
func (r *Registry) ListByCategory(category Category) []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0)
	for _, e := range r.entries {
		if e.metadata.Category == category {
			out = append(out, e.metadata)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Get returns the registered metadata and factory for typeName.
func (r *Registry) Get(typeName string) (Metadata, Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[typeName]
	if !ok {
		return Metadata{}, nil, &NotFoundError{TypeName: typeName}
	}
	return e.metadata, e.factory, nil
}

// NotFoundError is returned by Get/CreateInstance for an unknown type.
type NotFoundError struct{ TypeName string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("plugin type %q not registered", e.TypeName) }

// ConstructionError wraps a factory's own error.
type ConstructionError struct {
	TypeName string
	Cause    error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct plugin %q: %v", e.TypeName, e.Cause)
}
func (e *ConstructionError) Unwrap() error { return e.Cause }

// InvalidConfigError wraps a ValidateConfig failure.
type InvalidConfigError struct {
	TypeName string
	Cause    error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config for plugin %q: %v", e.TypeName, e.Cause)
}
func (e *InvalidConfigError) Unwrap() error { return e.Cause }

// CreateInstance instantiates typeName with the given node id and config.
// It fails with one of NotFoundError, ErrMissingDependency,
// ConstructionError, or InvalidConfigError.
func (r *Registry) CreateInstance(typeName, nodeID string, config map[string]any) (INode, error) {
	r.mu.RLock()
	e, ok := r.entries[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{TypeName: typeName}
	}
	if e.instantiationDisabled {
		return nil, &ErrMissingDependency{PluginType: typeName, Dependency: e.missingDependencies[0]}
	}

	instance, err := e.factory(nodeID, config)
	if err != nil {
		return nil, &ConstructionError{TypeName: typeName, Cause: err}
	}
	if err := instance.ValidateConfig(config); err != nil {
		return nil, &InvalidConfigError{TypeName: typeName, Cause: err}
	}
	return instance, nil
}

// DependencyEntry is one row of DependencyReport's inventory.
type DependencyEntry struct {
	PluginType           string
	Dependencies         []string
	InstantiationDisabled bool
	MissingDependencies  []string
}

// DependencyReport returns a structured inventory of every plugin's
// declared dependencies, for packaging/auditing.
func (r *Registry) DependencyReport() []DependencyEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DependencyEntry, 0, len(r.entries))
	for typeName, e := range r.entries {
		out = append(out, DependencyEntry{
			PluginType:            typeName,
			Dependencies:          e.metadata.Dependencies,
			InstantiationDisabled: e.instantiationDisabled,
			MissingDependencies:   e.missingDependencies,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PluginType < out[j].PluginType })
	return out
}
