package structured

import (
	"fmt"
	"sort"
	"sync"
)

// The schema registry lets external callers select a target schema by name
// (the HTTP boundary accepts a schemaName, not a schema literal). Features
// register their schemas at init time; the registry is effectively immutable
// configuration after startup, read without coordination.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Schema)
)

// Register adds a named schema. Registering the same name twice panics:
// that is a wiring bug, not a runtime condition.
func Register(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if s.Name == "" {
		panic("structured: schema with empty name")
	}
	if _, exists := registry[s.Name]; exists {
		panic(fmt.Sprintf("structured: schema %q registered twice", s.Name))
	}
	registry[s.Name] = s
}

// Lookup resolves a schema by name.
func Lookup(name string) (Schema, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return Schema{}, fmt.Errorf("unknown schema: %s", name)
	}
	return s, nil
}

// Names lists the registered schema names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
