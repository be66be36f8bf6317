package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a variant from options
type Factory func(opts Options) (RepositoryProvider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a variant under name. A later registration replaces an
// earlier one.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	factories[name] = factory
}

// New builds the variant registered under name.
func New(name string, opts Options) (RepositoryProvider, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(Names(), ", "))
	}

	return factory(opts)
}

// Names returns the registered variant names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Clear removes all registered variants. For testing only.
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	factories = make(map[string]Factory)
}
