// Package generators routes model names to genx.Generator implementations.
package generators

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/haivivi/celebguess/pkg/genx"
)

var _ genx.Generator = (*Mux)(nil)

// Mux is a generator multiplexer. Patterns are either exact model names
// ("openai/gpt-4o-mini") or path.Match globs ("openai/*"); exact names win
// over globs, and globs are tried in registration order.
type Mux struct {
	mu    sync.RWMutex
	exact map[string]genx.Generator
	globs []globEntry
}

type globEntry struct {
	pattern string
	gen     genx.Generator
}

// NewMux creates an empty multiplexer.
func NewMux() *Mux {
	return &Mux{exact: make(map[string]genx.Generator)}
}

// Handle registers gen for pattern. Registering the same pattern twice is an
// error.
func (m *Mux) Handle(pattern string, gen genx.Generator) error {
	if gen == nil {
		return fmt.Errorf("generators: nil generator for %s", pattern)
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("generators: bad pattern %q: %w", pattern, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exact[pattern]; ok || slices.ContainsFunc(m.globs, func(e globEntry) bool { return e.pattern == pattern }) {
		return fmt.Errorf("generators: generator already registered for %s", pattern)
	}
	if isGlob(pattern) {
		m.globs = append(m.globs, globEntry{pattern: pattern, gen: gen})
	} else {
		m.exact[pattern] = gen
	}
	return nil
}

// Invoke looks up the generator for name and invokes it.
func (m *Mux) Invoke(ctx context.Context, name string, mctx genx.ModelContext, tool *genx.FuncTool) (genx.Usage, *genx.FuncCall, error) {
	gen, err := m.Get(name)
	if err != nil {
		return genx.Usage{}, nil, err
	}
	return gen.Invoke(ctx, name, mctx, tool)
}

// Get returns the generator registered for name.
func (m *Mux) Get(name string) (genx.Generator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if gen, ok := m.exact[name]; ok {
		return gen, nil
	}
	for _, e := range m.globs {
		if ok, _ := path.Match(e.pattern, name); ok {
			return e.gen, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", genx.ErrNoGenerator, name)
}

// Names returns the registered patterns, sorted.
func (m *Mux) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.exact)+len(m.globs))
	for name := range m.exact {
		names = append(names, name)
	}
	for _, e := range m.globs {
		names = append(names, e.pattern)
	}
	slices.Sort(names)
	return names
}

func isGlob(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
