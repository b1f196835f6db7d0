package provider

import (
	"fmt"
	"sort"
)

// Registry maps provider slugs to implementations. It is built once at
// startup and never modified, so it is safe for concurrent reads.
type Registry struct {
	byName map[string]Provider
	names  []string
}

// NewRegistry indexes ps by Name. Registering the same name twice panics.
func NewRegistry(ps ...Provider) Registry {
	r := Registry{byName: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		name := p.Name()
		if _, dup := r.byName[name]; dup {
			panic(fmt.Sprintf("provider: duplicate registration for %q", name))
		}
		r.byName[name] = p
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the provider registered under name.
func (r Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Names lists registered slugs in sorted order.
func (r Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len reports how many providers are registered.
func (r Registry) Len() int { return len(r.names) }
