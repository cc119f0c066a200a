package registry

import (
	"sort"
	"sync/atomic"

	"github.com/jmylchreest/decodechain/internal/decoder"
)

// Static reports a fixed set of element names as installed.
type Static struct {
	elements map[string]struct{}
}

// NewStatic creates a static registry holding names.
func NewStatic(names ...string) *Static {
	s := &Static{elements: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			s.elements[n] = struct{}{}
		}
	}
	return s
}

// HasElement reports whether name is in the set.
func (s *Static) HasElement(name string) bool {
	_, ok := s.elements[name]
	return ok
}

// Elements returns the set in sorted order.
func (s *Static) Elements() []string {
	out := make([]string, 0, len(s.elements))
	for n := range s.elements {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type denyRegistry struct {
	inner  decoder.Registry
	denied map[string]struct{}
}

// Deny wraps inner so that the given names are always reported absent.
// Denied names never reach inner.
func Deny(inner decoder.Registry, names ...string) decoder.Registry {
	d := &denyRegistry{inner: inner, denied: make(map[string]struct{}, len(names))}
	for _, n := range names {
		d.denied[n] = struct{}{}
	}
	return d
}

func (d *denyRegistry) HasElement(name string) bool {
	if _, ok := d.denied[name]; ok {
		return false
	}
	return d.inner.HasElement(name)
}

// Counting wraps a registry and counts lookups.
type Counting struct {
	inner decoder.Registry
	calls atomic.Int64
}

// NewCounting wraps inner.
func NewCounting(inner decoder.Registry) *Counting {
	return &Counting{inner: inner}
}

// HasElement forwards to the wrapped registry.
func (c *Counting) HasElement(name string) bool {
	c.calls.Add(1)
	return c.inner.HasElement(name)
}

// Calls returns the number of lookups so far.
func (c *Counting) Calls() int64 {
	return c.calls.Load()
}
