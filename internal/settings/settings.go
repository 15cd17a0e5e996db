// Package settings implements the current-configuration context that
// symbolic "!SECTION.key" references are resolved against.
//
// A Context has a single writer. It carries no lock: callers sharing one
// across goroutines must not mutate it while apertures are being computed.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var ErrUnresolved = errors.New("unresolved setting reference")

// chains like "!A" -> "!B" -> value are followed up to this depth
const maxHops = 8

type Context struct {
	values map[string]any
}

// New seeds a context. Keys may be given with or without the leading "!".
func New(seed map[string]any) *Context {
	c := &Context{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		c.Set(k, v)
	}
	return c
}

func (c *Context) Set(key string, v any) {
	c.values[normalize(key)] = v
}

func (c *Context) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[normalize(key)]
	return v, ok
}

func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Clone copies the top-level values so the copy can be written independently.
func (c *Context) Clone() *Context {
	if c == nil {
		return New(nil)
	}
	return &Context{values: maps.Clone(c.values)}
}

// IsRef reports whether v is a symbolic reference.
func IsRef(v any) bool {
	s, ok := v.(string)
	return ok && len(s) > 1 && s[0] == '!'
}

// Lookup resolves ref, following chained references.
func (c *Context) Lookup(ref string) (any, error) {
	var v any = ref
	for range maxHops {
		if !IsRef(v) {
			return v, nil
		}
		next, ok := c.Get(v.(string))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolved, ref)
		}
		v = next
	}
	return nil, fmt.Errorf("%w: %s (reference chain too deep)", ErrUnresolved, ref)
}

// Resolve returns v with a reference substituted. Unknown references are
// returned unchanged.
func (c *Context) Resolve(v any) any {
	if !IsRef(v) {
		return v
	}
	out, err := c.Lookup(v.(string))
	if err != nil {
		return v
	}
	return out
}

// ResolveMap substitutes references in m in place.
func (c *Context) ResolveMap(m map[string]any) {
	for k, v := range m {
		if IsRef(v) {
			m[k] = c.Resolve(v)
		}
	}
}

func normalize(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "!")
}
