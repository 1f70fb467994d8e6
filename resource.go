package timecheck

import "time"

// ResourceSnapshot is a read-only view over a server-side entity.
type ResourceSnapshot interface {
	// Attribute returns the named attribute and whether it exists.
	Attribute(name string) (any, bool)
}

// Attributes is a ResourceSnapshot backed by a map.
type Attributes map[string]any

func (a Attributes) Attribute(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// ResourceFunc adapts a lookup function to ResourceSnapshot.
type ResourceFunc func(name string) (any, bool)

func (f ResourceFunc) Attribute(name string) (any, bool) {
	return f(name)
}

// Instant is a ResourceSnapshot whose every attribute is the same instant.
// Use it when the server timestamp is already known.
type Instant time.Time

func (i Instant) Attribute(string) (any, bool) {
	return time.Time(i), true
}
