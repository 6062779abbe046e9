package dsl

import "maps"

// Defaults is a static table of property name -> default value.
// Every Field, View and Entity gets its own copy of its table at construction.
type Defaults map[string]any

// Configurable is the property store shared by Field, View and Entity.
// The typed accessors on those types read and write through it.
type Configurable struct {
	values map[string]any
}

func newConfigurable(d Defaults) Configurable {
	values := make(map[string]any, len(d))
	for k, v := range d {
		values[k] = deepCopy(v)
	}
	return Configurable{values: values}
}

// Get returns the stored value for key, nil when absent.
func (c *Configurable) Get(key string) any {
	return c.values[key]
}

// Has reports whether key was ever set or defaulted.
func (c *Configurable) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

func (c *Configurable) set(key string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
}

// Snapshot returns a deep copy of all stored properties.
func (c *Configurable) Snapshot() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = deepCopy(v)
	}
	return out
}

// get reads key as T; a missing key or a value of another type yields the zero T.
func get[T any](c *Configurable, key string) T {
	v, _ := c.values[key].(T)
	return v
}

// deepCopy copies the container types that appear in defaults tables.
// Functions and scalars are shared as is.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCopy(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []Choice:
		return append([]Choice(nil), t...)
	default:
		return v
	}
}
