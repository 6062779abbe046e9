package dsl

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Transforms holds named map stages the loader can attach by name.
type Transforms struct {
	funcs map[string]MapFunc
}

// NewTransforms creates an empty registry.
func NewTransforms() *Transforms {
	return &Transforms{funcs: make(map[string]MapFunc)}
}

// DefaultTransforms returns a registry with the built-in stages.
func DefaultTransforms() *Transforms {
	t := NewTransforms()
	t.Register("trim", func(v any, _ *Entry) any {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	})
	t.Register("upper", func(v any, _ *Entry) any {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	})
	t.Register("lower", func(v any, _ *Entry) any {
		if s, ok := v.(string); ok {
			return strings.ToLower(s)
		}
		return v
	})
	t.Register("string", func(v any, _ *Entry) any {
		if v == nil {
			return v
		}
		return toString(v)
	})
	t.Register("int", func(v any, _ *Entry) any {
		if n, err := toIntStrict(v); err == nil {
			return n
		}
		return v
	})
	t.Register("float", func(v any, _ *Entry) any {
		if n, err := toFloatStrict(v); err == nil {
			return n
		}
		return v
	})
	t.Register("bool", func(v any, _ *Entry) any {
		if b, err := toBoolStrict(v); err == nil {
			return b
		}
		return v
	})
	t.Register("truncate20", truncate(20))
	return t
}

// truncate cuts strings longer than n runes and appends "...".
func truncate(n int) MapFunc {
	return func(v any, _ *Entry) any {
		s, ok := v.(string)
		if !ok || utf8.RuneCountInString(s) <= n {
			return v
		}
		return string([]rune(s)[:n]) + "..."
	}
}

// Register adds or replaces a named stage.
func (t *Transforms) Register(name string, fn MapFunc) {
	t.funcs[name] = fn
}

// Get returns the stage called name, or nil.
func (t *Transforms) Get(name string) MapFunc {
	return t.funcs[name]
}

// Has reports whether a stage called name exists.
func (t *Transforms) Has(name string) bool {
	_, ok := t.funcs[name]
	return ok
}

// Names returns the registered names, sorted.
func (t *Transforms) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseTruncate handles "truncateN" names not registered explicitly.
func parseTruncate(name string) (MapFunc, bool) {
	rest, ok := strings.CutPrefix(name, "truncate")
	if !ok || rest == "" {
		return nil, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return nil, false
	}
	return truncate(n), true
}

// Resolve looks a stage up by name, accepting any "truncateN".
func (t *Transforms) Resolve(name string) (MapFunc, bool) {
	if fn := t.Get(name); fn != nil {
		return fn, true
	}
	return parseTruncate(name)
}
