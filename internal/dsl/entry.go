package dsl

// Entry is one raw record mapped through a view.
type Entry struct {
	IdentifierValue any            `json:"identifierValue" yaml:"identifierValue"`
	Values          map[string]any `json:"values" yaml:"values"`
}

// Value returns the mapped value of the named field.
func (e *Entry) Value(name string) (any, bool) {
	v, ok := e.Values[name]
	return v, ok
}
