package dsl

// Entity is the resource a set of views presents.
type Entity struct {
	Configurable
	identifier *Field
	views      map[ViewType]*View
}

const (
	keyReadOnly = "readOnly"
)

var entityDefaults = Defaults{
	keyReadOnly: false,
}

// NewEntity builds an entity. The label defaults to CamelCase(name).
func NewEntity(name string) *Entity {
	e := &Entity{
		Configurable: newConfigurable(entityDefaults),
		views:        make(map[ViewType]*View),
	}
	e.set(keyName, name)
	e.set(keyLabel, CamelCase(name))
	return e
}

func (e *Entity) Name() string { return get[string](&e.Configurable, keyName) }

func (e *Entity) Label() string { return get[string](&e.Configurable, keyLabel) }

func (e *Entity) SetLabel(label string) *Entity {
	e.set(keyLabel, label)
	return e
}

func (e *Entity) ReadOnly() bool { return get[bool](&e.Configurable, keyReadOnly) }

func (e *Entity) SetReadOnly(b bool) *Entity {
	e.set(keyReadOnly, b)
	return e
}

// Identifier returns the explicitly assigned identifier field.
func (e *Entity) Identifier() (*Field, bool) {
	return e.identifier, e.identifier != nil
}

// SetIdentifier overrides any field-level identifier flag for this entity's views.
func (e *Entity) SetIdentifier(f *Field) *Entity {
	e.identifier = f
	return e
}

// View returns the entity's view of type t, creating it on first use.
func (e *Entity) View(t ViewType) *View {
	if v, ok := e.views[t]; ok {
		return v
	}
	v := NewView(t)
	v.SetEntity(e)
	e.views[t] = v
	return v
}

// HasView reports whether a view of type t was created.
func (e *Entity) HasView(t ViewType) bool {
	_, ok := e.views[t]
	return ok
}

// Views returns the created views in ViewTypes order.
func (e *Entity) Views() []*View {
	out := make([]*View, 0, len(e.views))
	for _, t := range ViewTypes {
		if v, ok := e.views[t]; ok {
			out = append(out, v)
		}
	}
	return out
}
