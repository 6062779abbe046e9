package dsl

import (
	"maps"
	"slices"
	"sort"
)

// ViewType is the presentation mode of a view.
type ViewType string

const (
	ViewDashboard ViewType = "dashboard"
	ViewList      ViewType = "list"
	ViewShow      ViewType = "show"
	ViewEdit      ViewType = "edit"
	ViewCreate    ViewType = "create"
	ViewDelete    ViewType = "delete"
	ViewFilter    ViewType = "filter"
)

// ViewTypes lists the known view types in display order.
var ViewTypes = []ViewType{ViewDashboard, ViewList, ViewShow, ViewEdit, ViewCreate, ViewDelete, ViewFilter}

// ParseViewType maps a name onto a known view type.
func ParseViewType(s string) (ViewType, bool) {
	t := ViewType(s)
	return t, slices.Contains(ViewTypes, t)
}

const (
	keyTitle       = "title"
	keyDescription = "description"
	keyActions     = "actions"
)

var viewDefaults = Defaults{
	keyTitle:       "",
	keyDescription: "",
	keyPerPage:     30,
	keySortField:   "",
	keySortDir:     "DESC",
	keyActions:     []string{},
}

// View is an ordered, name-keyed collection of fields for one presentation mode.
type View struct {
	Configurable
	typ    ViewType
	entity *Entity
	fields map[string]Fielder
	slots  []string
	// next is the default order of the next new field; removals never lower it
	next int
}

// NewView builds an empty view of type t.
func NewView(t ViewType) *View {
	return &View{
		Configurable: newConfigurable(viewDefaults),
		typ:          t,
		fields:       make(map[string]Fielder),
	}
}

func (v *View) Type() ViewType { return v.typ }

// Name returns the explicit name, or "<entity>_<type>" when none was set.
func (v *View) Name() string {
	if name := get[string](&v.Configurable, keyName); name != "" {
		return name
	}
	if v.entity == nil {
		return string(v.typ)
	}
	return v.entity.Name() + "_" + string(v.typ)
}

func (v *View) SetName(name string) *View {
	v.set(keyName, name)
	return v
}

func (v *View) Title() string { return get[string](&v.Configurable, keyTitle) }

func (v *View) SetTitle(title string) *View {
	v.set(keyTitle, title)
	return v
}

func (v *View) Description() string { return get[string](&v.Configurable, keyDescription) }

func (v *View) SetDescription(desc string) *View {
	v.set(keyDescription, desc)
	return v
}

func (v *View) PerPage() int { return get[int](&v.Configurable, keyPerPage) }

func (v *View) SetPerPage(n int) *View {
	v.set(keyPerPage, n)
	return v
}

func (v *View) SortField() string { return get[string](&v.Configurable, keySortField) }

func (v *View) SetSortField(name string) *View {
	v.set(keySortField, name)
	return v
}

func (v *View) SortDir() string { return get[string](&v.Configurable, keySortDir) }

func (v *View) SetSortDir(dir string) *View {
	v.set(keySortDir, dir)
	return v
}

func (v *View) Actions() []string {
	return slices.Clone(get[[]string](&v.Configurable, keyActions))
}

func (v *View) SetActions(actions []string) *View {
	v.set(keyActions, slices.Clone(actions))
	return v
}

func (v *View) Entity() *Entity { return v.entity }

// SetEntity attaches the owning entity. The entity is not copied.
func (v *View) SetEntity(e *Entity) *View {
	v.entity = e
	return v
}

// AddField inserts f keyed by its name.
// A field without an order gets the next insertion index, counted over every
// field ever added so removals do not hand out an order twice; a field
// replacing one of the same name takes over the replaced field's slot and order.
func (v *View) AddField(f Fielder) *View {
	if f == nil {
		return v
	}
	name := f.Name()
	base := f.field()
	old, exists := v.fields[name]
	if _, ok := base.Order(); !ok {
		order := v.next
		if exists {
			if o, ok := old.field().Order(); ok {
				order = o
			} else {
				order = slices.Index(v.slots, name)
			}
		}
		base.SetOrder(order)
	}
	if !exists {
		v.slots = append(v.slots, name)
		v.next++
	}
	v.fields[name] = f
	return v
}

// AddFields adds every field in argument order.
func (v *View) AddFields(fs ...Fielder) *View {
	for _, f := range fs {
		v.AddField(f)
	}
	return v
}

// SetFields adds every field of the slice in order. Existing fields are kept.
func (v *View) SetFields(fs []Fielder) *View {
	return v.AddFields(fs...)
}

// Fields returns the whole collection keyed by name.
func (v *View) Fields() map[string]Fielder {
	return maps.Clone(v.fields)
}

// Field returns the field called name.
func (v *View) Field(name string) (Fielder, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// RemoveField drops the field called name, if any.
func (v *View) RemoveField(name string) *View {
	if _, ok := v.fields[name]; !ok {
		return v
	}
	delete(v.fields, name)
	v.slots = slices.DeleteFunc(v.slots, func(s string) bool { return s == name })
	return v
}

// Len returns the number of fields.
func (v *View) Len() int { return len(v.slots) }

// OrderedFields returns the fields sorted by order, ties broken by insertion.
func (v *View) OrderedFields() []Fielder {
	out := make([]Fielder, 0, len(v.slots))
	for _, name := range v.slots {
		out = append(out, v.fields[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, _ := out[i].field().Order()
		oj, _ := out[j].field().Order()
		return oi < oj
	})
	return out
}

// FieldsOfType returns the fields whose type tag equals typ.
func (v *View) FieldsOfType(typ string) map[string]Fielder {
	out := make(map[string]Fielder)
	for name, f := range v.fields {
		if f.Type() == typ {
			out[name] = f
		}
	}
	return out
}

// References returns the Reference and ReferenceMany fields.
func (v *View) References() map[string]Fielder {
	out := make(map[string]Fielder)
	for name, f := range v.fields {
		if k := f.Kind(); k == KindReference || k == KindReferenceMany {
			out[name] = f
		}
	}
	return out
}

// PlainFields returns the fields that are not links.
func (v *View) PlainFields() map[string]*Field {
	out := make(map[string]*Field)
	for name, f := range v.fields {
		if f.Kind() == KindField {
			out[name] = f.field()
		}
	}
	return out
}

// Identifier resolves the identifier field. In order of preference: the
// entity's explicit identifier when the view holds a field of that name, the
// first field flagged as identifier, the entity's identifier itself.
func (v *View) Identifier() (*Field, bool) {
	var explicit *Field
	if v.entity != nil {
		explicit, _ = v.entity.Identifier()
	}
	if explicit != nil {
		if f, ok := v.fields[explicit.Name()]; ok {
			return f.field(), true
		}
	}
	for _, name := range v.slots {
		if f := v.fields[name].field(); f.Identifier() {
			return f, true
		}
	}
	if explicit != nil {
		return explicit, true
	}
	return nil, false
}

// MapEntry builds an entry from one raw record. Keys without a field pass
// through unchanged; every field then stores its mapped value, in insertion
// order, so later map stages can read earlier results from the entry.
func (v *View) MapEntry(record map[string]any) Entry {
	entry := Entry{Values: maps.Clone(record)}
	if entry.Values == nil {
		entry.Values = make(map[string]any)
	}
	if id, ok := v.Identifier(); ok {
		entry.IdentifierValue = id.MappedValue(record[id.Name()], &entry)
	}
	for _, name := range v.slots {
		f := v.fields[name].field()
		entry.Values[name] = f.MappedValue(record[name], &entry)
	}
	return entry
}

// MapEntries maps every record, preserving order.
func (v *View) MapEntries(records []map[string]any) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, v.MapEntry(r))
	}
	return out
}
