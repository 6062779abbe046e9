package dsl

import "maps"

const (
	keyTargetEntity     = "targetEntity"
	keyTargetField      = "targetField"
	keySortField        = "sortField"
	keySortDir          = "sortDir"
	keyPerPage          = "perPage"
	keyPermanentFilters = "permanentFilters"
)

// link holds what Reference and ReferenceMany share on top of a Field.
type link struct {
	*Field
	targetEntity *Entity
	targetField  *Field
}

func newLink(kind Kind, typ, name string, opts ...FieldOption) link {
	f := newField(kind, name, opts...)
	f.SetType(typ)
	f.set(keySortField, "")
	f.set(keySortDir, "ASC")
	f.set(keyPerPage, 30)
	f.set(keyPermanentFilters, map[string]any{})
	return link{Field: f}
}

func (l *link) TargetEntity() *Entity { return l.targetEntity }

func (l *link) TargetField() *Field { return l.targetField }

func (l *link) SortField() string { return get[string](&l.Configurable, keySortField) }

func (l *link) SortDir() string { return get[string](&l.Configurable, keySortDir) }

func (l *link) PerPage() int { return get[int](&l.Configurable, keyPerPage) }

func (l *link) PermanentFilters() map[string]any {
	return maps.Clone(get[map[string]any](&l.Configurable, keyPermanentFilters))
}

// ChoicesFrom turns related entries into choices: the value is the entry
// identifier, the label the target field's value.
func (l *link) ChoicesFrom(entries []Entry) []Choice {
	name := ""
	if l.targetField != nil {
		name = l.targetField.Name()
	}
	out := make([]Choice, 0, len(entries))
	for _, e := range entries {
		label := ""
		if v, ok := e.Values[name]; ok && v != nil {
			label = toString(v)
		}
		out = append(out, Choice{Value: e.IdentifierValue, Label: label})
	}
	return out
}

// Reference links a field to a single entry of another entity.
type Reference struct {
	link
}

// NewReference builds a single-valued link field of type "reference".
func NewReference(name string, opts ...FieldOption) *Reference {
	return &Reference{link: newLink(KindReference, TypeReference, name, opts...)}
}

func (r *Reference) Kind() Kind { return KindReference }

func (r *Reference) SetTargetEntity(e *Entity) *Reference {
	r.targetEntity = e
	if e != nil {
		r.set(keyTargetEntity, e.Name())
	}
	return r
}

func (r *Reference) SetTargetField(f *Field) *Reference {
	r.targetField = f
	if f != nil {
		r.set(keyTargetField, f.Name())
	}
	return r
}

func (r *Reference) SetSortField(name string) *Reference {
	r.set(keySortField, name)
	return r
}

func (r *Reference) SetSortDir(dir string) *Reference {
	r.set(keySortDir, dir)
	return r
}

func (r *Reference) SetPerPage(n int) *Reference {
	r.set(keyPerPage, n)
	return r
}

func (r *Reference) SetPermanentFilters(filters map[string]any) *Reference {
	r.set(keyPermanentFilters, deepCopy(filters))
	return r
}

// ReferenceMany links a field to several entries of another entity.
type ReferenceMany struct {
	link
}

// NewReferenceMany builds a multi-valued link field of type "reference_many".
func NewReferenceMany(name string, opts ...FieldOption) *ReferenceMany {
	return &ReferenceMany{link: newLink(KindReferenceMany, TypeReferenceMany, name, opts...)}
}

func (r *ReferenceMany) Kind() Kind { return KindReferenceMany }

func (r *ReferenceMany) SetTargetEntity(e *Entity) *ReferenceMany {
	r.targetEntity = e
	if e != nil {
		r.set(keyTargetEntity, e.Name())
	}
	return r
}

func (r *ReferenceMany) SetTargetField(f *Field) *ReferenceMany {
	r.targetField = f
	if f != nil {
		r.set(keyTargetField, f.Name())
	}
	return r
}

func (r *ReferenceMany) SetSortField(name string) *ReferenceMany {
	r.set(keySortField, name)
	return r
}

func (r *ReferenceMany) SetSortDir(dir string) *ReferenceMany {
	r.set(keySortDir, dir)
	return r
}

func (r *ReferenceMany) SetPerPage(n int) *ReferenceMany {
	r.set(keyPerPage, n)
	return r
}

func (r *ReferenceMany) SetPermanentFilters(filters map[string]any) *ReferenceMany {
	r.set(keyPermanentFilters, deepCopy(filters))
	return r
}
