// Package render turns entities, views and entries into plain data and
// writes it as JSON or YAML.
package render

import (
	"admincfg/internal/dsl"
)

// FieldMeta is the serializable description of one field.
// Functions (maps, template/css functions, parse) are not representable and
// only show up as HasMaps / empty values.
type FieldMeta struct {
	Name            string                `json:"name" yaml:"name"`
	Type            string                `json:"type" yaml:"type"`
	Kind            string                `json:"kind" yaml:"kind"`
	Label           string                `json:"label" yaml:"label"`
	Order           int                   `json:"order" yaml:"order"`
	Identifier      bool                  `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Editable        bool                  `json:"editable" yaml:"editable"`
	DetailLink      bool                  `json:"detailLink,omitempty" yaml:"detailLink,omitempty"`
	DetailLinkRoute string                `json:"detailLinkRoute" yaml:"detailLinkRoute"`
	List            bool                  `json:"list" yaml:"list"`
	Dashboard       bool                  `json:"dashboard" yaml:"dashboard"`
	Format          string                `json:"format,omitempty" yaml:"format,omitempty"`
	Validation      map[string]any        `json:"validation,omitempty" yaml:"validation,omitempty"`
	Choices         []dsl.Choice          `json:"choices,omitempty" yaml:"choices,omitempty"`
	DefaultValue    any                   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Attributes      map[string]any        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	CSSClasses      string                `json:"cssClasses,omitempty" yaml:"cssClasses,omitempty"`
	Template        any                   `json:"template,omitempty" yaml:"template,omitempty"`
	Upload          dsl.UploadInformation `json:"upload" yaml:"upload"`
	HasMaps         bool                  `json:"hasMaps,omitempty" yaml:"hasMaps,omitempty"`
	TargetEntity    string                `json:"targetEntity,omitempty" yaml:"targetEntity,omitempty"`
	TargetField     string                `json:"targetField,omitempty" yaml:"targetField,omitempty"`
}

type ViewMeta struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Entity      string      `json:"entity,omitempty" yaml:"entity,omitempty"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Identifier  string      `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	PerPage     int         `json:"perPage" yaml:"perPage"`
	SortField   string      `json:"sortField,omitempty" yaml:"sortField,omitempty"`
	SortDir     string      `json:"sortDir" yaml:"sortDir"`
	Actions     []string    `json:"actions,omitempty" yaml:"actions,omitempty"`
	Fields      []FieldMeta `json:"fields" yaml:"fields"`
}

type EntityMeta struct {
	Name       string     `json:"name" yaml:"name"`
	Label      string     `json:"label" yaml:"label"`
	ReadOnly   bool       `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Identifier string     `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Views      []ViewMeta `json:"views" yaml:"views"`
}

// EntityListItem is one line of an entity listing.
type EntityListItem struct {
	Name  string   `json:"name" yaml:"name"`
	Label string   `json:"label" yaml:"label"`
	Views []string `json:"views" yaml:"views"`
}

// Targeter is implemented by *dsl.Reference and *dsl.ReferenceMany.
type Targeter interface {
	TargetEntity() *dsl.Entity
	TargetField() *dsl.Field
}

// DescribeField describes fl. Validation, choices and attributes are copies.
func DescribeField(fl dsl.Fielder) FieldMeta {
	f := baseField(fl)
	order, _ := f.Order()
	m := FieldMeta{
		Name:            f.Name(),
		Type:            f.Type(),
		Kind:            f.Kind().String(),
		Label:           f.Label(),
		Order:           order,
		Identifier:      f.Identifier(),
		Editable:        f.Editable(),
		DetailLink:      f.IsDetailLink(),
		DetailLinkRoute: f.DetailLinkRoute(),
		List:            f.List(),
		Dashboard:       f.Dashboard(),
		Validation:      f.Validation(),
		DefaultValue:    f.DefaultValue(),
		Upload:          f.UploadInformation(),
		HasMaps:         f.HasMaps(),
	}
	if f.Type() == dsl.TypeDate {
		m.Format = f.Format()
	}
	if c := f.Choices(); len(c) > 0 {
		m.Choices = append([]dsl.Choice(nil), c...)
	}
	if a := f.Attributes(); len(a) > 0 {
		m.Attributes = make(map[string]any, len(a))
		for k, v := range a {
			m.Attributes[k] = v
		}
	}
	if _, dynamic := f.CSSClasses().(dsl.CSSFunc); !dynamic {
		m.CSSClasses = f.CSSClassesFor(nil)
	}
	if _, dynamic := f.Template().(dsl.TemplateFunc); !dynamic {
		m.Template = f.Template()
	}
	if t, ok := fl.(Targeter); ok {
		if e := t.TargetEntity(); e != nil {
			m.TargetEntity = e.Name()
		}
		if tf := t.TargetField(); tf != nil {
			m.TargetField = tf.Name()
		}
	}
	return m
}

// baseField returns the *dsl.Field carrying fl's configuration.
func baseField(fl dsl.Fielder) *dsl.Field {
	switch t := fl.(type) {
	case *dsl.Field:
		return t
	case *dsl.Reference:
		return t.Field
	case *dsl.ReferenceMany:
		return t.Field
	}
	return nil
}

// DescribeView describes v with its fields in display order.
func DescribeView(v *dsl.View) ViewMeta {
	m := ViewMeta{
		Name:        v.Name(),
		Type:        string(v.Type()),
		Title:       v.Title(),
		Description: v.Description(),
		PerPage:     v.PerPage(),
		SortField:   v.SortField(),
		SortDir:     v.SortDir(),
		Actions:     v.Actions(),
		Fields:      make([]FieldMeta, 0, v.Len()),
	}
	if len(m.Actions) == 0 {
		m.Actions = nil
	}
	if e := v.Entity(); e != nil {
		m.Entity = e.Name()
	}
	if id, ok := v.Identifier(); ok {
		m.Identifier = id.Name()
	}
	for _, fl := range v.OrderedFields() {
		m.Fields = append(m.Fields, DescribeField(fl))
	}
	return m
}

// DescribeEntity describes e and all its views.
func DescribeEntity(e *dsl.Entity) EntityMeta {
	m := EntityMeta{
		Name:     e.Name(),
		Label:    e.Label(),
		ReadOnly: e.ReadOnly(),
		Views:    []ViewMeta{},
	}
	if id, ok := e.Identifier(); ok {
		m.Identifier = id.Name()
	}
	for _, v := range e.Views() {
		m.Views = append(m.Views, DescribeView(v))
	}
	return m
}

// ListEntities summarizes entities for listings.
func ListEntities(entities []*dsl.Entity) []EntityListItem {
	out := make([]EntityListItem, 0, len(entities))
	for _, e := range entities {
		item := EntityListItem{Name: e.Name(), Label: e.Label(), Views: []string{}}
		for _, v := range e.Views() {
			item.Views = append(item.Views, string(v.Type()))
		}
		out = append(out, item)
	}
	return out
}
