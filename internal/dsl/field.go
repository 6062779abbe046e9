package dsl

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
)

// MapFunc is one stage of a field's transformation pipeline.
// entry is the entry being built; stages may read values computed before them.
type MapFunc func(value any, entry *Entry) any

// TemplateFunc computes a display value from the data it is given.
type TemplateFunc func(data any) any

// CSSFunc computes CSS classes for an entry.
type CSSFunc func(entry any) string

// ParseFunc converts an edited value back into its stored form.
type ParseFunc func(value any) any

// Choice is one selectable value of a choice field.
type Choice struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// UploadInformation is read by the upload widget; nothing here uploads.
type UploadInformation struct {
	URL    string `json:"url" yaml:"url"`
	Accept string `json:"accept" yaml:"accept"`
}

// Kind tells plain fields apart from link fields.
type Kind int

const (
	KindField Kind = iota
	KindReference
	KindReferenceMany
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindReferenceMany:
		return "reference_many"
	default:
		return "field"
	}
}

// Fielder is anything a View can hold: *Field, *Reference or *ReferenceMany.
// The set is closed; field() can only be implemented in this package.
type Fielder interface {
	Kind() Kind
	Name() string
	Type() string
	field() *Field
}

// Field type tags used by the loader and by default for the link variants.
const (
	TypeString        = "string"
	TypeText          = "text"
	TypeNumber        = "number"
	TypeInt           = "int"
	TypeFloat         = "float"
	TypeBoolean       = "boolean"
	TypeDate          = "date"
	TypeChoice        = "choice"
	TypeChoices       = "choices"
	TypeFile          = "file"
	TypeReference     = "reference"
	TypeReferenceMany = "reference_many"
)

const (
	keyName              = "name"
	keyType              = "type"
	keyLabel             = "label"
	keyEditable          = "editable"
	keyOrder             = "order"
	keyIdentifier        = "identifier"
	keyFormat            = "format"
	keyParse             = "parse"
	keyTemplate          = "template"
	keyIsDetailLink      = "isDetailLink"
	keyDetailLinkRoute   = "detailLinkRoute"
	keyList              = "list"
	keyDashboard         = "dashboard"
	keyValidation        = "validation"
	keyChoices           = "choices"
	keyDefaultValue      = "defaultValue"
	keyAttributes        = "attributes"
	keyCSSClasses        = "cssClasses"
	keyUploadInformation = "uploadInformation"
)

func identityParse(v any) any { return v }

func emptyTemplate(any) any { return "" }

var fieldDefaults = Defaults{
	keyType:            TypeString,
	keyEditable:        true,
	keyIdentifier:      false,
	keyFormat:          "yyyy-MM-dd",
	keyParse:           ParseFunc(identityParse),
	keyTemplate:        TemplateFunc(emptyTemplate),
	keyIsDetailLink:    false,
	keyDetailLinkRoute: "edit",
	keyList:            true,
	keyDashboard:       true,
	keyValidation: map[string]any{
		"required":  false,
		"minlength": 0,
		"maxlength": 99999,
	},
	keyChoices:           []Choice{},
	keyDefaultValue:      nil,
	keyAttributes:        map[string]any{},
	keyCSSClasses:        "",
	keyUploadInformation: UploadInformation{URL: "/upload", Accept: "*"},
}

// Field describes one data attribute of an entity.
type Field struct {
	Configurable
	kind Kind
	maps []MapFunc
}

type fieldOptions struct {
	namer Namer
}

// FieldOption configures construction.
type FieldOption func(*fieldOptions)

// WithNamer draws the name of an unnamed field from n.
func WithNamer(n Namer) FieldOption {
	return func(o *fieldOptions) { o.namer = n }
}

// NewField builds a field. An empty name is replaced by a generated token.
// Label and detail-link flag are derived from the name here and only here.
func NewField(name string, opts ...FieldOption) *Field {
	return newField(KindField, name, opts...)
}

func newField(kind Kind, name string, opts ...FieldOption) *Field {
	o := fieldOptions{namer: defaultNamer}
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		name = o.namer.NewName()
	}
	f := &Field{Configurable: newConfigurable(fieldDefaults), kind: kind}
	f.set(keyName, name)
	f.set(keyLabel, CamelCase(name))
	f.set(keyIsDetailLink, name == "id")
	return f
}

func (f *Field) field() *Field { return f }

func (f *Field) Kind() Kind { return f.kind }

func (f *Field) Name() string { return get[string](&f.Configurable, keyName) }

func (f *Field) Type() string { return get[string](&f.Configurable, keyType) }

func (f *Field) SetType(t string) *Field {
	f.set(keyType, t)
	return f
}

func (f *Field) Label() string { return get[string](&f.Configurable, keyLabel) }

func (f *Field) SetLabel(label string) *Field {
	f.set(keyLabel, label)
	return f
}

func (f *Field) Editable() bool { return get[bool](&f.Configurable, keyEditable) }

func (f *Field) SetEditable(b bool) *Field {
	f.set(keyEditable, b)
	return f
}

// Order returns the display order; ok is false until one is set or assigned by a View.
func (f *Field) Order() (order int, ok bool) {
	order, ok = f.values[keyOrder].(int)
	return order, ok
}

func (f *Field) SetOrder(order int) *Field {
	f.set(keyOrder, order)
	return f
}

func (f *Field) Identifier() bool { return get[bool](&f.Configurable, keyIdentifier) }

func (f *Field) SetIdentifier(b bool) *Field {
	f.set(keyIdentifier, b)
	return f
}

func (f *Field) Format() string { return get[string](&f.Configurable, keyFormat) }

func (f *Field) SetFormat(format string) *Field {
	f.set(keyFormat, format)
	return f
}

func (f *Field) Parse() ParseFunc { return get[ParseFunc](&f.Configurable, keyParse) }

func (f *Field) SetParse(fn ParseFunc) *Field {
	f.set(keyParse, fn)
	return f
}

// Template returns the raw template configuration: a TemplateFunc or a constant.
func (f *Field) Template() any { return f.Get(keyTemplate) }

func (f *Field) SetTemplate(tpl any) *Field {
	if fn, ok := tpl.(func(any) any); ok {
		tpl = TemplateFunc(fn)
	}
	f.set(keyTemplate, tpl)
	return f
}

func (f *Field) IsDetailLink() bool { return get[bool](&f.Configurable, keyIsDetailLink) }

func (f *Field) SetDetailLink(b bool) *Field {
	f.set(keyIsDetailLink, b)
	return f
}

// IsEditLink reports the detail-link flag.
//
// Deprecated: use IsDetailLink.
func (f *Field) IsEditLink() bool {
	log.Warn().Str("field", f.Name()).Msg("Field.IsEditLink() is deprecated - use Field.IsDetailLink() instead")
	return f.IsDetailLink()
}

// SetEditLink sets the detail-link flag.
//
// Deprecated: use SetDetailLink.
func (f *Field) SetEditLink(b bool) *Field {
	log.Warn().Str("field", f.Name()).Msg("Field.SetEditLink() is deprecated - use Field.SetDetailLink() instead")
	return f.SetDetailLink(b)
}

func (f *Field) DetailLinkRoute() string { return get[string](&f.Configurable, keyDetailLinkRoute) }

func (f *Field) SetDetailLinkRoute(route string) *Field {
	f.set(keyDetailLinkRoute, route)
	return f
}

func (f *Field) List() bool { return get[bool](&f.Configurable, keyList) }

func (f *Field) SetList(b bool) *Field {
	f.set(keyList, b)
	return f
}

func (f *Field) Dashboard() bool { return get[bool](&f.Configurable, keyDashboard) }

func (f *Field) SetDashboard(b bool) *Field {
	f.set(keyDashboard, b)
	return f
}

// Validation returns a copy of the validation rules.
func (f *Field) Validation() map[string]any {
	return maps.Clone(get[map[string]any](&f.Configurable, keyValidation))
}

// SetValidation merges rules into the current ones.
// A nil value deletes the rule; rules not named are kept.
func (f *Field) SetValidation(rules map[string]any) *Field {
	current := get[map[string]any](&f.Configurable, keyValidation)
	if current == nil {
		current = map[string]any{}
		f.set(keyValidation, current)
	}
	for k, v := range rules {
		if v == nil {
			delete(current, k)
			continue
		}
		current[k] = v
	}
	return f
}

func (f *Field) Choices() []Choice { return get[[]Choice](&f.Configurable, keyChoices) }

func (f *Field) SetChoices(choices []Choice) *Field {
	f.set(keyChoices, append([]Choice(nil), choices...))
	return f
}

func (f *Field) DefaultValue() any { return f.Get(keyDefaultValue) }

func (f *Field) SetDefaultValue(v any) *Field {
	f.set(keyDefaultValue, v)
	return f
}

func (f *Field) Attributes() map[string]any { return get[map[string]any](&f.Configurable, keyAttributes) }

func (f *Field) SetAttributes(attrs map[string]any) *Field {
	f.set(keyAttributes, deepCopy(attrs))
	return f
}

// CSSClasses returns the raw configuration: a CSSFunc, a []string or a string.
func (f *Field) CSSClasses() any { return f.Get(keyCSSClasses) }

func (f *Field) SetCSSClasses(classes any) *Field {
	if fn, ok := classes.(func(any) string); ok {
		classes = CSSFunc(fn)
	}
	f.set(keyCSSClasses, classes)
	return f
}

func (f *Field) UploadInformation() UploadInformation {
	return get[UploadInformation](&f.Configurable, keyUploadInformation)
}

func (f *Field) SetUploadInformation(info UploadInformation) *Field {
	f.set(keyUploadInformation, info)
	return f
}

// Map appends fn to the transformation pipeline.
func (f *Field) Map(fn MapFunc) *Field {
	f.maps = append(f.maps, fn)
	return f
}

func (f *Field) HasMaps() bool { return len(f.maps) > 0 }

// MappedValue runs value through every map stage in order.
func (f *Field) MappedValue(value any, entry *Entry) any {
	for _, fn := range f.maps {
		value = fn(value, entry)
	}
	return value
}

// CSSClassesFor resolves the CSS configuration for entry.
func (f *Field) CSSClassesFor(entry any) string {
	switch c := f.CSSClasses().(type) {
	case nil:
		return ""
	case CSSFunc:
		return c(entry)
	case []string:
		return strings.Join(c, " ")
	case []any:
		parts := make([]string, 0, len(c))
		for _, v := range c {
			parts = append(parts, toString(v))
		}
		return strings.Join(parts, " ")
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// TemplateValue resolves the template against data.
func (f *Field) TemplateValue(data any) any {
	if fn, ok := f.Template().(TemplateFunc); ok {
		return fn(data)
	}
	return f.Template()
}

// LabelForChoice returns the label of the first choice loosely equal to value.
func (f *Field) LabelForChoice(value any) (string, bool) {
	for _, c := range f.Choices() {
		if looseEqual(c.Value, value) {
			return c.Label, true
		}
	}
	return "", false
}

// looseEqual compares like values directly and everything else by string form,
// so 1 and "1" match.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == tb && ta.Comparable() {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
