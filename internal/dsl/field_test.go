package dsl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNamer struct {
	names []string
	next  int
}

func (n *fixedNamer) NewName() string {
	name := n.names[n.next%len(n.names)]
	n.next++
	return name
}

func TestNewFieldDefaults(t *testing.T) {
	f := NewField("post_id")

	assert.Equal(t, "post_id", f.Name())
	assert.Equal(t, "Post Id", f.Label())
	assert.Equal(t, TypeString, f.Type())
	assert.Equal(t, KindField, f.Kind())
	assert.True(t, f.Editable())
	assert.False(t, f.Identifier())
	assert.False(t, f.IsDetailLink())
	assert.Equal(t, "edit", f.DetailLinkRoute())
	assert.Equal(t, "yyyy-MM-dd", f.Format())
	assert.True(t, f.List())
	assert.True(t, f.Dashboard())
	assert.Nil(t, f.DefaultValue())
	assert.Empty(t, f.Choices())
	assert.Empty(t, f.Attributes())
	assert.False(t, f.HasMaps())
	assert.Equal(t, UploadInformation{URL: "/upload", Accept: "*"}, f.UploadInformation())
	assert.Equal(t, map[string]any{"required": false, "minlength": 0, "maxlength": 99999}, f.Validation())
	assert.Equal(t, "field-value", f.Parse()("field-value"))

	_, hasOrder := f.Order()
	assert.False(t, hasOrder)
}

func TestNewFieldWithoutName(t *testing.T) {
	t.Run("injected namer", func(t *testing.T) {
		f := NewField("", WithNamer(&fixedNamer{names: []string{"k3x9q2"}}))
		assert.Equal(t, "k3x9q2", f.Name())
		assert.Equal(t, "K3x9q2", f.Label())
	})

	t.Run("default namer", func(t *testing.T) {
		f := NewField("")
		require.NotEmpty(t, f.Name())
		assert.Equal(t, CamelCase(f.Name()), f.Label())
	})
}

func TestDetailLinkDefault(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"id", true},
		{"post_id", false},
		{"ID", false},
		{"title", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewField(tt.name).IsDetailLink())
		})
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"title", "Title"},
		{"post_id", "Post Id"},
		{"firstName", "FirstName"},
		{"a-b.c d", "A B C D"},
		{"trailing_", "Trailing_"},
		{"élan_vital", "Élan Vital"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelCase(tt.in))
		})
	}
}

func TestFieldSettersChain(t *testing.T) {
	f := NewField("published_at").
		SetType(TypeDate).
		SetLabel("Published").
		SetEditable(false).
		SetOrder(4).
		SetIdentifier(true).
		SetFormat("dd/MM/yyyy").
		SetDetailLink(true).
		SetDetailLinkRoute("show").
		SetList(false).
		SetDashboard(false).
		SetDefaultValue("2024-01-01")

	order, ok := f.Order()
	require.True(t, ok)
	assert.Equal(t, 4, order)
	assert.Equal(t, TypeDate, f.Type())
	assert.Equal(t, "Published", f.Label())
	assert.False(t, f.Editable())
	assert.True(t, f.Identifier())
	assert.Equal(t, "dd/MM/yyyy", f.Format())
	assert.True(t, f.IsDetailLink())
	assert.Equal(t, "show", f.DetailLinkRoute())
	assert.False(t, f.List())
	assert.False(t, f.Dashboard())
	assert.Equal(t, "2024-01-01", f.DefaultValue())
	// the label was derived once; renaming is impossible
	assert.Equal(t, "published_at", f.Name())
}

func TestValidationMerge(t *testing.T) {
	f := NewField("title")

	f.SetValidation(map[string]any{"required": true, "pattern": "^[a-z]+$"})
	assert.Equal(t, map[string]any{
		"required":  true,
		"minlength": 0,
		"maxlength": 99999,
		"pattern":   "^[a-z]+$",
	}, f.Validation())

	f.SetValidation(map[string]any{"pattern": nil, "maxlength": 20})
	assert.Equal(t, map[string]any{"required": true, "minlength": 0, "maxlength": 20}, f.Validation())

	// deleting a rule that does not exist is a no-op
	f.SetValidation(map[string]any{"unknown": nil})
	assert.Len(t, f.Validation(), 3)
}

func TestValidationSetThenUnsetRestores(t *testing.T) {
	f := NewField("title").SetValidation(map[string]any{"required": nil})
	before := f.Validation()

	f.SetValidation(map[string]any{"required": true})
	assert.Equal(t, true, f.Validation()["required"])

	f.SetValidation(map[string]any{"required": nil})
	assert.Equal(t, before, f.Validation())
}

func TestNestedDefaultsAreNotShared(t *testing.T) {
	a := NewField("a")
	b := NewField("b")

	a.SetValidation(map[string]any{"required": true})
	a.Attributes()["placeholder"] = "type here"

	assert.Equal(t, false, b.Validation()["required"])
	assert.Empty(t, b.Attributes())
	assert.Equal(t, false, fieldDefaults[keyValidation].(map[string]any)["required"])

	// the getter hands out a copy
	v := a.Validation()
	v["required"] = false
	assert.Equal(t, true, a.Validation()["required"])
}

func TestMappedValue(t *testing.T) {
	f := NewField("count")
	assert.Equal(t, 3, f.MappedValue(3, &Entry{}))

	f.Map(func(v any, _ *Entry) any { return v.(int) + 1 }).
		Map(func(v any, _ *Entry) any { return v.(int) * 2 })
	require.True(t, f.HasMaps())
	assert.Equal(t, 8, f.MappedValue(3, &Entry{}))

	withEntry := NewField("full").Map(func(v any, e *Entry) any {
		return e.Values["first"].(string) + " " + v.(string)
	})
	entry := &Entry{Values: map[string]any{"first": "Ada"}}
	assert.Equal(t, "Ada Lovelace", withEntry.MappedValue("Lovelace", entry))
	assert.Equal(t, map[string]any{"first": "Ada"}, entry.Values)
}

func TestCSSClassesFor(t *testing.T) {
	tests := []struct {
		name    string
		classes any
		want    string
	}{
		{"default", nil, ""},
		{"string", "bold wide", "bold wide"},
		{"slice", []string{"bold", "wide"}, "bold wide"},
		{"decoded list", []any{"bold", "wide", 3}, "bold wide 3"},
		{"func", func(entry any) string { return "row-" + entry.(string) }, "row-7"},
		{"typed func", CSSFunc(func(any) string { return "typed" }), "typed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField("x")
			if tt.classes != nil {
				f.SetCSSClasses(tt.classes)
			}
			assert.Equal(t, tt.want, f.CSSClassesFor("7"))
		})
	}
}

func TestTemplateValue(t *testing.T) {
	f := NewField("x")
	assert.Equal(t, "", f.TemplateValue(nil))

	f.SetTemplate("constant")
	assert.Equal(t, "constant", f.TemplateValue(map[string]any{"x": 1}))

	f.SetTemplate(func(data any) any { return data.(map[string]any)["x"] })
	assert.Equal(t, 1, f.TemplateValue(map[string]any{"x": 1}))
}

func TestLabelForChoice(t *testing.T) {
	f := NewField("status").SetType(TypeChoice).SetChoices([]Choice{
		{Value: 1, Label: "One"},
		{Value: "2", Label: "Two"},
		{Value: true, Label: "Yes"},
		{Value: 1, Label: "Duplicate"},
	})

	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{"same type", 1, "One", true},
		{"string for number", "1", "One", true},
		{"number for string", 2, "Two", true},
		{"float for string", 2.0, "Two", true},
		{"bool", "true", "Yes", true},
		{"no match", 3, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.LabelForChoice(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsEditLinkIsDeprecatedAlias(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	f := NewField("title")
	assert.False(t, f.IsEditLink())

	f.SetEditLink(true)
	assert.True(t, f.IsDetailLink())
	assert.True(t, f.IsEditLink())

	assert.Equal(t, 3, strings.Count(buf.String(), "deprecated"))
}

func TestChoicesAreCopied(t *testing.T) {
	choices := []Choice{{Value: "a", Label: "A"}}
	f := NewField("x").SetChoices(choices)
	choices[0].Label = "changed"
	assert.Equal(t, "A", f.Choices()[0].Label)
}
