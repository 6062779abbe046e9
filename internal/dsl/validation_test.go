package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field+":"+e.Code)
	}
	return out
}

func validationView() *View {
	return NewView(ViewEdit).AddFields(
		NewField("id").SetEditable(false).SetValidation(map[string]any{"required": true}),
		NewField("title").SetValidation(map[string]any{"required": true, "minlength": 3, "maxlength": 10}),
		NewField("slug").SetValidation(map[string]any{"pattern": "^[a-z-]+$"}),
		NewField("views").SetType(TypeInt),
		NewField("rating").SetType(TypeFloat),
		NewField("published").SetType(TypeBoolean),
		NewField("status").SetType(TypeChoice).SetChoices([]Choice{
			{Value: "draft", Label: "Draft"},
			{Value: "live", Label: "Live"},
		}),
		NewField("tags").SetType(TypeChoices).SetChoices([]Choice{
			{Value: "go", Label: "Go"},
			{Value: "js", Label: "JS"},
		}),
	)
}

func TestValidateValidEntry(t *testing.T) {
	entry := Entry{Values: map[string]any{
		"title":     "Hello",
		"slug":      "hello-world",
		"views":     float64(12),
		"rating":    "4.5",
		"published": "yes",
		"status":    "live",
		"tags":      []any{"go", "js"},
	}}
	assert.Empty(t, Validate(validationView(), entry))
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   []string
	}{
		{"required missing", map[string]any{}, []string{"title:required"}},
		{"required empty string", map[string]any{"title": ""}, []string{"title:required"}},
		{"too short", map[string]any{"title": "Hi"}, []string{"title:minlength"}},
		{"too long", map[string]any{"title": "Hello there world"}, []string{"title:maxlength"}},
		{"rune length", map[string]any{"title": "ééééé"}, nil},
		{"pattern", map[string]any{"title": "Hello", "slug": "Not Slug"}, []string{"slug:pattern"}},
		{"int", map[string]any{"title": "Hello", "views": 1.5}, []string{"views:type_mismatch"}},
		{"float", map[string]any{"title": "Hello", "rating": "high"}, []string{"rating:type_mismatch"}},
		{"bool", map[string]any{"title": "Hello", "published": "perhaps"}, []string{"published:type_mismatch"}},
		{"choice", map[string]any{"title": "Hello", "status": "archived"}, []string{"status:choice_invalid"}},
		{"choices not array", map[string]any{"title": "Hello", "tags": "go"}, []string{"tags:type_mismatch"}},
		{"choices member", map[string]any{"title": "Hello", "tags": []any{"go", "rust", "c"}}, []string{"tags:choice_invalid"}},
		{"read-only skipped", map[string]any{"title": "Hello", "id": nil}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(validationView(), Entry{Values: tt.values})
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, codes(errs))
		})
	}
}

func TestValidateInvalidPattern(t *testing.T) {
	v := NewView(ViewEdit).AddField(NewField("code").SetValidation(map[string]any{"pattern": "(["}))
	errs := Validate(v, Entry{Values: map[string]any{"code": "x"}})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrPattern, errs[0].Code)
	assert.Contains(t, errs[0].Message, "invalid pattern")
}

func TestValidateRequiredFromString(t *testing.T) {
	v := NewView(ViewEdit).AddField(NewField("name").SetValidation(map[string]any{"required": "true"}))
	assert.Equal(t, []string{"name:required"}, codes(Validate(v, Entry{})))
}

func TestValidateMappedEntry(t *testing.T) {
	v := NewView(ViewCreate).AddField(
		NewField("title").
			SetValidation(map[string]any{"required": true}).
			Map(DefaultTransforms().Get("trim")),
	)
	entry := v.MapEntry(map[string]any{"title": "   "})
	assert.Equal(t, []string{"title:required"}, codes(Validate(v, entry)))
}
