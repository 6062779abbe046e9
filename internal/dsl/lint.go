package dsl

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Issue is one contradiction found in a set of entity definitions.
type Issue struct {
	Entity  string `json:"entity" yaml:"entity"`
	View    string `json:"view,omitempty" yaml:"view,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Lint issue codes.
const (
	IssueIdentifierMultiple = "identifier_multiple"
	IssueIdentifierMissing  = "identifier_missing"
	IssueChoicesEmpty       = "choices_empty"
	IssueTargetMissing      = "reference_target_missing"
	IssueOrderDuplicate     = "order_duplicate"
)

// Lint checks every view of every entity for basic contradictions.
func Lint(entities []*Entity) []Issue {
	var issues []Issue

	for _, e := range entities {
		for _, v := range e.Views() {
			issues = append(issues, lintView(e, v)...)
		}
	}
	return issues
}

func lintView(e *Entity, v *View) []Issue {
	var issues []Issue
	add := func(field, code, msg string) {
		issues = append(issues, Issue{Entity: e.Name(), View: v.Name(), Field: field, Code: code, Message: msg})
	}

	var flagged []string
	byOrder := map[int][]string{}
	for _, fl := range v.OrderedFields() {
		f := fl.field()
		if f.Identifier() {
			flagged = append(flagged, f.Name())
		}
		if o, ok := f.Order(); ok {
			byOrder[o] = append(byOrder[o], f.Name())
		}

		if (f.Type() == TypeChoice || f.Type() == TypeChoices) && len(f.Choices()) == 0 {
			add(f.Name(), IssueChoicesEmpty, "choice field has no choices")
		}

		switch r := fl.(type) {
		case *Reference:
			if r.TargetEntity() == nil || r.TargetField() == nil {
				add(f.Name(), IssueTargetMissing, "reference has no target entity or target field")
			}
		case *ReferenceMany:
			if r.TargetEntity() == nil || r.TargetField() == nil {
				add(f.Name(), IssueTargetMissing, "reference_many has no target entity or target field")
			}
		}
	}

	if len(flagged) > 1 {
		add(strings.Join(flagged, ","), IssueIdentifierMultiple,
			fmt.Sprintf("%d fields flagged as identifier: %s", len(flagged), strings.Join(flagged, ", ")))
	}
	if _, ok := v.Identifier(); !ok && v.Len() > 0 {
		add("", IssueIdentifierMissing, "no identifier field: flag one or set it on the entity")
	}
	for _, o := range slices.Sorted(maps.Keys(byOrder)) {
		if names := byOrder[o]; len(names) > 1 {
			add(strings.Join(names, ","), IssueOrderDuplicate, fmt.Sprintf("fields share order %d", o))
		}
	}
	return issues
}
