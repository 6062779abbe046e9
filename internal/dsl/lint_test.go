package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCodes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.View+"/"+is.Field+":"+is.Code)
	}
	return out
}

func TestLintClean(t *testing.T) {
	users := NewEntity("users")
	users.View(ViewList).AddFields(NewField("id").SetIdentifier(true), NewField("name"))

	posts := NewEntity("posts")
	posts.SetIdentifier(NewField("id"))
	owner := NewReference("owner").SetTargetEntity(users).SetTargetField(NewField("name"))
	posts.View(ViewList).AddFields(NewField("id"), owner)

	assert.Empty(t, Lint([]*Entity{users, posts}))
}

func TestLintEmptyViewHasNoIdentifierIssue(t *testing.T) {
	e := NewEntity("blank")
	e.View(ViewShow)
	assert.Empty(t, Lint([]*Entity{e}))
}

func TestLintIssues(t *testing.T) {
	e := NewEntity("posts")
	list := e.View(ViewList)
	list.AddFields(
		NewField("id").SetIdentifier(true),
		NewField("uuid").SetIdentifier(true).SetOrder(0),
		NewField("status").SetType(TypeChoice),
		NewReferenceMany("tags"),
	)
	e.View(ViewEdit).AddField(NewField("title"))

	issues := Lint([]*Entity{e})
	require.NotEmpty(t, issues)
	assert.Equal(t, []string{
		"posts_list/status:choices_empty",
		"posts_list/tags:reference_target_missing",
		"posts_list/id,uuid:identifier_multiple",
		"posts_list/id,uuid:order_duplicate",
		"posts_edit/:identifier_missing",
	}, issueCodes(issues))

	for _, is := range issues {
		assert.Equal(t, "posts", is.Entity)
		assert.NotEmpty(t, is.Message)
	}
}
