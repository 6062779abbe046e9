package dsl

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenRe = regexp.MustCompile(`^[0-9a-z]{6}$`)

func seededNamer(seed int64) *ULIDNamer {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entropy := ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
	return NewULIDNamer(entropy, func() time.Time { return clock })
}

func TestULIDNamerIsReproducible(t *testing.T) {
	a := seededNamer(42)
	b := seededNamer(42)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := a.NewName()
		require.Regexp(t, tokenRe, name)
		assert.Equal(t, name, b.NewName())
		assert.False(t, seen[name], "duplicate token %s", name)
		seen[name] = true
	}
}

func TestULIDNamerDefaults(t *testing.T) {
	n := NewULIDNamer(nil, nil)
	for i := 0; i < 10; i++ {
		assert.Regexp(t, tokenRe, n.NewName())
	}
}

func TestFieldsWithoutNameGetDistinctNames(t *testing.T) {
	n := seededNamer(7)
	a := NewField("", WithNamer(n))
	b := NewField("", WithNamer(n))
	assert.NotEqual(t, a.Name(), b.Name())

	r := NewReference("", WithNamer(n))
	assert.Regexp(t, tokenRe, r.Name())
	assert.Equal(t, CamelCase(r.Name()), r.Label())
}
