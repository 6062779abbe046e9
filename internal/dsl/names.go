package dsl

import (
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// Namer hands out names for fields constructed without one.
type Namer interface {
	NewName() string
}

// ULIDNamer derives short base-36 tokens from ULIDs.
// With a fixed clock and a seeded entropy source it is fully reproducible.
type ULIDNamer struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// tokenLen is the number of trailing (random) ULID runes kept in a token.
const tokenLen = 6

// NewULIDNamer returns a namer reading from entropy and clock.
// Nil arguments fall back to a time-seeded monotonic source and time.Now.
func NewULIDNamer(entropy io.Reader, now func() time.Time) *ULIDNamer {
	if entropy == nil {
		src := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = ulid.Monotonic(src, 0)
	}
	if now == nil {
		now = time.Now
	}
	return &ULIDNamer{entropy: entropy, now: now}
}

// NewName returns the lowercase tail of a fresh ULID.
// Crockford base32 is a subset of [0-9a-z], so the token is valid base-36.
func (n *ULIDNamer) NewName() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(n.now()), n.entropy).String()
	return strings.ToLower(id[len(id)-tokenLen:])
}

var defaultNamer Namer = NewULIDNamer(nil, nil)

// CamelCase turns an identifier into a display label:
// the first rune is upper-cased and every "-", "_", "." or whitespace
// followed by a rune becomes a space plus that rune upper-cased.
//
//	CamelCase("post_id") == "Post Id"
func CamelCase(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	first, size := utf8.DecodeRuneInString(s)
	b.WriteRune(unicode.ToUpper(first))

	rest := []rune(s[size:])
	for i := 0; i < len(rest); i++ {
		r := rest[i]
		if isSeparator(r) && i+1 < len(rest) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToUpper(rest[i+1]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
}
