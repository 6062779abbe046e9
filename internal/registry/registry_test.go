package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincfg/internal/dsl"
)

const usersDSL = "entity users:\n  id: int identifier\n  name: string\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T) (dslDir, enumsDir string) {
	t.Helper()
	root := t.TempDir()
	dslDir = filepath.Join(root, "dsl")
	enumsDir = filepath.Join(root, "enums")
	writeFile(t, filepath.Join(dslDir, "users.dsl"), usersDSL)
	writeFile(t, filepath.Join(dslDir, "blog", "posts.dsl"),
		"entity Posts:\n  id: int identifier\n  status: choice(status)\n  author: ref[users.name]\n")
	writeFile(t, filepath.Join(enumsDir, "status.yaml"), "items:\n  - code: draft\n  - code: live\n")
	return dslDir, enumsDir
}

func entityNames(entities []*dsl.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name())
	}
	return out
}

func TestNew(t *testing.T) {
	dslDir, enumsDir := setup(t)

	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Posts", "users"}, entityNames(r.Entities()))
	assert.Equal(t, []string{"status"}, r.Catalog().Names())

	posts, ok := r.Lookup("Posts")
	require.True(t, ok)
	fl, ok := posts.View(dsl.ViewList).Field("status")
	require.True(t, ok)
	assert.Len(t, fl.(*dsl.Field).Choices(), 2)
}

func TestNewErrors(t *testing.T) {
	dslDir, _ := setup(t)

	_, err := New(dslDir, "", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalogs are loaded")

	_, err = New(dslDir, filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load enum catalogs")
}

func TestLookup(t *testing.T) {
	dslDir, enumsDir := setup(t)
	writeFile(t, filepath.Join(dslDir, "tags.dsl"), "entity tags:\n  id: int\nentity TAGS:\n  id: int\n")

	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"users", "users", true},
		{" users ", "users", true},
		{"USERS", "users", true},
		{"posts", "Posts", true},
		{"tags", "tags", true},
		{"Tags", "", false},
		{"", "", false},
		{"comments", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := r.Lookup(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, e.Name())
			}
		})
	}
}

func TestReload(t *testing.T) {
	dslDir, enumsDir := setup(t)
	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	var calls int
	var got []string
	r.OnChange(func(entities []*dsl.Entity) {
		calls++
		got = entityNames(entities)
	})

	writeFile(t, filepath.Join(dslDir, "tags.dsl"), "entity tags:\n  id: int identifier\n")
	require.NoError(t, r.Reload())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Posts", "tags", "users"}, got)
	assert.Len(t, r.Entities(), 3)

	// a broken file keeps the previous definitions
	writeFile(t, filepath.Join(dslDir, "tags.dsl"), "entity tags:\n  id: ref[nope.id]\n")
	require.Error(t, r.Reload())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Posts", "tags", "users"}, entityNames(r.Entities()))
	_, ok := r.Lookup("tags")
	assert.True(t, ok)
}

func TestOnChangeRunsEveryListener(t *testing.T) {
	dslDir, enumsDir := setup(t)
	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	var order []string
	r.OnChange(func([]*dsl.Entity) { order = append(order, "first") })
	r.OnChange(func([]*dsl.Entity) {
		order = append(order, "second")
		// registering from a listener must not deadlock
		r.OnChange(func([]*dsl.Entity) { order = append(order, "late") })
	})

	require.NoError(t, r.Reload())
	assert.Equal(t, []string{"first", "second"}, order)

	require.NoError(t, r.Reload())
	assert.Equal(t, []string{"first", "second", "first", "second", "late"}, order)
}

func TestEntitiesReturnsCopy(t *testing.T) {
	dslDir, enumsDir := setup(t)
	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	list := r.Entities()
	list[0] = nil
	assert.NotNil(t, r.Entities()[0])
}

func TestWatchReloadsOnChange(t *testing.T) {
	dslDir, enumsDir := setup(t)
	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	var reloads atomic.Int32
	r.OnChange(func([]*dsl.Entity) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Watch(ctx))
	defer r.Stop()

	writeFile(t, filepath.Join(dslDir, "blog", "comments.dsl"), "entity comments:\n  id: int identifier\n")

	require.Eventually(t, func() bool {
		_, ok := r.Lookup("comments")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))

	// unrelated files do not trigger a reload
	time.Sleep(200 * time.Millisecond)
	before := reloads.Load()
	writeFile(t, filepath.Join(dslDir, "notes.txt"), "scratch")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before, reloads.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	dslDir, enumsDir := setup(t)
	r, err := New(dslDir, enumsDir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, r.Watch(context.Background()))
	r.Stop()
	r.Stop()
}

func TestWithOptions(t *testing.T) {
	dslDir, enumsDir := setup(t)
	writeFile(t, filepath.Join(dslDir, "users.dsl"), "entity users:\n  id: int identifier\n  name: string map=shout\n")

	tr := dsl.DefaultTransforms()
	tr.Register("shout", func(v any, _ *dsl.Entry) any { return v.(string) + "!" })

	r, err := New(dslDir, enumsDir, zerolog.Nop(), WithTransforms(tr), WithNamer(dsl.NewULIDNamer(nil, nil)))
	require.NoError(t, err)

	users, ok := r.Lookup("users")
	require.True(t, ok)
	fl, _ := users.View(dsl.ViewList).Field("name")
	assert.Equal(t, "hi!", fl.(*dsl.Field).MappedValue("hi", &dsl.Entry{}))
}
