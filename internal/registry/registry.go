// Package registry keeps the loaded entity definitions and reloads them
// when the DSL or enum catalog files change.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"admincfg/internal/dsl"
	"admincfg/internal/reference"
)

// Registry provides thread-safe access to the current entity set.
type Registry struct {
	mu       sync.RWMutex
	dslDir   string
	enumsDir string
	opts     dsl.LoadOptions
	logger   zerolog.Logger

	entities []*dsl.Entity
	byName   map[string]*dsl.Entity
	catalog  reference.Catalog
	onChange []func([]*dsl.Entity)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option adjusts a Registry before the first load.
type Option func(*Registry)

// WithTransforms replaces the default transform registry used by the loader.
func WithTransforms(t *dsl.Transforms) Option {
	return func(r *Registry) { r.opts.Transforms = t }
}

// WithNamer sets the namer used for unnamed fields.
func WithNamer(n dsl.Namer) Option {
	return func(r *Registry) { r.opts.Namer = n }
}

// New loads dslDir (and enumsDir, when not empty) and returns the registry.
func New(dslDir, enumsDir string, logger zerolog.Logger, opts ...Option) (*Registry, error) {
	r := &Registry{
		dslDir:   dslDir,
		enumsDir: enumsDir,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	entities, catalog, err := r.load()
	if err != nil {
		return nil, err
	}
	r.swap(entities, catalog)
	return r, nil
}

func (r *Registry) load() ([]*dsl.Entity, reference.Catalog, error) {
	var catalog reference.Catalog
	if r.enumsDir != "" {
		c, err := reference.LoadEnumCatalog(r.enumsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("load enum catalogs: %w", err)
		}
		catalog = c
	}

	opts := r.opts
	if catalog != nil {
		opts.Choices = catalog
	}
	entities, err := dsl.LoadAllEntities(r.dslDir, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load entities: %w", err)
	}
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name() < entities[j].Name() })
	return entities, catalog, nil
}

func (r *Registry) swap(entities []*dsl.Entity, catalog reference.Catalog) {
	byName := make(map[string]*dsl.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name()] = e
	}
	r.mu.Lock()
	r.entities = entities
	r.byName = byName
	r.catalog = catalog
	r.mu.Unlock()
}

// Reload reads the definitions again. On failure the previous set is kept.
func (r *Registry) Reload() error {
	r.logger.Info().Str("dsl", r.dslDir).Str("enums", r.enumsDir).Msg("reloading definitions")

	entities, catalog, err := r.load()
	if err != nil {
		r.logger.Error().Err(err).Msg("reload failed, keeping previous definitions")
		return fmt.Errorf("reload: %w", err)
	}

	r.mu.RLock()
	oldCount := len(r.entities)
	r.mu.RUnlock()

	r.swap(entities, catalog)

	if oldCount != len(entities) {
		r.logger.Info().Int("old", oldCount).Int("new", len(entities)).Msg("entity count changed")
	}

	r.mu.RLock()
	listeners := slices.Clone(r.onChange)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(entities)
	}

	r.logger.Info().Int("entities", len(entities)).Msg("definitions reloaded")
	return nil
}

// Entities returns the current entities sorted by name.
func (r *Registry) Entities() []*dsl.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*dsl.Entity(nil), r.entities...)
}

// Catalog returns the current enum catalogs; nil when none are configured.
func (r *Registry) Catalog() reference.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// Lookup finds an entity by exact name first, then case-insensitively.
// A case-insensitive match must be unique.
func (r *Registry) Lookup(name string) (*dsl.Entity, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byName[name]; ok {
		return e, true
	}
	var found *dsl.Entity
	for n, e := range r.byName {
		if strings.EqualFold(n, name) {
			if found != nil {
				return nil, false
			}
			found = e
		}
	}
	return found, found != nil
}

// OnChange registers fn to run after every successful reload.
func (r *Registry) OnChange(fn func([]*dsl.Entity)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// Watch reloads on changes to *.dsl files under the DSL directory and to
// catalog files in the enums directory, until ctx is done or Stop is called.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify is not recursive: add every directory of the DSL tree
	err = filepath.WalkDir(r.dslDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", r.dslDir, err)
	}
	if r.enumsDir != "" {
		if err := watcher.Add(r.enumsDir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", r.enumsDir, err)
		}
	}

	r.mu.Lock()
	r.watcher = watcher
	r.mu.Unlock()

	go r.watchLoop(ctx, watcher)

	r.logger.Info().Str("dsl", r.dslDir).Str("enums", r.enumsDir).Msg("watching definitions for changes")
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.mu.Lock()
		if r.watcher != nil {
			r.watcher.Close()
		}
		r.mu.Unlock()
	})
}

func (r *Registry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("definition file changed")

			if err := r.Reload(); err != nil {
				r.logger.Error().Err(err).Msg("file watch reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			r.Stop()
			return

		case <-r.stopCh:
			return
		}
	}
}

func relevant(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".dsl", ".yaml", ".yml":
		return true
	}
	return false
}
