package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Manager holds the currently loaded rulesets by name and keeps them fresh
// by reloading from the source when watched files change. Lookups take a
// read lock; reloads atomically replace the whole map.
type Manager struct {
	source *FileSource
	logger *slog.Logger

	mu       sync.RWMutex
	rulesets map[string]*Ruleset

	watcher *Watcher
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewManager creates a manager and performs the initial load.
func NewManager(source *FileSource, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		source:   source,
		logger:   logger.With("component", "ruleset.manager"),
		rulesets: make(map[string]*Ruleset),
	}

	if err := m.Reload(context.Background()); err != nil {
		return nil, fmt.Errorf("initial ruleset load failed: %w", err)
	}
	return m, nil
}

// Reload replaces all loaded rulesets with the current source contents.
// Duplicate names keep the first occurrence and log the rest.
func (m *Manager) Reload(ctx context.Context) error {
	loaded, err := m.source.Load(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]*Ruleset, len(loaded))
	for _, rs := range loaded {
		if prev, dup := next[rs.Name]; dup {
			m.logger.Warn("duplicate ruleset name, keeping first",
				"name", rs.Name,
				"kept", prev.Source,
				"skipped", rs.Source,
			)
			continue
		}
		next[rs.Name] = rs
	}

	m.mu.Lock()
	m.rulesets = next
	m.mu.Unlock()

	m.logger.Info("rulesets reloaded", "ruleset_count", len(next))
	return nil
}

// Get returns a ruleset by name.
func (m *Manager) Get(name string) (*Ruleset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rs, ok := m.rulesets[name]
	return rs, ok
}

// Names returns the names of all loaded rulesets.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.rulesets))
	for name := range m.rulesets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartWatching begins hot-reloading on file changes. It returns once the
// watcher is running in the background.
func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := NewWatcher(m.source.Path(), m.logger)
	if err != nil {
		return err
	}
	m.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := watcher.Watch(watchCtx, func() error {
			return m.Reload(watchCtx)
		}); err != nil {
			m.logger.Error("ruleset watcher exited", "error", err)
		}
	}()

	return nil
}

// Close stops watching and waits for background work to finish. The
// watcher is stopped before the context is cancelled so the fsnotify
// handle is always released.
func (m *Manager) Close() error {
	var err error
	if m.watcher != nil {
		err = m.watcher.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	return err
}
