// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pathcache caches the executable names found in each PATH
// directory, so the completion engine's PATH-wide candidate lookup
// doesn't re-read every directory on every TAB press. An fsnotify watch
// per directory invalidates its entry on write/create/remove/rename,
// debounced so a burst of filesystem activity triggers one rescan, not
// many. Failure to watch a directory only means that directory's entry
// is never cached from then on — it never changes what candidates the
// completion engine sees, only how fast they're produced.
package pathcache

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/morganforge/goshell/internal/diag"
)

type entry struct {
	names []string
	mtime time.Time
}

// Cache maps a PATH directory to its sorted list of executable names.
type Cache struct {
	mu    sync.RWMutex
	dirs  map[string]entry
	group singleflight.Group

	watcher  *fsnotify.Watcher
	debounce time.Duration
	pending  map[string]time.Time
	pmu      sync.Mutex

	log *diag.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// New constructs a Cache. debounce is the fsnotify coalescing window;
// log may be nil. The returned Cache has no watches yet — call Watch for
// each PATH directory that should be kept fresh.
func New(debounce time.Duration, log *diag.Logger) *Cache {
	c := &Cache{
		dirs:     make(map[string]entry),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		log:      log,
		done:     make(chan struct{}),
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		if log != nil {
			log.Warn("pathcache", "fsnotify unavailable, caching disabled", diag.F("err", err.Error()))
		}
		return c
	}
	c.watcher = w
	go c.processEvents()
	go c.processPending()
	return c
}

// Watch adds dir to the set of watched PATH directories. Failure to
// watch is non-fatal: the directory is simply rescanned fresh every
// lookup instead of being cached.
func (c *Cache) Watch(dir string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Add(dir); err != nil && c.log != nil {
		c.log.Warn("pathcache", "could not watch PATH directory", diag.F("dir", dir), diag.F("err", err.Error()))
	}
}

// Names returns the sorted list of executable file names in dir,
// reusing a cached entry if the directory hasn't been invalidated.
// Concurrent lookups for the same uncached directory are deduplicated
// via singleflight so a burst of TAB presses triggers one scan.
func (c *Cache) Names(dir string) []string {
	c.mu.RLock()
	e, ok := c.dirs[dir]
	c.mu.RUnlock()
	if ok {
		return e.names
	}
	if c.watcher == nil {
		return scanExecutables(dir)
	}

	v, _, _ := c.group.Do(dir, func() (any, error) {
		names := scanExecutables(dir)
		c.mu.Lock()
		c.dirs[dir] = entry{names: names, mtime: time.Now()}
		c.mu.Unlock()
		return names, nil
	})
	return v.([]string)
}

func scanExecutables(dir string) []string {
	f, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		mode := info.Mode()
		if mode&0o111 == 0 {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names
}

func (c *Cache) invalidate(dir string) {
	c.mu.Lock()
	delete(c.dirs, dir)
	c.mu.Unlock()
}

func (c *Cache) processEvents() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			dir := filepath.Dir(event.Name)
			c.pmu.Lock()
			c.pending[dir] = time.Now()
			c.pmu.Unlock()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			if c.log != nil {
				c.log.Warn("pathcache", "fsnotify error", diag.F("err", err.Error()))
			}
		}
	}
}

func (c *Cache) processPending() {
	tick := c.debounce / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			var ready []string

			c.pmu.Lock()
			for dir, t := range c.pending {
				if now.Sub(t) >= c.debounce {
					ready = append(ready, dir)
					delete(c.pending, dir)
				}
			}
			c.pmu.Unlock()

			for _, dir := range ready {
				c.invalidate(dir)
			}
		}
	}
}

// Close stops the watcher goroutines and releases the fsnotify watcher.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.watcher != nil {
			c.watcher.Close()
		}
	})
}
