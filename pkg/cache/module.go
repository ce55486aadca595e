// Package cache persists the last-seen modification times of every
// input file between runs, so unchanged resources can skip hashing and
// encoding entirely.
package cache

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Cache holds two generations of mtime state: the mapping loaded from
// the previous run, consulted by Changed, and the mapping accumulated
// through Record during this run, which fully replaces the file on
// Save. Paths no longer recorded fall out of the cache.
type Cache struct {
	loaded   map[string]int64
	recorded map[string]int64
}

// Load parses an mtimes file of `relative_path: millis` lines. A
// missing file yields an empty cache; malformed lines are skipped.
func Load(path string) (*Cache, error) {
	cache := &Cache{
		loaded:   make(map[string]int64),
		recorded: make(map[string]int64),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		file, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}

		mtime, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}

		cache.loaded[file] = mtime
	}

	return cache, nil
}

// Changed reports whether path is new or its modification time differs
// from the loaded state.
func (c *Cache) Changed(path string, mtime int64) bool {
	cached, ok := c.loaded[path]
	if !ok {
		return true
	}
	return cached != mtime
}

func (c *Cache) Record(path string, mtime int64) {
	c.recorded[path] = mtime
}

func (c *Cache) Len() int {
	return len(c.recorded)
}

// Save replaces the mtimes file with the recorded state, sorted by
// path so reruns over an unchanged tree rewrite identical bytes.
func (c *Cache) Save(path string) error {
	paths := make([]string, 0, len(c.recorded))
	for file := range c.recorded {
		paths = append(paths, file)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, file := range paths {
		fmt.Fprintf(&b, "%s: %d\n", file, c.recorded[file])
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}
