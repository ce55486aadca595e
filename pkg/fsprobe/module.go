package fsprobe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sasha-s/go-deadlock"
)

func FileExists(path string) bool {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return true
	}
	return false
}

// Probe answers existence lookups against asset trees whose manifests
// do not agree with the filesystem on the case of file names. Only the
// final path element is matched case-insensitively; parent directories
// must match exactly.
type Probe struct {
	mu deadlock.RWMutex
	// directory -> lowercased name -> actual name
	listings map[string]map[string]string
}

func New() *Probe {
	return &Probe{
		listings: make(map[string]map[string]string),
	}
}

// Find resolves path to the actual on-disk path, ignoring the case of
// the file name.
func (p *Probe) Find(path string) (string, bool) {
	if FileExists(path) {
		return path, true
	}

	dir := filepath.Dir(path)
	name := strings.ToLower(filepath.Base(path))

	actual, ok := p.listing(dir)[name]
	if !ok {
		return "", false
	}

	return filepath.Join(dir, actual), true
}

func (p *Probe) Exists(path string) bool {
	_, ok := p.Find(path)
	return ok
}

func (p *Probe) listing(dir string) map[string]string {
	p.mu.RLock()
	names, ok := p.listings[dir]
	p.mu.RUnlock()
	if ok {
		return names
	}

	names = make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			names[strings.ToLower(entry.Name())] = entry.Name()
		}
	}

	p.mu.Lock()
	p.listings[dir] = names
	p.mu.Unlock()

	return names
}
