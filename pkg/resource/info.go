package resource

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Info is the computed identity of a discovered resource. ID derives
// from the resource's relative path and survives content changes;
// Version is a digest over input file bytes and changes with them.
type Info struct {
	Name       string            `json:"name"`
	ID         int64             `json:"id"`
	Version    int64             `json:"version"`
	Namespaces map[string]string `json:"namespaces"`
}

// Encode renders the bundle path for this identity: five octal groups,
// id bits 32-63, 16-31, 8-15, 0-7, then the version. The split keeps
// directory fan-out bounded with hundreds of thousands of resources.
func (i *Info) Encode() string {
	return fmt.Sprintf(
		"%o/%o/%o/%o/%o",
		(i.ID>>32)&0xffffffff,
		(i.ID>>16)&0xffff,
		(i.ID>>8)&0xff,
		i.ID&0xff,
		i.Version,
	)
}

// MatchesNamespace reports whether this resource agrees with every
// key/value pair the caller requires. A resource may carry more keys
// than required; an empty requirement matches everything.
func (i *Info) MatchesNamespace(required map[string]string) bool {
	for key, value := range required {
		if i.Namespaces[key] != value {
			return false
		}
	}
	return true
}

// ComputeID hashes a resource's root-relative path into its stable
// identity: CRC-32 widened unsigned to int64, so ids are never
// negative.
func ComputeID(path string) int64 {
	return int64(crc32.ChecksumIEEE([]byte(path)))
}

// ComputeVersion streams the bytes of every existing regular file, in
// the order given, through one CRC-32 digest. Directories and missing
// paths contribute nothing; callers sort paths beforehand so the
// digest is independent of discovery order.
func ComputeVersion(paths []string) (int64, error) {
	digest := crc32.NewIEEE()
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if stat.IsDir() {
			continue
		}

		file, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		_, err = io.Copy(digest, file)
		file.Close()
		if err != nil {
			return 0, err
		}
	}

	return int64(digest.Sum32()), nil
}

// PrepareInputs filters a raw input list down to existing regular
// files, deduplicated and sorted by path.
func PrepareInputs(paths []string) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	prepared := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}

		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if stat.IsDir() {
			continue
		}

		prepared = append(prepared, path)
	}

	sort.Strings(prepared)
	return prepared, nil
}

// LogicalName joins a relative path's segments with dots. The root
// itself ("." or empty) has no name.
func LogicalName(rel string) string {
	if rel == "" || rel == "." {
		return ""
	}
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), ".")
}

// Namespaces extracts the @key=value segments of a relative path.
// Segments that do not match the convention contribute nothing.
func Namespaces(rel string) map[string]string {
	namespaces := make(map[string]string)
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if !strings.HasPrefix(segment, "@") {
			continue
		}
		key, value, ok := strings.Cut(segment[1:], "=")
		if !ok || key == "" {
			continue
		}
		namespaces[key] = value
	}
	return namespaces
}

// HiddenPath reports whether any segment of a relative path is
// dot-prefixed; such paths are invisible to discovery.
func HiddenPath(rel string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}
	return false
}
