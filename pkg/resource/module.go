// Package resource models the closed set of resource kinds the
// pipeline builds: how each kind is declared, which files feed its
// content version, and what its output bundle contains.
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DEFINITION_FILE marks a directory as a full-form resource.
	DEFINITION_FILE = "resource.yaml"

	LIBRARY_MANIFEST = "library.xml"
	IMAGES_MANIFEST  = "images.xml"
)

type Resource interface {
	// Type is the definition tag, e.g. "Proplib".
	Type() string

	// InitRoot binds the resource to its source directory. Called
	// once, before identity is known.
	InitRoot(root string)

	// Init binds the computed identity. Kinds that read auxiliary
	// manifests (Proplib) parse them here and fail the resource on
	// malformed input.
	Init(ctx context.Context, info *Info) error

	Root() string
	Info() *Info

	// Volatile resources bypass the unchanged short-circuit and are
	// regenerated every run.
	Volatile() bool

	// InputFiles lists the files whose bytes participate in version
	// hashing, before preprocessing (existence filter, dedup, sort).
	InputFiles(ctx context.Context) ([]string, error)

	// OutputFiles produces the bundle contents, keyed by file name.
	OutputFiles(ctx context.Context) (map[string][]byte, error)
}

// base carries the state every kind shares.
type base struct {
	root string
	info *Info
}

func (b *base) InitRoot(root string) {
	b.root = root
}

func (b *base) Root() string {
	return b.root
}

func (b *base) Info() *Info {
	return b.info
}

func (b *base) Volatile() bool {
	return false
}

func (b *base) bind(info *Info) {
	b.info = info
}

// resolve yields the on-disk path for a declared file, falling back to
// the kind's conventional name. Declared paths already inside the root
// pass through untouched.
func (b *base) resolve(declared string, fallback string) string {
	if declared == "" {
		return filepath.Join(b.root, fallback)
	}
	if declared == b.root || strings.HasPrefix(declared, b.root+string(filepath.Separator)) {
		return declared
	}
	return filepath.Join(b.root, declared)
}

// ParseDefinition decodes a full-form definition document. The type
// tag picks the concrete kind; the rest of the document decodes into
// that kind's declared fields.
func ParseDefinition(data []byte) (Resource, error) {
	var tag struct {
		Type string `yaml:"type"`
	}
	if err := yaml.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	resource, err := newResource(tag.Type)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, resource); err != nil {
		return nil, err
	}

	return resource, nil
}

func newResource(tag string) (Resource, error) {
	switch tag {
	case "SwfLibrary":
		return &SwfLibrary{}, nil
	case "Sound":
		return &Sound{}, nil
	case "Map":
		return &Map{}, nil
	case "Proplib":
		return &Proplib{}, nil
	case "Texture":
		return &Texture{}, nil
	case "Image":
		return &Image{}, nil
	case "MultiframeTexture":
		return &MultiframeTexture{}, nil
	case "LocalizedImage":
		return &LocalizedImage{}, nil
	case "Object3D":
		return &Object3D{}, nil
	case "Localization":
		return &Localization{}, nil
	case "":
		return nil, fmt.Errorf("definition has no type tag")
	default:
		return nil, fmt.Errorf("unknown resource type %q", tag)
	}
}

// ParseShort recognizes the name@Kind.ext filename convention. The
// second return is false when the file is not a short definition at
// all. Kinds outside the short-form subset are definition errors, not
// plain files.
func ParseShort(path string) (Resource, bool, error) {
	stem := filepath.Base(path)
	if ext := filepath.Ext(stem); ext != "" {
		stem = stem[:len(stem)-len(ext)]
	}

	at := strings.LastIndex(stem, "@")
	if at < 0 {
		return nil, false, nil
	}
	kind := stem[at+1:]

	switch kind {
	case "Sound":
		return &Sound{Sound: path}, true, nil
	case "Texture":
		return &Texture{Diffuse: path}, true, nil
	case "Image":
		return &Image{Image: path}, true, nil
	case "SwfLibrary":
		return &SwfLibrary{File: path}, true, nil
	case "Map", "Proplib", "MultiframeTexture", "LocalizedImage", "Object3D", "Localization":
		return nil, true, fmt.Errorf("%s resources require a full definition", kind)
	default:
		return nil, true, fmt.Errorf("unknown resource kind %q in %s", kind, path)
	}
}

// ShortName returns the name part of a name@Kind.ext file.
func ShortName(path string) string {
	stem := filepath.Base(path)
	if ext := filepath.Ext(stem); ext != "" {
		stem = stem[:len(stem)-len(ext)]
	}
	if at := strings.LastIndex(stem, "@"); at >= 0 {
		return stem[:at]
	}
	return stem
}

// walkFiles enumerates every file under root except the definition
// manifest, in lexical order.
func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if entry.Name() == DEFINITION_FILE {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MarshalCatalogue renders every definition into the run catalogue: a
// pretty JSON array of type tag, source root, declared fields and
// computed identity per resource.
func MarshalCatalogue(resources []Resource) ([]byte, error) {
	entries := make([]map[string]interface{}, 0, len(resources))
	for _, resource := range resources {
		declared, err := json.Marshal(resource)
		if err != nil {
			return nil, err
		}

		entry := make(map[string]interface{})
		if err := json.Unmarshal(declared, &entry); err != nil {
			return nil, err
		}
		entry["type"] = resource.Type()
		entry["root"] = resource.Root()
		entry["info"] = resource.Info()

		entries = append(entries, entry)
	}

	return json.MarshalIndent(entries, "", "  ")
}

var _ Resource = (*SwfLibrary)(nil)
var _ Resource = (*Sound)(nil)
var _ Resource = (*Map)(nil)
var _ Resource = (*Proplib)(nil)
var _ Resource = (*Texture)(nil)
var _ Resource = (*Image)(nil)
var _ Resource = (*MultiframeTexture)(nil)
var _ Resource = (*LocalizedImage)(nil)
var _ Resource = (*Object3D)(nil)
var _ Resource = (*Localization)(nil)
