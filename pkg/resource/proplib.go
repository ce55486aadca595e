package resource

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hangarlabs/hangar/pkg/fsprobe"
	"github.com/hangarlabs/hangar/pkg/tara"
)

// Library is the prop manifest at the root of every Proplib: the
// library's declared name and its groups of placeable props.
type Library struct {
	XMLName    xml.Name    `xml:"library" json:"-"`
	Name       string      `xml:"name,attr" json:"name"`
	PropGroups []PropGroup `xml:"prop-group" json:"prop-groups"`
}

type PropGroup struct {
	Name  string           `xml:"name,attr" json:"name"`
	Props []PropDefinition `xml:"prop" json:"props"`
}

// PropDefinition carries exactly one of Mesh or Sprite; upstream
// manifests guarantee it, and validation fails loudly when neither is
// present.
type PropDefinition struct {
	Name   string            `xml:"name,attr" json:"name"`
	Mesh   *MeshDefinition   `xml:"mesh" json:"mesh,omitempty"`
	Sprite *SpriteDefinition `xml:"sprite" json:"sprite,omitempty"`
}

type MeshDefinition struct {
	File     string           `xml:"file,attr" json:"file"`
	Textures []TextureBinding `xml:"texture" json:"textures,omitempty"`
}

// TextureBinding names a selectable skin of a mesh and the diffuse
// image it maps to.
type TextureBinding struct {
	Name       string `xml:"name,attr" json:"name"`
	DiffuseMap string `xml:"diffuse-map,attr" json:"diffuse-map"`
}

type SpriteDefinition struct {
	File    string   `xml:"file,attr" json:"file"`
	OriginY *float32 `xml:"origin-y,attr" json:"origin-y,omitempty"`
	Scale   *float32 `xml:"scale,attr" json:"scale,omitempty"`
}

// ImagesManifest remaps texture names to on-disk image files. Proplibs
// read it; Object3D bundles write the same document shape.
type ImagesManifest struct {
	XMLName xml.Name     `xml:"images" json:"-"`
	Images  []ImageRemap `xml:"image" json:"images"`
}

type ImageRemap struct {
	Name    string `xml:"name,attr" json:"name"`
	Diffuse string `xml:"new-name,attr" json:"new-name"`
	Alpha   string `xml:"alpha,attr,omitempty" json:"alpha,omitempty"`
}

type Proplib struct {
	base
	// Deprecated; superseded by @key=value path segments, surfaced in
	// the catalogue for older trees.
	LegacyNamespace string `yaml:"namespace" json:"namespace,omitempty"`

	// Name is declared by the library manifest, not the definition.
	Name string `yaml:"-" json:"name,omitempty"`

	library *Library
	images  *ImagesManifest
}

func (p *Proplib) Type() string {
	return "Proplib"
}

// Init parses the library manifest (mandatory) and the image remap
// manifest (optional). A Proplib without a readable library manifest
// is a definition error.
func (p *Proplib) Init(ctx context.Context, info *Info) error {
	p.bind(info)

	path := filepath.Join(p.root, LIBRARY_MANIFEST)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading library manifest: %w", err)
	}

	var library Library
	if err := xml.Unmarshal(data, &library); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	p.library = &library
	p.Name = library.Name

	images := filepath.Join(p.root, IMAGES_MANIFEST)
	if fsprobe.FileExists(images) {
		data, err := os.ReadFile(images)
		if err != nil {
			return fmt.Errorf("reading images manifest: %w", err)
		}

		var manifest ImagesManifest
		if err := xml.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("parsing %s: %w", images, err)
		}
		p.images = &manifest
	}

	return nil
}

// Library exposes the parsed prop manifest. Valid after Init.
func (p *Proplib) Library() *Library {
	return p.library
}

// Images exposes the parsed remap manifest, nil when the library has
// none.
func (p *Proplib) Images() *ImagesManifest {
	return p.images
}

func (p *Proplib) InputFiles(ctx context.Context) ([]string, error) {
	return walkFiles(p.root)
}

func (p *Proplib) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	inputs, err := p.InputFiles(ctx)
	if err != nil {
		return nil, err
	}

	archive := tara.New()
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		archive.AddEntry(filepath.Base(input), data)
	}

	data, err := archive.Encode()
	if err != nil {
		return nil, err
	}

	return map[string][]byte{"library.tara": data}, nil
}
