package resource

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Object3DImage is declared either as a bare diffuse path or as a
// diffuse/alpha pair.
type Object3DImage struct {
	Diffuse string
	Alpha   string
}

func (i *Object3DImage) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&i.Diffuse)
	}

	var pair struct {
		Diffuse string `yaml:"diffuse"`
		Alpha   string `yaml:"alpha"`
	}
	if err := value.Decode(&pair); err != nil {
		return err
	}
	i.Diffuse = pair.Diffuse
	i.Alpha = pair.Alpha
	return nil
}

func (i Object3DImage) MarshalJSON() ([]byte, error) {
	if i.Alpha == "" {
		return json.Marshal(i.Diffuse)
	}
	return json.Marshal(struct {
		Diffuse string `json:"diffuse"`
		Alpha   string `json:"alpha"`
	}{i.Diffuse, i.Alpha})
}

type Object3D struct {
	base
	// ID forces the resource identity instead of deriving it from the
	// path, for objects whose id the client hardcodes.
	ID     *uint32                  `yaml:"id" json:"id,omitempty"`
	Object string                   `yaml:"object" json:"object,omitempty"`
	Images map[string]Object3DImage `yaml:"images" json:"images"`
}

func (o *Object3D) Type() string {
	return "Object3D"
}

func (o *Object3D) Init(ctx context.Context, info *Info) error {
	o.bind(info)
	return nil
}

func (o *Object3D) ObjectPath() string {
	return o.resolve(o.Object, "object.3ds")
}

func (o *Object3D) InputFiles(ctx context.Context) ([]string, error) {
	files := []string{o.ObjectPath()}
	for _, image := range o.Images {
		files = append(files, filepath.Join(o.root, image.Diffuse))
		if image.Alpha != "" {
			files = append(files, filepath.Join(o.root, image.Alpha))
		}
	}
	return files, nil
}

func (o *Object3D) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	names := make([]string, 0, len(o.Images))
	for name := range o.Images {
		names = append(names, name)
	}
	sort.Strings(names)

	manifest := ImagesManifest{}
	for _, name := range names {
		image := o.Images[name]
		remap := ImageRemap{
			Name:    name,
			Diffuse: filepath.Base(image.Diffuse),
		}
		if image.Alpha != "" {
			remap.Alpha = filepath.Base(image.Alpha)
		}
		manifest.Images = append(manifest.Images, remap)
	}

	encoded, err := xml.Marshal(&manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding images manifest: %w", err)
	}

	files := map[string][]byte{IMAGES_MANIFEST: encoded}

	inputs, err := o.InputFiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		files[filepath.Base(input)] = data
	}

	return files, nil
}
