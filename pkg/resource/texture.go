package resource

import (
	"context"
	"os"
)

type Texture struct {
	base
	Diffuse string `yaml:"diffuse" json:"diffuse,omitempty"`
}

func (t *Texture) Type() string {
	return "Texture"
}

func (t *Texture) Init(ctx context.Context, info *Info) error {
	t.bind(info)
	return nil
}

func (t *Texture) DiffusePath() string {
	return t.resolve(t.Diffuse, "diffuse.jpg")
}

func (t *Texture) InputFiles(ctx context.Context) ([]string, error) {
	return []string{t.DiffusePath()}, nil
}

func (t *Texture) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(t.DiffusePath())
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"image.tnk": data}, nil
}
