package resource

import (
	"context"
	"os"
)

type Image struct {
	base
	Image string `yaml:"image" json:"image,omitempty"`
}

func (i *Image) Type() string {
	return "Image"
}

func (i *Image) Init(ctx context.Context, info *Info) error {
	i.bind(info)
	return nil
}

func (i *Image) ImagePath() string {
	return i.resolve(i.Image, "image.jpg")
}

func (i *Image) InputFiles(ctx context.Context) ([]string, error) {
	return []string{i.ImagePath()}, nil
}

func (i *Image) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(i.ImagePath())
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"image.tnk": data}, nil
}
