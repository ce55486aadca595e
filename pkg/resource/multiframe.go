package resource

import (
	"context"
	"os"

	"github.com/hangarlabs/hangar/pkg/codec"
	"github.com/hangarlabs/hangar/pkg/fsprobe"
	"github.com/hangarlabs/hangar/pkg/tara"
)

type MultiframeProperties struct {
	FPS         float32 `yaml:"fps" json:"fps" cbor:"fps"`
	FrameHeight int32   `yaml:"frame_height" json:"frame_height" cbor:"frame_height"`
	FrameWidth  int32   `yaml:"frame_width" json:"frame_width" cbor:"frame_width"`
	ImageHeight int32   `yaml:"image_height" json:"image_height" cbor:"image_height"`
	ImageWidth  int32   `yaml:"image_width" json:"image_width" cbor:"image_width"`
	Frames      int16   `yaml:"frames" json:"frames" cbor:"frames"`
}

type MultiframeTexture struct {
	base
	Diffuse    string               `yaml:"diffuse" json:"diffuse,omitempty"`
	Alpha      string               `yaml:"alpha" json:"alpha,omitempty"`
	Properties MultiframeProperties `yaml:"properties" json:"properties"`
}

func (m *MultiframeTexture) Type() string {
	return "MultiframeTexture"
}

func (m *MultiframeTexture) Init(ctx context.Context, info *Info) error {
	m.bind(info)
	return nil
}

func (m *MultiframeTexture) DiffusePath() string {
	return m.resolve(m.Diffuse, "diffuse.jpg")
}

func (m *MultiframeTexture) AlphaPath() string {
	return m.resolve(m.Alpha, "alpha.jpg")
}

func (m *MultiframeTexture) InputFiles(ctx context.Context) ([]string, error) {
	return []string{m.DiffusePath(), m.AlphaPath()}, nil
}

// The archive layout is fixed: properties first, then the alpha and
// diffuse images when their files exist.
func (m *MultiframeTexture) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	properties, err := codec.Marshal(m.Properties)
	if err != nil {
		return nil, err
	}

	archive := tara.New()
	archive.AddEntry("p", properties)

	if alpha := m.AlphaPath(); fsprobe.FileExists(alpha) {
		data, err := os.ReadFile(alpha)
		if err != nil {
			return nil, err
		}
		archive.AddEntry("a", data)
	}

	if diffuse := m.DiffusePath(); fsprobe.FileExists(diffuse) {
		data, err := os.ReadFile(diffuse)
		if err != nil {
			return nil, err
		}
		archive.AddEntry("i", data)
	}

	data, err := archive.Encode()
	if err != nil {
		return nil, err
	}

	return map[string][]byte{"image.tara": data}, nil
}
