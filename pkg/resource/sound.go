package resource

import (
	"context"
	"os"
)

type Sound struct {
	base
	Sound string `yaml:"sound" json:"sound,omitempty"`
}

func (s *Sound) Type() string {
	return "Sound"
}

func (s *Sound) Init(ctx context.Context, info *Info) error {
	s.bind(info)
	return nil
}

func (s *Sound) SoundPath() string {
	return s.resolve(s.Sound, "sound.mp3")
}

func (s *Sound) InputFiles(ctx context.Context) ([]string, error) {
	return []string{s.SoundPath()}, nil
}

// The client requests sounds under the library name regardless of the
// source container.
func (s *Sound) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(s.SoundPath())
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"sound.swf": data}, nil
}
