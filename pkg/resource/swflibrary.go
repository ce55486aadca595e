package resource

import (
	"context"
	"os"
)

type SwfLibrary struct {
	base
	File string `yaml:"file" json:"file,omitempty"`
}

func (s *SwfLibrary) Type() string {
	return "SwfLibrary"
}

func (s *SwfLibrary) Init(ctx context.Context, info *Info) error {
	s.bind(info)
	return nil
}

func (s *SwfLibrary) FilePath() string {
	return s.resolve(s.File, "library.swf")
}

func (s *SwfLibrary) InputFiles(ctx context.Context) ([]string, error) {
	return []string{s.FilePath()}, nil
}

func (s *SwfLibrary) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(s.FilePath())
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"library.swf": data}, nil
}
