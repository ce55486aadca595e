package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalizedImage bundles every image under its root as a separately
// addressable file, so the client can fetch per-language variants by
// name.
type LocalizedImage struct {
	base
}

func (l *LocalizedImage) Type() string {
	return "LocalizedImage"
}

func (l *LocalizedImage) Init(ctx context.Context, info *Info) error {
	l.bind(info)
	return nil
}

func (l *LocalizedImage) InputFiles(ctx context.Context) ([]string, error) {
	return walkFiles(l.root)
}

func (l *LocalizedImage) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	inputs, err := l.InputFiles(ctx)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string][]byte)
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}

		name := filepath.Base(input)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		outputs[fmt.Sprintf("%s.tnk", stem)] = data
	}

	return outputs, nil
}
