package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hangarlabs/hangar/pkg/codec"
)

type LocalizationString struct {
	Name  string `cbor:"name"`
	Value string `cbor:"value"`
}

type LocalizationImage struct {
	Name string `cbor:"name"`
	Data []byte `cbor:"data"`
}

// LocalizationRecord is the payload of an .l18n bundle: every string
// and image override for one language.
type LocalizationRecord struct {
	Images  []LocalizationImage  `cbor:"images"`
	Strings []LocalizationString `cbor:"strings"`
}

// Localization overlays language-specific strings and images. The
// translations live in the definition itself, so these rebuild on
// every run rather than trusting timestamps.
type Localization struct {
	base
	Images  map[string]string `yaml:"images" json:"images,omitempty"`
	Strings map[string]string `yaml:"strings" json:"strings,omitempty"`
}

func (l *Localization) Type() string {
	return "Localization"
}

func (l *Localization) Init(ctx context.Context, info *Info) error {
	l.bind(info)
	return nil
}

func (l *Localization) Volatile() bool {
	return true
}

func (l *Localization) InputFiles(ctx context.Context) ([]string, error) {
	return walkFiles(l.root)
}

// Language is the last dot-separated segment of the resource name, so
// "interface.en" emits en.l18n. A name without dots is used whole.
func (l *Localization) Language() string {
	name := l.info.Name
	if index := strings.LastIndex(name, "."); index >= 0 {
		return name[index+1:]
	}
	return name
}

func (l *Localization) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	record := LocalizationRecord{
		Images:  make([]LocalizationImage, 0, len(l.Images)),
		Strings: make([]LocalizationString, 0, len(l.Strings)),
	}

	names := make([]string, 0, len(l.Images))
	for name := range l.Images {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(l.root, l.Images[name]))
		if err != nil {
			return nil, fmt.Errorf("reading localized image %s: %w", name, err)
		}
		record.Images = append(record.Images, LocalizationImage{
			Name: name,
			Data: data,
		})
	}

	names = names[:0]
	for name := range l.Strings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		record.Strings = append(record.Strings, LocalizationString{
			Name:  name,
			Value: l.Strings[name],
		})
	}

	data, err := codec.MarshalCompressed(record)
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		fmt.Sprintf("%s.l18n", l.Language()): data,
	}, nil
}
