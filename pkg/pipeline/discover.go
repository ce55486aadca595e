package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hangarlabs/hangar/pkg/fsprobe"
	"github.com/hangarlabs/hangar/pkg/resource"
)

// discover walks the source tree for resource definitions. Directories
// carrying a definition manifest are full-form resources; files
// matching the name@Kind.ext convention are short-form. Dot-prefixed
// paths are invisible.
func (p *Pipeline) discover(ctx context.Context) error {
	log.Info().Msg("scanning resources...")

	return filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if resource.HiddenPath(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			definition := filepath.Join(path, resource.DEFINITION_FILE)
			if !fsprobe.FileExists(definition) {
				return nil
			}

			data, err := os.ReadFile(definition)
			if err != nil {
				return err
			}

			parsed, err := resource.ParseDefinition(data)
			if err != nil {
				return fmt.Errorf("reading definition %s: %w", definition, err)
			}
			parsed.InitRoot(path)

			return p.register(ctx, parsed, definition, rel, resource.LogicalName(rel))
		}

		parsed, short, err := resource.ParseShort(path)
		if err != nil {
			return err
		}
		if !short {
			return nil
		}
		parsed.InitRoot(filepath.Dir(path))

		name := resource.LogicalName(filepath.Dir(rel))
		if name != "" {
			name += "."
		}
		name += resource.ShortName(path)

		log.Debug().Msgf("discovered short resource %s", name)
		return p.register(ctx, parsed, path, rel, name)
	})
}

// register computes a resource's identity and cache judgement, then
// initializes it. The definition file itself always participates in
// version hashing, so edits to declared fields move the version.
func (p *Pipeline) register(ctx context.Context, parsed resource.Resource, definition string, rel string, name string) error {
	id := resource.ComputeID(rel)
	if object, ok := parsed.(*resource.Object3D); ok && object.ID != nil {
		id = int64(*object.ID)
	}

	inputs, err := parsed.InputFiles(ctx)
	if err != nil {
		return err
	}
	inputs = append(inputs, definition)

	prepared, err := resource.PrepareInputs(inputs)
	if err != nil {
		return err
	}

	changed := parsed.Volatile()
	for _, file := range prepared {
		relFile, err := filepath.Rel(p.Root, file)
		if err != nil {
			return err
		}

		stat, err := os.Stat(file)
		if err != nil {
			return err
		}
		mtime := stat.ModTime().UnixMilli()
		p.cache.Record(relFile, mtime)

		if p.cache.Changed(relFile, mtime) {
			log.Debug().Msgf("%s has changed", relFile)
			changed = true
		}
	}

	version, err := resource.ComputeVersion(prepared)
	if err != nil {
		return err
	}
	p.inputFiles += len(prepared)

	if !changed {
		log.Debug().Msgf("no inputs of %s have changed", name)
		p.notChanged++
	}

	err = parsed.Init(ctx, &resource.Info{
		Name:       name,
		ID:         id,
		Version:    version,
		Namespaces: resource.Namespaces(rel),
	})
	if err != nil {
		return err
	}

	log.Debug().Msgf("read %s definition %s (%s)", parsed.Type(), name, definition)
	p.entries = append(p.entries, entry{
		resource: parsed,
		changed:  changed,
	})
	return nil
}
