package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/hangarlabs/hangar/pkg/resource"
)

// writeBundle writes a resource's output files under its encoded
// bundle path. Bundles are content-addressed by (id, version): an
// existing bundle directory is never rewritten, so an unchanged
// resource only costs a stat, while a deleted bundle is regenerated
// even when the cache says nothing changed.
func (p *Pipeline) writeBundle(ctx context.Context, e entry) (bool, error) {
	info := e.resource.Info()
	path := filepath.Join(p.Out, filepath.FromSlash(info.Encode()))

	if _, err := os.Stat(path); err == nil {
		if e.changed {
			log.Debug().Msgf("bundle %s for %s already exists", info.Encode(), info.Name)
		} else {
			log.Debug().Msgf("skipping %s as no inputs have changed", info.Name)
		}
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	outputs, err := e.resource.OutputFiles(ctx)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return false, err
	}

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Info().Msgf("writing output files for %s (%s)", info.Name, info.Encode())
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(path, name), outputs[name], 0644); err != nil {
			return false, err
		}
		log.Debug().Msgf("written %d:%d/%s", info.ID, info.Version, name)
		p.outputFiles++
	}

	return true, nil
}

// writeCatalogue renders every discovered resource into the run
// catalogue. It is written after all bundles, so an aborted run never
// leaves a catalogue describing resources that failed validation.
func (p *Pipeline) writeCatalogue() error {
	resources := make([]resource.Resource, 0, len(p.entries))
	for _, e := range p.entries {
		resources = append(resources, e.resource)
	}

	catalogue, err := resource.MarshalCatalogue(resources)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(p.Out, CATALOGUE_FILE), catalogue, 0644)
}
