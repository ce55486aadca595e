// Package pipeline drives a build end to end: discover resources under
// the source tree, compute their identities, persist the mtime cache,
// resolve map dependencies, validate placements, and write the output
// bundles plus the run catalogue.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hangarlabs/hangar/pkg/cache"
	"github.com/hangarlabs/hangar/pkg/resource"
	"github.com/hangarlabs/hangar/pkg/validate"
)

const (
	// MTIMES_FILE persists input mtimes between runs, inside the
	// output root.
	MTIMES_FILE = "mtimes"

	// CATALOGUE_FILE lists every discovered resource; the prefix keeps
	// it first in directory listings.
	CATALOGUE_FILE = "00-resources.json"
)

// entry pairs a discovered resource with its cache judgement.
type entry struct {
	resource resource.Resource
	changed  bool
}

type Pipeline struct {
	Root string
	Out  string

	cache   *cache.Cache
	entries []entry

	inputFiles  int
	outputFiles int
	notChanged  int
}

func New(root string, out string) *Pipeline {
	return &Pipeline{
		Root: root,
		Out:  out,
	}
}

func (p *Pipeline) mtimesPath() string {
	return filepath.Join(p.Out, MTIMES_FILE)
}

// Run executes one build. Discovery completes fully before any
// dependency resolution, resolution before validation, and validation
// before any output is written; a fatal error aborts the run without
// writing the catalogue.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	if err := os.MkdirAll(p.Out, 0755); err != nil {
		return err
	}

	loaded, err := cache.Load(p.mtimesPath())
	if err != nil {
		return err
	}
	p.cache = loaded

	if err := p.discover(ctx); err != nil {
		return err
	}
	log.Info().Msgf("discovered %d resources", len(p.entries))

	if err := p.cache.Save(p.mtimesPath()); err != nil {
		return err
	}

	var maps []*resource.Map
	var proplibs []*resource.Proplib
	for _, e := range p.entries {
		switch concrete := e.resource.(type) {
		case *resource.Map:
			maps = append(maps, concrete)
		case *resource.Proplib:
			proplibs = append(proplibs, concrete)
		}
	}

	for _, m := range maps {
		if err := m.ResolveProplibs(ctx, proplibs); err != nil {
			return err
		}
	}

	if err := validate.New().Run(ctx, maps, proplibs); err != nil {
		return err
	}

	processed := 0
	for _, e := range p.entries {
		written, err := p.writeBundle(ctx, e)
		if err != nil {
			return err
		}
		if written {
			processed++
		}
	}

	if err := p.writeCatalogue(); err != nil {
		return err
	}

	log.Info().Msgf("completed in %s", time.Since(start))
	log.Info().Msgf(
		"processed %d resources (%d cached, %d not changed): generated %d files from %d files",
		processed,
		len(p.entries)-processed,
		p.notChanged,
		p.outputFiles,
		p.inputFiles,
	)

	return nil
}
