// Package validate checks every map placement against the prop
// libraries sharing its namespace combination: the prop must exist,
// its mesh or sprite must resolve to an on-disk texture, and any
// image-name remapping must point at real files. Validation runs
// before any output is written so a broken tree never ships partial
// bundles.
package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hangarlabs/hangar/pkg/fsprobe"
	"github.com/hangarlabs/hangar/pkg/resource"
	"github.com/hangarlabs/hangar/pkg/threeds"
)

type Validator struct {
	probe *fsprobe.Probe
}

func New() *Validator {
	return &Validator{
		probe: fsprobe.New(),
	}
}

// combination is one distinct namespace map and the libraries that
// declare it.
type combination struct {
	namespaces map[string]string
	libraries  []*resource.Proplib
}

type propKey struct {
	library string
	group   string
	prop    string
}

type propEntry struct {
	proplib    *resource.Proplib
	group      *resource.PropGroup
	definition *resource.PropDefinition
}

// Run validates every map against every complete namespace
// combination the map participates in. Combinations missing a gen or
// theme key are skipped with a warning; everything else that fails is
// fatal.
func (v *Validator) Run(ctx context.Context, maps []*resource.Map, proplibs []*resource.Proplib) error {
	combinations := groupCombinations(proplibs)

	keys := make([]string, 0, len(combinations))
	for key := range combinations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		combo := combinations[key]
		log.Info().Msgf("checking combination %v: %d proplibs", combo.namespaces, len(combo.libraries))

		if _, ok := combo.namespaces["gen"]; !ok {
			log.Warn().Msgf("malformed proplib combination %v", combo.namespaces)
			continue
		}
		if _, ok := combo.namespaces["theme"]; !ok {
			log.Warn().Msgf("malformed proplib combination %v", combo.namespaces)
			continue
		}

		index := buildIndex(combo.libraries)

		for _, m := range maps {
			if !usesCombination(m.Info().Namespaces, combo.namespaces) {
				continue
			}
			if err := v.validateMap(ctx, m, index); err != nil {
				return err
			}
		}
	}

	return nil
}

func groupCombinations(proplibs []*resource.Proplib) map[string]*combination {
	combinations := make(map[string]*combination)
	for _, library := range proplibs {
		key := canonicalKey(library.Info().Namespaces)
		combo, ok := combinations[key]
		if !ok {
			combo = &combination{namespaces: library.Info().Namespaces}
			combinations[key] = combo
		}
		combo.libraries = append(combo.libraries, library)
	}
	return combinations
}

func canonicalKey(namespaces map[string]string) string {
	keys := make([]string, 0, len(namespaces))
	for key := range namespaces {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+namespaces[key])
	}
	return strings.Join(pairs, ",")
}

// usesCombination reports whether a map scoped to the given namespaces
// participates in a combination. Maps with no namespaces participate
// in every combination.
func usesCombination(scope map[string]string, namespaces map[string]string) bool {
	for key, value := range scope {
		if namespaces[key] != value {
			return false
		}
	}
	return true
}

func buildIndex(libraries []*resource.Proplib) map[propKey]propEntry {
	index := make(map[propKey]propEntry)
	for _, proplib := range libraries {
		library := proplib.Library()
		for g := range library.PropGroups {
			group := &library.PropGroups[g]
			for p := range group.Props {
				index[propKey{
					library: library.Name,
					group:   group.Name,
					prop:    group.Props[p].Name,
				}] = propEntry{
					proplib:    proplib,
					group:      group,
					definition: &group.Props[p],
				}
			}
		}
	}
	return index
}

func (v *Validator) validateMap(ctx context.Context, m *resource.Map, index map[propKey]propEntry) error {
	log.Info().Msgf("validating props for map %s", m.Info().Name)

	type checkedKey struct {
		propKey
		texture string
	}
	checked := make(map[checkedKey]struct{})

	for _, placement := range m.Document().StaticGeometry.Props {
		key := propKey{
			library: placement.LibraryName,
			group:   placement.GroupName,
			prop:    placement.Name,
		}

		entry, ok := index[key]
		if !ok {
			return fmt.Errorf(
				"map %s: prop %s/%s/%s not found",
				m.Info().Name, placement.LibraryName, placement.GroupName, placement.Name,
			)
		}

		memo := checkedKey{propKey: key, texture: placement.TextureName}
		if _, done := checked[memo]; done {
			continue
		}

		if err := v.checkPlacement(placement, entry); err != nil {
			return fmt.Errorf("map %s: %w", m.Info().Name, err)
		}
		checked[memo] = struct{}{}
	}

	return nil
}

func (v *Validator) checkPlacement(placement resource.Prop, entry propEntry) error {
	subject := fmt.Sprintf(
		"prop %s/%s/%s",
		entry.proplib.Library().Name, entry.group.Name, entry.definition.Name,
	)

	switch {
	case entry.definition.Mesh != nil:
		return v.checkMesh(placement, entry, subject)
	case entry.definition.Sprite != nil:
		return v.checkSprite(entry, subject)
	default:
		return fmt.Errorf("%s has neither mesh nor sprite", subject)
	}
}

// checkMesh resolves the texture a placement uses: the explicitly
// named one among the mesh's declared textures, or the default texture
// map embedded in the mesh file itself.
func (v *Validator) checkMesh(placement resource.Prop, entry propEntry, subject string) error {
	mesh := entry.definition.Mesh
	root := entry.proplib.Root()

	var diffuse string
	if placement.TextureName != "" {
		found := false
		for _, binding := range mesh.Textures {
			if binding.Name == placement.TextureName {
				diffuse = binding.DiffuseMap
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("texture %s does not exist for %s", placement.TextureName, subject)
		}
	} else {
		path, ok := v.probe.Find(filepath.Join(root, mesh.File))
		if !ok {
			return fmt.Errorf("%s mesh file %s does not exist", subject, mesh.File)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: reading mesh: %w", subject, err)
		}

		document, err := threeds.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: parsing mesh %s: %w", subject, path, err)
		}

		diffuse, ok = document.DefaultTextureMap()
		if !ok {
			return fmt.Errorf("%s mesh %s has no default texture map", subject, path)
		}
	}

	return v.checkImage(entry.proplib, diffuse, subject)
}

func (v *Validator) checkSprite(entry propEntry, subject string) error {
	return v.checkImage(entry.proplib, entry.definition.Sprite.File, subject)
}

// checkImage confirms the named image resolves to on-disk files,
// either through the library's remapping manifest or directly under
// its root. Filename matching is case-insensitive.
func (v *Validator) checkImage(proplib *resource.Proplib, name string, subject string) error {
	root := proplib.Root()

	images := proplib.Images()
	if images == nil {
		if _, ok := v.probe.Find(filepath.Join(root, name)); !ok {
			return fmt.Errorf("diffuse file %s for %s does not exist", name, subject)
		}
		return nil
	}

	var remap *resource.ImageRemap
	for i := range images.Images {
		if strings.EqualFold(images.Images[i].Name, name) {
			remap = &images.Images[i]
			break
		}
	}
	if remap == nil {
		return fmt.Errorf("no image mapping for texture %s of %s", name, subject)
	}

	if _, ok := v.probe.Find(filepath.Join(root, remap.Diffuse)); !ok {
		return fmt.Errorf("diffuse file %s for texture %s of %s does not exist", remap.Diffuse, remap.Name, subject)
	}
	if remap.Alpha != "" {
		if _, ok := v.probe.Find(filepath.Join(root, remap.Alpha)); !ok {
			return fmt.Errorf("alpha file %s for texture %s of %s does not exist", remap.Alpha, remap.Name, subject)
		}
	}

	return nil
}
