package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/repeale/fp-go"

	"github.com/hangarlabs/hangar/pkg/resource"
	"github.com/hangarlabs/hangar/pkg/tara"
	"github.com/hangarlabs/hangar/pkg/threeds"
)

// dumpMesh prints the material table of a 3ds file: one name->texture
// line per material, then the default texture map the pipeline would
// pick for props without an explicit texture.
func dumpMesh(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	document, err := threeds.Parse(data)
	if err != nil {
		return err
	}

	lines := fp.Map[threeds.Material, string](func(material threeds.Material) string {
		return fmt.Sprintf("%s->%s", material.Name, material.TextureMap)
	})(document.Materials)
	for _, line := range lines {
		fmt.Println(line)
	}

	if name, ok := document.DefaultTextureMap(); ok {
		fmt.Printf("default texture map: %s\n", name)
	} else {
		fmt.Println("no default texture map")
	}

	return nil
}

// dumpMap prints a geometry manifest's placement counts and every
// distinct prop library it references.
func dumpMap(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	document, err := resource.ParseMapGeometry(data)
	if err != nil {
		return err
	}

	fmt.Printf(
		"%d props, %d planes, %d boxes, %d triangles, %d spawn points\n",
		len(document.StaticGeometry.Props),
		len(document.CollisionGeometry.Planes),
		len(document.CollisionGeometry.Boxes),
		len(document.CollisionGeometry.Triangles),
		len(document.SpawnPoints.SpawnPoints),
	)

	libraries := make(map[string]int)
	for _, prop := range document.StaticGeometry.Props {
		libraries[prop.LibraryName]++
	}

	names := make([]string, 0, len(libraries))
	for name := range libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %d placements\n", name, libraries[name])
	}

	return nil
}

// dumpBundle lists the entries of an archive bundle.
func dumpBundle(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	archive, err := tara.Read(bytes.NewReader(data))
	if err != nil {
		return err
	}

	lines := fp.Map[tara.Entry, string](func(entry tara.Entry) string {
		return fmt.Sprintf("%s: %d bytes", entry.Name, len(entry.Data))
	})(archive.Entries())
	for _, line := range lines {
		fmt.Println(line)
	}

	return nil
}

func dumpCommand(parseType string, filename string) error {
	switch parseType {
	case "mesh":
		return dumpMesh(filename)
	case "map":
		return dumpMap(filename)
	case "bundle":
		return dumpBundle(filename)
	default:
		return fmt.Errorf("invalid type %s", parseType)
	}
}
