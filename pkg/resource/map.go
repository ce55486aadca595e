package resource

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
)

// MapDocument is the parsed geometry manifest of a Map resource. The
// public bundle keeps static and collision geometry; everything else
// is gameplay metadata reserved for the private document.
type MapDocument struct {
	XMLName           xml.Name          `xml:"map" json:"-"`
	StaticGeometry    StaticGeometry    `xml:"static-geometry" json:"static-geometry"`
	CollisionGeometry CollisionGeometry `xml:"collision-geometry" json:"collision-geometry"`
	SpawnPoints       SpawnPoints       `xml:"spawn-points" json:"spawn-points"`
	BonusRegions      BonusRegions      `xml:"bonus-regions" json:"bonus-regions"`
	CtfFlags          *CtfFlags         `xml:"ctf-flags" json:"ctf-flags"`
	DomKeypoints      *DomKeypoints     `xml:"dom-keypoints" json:"dom-keypoints"`
}

type StaticGeometry struct {
	Props []Prop `xml:"prop" json:"prop"`
}

// Prop is one placement of a library prop in static geometry. An empty
// TextureName defers to the mesh's embedded default texture map.
type Prop struct {
	LibraryName string  `xml:"library-name,attr" json:"library-name"`
	GroupName   string  `xml:"group-name,attr" json:"group-name"`
	Name        string  `xml:"name,attr" json:"name"`
	Position    Vector3 `xml:"position" json:"position"`
	Rotation    Vector3 `xml:"rotation" json:"rotation"`
	TextureName string  `xml:"texture-name" json:"texture-name"`
}

type CollisionGeometry struct {
	Planes    []CollisionPlane    `xml:"collision-plane" json:"collision-plane"`
	Boxes     []CollisionBox      `xml:"collision-box" json:"collision-box"`
	Triangles []CollisionTriangle `xml:"collision-triangle" json:"collision-triangle"`
}

type CollisionPlane struct {
	ID       *int32  `xml:"id,attr,omitempty" json:"id,omitempty"`
	Width    float32 `xml:"width" json:"width"`
	Length   float32 `xml:"length" json:"length"`
	Position Vector3 `xml:"position" json:"position"`
	Rotation Vector3 `xml:"rotation" json:"rotation"`
}

type CollisionBox struct {
	ID       *int32  `xml:"id,attr,omitempty" json:"id,omitempty"`
	Size     Vector3 `xml:"size" json:"size"`
	Position Vector3 `xml:"position" json:"position"`
	Rotation Vector3 `xml:"rotation" json:"rotation"`
}

type CollisionTriangle struct {
	ID       *int32  `xml:"id,attr,omitempty" json:"id,omitempty"`
	V0       Vector3 `xml:"v0" json:"v0"`
	V1       Vector3 `xml:"v1" json:"v1"`
	V2       Vector3 `xml:"v2" json:"v2"`
	Position Vector3 `xml:"position" json:"position"`
	Rotation Vector3 `xml:"rotation" json:"rotation"`
}

type SpawnPoints struct {
	SpawnPoints []SpawnPoint `xml:"spawn-point" json:"spawn-point"`
}

type SpawnPoint struct {
	Kind     string  `xml:"type,attr" json:"kind"`
	Position Vector3 `xml:"position" json:"position"`
	Rotation Vector3 `xml:"rotation" json:"rotation"`
}

type BonusRegions struct {
	BonusRegions []BonusRegion `xml:"bonus-region" json:"bonus-region"`
}

type BonusRegion struct {
	Name     string   `xml:"name,attr" json:"name"`
	Position Vector3  `xml:"position" json:"position"`
	Rotation Vector3  `xml:"rotation" json:"rotation"`
	Min      Vector3  `xml:"min" json:"min"`
	Max      Vector3  `xml:"max" json:"max"`
	Kinds    []string `xml:"bonus-type" json:"kinds"`
	Modes    []string `xml:"game-mode" json:"modes"`
}

type CtfFlags struct {
	Blue Vector3 `xml:"flag-blue" json:"blue"`
	Red  Vector3 `xml:"flag-red" json:"red"`
}

type DomKeypoints struct {
	DomKeypoints []DomKeypoint `xml:"dom-keypoint" json:"dom-keypoint"`
}

type DomKeypoint struct {
	Name     string  `xml:"name,attr" json:"name"`
	Position Vector3 `xml:"position" json:"position"`
}

// Vector3 tolerates missing axes; absent elements stay zero.
type Vector3 struct {
	X float32 `xml:"x" json:"x"`
	Y float32 `xml:"y" json:"y"`
	Z float32 `xml:"z" json:"z"`
}

// PublicMap is the client-visible map document: geometry only.
type PublicMap struct {
	XMLName           xml.Name          `xml:"map"`
	StaticGeometry    StaticGeometry    `xml:"static-geometry"`
	CollisionGeometry CollisionGeometry `xml:"collision-geometry"`
}

// PrivateMap is the server-side map document: gameplay metadata plus
// the identities of every resolved prop library.
type PrivateMap struct {
	SpawnPoints  []SpawnPoint  `json:"spawn-points"`
	BonusRegions []BonusRegion `json:"bonus-regions"`
	CtfFlags     *CtfFlags     `json:"ctf-flags"`
	DomKeypoints []DomKeypoint `json:"dom-keypoints"`
	Proplibs     []*Info       `json:"proplibs"`
}

// ProplibsManifest lists the map's resolved libraries for the loader.
// The id and version attributes are hexadecimal, unlike the octal
// bundle paths.
type ProplibsManifest struct {
	XMLName   xml.Name           `xml:"proplibs"`
	Libraries []LibraryReference `xml:"library"`
}

type LibraryReference struct {
	Name    string `xml:"name,attr"`
	ID      string `xml:"resource-id,attr"`
	Version string `xml:"version,attr"`
}

// ParseMapGeometry decodes a map geometry manifest.
func ParseMapGeometry(data []byte) (*MapDocument, error) {
	var document MapDocument
	if err := xml.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// Public projects the document down to what clients may see.
func (d *MapDocument) Public() *PublicMap {
	return &PublicMap{
		StaticGeometry:    d.StaticGeometry,
		CollisionGeometry: d.CollisionGeometry,
	}
}

// Private projects the document's gameplay metadata, normalizing
// absent collections to empty ones so consumers never see null.
func (d *MapDocument) Private(proplibs []*Info) *PrivateMap {
	private := &PrivateMap{
		SpawnPoints:  make([]SpawnPoint, 0, len(d.SpawnPoints.SpawnPoints)),
		BonusRegions: make([]BonusRegion, 0, len(d.BonusRegions.BonusRegions)),
		CtfFlags:     d.CtfFlags,
		DomKeypoints: make([]DomKeypoint, 0),
		Proplibs:     proplibs,
	}

	private.SpawnPoints = append(private.SpawnPoints, d.SpawnPoints.SpawnPoints...)

	for _, region := range d.BonusRegions.BonusRegions {
		if region.Kinds == nil {
			region.Kinds = []string{}
		}
		if region.Modes == nil {
			region.Modes = []string{}
		}
		private.BonusRegions = append(private.BonusRegions, region)
	}

	if d.DomKeypoints != nil {
		private.DomKeypoints = append(private.DomKeypoints, d.DomKeypoints.DomKeypoints...)
	}

	return private
}

type Map struct {
	base
	MapFile string `yaml:"map" json:"map,omitempty"`
	// Deprecated; superseded by @key=value path segments, surfaced in
	// the catalogue for older trees.
	LegacyNamespace string `yaml:"namespace" json:"namespace,omitempty"`

	document *MapDocument
	proplibs map[string]*Proplib
}

func (m *Map) Type() string {
	return "Map"
}

func (m *Map) Init(ctx context.Context, info *Info) error {
	m.bind(info)
	return nil
}

func (m *Map) MapPath() string {
	return m.resolve(m.MapFile, "map.xml")
}

// Document exposes the parsed geometry. Valid after ResolveProplibs.
func (m *Map) Document() *MapDocument {
	return m.document
}

// Proplibs exposes the resolved dependency set, keyed by library name.
func (m *Map) Proplibs() map[string]*Proplib {
	return m.proplibs
}

func (m *Map) InputFiles(ctx context.Context) ([]string, error) {
	return []string{m.MapPath()}, nil
}

// ResolveProplibs parses the map's geometry and binds every referenced
// library whose namespace agrees with the map's own. Candidates with
// fewer namespace keys than the map declares never match; a map with
// no namespace matches by name alone. When two candidates share a
// name, the lexicographically smaller source root wins, so resolution
// does not depend on discovery order.
func (m *Map) ResolveProplibs(ctx context.Context, proplibs []*Proplib) error {
	path := m.MapPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading map geometry: %w", err)
	}

	document, err := ParseMapGeometry(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	m.document = document

	referenced := make(map[string]struct{})
	for _, prop := range document.StaticGeometry.Props {
		referenced[prop.LibraryName] = struct{}{}
	}

	m.proplibs = make(map[string]*Proplib)
	for _, library := range proplibs {
		if _, ok := referenced[library.Name]; !ok {
			continue
		}
		if !library.Info().MatchesNamespace(m.info.Namespaces) {
			continue
		}

		existing, ok := m.proplibs[library.Name]
		if !ok {
			log.Debug().Msgf("resolved proplib %s", library.Name)
			m.proplibs[library.Name] = library
			continue
		}

		log.Warn().Msgf(
			"proplib %s is ambiguous for map %s: %s and %s",
			library.Name,
			m.info.Name,
			existing.Root(),
			library.Root(),
		)
		if library.Root() < existing.Root() {
			m.proplibs[library.Name] = library
		}
	}

	names := make([]string, 0, len(referenced))
	for name := range referenced {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := m.proplibs[name]; !ok {
			log.Warn().Msgf(
				"proplib %s not found for map %s (namespaces %v)",
				name,
				m.info.Name,
				m.info.Namespaces,
			)
		}
	}

	return nil
}

func (m *Map) OutputFiles(ctx context.Context) (map[string][]byte, error) {
	if m.document == nil {
		return nil, fmt.Errorf("map %s has unresolved dependencies", m.info.Name)
	}

	names := make([]string, 0, len(m.proplibs))
	for name := range m.proplibs {
		names = append(names, name)
	}
	sort.Strings(names)

	manifest := ProplibsManifest{
		Libraries: make([]LibraryReference, 0, len(names)),
	}
	infos := make([]*Info, 0, len(names))
	for _, name := range names {
		info := m.proplibs[name].Info()
		manifest.Libraries = append(manifest.Libraries, LibraryReference{
			Name:    name,
			ID:      strconv.FormatInt(info.ID, 16),
			Version: strconv.FormatInt(info.Version, 16),
		})
		infos = append(infos, info)
	}

	log.Info().Msgf(
		"map %s: %d props, %d boxes, %d planes, %d triangles",
		m.info.Name,
		len(m.document.StaticGeometry.Props),
		len(m.document.CollisionGeometry.Boxes),
		len(m.document.CollisionGeometry.Planes),
		len(m.document.CollisionGeometry.Triangles),
	)

	public, err := xml.Marshal(m.document.Public())
	if err != nil {
		return nil, err
	}

	libraries, err := xml.Marshal(manifest)
	if err != nil {
		return nil, err
	}

	private, err := json.MarshalIndent(m.document.Private(infos), "", "  ")
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		"map.xml":      public,
		"proplibs.xml": libraries,
		"private.json": private,
	}, nil
}
