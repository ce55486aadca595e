// Package threeds reads the material table of a binary 3DS document.
// The pipeline only needs the texture-map names declared by a mesh's
// materials, so everything outside the editor/material subtree is
// skipped by chunk length.
package threeds

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	ChunkMain         uint16 = 0x4D4D
	ChunkEditor       uint16 = 0x3D3D
	ChunkMaterial     uint16 = 0xAFFF
	ChunkMaterialName uint16 = 0xA000
	ChunkTextureMap   uint16 = 0xA200
	ChunkMapName      uint16 = 0xA300
)

// Chunk layout: u16 id, u32 length, both little-endian. The length
// includes the six header bytes.
const chunkHeaderSize = 6

type Material struct {
	Name       string
	TextureMap string
}

type Document struct {
	Materials []Material
}

func Parse(data []byte) (*Document, error) {
	if len(data) < chunkHeaderSize {
		return nil, fmt.Errorf("not a 3ds document: %d bytes", len(data))
	}

	id := binary.LittleEndian.Uint16(data)
	if id != ChunkMain {
		return nil, fmt.Errorf("not a 3ds document: leading chunk %#04x", id)
	}

	length := int(binary.LittleEndian.Uint32(data[2:]))
	if length < chunkHeaderSize || length > len(data) {
		return nil, fmt.Errorf("main chunk length %d overruns document of %d bytes", length, len(data))
	}

	document := &Document{}
	err := eachChunk(data[chunkHeaderSize:length], func(id uint16, body []byte) error {
		if id != ChunkEditor {
			return nil
		}
		return eachChunk(body, func(id uint16, body []byte) error {
			if id != ChunkMaterial {
				return nil
			}
			return document.readMaterial(body)
		})
	})
	if err != nil {
		return nil, err
	}

	return document, nil
}

// DefaultTextureMap returns the first texture-map name declared by any
// material, the binding a mesh falls back to when a prop placement
// names no explicit texture.
func (d *Document) DefaultTextureMap() (string, bool) {
	for _, material := range d.Materials {
		if material.TextureMap != "" {
			return material.TextureMap, true
		}
	}
	return "", false
}

func (d *Document) readMaterial(body []byte) error {
	material := Material{}
	err := eachChunk(body, func(id uint16, body []byte) error {
		switch id {
		case ChunkMaterialName:
			material.Name = cstring(body)
		case ChunkTextureMap:
			return eachChunk(body, func(id uint16, body []byte) error {
				if id == ChunkMapName && material.TextureMap == "" {
					material.TextureMap = cstring(body)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.Materials = append(d.Materials, material)
	return nil
}

func eachChunk(data []byte, visit func(id uint16, body []byte) error) error {
	pos := 0
	for pos < len(data) {
		if pos+chunkHeaderSize > len(data) {
			return fmt.Errorf("truncated chunk header at offset %d", pos)
		}

		id := binary.LittleEndian.Uint16(data[pos:])
		length := int(binary.LittleEndian.Uint32(data[pos+2:]))
		if length < chunkHeaderSize || pos+length > len(data) {
			return fmt.Errorf("chunk %#04x length %d overruns parent", id, length)
		}

		if err := visit(id, data[pos+chunkHeaderSize:pos+length]); err != nil {
			return err
		}

		pos += length
	}

	return nil
}

func cstring(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}
