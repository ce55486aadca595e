// Package tara implements the flat archive container used by resource
// bundles: a sequence of named byte blobs whose order is significant.
//
// Wire format, all integers big-endian: a u32 entry count, then for
// each entry a u16 name length, the name bytes, a u32 data length and
// the data bytes.
package tara

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type Entry struct {
	Name string
	Data []byte
}

type Archive struct {
	entries []Entry
}

func New() *Archive {
	return &Archive{}
}

// AddEntry appends a named blob. Entries are written in insertion
// order; callers that depend on a fixed layout must add in that order.
func (a *Archive) AddEntry(name string, data []byte) {
	a.entries = append(a.entries, Entry{Name: name, Data: data})
}

func (a *Archive) Entries() []Entry {
	return a.entries
}

func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	var buffer bytes.Buffer

	if err := binary.Write(&buffer, binary.BigEndian, uint32(len(a.entries))); err != nil {
		return 0, err
	}

	for _, entry := range a.entries {
		if len(entry.Name) > math.MaxUint16 {
			return 0, fmt.Errorf("entry name %q too long", entry.Name)
		}

		if err := binary.Write(&buffer, binary.BigEndian, uint16(len(entry.Name))); err != nil {
			return 0, err
		}
		buffer.WriteString(entry.Name)
		if err := binary.Write(&buffer, binary.BigEndian, uint32(len(entry.Data))); err != nil {
			return 0, err
		}
		buffer.Write(entry.Data)
	}

	return buffer.WriteTo(w)
}

// Encode writes the archive to a byte slice.
func (a *Archive) Encode() ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := a.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func Read(r io.Reader) (*Archive, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("reading entry count: %w", err)
	}

	archive := New()
	for i := uint32(0); i < count; i++ {
		var nameLength uint16
		if err := binary.Read(r, binary.BigEndian, &nameLength); err != nil {
			return nil, fmt.Errorf("reading entry %d: %w", i, err)
		}

		name := make([]byte, nameLength)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("reading entry %d name: %w", i, err)
		}

		var dataLength uint32
		if err := binary.Read(r, binary.BigEndian, &dataLength); err != nil {
			return nil, fmt.Errorf("reading entry %q: %w", name, err)
		}

		data := make([]byte, dataLength)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("reading entry %q data: %w", name, err)
		}

		archive.AddEntry(string(name), data)
	}

	return archive, nil
}
