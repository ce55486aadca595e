package tara

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPreserved(t *testing.T) {
	archive := New()
	archive.AddEntry("p", []byte{1, 2, 3})
	archive.AddEntry("a", []byte("alpha"))
	archive.AddEntry("i", []byte("diffuse"))

	data, err := archive.Encode()
	require.NoError(t, err)

	decoded, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	entries := decoded.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "p", entries[0].Name)
	assert.Equal(t, "a", entries[1].Name)
	assert.Equal(t, "i", entries[2].Name)
	assert.Equal(t, []byte("alpha"), entries[1].Data)
}

func TestEmpty(t *testing.T) {
	data, err := New().Encode()
	require.NoError(t, err)

	decoded, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, decoded.Entries())
}

func TestTruncated(t *testing.T) {
	archive := New()
	archive.AddEntry("library.xml", bytes.Repeat([]byte{7}, 64))

	data, err := archive.Encode()
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(data[:len(data)-8]))
	assert.Error(t, err)
}

func TestDeterministicEncoding(t *testing.T) {
	build := func() []byte {
		archive := New()
		archive.AddEntry("one.3ds", []byte("mesh"))
		archive.AddEntry("two.jpg", []byte("texture"))
		data, err := archive.Encode()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, build(), build())
}
