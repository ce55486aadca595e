// Package codec encodes the typed records embedded in resource bundles
// (animation properties, localization payloads). Bundles are
// content-addressed and never rewritten, so encoding the same record
// twice must produce identical bytes; the CBOR encoder runs in core
// deterministic mode to guarantee that.
package codec

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zlib"
)

var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// MarshalCompressed encodes v and wraps it in a zlib stream.
func MarshalCompressed(v interface{}) ([]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func UnmarshalCompressed(data []byte, v interface{}) error {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	return Unmarshal(decoded, v)
}
