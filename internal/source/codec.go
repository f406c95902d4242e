package source

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/tellus3d/tellus/pkg/geo"
)

// Heightfield payloads are a small fixed header followed by row-major
// float32 samples, zstd-compressed as a whole.
var heightfieldMagic = []byte("THF1")

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeHeightfield serializes and compresses a heightfield.
func EncodeHeightfield(hf *geo.Heightfield) ([]byte, error) {
	if hf.Cols > math.MaxUint16 || hf.Rows > math.MaxUint16 {
		return nil, fmt.Errorf("heightfield %dx%d too large to encode", hf.Cols, hf.Rows)
	}

	var buf bytes.Buffer
	buf.Write(heightfieldMagic)
	binary.Write(&buf, binary.LittleEndian, uint16(hf.Cols))
	binary.Write(&buf, binary.LittleEndian, uint16(hf.Rows))
	binary.Write(&buf, binary.LittleEndian, hf.Extent.XMin)
	binary.Write(&buf, binary.LittleEndian, hf.Extent.YMin)
	binary.Write(&buf, binary.LittleEndian, hf.Extent.XMax)
	binary.Write(&buf, binary.LittleEndian, hf.Extent.YMax)
	binary.Write(&buf, binary.LittleEndian, hf.Heights)

	return zstdEncoder.EncodeAll(buf.Bytes(), nil), nil
}

// DecodeHeightfield decompresses and parses a heightfield payload.
func DecodeHeightfield(data []byte) (*geo.Heightfield, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("heightfield payload: %w", err)
	}
	// 4-byte magic, uint16 cols/rows, 4 float64 extent values.
	const headerSize = 4 + 2 + 2 + 32
	if len(raw) < headerSize || !bytes.Equal(raw[:4], heightfieldMagic) {
		return nil, fmt.Errorf("heightfield payload: bad header")
	}

	r := bytes.NewReader(raw[4:])
	var cols, rows uint16
	var extent geo.Extent
	binary.Read(r, binary.LittleEndian, &cols)
	binary.Read(r, binary.LittleEndian, &rows)
	binary.Read(r, binary.LittleEndian, &extent.XMin)
	binary.Read(r, binary.LittleEndian, &extent.YMin)
	binary.Read(r, binary.LittleEndian, &extent.XMax)
	binary.Read(r, binary.LittleEndian, &extent.YMax)

	hf := geo.NewHeightfield(int(cols), int(rows), extent)
	if err := binary.Read(r, binary.LittleEndian, hf.Heights); err != nil {
		return nil, fmt.Errorf("heightfield payload: truncated samples: %w", err)
	}
	return hf, nil
}

// EncodeImage serializes an image as gzip-wrapped PNG.
func EncodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := png.Encode(zw, img); err != nil {
		return nil, fmt.Errorf("encoding tile image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("encoding tile image: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage parses a stored tile image. Accepts both gzip-wrapped
// and bare PNG payloads.
func DecodeImage(data []byte) (image.Image, error) {
	var r io.Reader = bytes.NewReader(data)
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("decoding tile image: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding tile image: %w", err)
	}
	return img, nil
}
