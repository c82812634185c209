package pltx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() []byte {
	raw := make([]byte, 0, recordSize*4)
	for i := 0; i < 4; i++ {
		buf := make([]byte, recordSize)
		putFloat64(buf, float64(i))
		putFloat64(buf[8:], float64(i)*2)
		raw = append(raw, buf...)
	}
	return raw
}

func TestDecompressNone(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	out, err := d.decompress(raw, CompressionNone, len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompressNoneLengthMismatch(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	_, err := d.decompress(raw, CompressionNone, len(raw)+1)
	assert.ErrorIs(t, err, &CorruptedDataError{})
}

func TestDecompressZlibRoundTrip(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	compressed := compressPayload(t, raw, CompressionZlib)
	out, err := d.decompress(compressed, CompressionZlib, len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompressLZ4RoundTrip(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	compressed := compressPayload(t, raw, CompressionLZ4)
	out, err := d.decompress(compressed, CompressionLZ4, len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompressZstdRoundTrip(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	compressed := compressPayload(t, raw, CompressionZstd)
	out, err := d.decompress(compressed, CompressionZstd, len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompressZstdReusesDecoder(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	compressed := compressPayload(t, raw, CompressionZstd)
	_, err := d.decompress(compressed, CompressionZstd, len(raw))
	require.NoError(t, err)
	first := d.zstd
	_, err = d.decompress(compressed, CompressionZstd, len(raw))
	require.NoError(t, err)
	assert.Same(t, first, d.zstd)
}

func TestDecompressZlibTruncated(t *testing.T) {
	var d compressionDecoders
	raw := samplePayload()
	compressed := compressPayload(t, raw, CompressionZlib)
	_, err := d.decompress(compressed[:len(compressed)-2], CompressionZlib, len(raw))
	assert.Error(t, err)
}

func TestDecompressUnsupportedTag(t *testing.T) {
	var d compressionDecoders
	_, err := d.decompress(nil, CompressionTag(99), 0)
	var unsupported *UnsupportedCompressionError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, uint8(99), unsupported.Tag)
}
