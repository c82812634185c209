package pltx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compressionDecoders holds the reusable, stateful decoders a Reader keeps
// alive across chunk reads: constructing a zstd decoder is comparatively
// expensive, so one is built lazily and reused for every subsequent chunk
// rather than rebuilt per call.
type compressionDecoders struct {
	zstd *zstd.Decoder
}

// decompress dispatches on the file-level compression tag and returns a
// buffer of exactly expectedLen bytes, or a DecompressionFailedError,
// CorruptedDataError (payload length differs from expectedLen) or
// UnsupportedCompressionError.
func (d *compressionDecoders) decompress(data []byte, tag CompressionTag, expectedLen int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(data) != expectedLen {
			return nil, &CorruptedDataError{Message: fmt.Sprintf("uncompressed payload is %d bytes, expected %d", len(data), expectedLen)}
		}
		out := make([]byte, expectedLen)
		copy(out, data)
		return out, nil
	case CompressionZlib:
		return d.decompressZlib(data, expectedLen)
	case CompressionLZ4:
		return d.decompressLZ4(data, expectedLen)
	case CompressionZstd:
		return d.decompressZstd(data, expectedLen)
	default:
		return nil, &UnsupportedCompressionError{Tag: uint8(tag)}
	}
}

func (d *compressionDecoders) decompressZlib(data []byte, expectedLen int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecompressionFailedError{Message: "invalid zlib stream", Err: err}
	}
	defer zr.Close()
	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, &DecompressionFailedError{Message: "truncated or corrupt zlib stream", Err: err}
	}
	// Read on to the end of the stream so the trailing checksum is verified
	// and any bytes beyond expectedLen are detected.
	extra, err := io.Copy(io.Discard, zr)
	if err != nil {
		return nil, &DecompressionFailedError{Message: "truncated or corrupt zlib stream", Err: err}
	}
	if extra != 0 {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("zlib payload decompressed to %d bytes, expected %d", int64(expectedLen)+extra, expectedLen)}
	}
	return out, nil
}

// decompressLZ4 decodes the block format (not the LZ4 frame format): the
// chunk layer already knows the decompressed length from the chunk header,
// so a single UncompressBlock call suffices and the decoded length is
// checked against it here.
func (d *compressionDecoders) decompressLZ4(data []byte, expectedLen int) ([]byte, error) {
	if expectedLen == 0 {
		if len(data) != 0 {
			return nil, &CorruptedDataError{Message: "lz4 block is non-empty but raw_length is 0"}
		}
		return []byte{}, nil
	}
	out := make([]byte, expectedLen)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, &DecompressionFailedError{Message: "invalid lz4 block", Err: err}
	}
	if n != expectedLen {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("lz4 block decompressed to %d bytes, expected %d", n, expectedLen)}
	}
	return out, nil
}

func (d *compressionDecoders) decompressZstd(data []byte, expectedLen int) ([]byte, error) {
	var err error
	if d.zstd == nil {
		d.zstd, err = zstd.NewReader(nil)
		if err != nil {
			return nil, &DecompressionFailedError{Message: "failed to construct zstd decoder", Err: err}
		}
	}
	out, err := d.zstd.DecodeAll(data, make([]byte, 0, expectedLen))
	if err != nil {
		return nil, &DecompressionFailedError{Message: "invalid zstd stream", Err: err}
	}
	if len(out) != expectedLen {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("zstd payload decompressed to %d bytes, expected %d", len(out), expectedLen)}
	}
	return out, nil
}
