package pltx

import (
	"bytes"
	"os"
	"testing"

	"github.com/klauspost/compress/zlib"
	zstdlib "github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// signalSpec describes one signal entry for buildFile.
type signalSpec struct {
	ID          uint32
	Name        string
	Unit        string
	Description string
	Source      string
}

// recordPair is one (timestamp, value) pair as written on disk.
type recordPair struct {
	Timestamp float64
	Value     float64
}

// chunkSpec describes one chunk for buildFile: the signal it belongs to and
// the records it carries, in the order they should appear on disk.
type chunkSpec struct {
	SignalID uint32
	Records  []recordPair
}

func rp(ts, val float64) recordPair {
	return recordPair{Timestamp: ts, Value: val}
}

// encodeSignalEntry builds one signal_id + four prefixed strings entry.
func encodeSignalEntry(s signalSpec) []byte {
	var buf bytes.Buffer
	idBuf := make([]byte, 4)
	putUint32(idBuf, s.ID)
	buf.Write(idBuf)
	for _, field := range []string{s.Name, s.Unit, s.Description, s.Source} {
		strBuf := make([]byte, 2+len(field))
		putPrefixedString(strBuf, field)
		buf.Write(strBuf)
	}
	return buf.Bytes()
}

// encodeFileHeaderPrefix builds the 16-byte magic+prefix for a file header.
func encodeFileHeaderPrefix(version, compression uint8, created float64, signalCount uint16) []byte {
	buf := make([]byte, 4+fileHeaderPrefixSize)
	copy(buf, FileMagic)
	buf[4] = version
	buf[5] = compression
	putFloat64(buf[6:], created)
	putUint16(buf[14:], signalCount)
	return buf
}

// compressPayload compresses data according to tag, as a real file producer would.
func compressPayload(t *testing.T, data []byte, tag CompressionTag) []byte {
	switch tag {
	case CompressionNone:
		return data
	case CompressionZlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	case CompressionLZ4:
		if len(data) == 0 {
			return nil
		}
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(data, dst)
		require.NoError(t, err)
		require.NotZero(t, n, "lz4 reports 0 for an incompressible block; use larger or repetitive test payloads")
		return dst[:n]
	case CompressionZstd:
		var buf bytes.Buffer
		w, err := zstdlib.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	default:
		t.Fatalf("unsupported compression tag in test helper: %d", tag)
		return nil
	}
}

// encodeChunk builds one full "CHNK" record (magic, header, compressed payload).
func encodeChunk(t *testing.T, tag CompressionTag, spec chunkSpec) []byte {
	raw := make([]byte, 0, len(spec.Records)*recordSize)
	var minTS, maxTS float64
	for i, rec := range spec.Records {
		recBuf := make([]byte, recordSize)
		putFloat64(recBuf, rec.Timestamp)
		putFloat64(recBuf[8:], rec.Value)
		raw = append(raw, recBuf...)
		if i == 0 || rec.Timestamp < minTS {
			minTS = rec.Timestamp
		}
		if i == 0 || rec.Timestamp > maxTS {
			maxTS = rec.Timestamp
		}
	}
	compressed := compressPayload(t, raw, tag)

	header := make([]byte, chunkHeaderSize)
	offset := putUint32(header, spec.SignalID)
	offset += putUint32(header[offset:], uint32(len(spec.Records)))
	offset += putUint32(header[offset:], uint32(len(raw)))
	offset += putUint32(header[offset:], uint32(len(compressed)))
	offset += putFloat64(header[offset:], minTS)
	putFloat64(header[offset:], maxTS)

	var buf bytes.Buffer
	buf.Write(ChunkMagic)
	buf.Write(header)
	buf.Write(compressed)
	return buf.Bytes()
}

// encodeIndexEntry builds one 28-byte index entry.
func encodeIndexEntry(e IndexEntry) []byte {
	buf := make([]byte, indexEntrySize)
	offset := putUint32(buf, e.SignalID)
	offset += putUint64(buf[offset:], e.Offset)
	offset += putFloat64(buf[offset:], e.MinTimestamp)
	putFloat64(buf[offset:], e.MaxTimestamp)
	return buf
}

// encodeFooter builds the trailing 12-byte footer.
func encodeFooter(indexOffset uint64) []byte {
	buf := make([]byte, footerSize)
	copy(buf, FooterMagic)
	putUint64(buf[4:], indexOffset)
	return buf
}

// buildFile assembles a complete synthetic PLTX file: header, chunks (in the
// given order, which becomes their on-disk and index order), index, footer.
// It computes each chunk's real file offset and derives index entries from
// the chunks' own min/max timestamps, the way a real writer would.
func buildFile(t *testing.T, compression CompressionTag, signals []signalSpec, chunks []chunkSpec) []byte {
	var out bytes.Buffer
	out.Write(encodeFileHeaderPrefix(1, uint8(compression), 0, uint16(len(signals))))
	for _, s := range signals {
		out.Write(encodeSignalEntry(s))
	}

	var entries []IndexEntry
	for _, c := range chunks {
		offset := uint64(out.Len())
		encoded := encodeChunk(t, compression, c)
		out.Write(encoded)
		var minTS, maxTS float64
		for i, rec := range c.Records {
			if i == 0 || rec.Timestamp < minTS {
				minTS = rec.Timestamp
			}
			if i == 0 || rec.Timestamp > maxTS {
				maxTS = rec.Timestamp
			}
		}
		entries = append(entries, IndexEntry{
			SignalID:     c.SignalID,
			Offset:       offset,
			MinTimestamp: minTS,
			MaxTimestamp: maxTS,
		})
	}

	indexOffset := uint64(out.Len())
	out.Write(IndexMagic)
	countBuf := make([]byte, 4)
	putUint32(countBuf, uint32(len(entries)))
	out.Write(countBuf)
	for _, e := range entries {
		out.Write(encodeIndexEntry(e))
	}

	out.Write(encodeFooter(indexOffset))
	return out.Bytes()
}

// writeTempFile writes data to a new temp file and returns its path.
func writeTempFile(t *testing.T, data []byte) string {
	f, err := os.CreateTemp(t.TempDir(), "pltx-*.pltx")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// newBareReader opens a synthetic byte buffer as a Reader without going
// through Open's header/index parsing, for tests that exercise the chunk
// layer directly against a hand-placed chunk at a known offset.
func newBareReader(t *testing.T, data []byte, compression CompressionTag) *Reader {
	path := writeTempFile(t, data)
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return &Reader{
		path:     path,
		f:        f,
		fileSize: int64(len(data)),
		header:   &FileHeader{Compression: uint8(compression), Signals: map[uint32]SignalMetadata{}},
		index:    Index{},
	}
}
