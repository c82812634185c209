package pltx

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// TimeseriesChunk is a materialized span of (timestamp, value) records. The
// two slices are always the same length; length zero is valid.
type TimeseriesChunk struct {
	Timestamps []float64
	Values     []float64
}

// Len returns the number of records in the chunk.
func (c *TimeseriesChunk) Len() int {
	return len(c.Timestamps)
}

// append copies another chunk's records onto this one, preserving order.
func (c *TimeseriesChunk) append(other *TimeseriesChunk) {
	c.Timestamps = append(c.Timestamps, other.Timestamps...)
	c.Values = append(c.Values, other.Values...)
}

// readChunkAt seeks to offset, reads and validates the chunk header, reads
// and decompresses the payload, and materializes its records. The caller
// must hold r.mu for the duration of the call: this performs a positioned
// read against the single shared file descriptor.
func (r *Reader) readChunkAt(offset uint64) (*TimeseriesChunk, error) {
	if int64(offset) < 0 || int64(offset) > r.fileSize {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("chunk offset %d out of range for file of size %d", offset, r.fileSize)}
	}
	if _, err := r.f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to chunk at %d: %w", offset, err)
	}

	magicAndHeader := make([]byte, 4+chunkHeaderSize)
	if err := readFull(r.f, magicAndHeader); err != nil {
		return nil, fmt.Errorf("read chunk header at %d: %w", offset, err)
	}
	if string(magicAndHeader[:4]) != string(ChunkMagic) {
		return nil, &InvalidMagicError{Location: fmt.Sprintf("chunk at offset %d", offset), Expected: ChunkMagic, Got: append([]byte(nil), magicAndHeader[:4]...)}
	}

	signalID, hoffset, err := getUint32(magicAndHeader, 4)
	if err != nil {
		return nil, fmt.Errorf("read chunk signal id: %w", err)
	}
	recordCount, hoffset, err := getUint32(magicAndHeader, hoffset)
	if err != nil {
		return nil, fmt.Errorf("read chunk record count: %w", err)
	}
	rawLength, hoffset, err := getUint32(magicAndHeader, hoffset)
	if err != nil {
		return nil, fmt.Errorf("read chunk raw length: %w", err)
	}
	compressedLength, hoffset, err := getUint32(magicAndHeader, hoffset)
	if err != nil {
		return nil, fmt.Errorf("read chunk compressed length: %w", err)
	}
	// min_ts/max_ts trail the header but are unused here: the index copy of
	// these bounds is authoritative for time-range pruning.

	if uint64(recordCount)*recordSize != uint64(rawLength) {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("chunk at %d: record_count %d * 16 != raw_length %d", offset, recordCount, rawLength)}
	}

	remaining := r.fileSize - int64(offset) - int64(len(magicAndHeader))
	if int64(compressedLength) < 0 || int64(compressedLength) > remaining {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("chunk at %d declares %d compressed bytes, only %d remain", offset, compressedLength, remaining)}
	}

	compressed := make([]byte, compressedLength)
	if compressedLength > 0 {
		if err := readFull(r.f, compressed); err != nil {
			return nil, fmt.Errorf("read chunk payload at %d: %w", offset, err)
		}
	}

	decompressed, err := r.decoders.decompress(compressed, CompressionTag(r.header.Compression), int(rawLength))
	if err != nil {
		return nil, err
	}

	chunk := materializeRecords(decompressed, int(recordCount))
	logrus.Debugf("pltx: read chunk at offset %d for signal %d, %d records", offset, signalID, recordCount)
	return chunk, nil
}

// materializeRecords splits a decompressed payload into parallel timestamp
// and value slices, one pair per 16-byte record.
func materializeRecords(payload []byte, recordCount int) *TimeseriesChunk {
	chunk := &TimeseriesChunk{
		Timestamps: make([]float64, recordCount),
		Values:     make([]float64, recordCount),
	}
	for i := 0; i < recordCount; i++ {
		base := i * recordSize
		ts, _, _ := getFloat64(payload, base)
		val, _, _ := getFloat64(payload, base+8)
		chunk.Timestamps[i] = ts
		chunk.Values[i] = val
	}
	return chunk
}
