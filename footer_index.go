package pltx

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// IndexEntry locates one physical chunk on disk and carries the time bounds
// used for pruning without decompressing the chunk.
type IndexEntry struct {
	SignalID     uint32
	Offset       uint64
	MinTimestamp float64
	MaxTimestamp float64
}

// Index maps a signal id to its chunks' locators, in the order they appear
// on disk. The reader never re-sorts this order.
type Index map[uint32][]IndexEntry

// parseFooterAndIndex reads the trailing footer, follows it to the index
// section, and groups the index entries by signal id in on-disk order.
func parseFooterAndIndex(rs io.ReadSeeker) (Index, error) {
	fileSize, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek to end: %w", err)
	}
	if fileSize < footerSize {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("file too small (%d bytes) to contain a footer", fileSize)}
	}
	if _, err := rs.Seek(fileSize-footerSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to footer: %w", err)
	}
	footerBuf := make([]byte, footerSize)
	if err := readFull(rs, footerBuf); err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	if string(footerBuf[:4]) != string(FooterMagic) {
		return nil, &InvalidMagicError{Location: "footer", Expected: FooterMagic, Got: append([]byte(nil), footerBuf[:4]...)}
	}
	indexOffset, _, err := getUint64(footerBuf, 4)
	if err != nil {
		return nil, fmt.Errorf("read index offset: %w", err)
	}
	if int64(indexOffset) < 0 || int64(indexOffset) > fileSize-footerSize {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("index offset %d out of range for file of size %d", indexOffset, fileSize)}
	}

	if _, err := rs.Seek(int64(indexOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to index: %w", err)
	}
	indexPrefix := make([]byte, 8)
	if err := readFull(rs, indexPrefix); err != nil {
		return nil, fmt.Errorf("read index prefix: %w", err)
	}
	if string(indexPrefix[:4]) != string(IndexMagic) {
		return nil, &InvalidMagicError{Location: "index", Expected: IndexMagic, Got: append([]byte(nil), indexPrefix[:4]...)}
	}
	entryCount, _, err := getUint32(indexPrefix, 4)
	if err != nil {
		return nil, fmt.Errorf("read entry count: %w", err)
	}

	remaining := fileSize - footerSize - int64(indexOffset) - 8
	needed := int64(entryCount) * indexEntrySize
	if needed < 0 || needed > remaining {
		return nil, &CorruptedDataError{Message: fmt.Sprintf("index declares %d entries (%d bytes), only %d bytes remain", entryCount, needed, remaining)}
	}

	index := make(Index)
	entryBuf := make([]byte, indexEntrySize)
	for i := uint32(0); i < entryCount; i++ {
		if err := readFull(rs, entryBuf); err != nil {
			return nil, fmt.Errorf("read index entry %d: %w", i, err)
		}
		entry, err := decodeIndexEntry(entryBuf)
		if err != nil {
			return nil, fmt.Errorf("decode index entry %d: %w", i, err)
		}
		index[entry.SignalID] = append(index[entry.SignalID], entry)
	}

	logrus.Debugf("pltx: parsed index, %d entries across %d signals", entryCount, len(index))
	return index, nil
}

func decodeIndexEntry(buf []byte) (IndexEntry, error) {
	signalID, offset, err := getUint32(buf, 0)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("signal id: %w", err)
	}
	chunkOffset, offset, err := getUint64(buf, offset)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("offset: %w", err)
	}
	minTS, offset, err := getFloat64(buf, offset)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("min timestamp: %w", err)
	}
	maxTS, _, err := getFloat64(buf, offset)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("max timestamp: %w", err)
	}
	return IndexEntry{SignalID: signalID, Offset: chunkOffset, MinTimestamp: minTS, MaxTimestamp: maxTS}, nil
}
