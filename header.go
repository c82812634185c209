package pltx

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// SignalMetadata is the descriptive record for one signal in a PLTX file.
type SignalMetadata struct {
	Name        string
	Unit        string
	Description string
	Source      string
}

// FileHeader is the file-wide preamble: version, compression tag, creation
// timestamp, and the id→metadata map for every signal declared in the file.
type FileHeader struct {
	Version     uint8
	Compression uint8
	Created     float64
	Signals     map[uint32]SignalMetadata
}

// parseFileHeader reads the 16-byte prefix and signal_count signal entries
// from the start of r. It does not validate the compression byte: that
// happens lazily when a chunk is decoded, so metadata remains inspectable
// even when the declared codec is unsupported.
func parseFileHeader(r io.Reader) (*FileHeader, error) {
	prefix := make([]byte, 4+fileHeaderPrefixSize)
	if err := readFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read file header prefix: %w", err)
	}
	if string(prefix[:4]) != string(FileMagic) {
		return nil, &InvalidMagicError{Location: "file header", Expected: FileMagic, Got: append([]byte(nil), prefix[:4]...)}
	}
	version := prefix[4]
	compression := prefix[5]
	created, _, err := getFloat64(prefix, 6)
	if err != nil {
		return nil, fmt.Errorf("read created timestamp: %w", err)
	}
	signalCount, _, err := getUint16(prefix, 14)
	if err != nil {
		return nil, fmt.Errorf("read signal count: %w", err)
	}

	header := &FileHeader{
		Version:     version,
		Compression: compression,
		Created:     created,
		Signals:     make(map[uint32]SignalMetadata, signalCount),
	}

	idBuf := make([]byte, 4)
	for i := 0; i < int(signalCount); i++ {
		if err := readFull(r, idBuf); err != nil {
			return nil, fmt.Errorf("read signal id for entry %d: %w", i, err)
		}
		signalID, _, err := getUint32(idBuf, 0)
		if err != nil {
			return nil, fmt.Errorf("decode signal id for entry %d: %w", i, err)
		}
		meta, err := readSignalMetadata(r)
		if err != nil {
			return nil, fmt.Errorf("read metadata for signal %d: %w", signalID, err)
		}
		if _, exists := header.Signals[signalID]; exists {
			logrus.Debugf("pltx: duplicate signal id %d in header, last entry wins", signalID)
		}
		header.Signals[signalID] = *meta
	}

	logrus.Debugf("pltx: parsed file header, version=%d compression=%d signals=%d", version, compression, len(header.Signals))
	return header, nil
}

// readSignalMetadata reads the four length-prefixed strings that make up one
// signal's descriptive record: name, unit, description, source.
func readSignalMetadata(r io.Reader) (*SignalMetadata, error) {
	name, err := readPrefixedStringFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	unit, err := readPrefixedStringFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	description, err := readPrefixedStringFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}
	source, err := readPrefixedStringFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return &SignalMetadata{Name: name, Unit: unit, Description: description, Source: source}, nil
}

// readPrefixedStringFromReader reads a u16 length followed by that many
// bytes directly from a stream, rather than from an in-memory buffer.
func readPrefixedStringFromReader(r io.Reader) (string, error) {
	lenBuf := make([]byte, 2)
	if err := readFull(r, lenBuf); err != nil {
		return "", fmt.Errorf("read length prefix: %w", err)
	}
	length, _, err := getUint16(lenBuf, 0)
	if err != nil {
		return "", err
	}
	strBuf := make([]byte, length)
	if length > 0 {
		if err := readFull(r, strBuf); err != nil {
			return "", fmt.Errorf("read string body: %w", err)
		}
	}
	if !utf8.Valid(strBuf) {
		return "", ErrInvalidUTF8
	}
	return string(strBuf), nil
}
