package pltx

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// SignalRef is a lightweight (id, name) pair returned by ListSignals.
type SignalRef struct {
	SignalID uint32
	Name     string
}

// Reader is an opened PLTX file's runtime state. Once constructed, path,
// header, and index never mutate; the file descriptor's cursor and the
// lazily built zstd decoder are the only shared mutable state, and every
// chunk read acquires mu for its duration. A Reader is safe for concurrent use from multiple goroutines.
type Reader struct {
	path     string
	f        *os.File
	fileSize int64
	header   *FileHeader
	index    Index

	mu       sync.Mutex
	decoders compressionDecoders
}

// Open parses the header and trailing index of the file at path and returns
// a ready-to-query Reader. The file descriptor stays open until
// Reader.Close is called.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	header, err := parseFileHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}
	index, err := parseFooterAndIndex(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse index of %s: %w", path, err)
	}
	for signalID := range index {
		if _, ok := header.Signals[signalID]; !ok {
			logrus.Debugf("pltx: index references signal %d absent from header of %s", signalID, path)
		}
	}

	logrus.Debugf("pltx: opened %s, %d signals, %d bytes", path, len(header.Signals), info.Size())
	return &Reader{
		path:     path,
		f:        f,
		fileSize: info.Size(),
		header:   header,
		index:    index,
	}, nil
}

// Close releases the underlying file descriptor. The format has no explicit
// flush or trailer to write; this simply closes the OS handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Path returns the filesystem path the Reader was opened from, for diagnostics.
func (r *Reader) Path() string {
	return r.path
}

// Version returns the file's declared format version.
func (r *Reader) Version() uint8 {
	return r.header.Version
}

// Created returns the file's declared creation timestamp, stored opaquely.
func (r *Reader) Created() float64 {
	return r.header.Created
}

// ListSignals returns every declared signal as an (id, name) pair, sorted by
// ascending signal id. This never fails.
func (r *Reader) ListSignals() []SignalRef {
	refs := make([]SignalRef, 0, len(r.header.Signals))
	for id, meta := range r.header.Signals {
		refs = append(refs, SignalRef{SignalID: id, Name: meta.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].SignalID < refs[j].SignalID })
	return refs
}

// GetSignalMetadata returns the metadata for signalID, if declared. This
// never fails: the boolean reports presence.
func (r *Reader) GetSignalMetadata(signalID uint32) (*SignalMetadata, bool) {
	meta, ok := r.header.Signals[signalID]
	if !ok {
		return nil, false
	}
	return &meta, true
}

// GetSignalIDByName returns the id of the first signal named name, scanning
// in ascending signal-id order so that behavior on duplicate names is at
// least deterministic. This never fails: the boolean reports a match.
func (r *Reader) GetSignalIDByName(name string) (uint32, bool) {
	ids := make([]uint32, 0, len(r.header.Signals))
	for id := range r.header.Signals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if r.header.Signals[id].Name == name {
			return id, true
		}
	}
	return 0, false
}
