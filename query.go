package pltx

import "github.com/sirupsen/logrus"

// chunksForSignal returns the index entries for signalID in on-disk order,
// or a SignalNotFoundError if the signal has no entries in the index.
func (r *Reader) chunksForSignal(signalID uint32) ([]IndexEntry, error) {
	entries, ok := r.index[signalID]
	if !ok {
		logrus.Debugf("pltx: signal %d not found in index of %s", signalID, r.path)
		return nil, &SignalNotFoundError{SignalID: signalID}
	}
	return entries, nil
}

// readChunkLocked acquires the file-descriptor lock for the duration of one
// chunk read. The lock is released between successive calls, so two
// concurrent queries may interleave their chunk reads; each query's own
// records are nonetheless returned in on-disk order.
func (r *Reader) readChunkLocked(entry IndexEntry) (*TimeseriesChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readChunkAt(entry.Offset)
}

// ReadSignalChunks returns one TimeseriesChunk per on-disk chunk belonging
// to signalID, in on-disk order, without concatenating them. Every chunk is
// read and decompressed before the call returns, so, as with ReadSignalAll,
// the signal's entire history is held in memory at once.
func (r *Reader) ReadSignalChunks(signalID uint32) ([]*TimeseriesChunk, error) {
	entries, err := r.chunksForSignal(signalID)
	if err != nil {
		return nil, err
	}
	chunks := make([]*TimeseriesChunk, 0, len(entries))
	for _, entry := range entries {
		chunk, err := r.readChunkLocked(entry)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// ReadSignalAll returns every record for signalID, concatenated across all
// of its chunks in on-disk order, as a single TimeseriesChunk.
func (r *Reader) ReadSignalAll(signalID uint32) (*TimeseriesChunk, error) {
	chunks, err := r.ReadSignalChunks(signalID)
	if err != nil {
		return nil, err
	}
	result := &TimeseriesChunk{Timestamps: []float64{}, Values: []float64{}}
	for _, chunk := range chunks {
		result.append(chunk)
	}
	return result, nil
}

// ReadTimeRange returns every record for signalID whose timestamp falls in
// [lo, hi] inclusive, preserving on-disk order across chunks. A chunk whose
// [MinTimestamp, MaxTimestamp] is entirely outside [lo, hi] is skipped
// without decompression; a chunk that straddles the range is decompressed
// in full and filtered record-by-record. If lo > hi the result is empty;
// this is not an error.
func (r *Reader) ReadTimeRange(signalID uint32, lo, hi float64) (*TimeseriesChunk, error) {
	entries, err := r.chunksForSignal(signalID)
	if err != nil {
		return nil, err
	}
	result := &TimeseriesChunk{Timestamps: []float64{}, Values: []float64{}}
	if lo > hi {
		return result, nil
	}
	for _, entry := range entries {
		if entry.MaxTimestamp < lo || entry.MinTimestamp > hi {
			continue
		}
		chunk, err := r.readChunkLocked(entry)
		if err != nil {
			return nil, err
		}
		for i, ts := range chunk.Timestamps {
			if ts >= lo && ts <= hi {
				result.Timestamps = append(result.Timestamps, ts)
				result.Values = append(result.Values, chunk.Values[i])
			}
		}
	}
	return result, nil
}
