package pltx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileHeaderNoSignals(t *testing.T) {
	buf := encodeFileHeaderPrefix(1, 0, 1234.5, 0)
	header, err := parseFileHeader(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), header.Version)
	assert.Equal(t, uint8(0), header.Compression)
	assert.InDelta(t, 1234.5, header.Created, 1e-9)
	assert.Empty(t, header.Signals)
}

func TestParseFileHeaderWithSignals(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeFileHeaderPrefix(2, 1, 0, 1))
	buf.Write(encodeSignalEntry(signalSpec{ID: 7, Name: "temperature", Unit: "C", Description: "cabin temp", Source: "sensor-a"}))

	header, err := parseFileHeader(&buf)
	require.NoError(t, err)
	require.Contains(t, header.Signals, uint32(7))
	meta := header.Signals[7]
	assert.Equal(t, "temperature", meta.Name)
	assert.Equal(t, "C", meta.Unit)
	assert.Equal(t, "cabin temp", meta.Description)
	assert.Equal(t, "sensor-a", meta.Source)
}

func TestParseFileHeaderDuplicateSignalIDLastWins(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeFileHeaderPrefix(1, 0, 0, 2))
	buf.Write(encodeSignalEntry(signalSpec{ID: 1, Name: "first"}))
	buf.Write(encodeSignalEntry(signalSpec{ID: 1, Name: "second"}))

	header, err := parseFileHeader(&buf)
	require.NoError(t, err)
	require.Len(t, header.Signals, 1)
	assert.Equal(t, "second", header.Signals[1].Name)
}

func TestParseFileHeaderBadMagic(t *testing.T) {
	buf := encodeFileHeaderPrefix(1, 0, 0, 0)
	buf[0] = 'X'
	_, err := parseFileHeader(bytes.NewReader(buf))
	var magicErr *InvalidMagicError
	require.ErrorAs(t, err, &magicErr)
	assert.Equal(t, "file header", magicErr.Location)
}

func TestParseFileHeaderEmptyStringsAreValid(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeFileHeaderPrefix(1, 0, 0, 1))
	buf.Write(encodeSignalEntry(signalSpec{ID: 0}))

	header, err := parseFileHeader(&buf)
	require.NoError(t, err)
	meta := header.Signals[0]
	assert.Equal(t, "", meta.Name)
	assert.Equal(t, "", meta.Unit)
}
