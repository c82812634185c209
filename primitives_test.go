package pltx

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUint16ShortBuffer(t *testing.T) {
	_, _, err := getUint16([]byte{0x01}, 0)
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestGetUint32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	putUint32(buf, 0xdeadbeef)
	v, offset, err := getUint32(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
	assert.Equal(t, 4, offset)
}

func TestGetUint64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	putUint64(buf, 0x0102030405060708)
	v, offset, err := getUint64(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v)
	assert.Equal(t, 8, offset)
}

func TestGetFloat64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	putFloat64(buf, 3.14159)
	v, offset, err := getFloat64(buf, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, v, 1e-12)
	assert.Equal(t, 8, offset)
}

func TestGetPrefixedStringRoundTrip(t *testing.T) {
	buf := make([]byte, 2+len("temperature"))
	putPrefixedString(buf, "temperature")
	s, offset, err := getPrefixedString(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "temperature", s)
	assert.Equal(t, len(buf), offset)
}

func TestGetPrefixedStringEmpty(t *testing.T) {
	buf := make([]byte, 2)
	putPrefixedString(buf, "")
	s, offset, err := getPrefixedString(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 2, offset)
}

func TestGetPrefixedStringShortBody(t *testing.T) {
	buf := make([]byte, 2)
	putUint16(buf, 10) // claims 10 bytes follow, but none do
	_, _, err := getPrefixedString(buf, 0)
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestGetPrefixedStringInvalidUTF8(t *testing.T) {
	body := []byte{0xff, 0xfe}
	buf := make([]byte, 2+len(body))
	putUint16(buf, uint16(len(body)))
	copy(buf[2:], body)
	_, _, err := getPrefixedString(buf, 0)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
