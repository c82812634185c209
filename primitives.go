package pltx

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// getUint16 reads a little-endian uint16 at offset, failing on a short buffer.
func getUint16(buf []byte, offset int) (uint16, int, error) {
	if offset < 0 || offset > len(buf)-2 {
		return 0, 0, io.ErrShortBuffer
	}
	return binary.LittleEndian.Uint16(buf[offset:]), offset + 2, nil
}

// getUint32 reads a little-endian uint32 at offset, failing on a short buffer.
func getUint32(buf []byte, offset int) (uint32, int, error) {
	if offset < 0 || offset > len(buf)-4 {
		return 0, 0, io.ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(buf[offset:]), offset + 4, nil
}

// getUint64 reads a little-endian uint64 at offset, failing on a short buffer.
func getUint64(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset > len(buf)-8 {
		return 0, 0, io.ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(buf[offset:]), offset + 8, nil
}

// getFloat64 reads a little-endian IEEE-754 double at offset.
func getFloat64(buf []byte, offset int) (float64, int, error) {
	bits, newoffset, err := getUint64(buf, offset)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(bits), newoffset, nil
}

// getPrefixedString reads a u16-length-prefixed UTF-8 string at offset.
func getPrefixedString(buf []byte, offset int) (string, int, error) {
	length, offset, err := getUint16(buf, offset)
	if err != nil {
		return "", 0, err
	}
	end := offset + int(length)
	if end > len(buf) {
		return "", 0, io.ErrShortBuffer
	}
	s := buf[offset:end]
	if !utf8.Valid(s) {
		return "", 0, ErrInvalidUTF8
	}
	return string(s), end, nil
}

func putUint16(buf []byte, v uint16) int {
	binary.LittleEndian.PutUint16(buf, v)
	return 2
}

func putUint32(buf []byte, v uint32) int {
	binary.LittleEndian.PutUint32(buf, v)
	return 4
}

func putUint64(buf []byte, v uint64) int {
	binary.LittleEndian.PutUint64(buf, v)
	return 8
}

func putFloat64(buf []byte, v float64) int {
	return putUint64(buf, math.Float64bits(v))
}

func putPrefixedString(buf []byte, s string) int {
	offset := putUint16(buf, uint16(len(s)))
	offset += copy(buf[offset:], s)
	return offset
}

// readFull reads exactly len(buf) bytes from r, failing on a short read.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
