package asmloader

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// TagNamespace32 marks the host table placeholder inside 32-bit stubs.
	TagNamespace32 uint64 = 0x1337C0DE
	// TagNamespace64 marks host function placeholders inside 64-bit stubs, the low bits carry the HostFunc.
	TagNamespace64 uint64 = 0x1337C0DE00000000
)

// MagicTag encodes namespace+index as a little-endian word of width bytes.
func MagicTag(namespace uint64, index int, width int) []byte {
	return encodeWord(namespace+uint64(index), width)
}

// FindPattern returns the offset of the first occurrence of pattern in buf, or -1.
func FindPattern(buf, pattern []byte) int {
	if len(pattern) == 0 || len(pattern) > len(buf) {
		panic(fmt.Errorf("%w: pattern of %d bytes in buffer of %d", ErrInvalidPattern, len(pattern), len(buf)))
	}
	return bytes.Index(buf, pattern)
}

// ReplacePattern overwrites the first occurrence of pattern in buf with replacement.
//
// A missing pattern means the stub and the patcher drifted apart, it panics with ErrPatchIntegrity.
func ReplacePattern(buf, pattern, replacement []byte) {
	if len(pattern) != len(replacement) {
		panic(fmt.Errorf("%w: pattern of %d bytes, replacement of %d", ErrInvalidPattern, len(pattern), len(replacement)))
	}
	i := FindPattern(buf, pattern)
	if i < 0 {
		panic(fmt.Errorf("%w: magic % x not found", ErrPatchIntegrity, pattern))
	}
	copy(buf[i:], replacement)
}

func encodeWord(v uint64, width int) []byte {
	b := make([]byte, width)
	putWord(b, v, width)
	return b
}

func putWord(b []byte, v uint64, width int) {
	switch width {
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		panic(fmt.Errorf("%w: word width %d", ErrInvalidPattern, width))
	}
}

func word(b []byte, width int) uint64 {
	if width == 4 {
		return uint64(binary.LittleEndian.Uint32(b))
	}
	return binary.LittleEndian.Uint64(b)
}
