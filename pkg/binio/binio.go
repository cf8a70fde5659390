// Package binio reads and writes the fixed-size and length-prefixed binary
// fields that the microCT file formats are built from.
//
// Values are encoded in a caller-chosen byte order. The formats themselves
// were always written in the host's native order and carry no byte-order
// mark, so NativeOrder is the default everywhere; files produced on a
// machine of the other endianness need an explicit order.
package binio

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrTruncatedInput is returned when the stream holds fewer bytes than
	// a read requires.
	ErrTruncatedInput = errors.New("binio: truncated input")

	// ErrInvalidText is returned by strict text decoding on invalid UTF-8.
	ErrInvalidText = errors.New("binio: invalid text field")
)

// NativeOrder is the byte order of the running host.
var NativeOrder binary.ByteOrder = binary.NativeEndian

// Fixed lists the element types the fixed-size helpers accept.
type Fixed interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// sizeOf returns the encoded size of one T.
func sizeOf[T Fixed]() int {
	var zero T
	return binary.Size(zero)
}
