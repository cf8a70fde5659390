package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Reader decodes binary fields from an underlying stream.
type Reader struct {
	r         io.Reader
	order     binary.ByteOrder
	offset    int64
	remaining int64 // -1 when the stream size is unknown
}

// NewReader returns a Reader over r. A nil order selects NativeOrder.
func NewReader(r io.Reader, order binary.ByteOrder) *Reader {
	if order == nil {
		order = NativeOrder
	}
	return &Reader{r: r, order: order, remaining: -1}
}

// SetRemaining declares how many bytes are left in the stream. Reads larger
// than that fail up front instead of allocating for a bogus length.
func (r *Reader) SetRemaining(n int64) {
	r.remaining = n
}

// Remaining returns the declared number of unread bytes, or -1.
func (r *Reader) Remaining() int64 {
	return r.remaining
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Order returns the byte order used for decoding.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

func (r *Reader) readBytes(n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read of %d bytes at offset %d", n, r.offset)
	}
	if r.remaining >= 0 && n > r.remaining {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, %d remain",
			ErrTruncatedInput, n, r.offset, r.remaining)
	}
	if n > math.MaxInt {
		return nil, fmt.Errorf("%w: read of %d bytes exceeds address space", ErrTruncatedInput, n)
	}
	if r.remaining < 0 && n > chunkSize {
		return r.readChunked(n)
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	r.offset += int64(got)
	if r.remaining >= 0 {
		r.remaining -= int64(got)
	}
	if err != nil {
		return nil, r.truncated(err, n, int64(got))
	}
	return buf, nil
}

// chunkSize bounds a single allocation while the stream size is unknown.
const chunkSize = 1 << 20

// readChunked reads n bytes in chunkSize steps so that memory grows with the
// bytes that actually arrive, not with the length a header declares.
func (r *Reader) readChunked(n int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(chunkSize)
	for int64(buf.Len()) < n {
		step := min(n-int64(buf.Len()), chunkSize)
		got, err := io.CopyN(&buf, r.r, step)
		r.offset += got
		if err != nil {
			return nil, r.truncated(err, n, int64(buf.Len()))
		}
	}
	return buf.Bytes(), nil
}

func (r *Reader) truncated(err error, n, got int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: need %d bytes at offset %d, got %d",
			ErrTruncatedInput, n, r.offset-got, got)
	}
	return err
}

// ReadFixed reads count values of type T.
func ReadFixed[T Fixed](r *Reader, count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative element count %d", count)
	}
	size := sizeOf[T]()
	if count > math.MaxInt64/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes overflow", ErrTruncatedInput, count, size)
	}
	buf, err := r.readBytes(int64(count) * int64(size))
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	if count == 0 {
		return out, nil
	}
	if _, err := binary.Decode(buf, r.order, out); err != nil {
		return nil, fmt.Errorf("decode %d elements: %w", count, err)
	}
	return out, nil
}

// ReadUint32s reads n uint32 values.
func (r *Reader) ReadUint32s(n int) ([]uint32, error) { return ReadFixed[uint32](r, n) }

// ReadFloat32s reads n float32 values.
func (r *Reader) ReadFloat32s(n int) ([]float32, error) { return ReadFixed[float32](r, n) }

// ReadFloat64s reads n float64 values.
func (r *Reader) ReadFloat64s(n int) ([]float64, error) { return ReadFixed[float64](r, n) }

// ReadUint32 reads a single uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := ReadFixed[uint32](r, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadFloat32 reads a single float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := ReadFixed[float32](r, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadFloat64 reads a single float64.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := ReadFixed[float64](r, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadText reads a text field of length bytes and decodes it with mode.
func (r *Reader) ReadText(length int, mode TextDecoding) (string, error) {
	buf, err := r.readBytes(int64(length))
	if err != nil {
		return "", err
	}
	return DecodeText(buf, mode)
}
