package binio

import (
	"encoding/binary"
	"io"
)

// Writer encodes binary fields. The first write error is kept and every
// later call becomes a no-op, so callers check Err once at the end.
type Writer struct {
	w     io.Writer
	order binary.ByteOrder
	n     int64
	err   error
}

// NewWriter returns a Writer over w. A nil order selects NativeOrder.
func NewWriter(w io.Writer, order binary.ByteOrder) *Writer {
	if order == nil {
		order = NativeOrder
	}
	return &Writer{w: w, order: order}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

// Written returns the number of bytes written.
func (w *Writer) Written() int64 {
	return w.n
}

// WriteFixed writes values in the writer's byte order.
func WriteFixed[T Fixed](w *Writer, values []T) {
	if w.err != nil || len(values) == 0 {
		return
	}
	if err := binary.Write(w.w, w.order, values); err != nil {
		w.err = err
		return
	}
	w.n += int64(len(values) * sizeOf[T]())
}

// WriteUint32s writes uint32 values.
func (w *Writer) WriteUint32s(v ...uint32) { WriteFixed(w, v) }

// WriteFloat32s writes float32 values.
func (w *Writer) WriteFloat32s(v ...float32) { WriteFixed(w, v) }

// WriteFloat64s writes float64 values.
func (w *Writer) WriteFloat64s(v ...float64) { WriteFixed(w, v) }

// WriteText writes the raw bytes of s with no length prefix or terminator.
func (w *Writer) WriteText(s string) {
	if w.err != nil || len(s) == 0 {
		return
	}
	n, err := io.WriteString(w.w, s)
	w.n += int64(n)
	if err != nil {
		w.err = err
	}
}
