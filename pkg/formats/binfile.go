package formats

import (
	"fmt"
	"io"

	"microct/internal/models"
	"microct/pkg/binio"
)

// ReadBIN reads a raw .binprj or .binslice array from path.
func ReadBIN(path string, opts ...Option) (*models.Image, error) {
	o := newOptions(opts)
	var img *models.Image
	err := readFile(path, o, func(r *binio.Reader) error {
		var err error
		img, err = decodeBIN(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return img, nil
}

// DecodeBIN decodes a raw array from r.
func DecodeBIN(r io.Reader, opts ...Option) (*models.Image, error) {
	o := newOptions(opts)
	return decodeBIN(streamReader(r, o))
}

func decodeBIN(r *binio.Reader) (*models.Image, error) {
	rows, cols, err := readFloatShape(r)
	if err != nil {
		return nil, err
	}
	n, err := pixelCount(uint64(rows), uint64(cols))
	if err != nil {
		return nil, err
	}
	pix, err := r.ReadFloat32s(n)
	if err != nil {
		return nil, fmt.Errorf("bin %dx%d pixels: %w", rows, cols, err)
	}
	return fromColumnMajor(rows, cols, pix), nil
}

// WriteBIN writes img to path as a raw array.
func WriteBIN(path string, img *models.Image, opts ...Option) error {
	if err := writeFile(path, func(w io.Writer) error {
		return EncodeBIN(w, img, opts...)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EncodeBIN encodes img to w. The size header is written as two float32
// values and the samples as the row-major dump of the transposed image.
func EncodeBIN(w io.Writer, img *models.Image, opts ...Option) error {
	o := newOptions(opts)
	if img == nil {
		return fmt.Errorf("%w: bin needs an image", ErrShapeMismatch)
	}
	if err := checkFloatShape(img.Rows, img.Cols); err != nil {
		return err
	}
	bw := binio.NewWriter(w, o.order)
	bw.WriteFloat32s(float32(img.Rows), float32(img.Cols))
	bw.WriteFloat32s(img.Transpose().Pix...)
	if err := bw.Err(); err != nil {
		return fmt.Errorf("%w: encode bin: %w", ErrIO, err)
	}
	return nil
}

// readFloatShape reads the (rows, cols) float32 header shared by BIN and BINSINO.
func readFloatShape(r *binio.Reader) (int, int, error) {
	hdr, err := r.ReadFloat32s(2)
	if err != nil {
		return 0, 0, fmt.Errorf("size header: %w", err)
	}
	rows, err := floatDim(hdr[0], "rows")
	if err != nil {
		return 0, 0, err
	}
	cols, err := floatDim(hdr[1], "cols")
	if err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}
