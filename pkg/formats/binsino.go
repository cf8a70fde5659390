package formats

import (
	"fmt"
	"io"

	"microct/internal/models"
	"microct/pkg/binio"
)

// ReadBINSINO reads an angle-tagged sinogram from path.
func ReadBINSINO(path string, opts ...Option) (*models.Sinogram, error) {
	o := newOptions(opts)
	var sino *models.Sinogram
	err := readFile(path, o, func(r *binio.Reader) error {
		var err error
		sino, err = decodeBINSINO(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sino, nil
}

// DecodeBINSINO decodes an angle-tagged sinogram from r.
func DecodeBINSINO(r io.Reader, opts ...Option) (*models.Sinogram, error) {
	o := newOptions(opts)
	return decodeBINSINO(streamReader(r, o))
}

func decodeBINSINO(r *binio.Reader) (*models.Sinogram, error) {
	rows, cols, err := readFloatShape(r)
	if err != nil {
		return nil, err
	}
	if rows < 1 {
		return nil, fmt.Errorf("%w: binsino needs an angle row, header has %d rows", ErrMalformedHeader, rows)
	}
	n, err := pixelCount(uint64(rows), uint64(cols))
	if err != nil {
		return nil, err
	}
	pix, err := r.ReadFloat32s(n)
	if err != nil {
		return nil, fmt.Errorf("binsino %dx%d samples: %w", rows, cols, err)
	}

	// Row 0 carries the angles, the rest is the sinogram.
	block := fromColumnMajor(rows, cols, pix)
	angles := append([]float32(nil), block.Row(0)...)
	data, err := models.NewImageFrom(rows-1, cols, block.Pix[cols:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return &models.Sinogram{Data: data, Angles: angles}, nil
}

// WriteBINSINO writes sino to path.
func WriteBINSINO(path string, sino *models.Sinogram, opts ...Option) error {
	if err := validateSinogram(sino); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := writeFile(path, func(w io.Writer) error {
		return EncodeBINSINO(w, sino, opts...)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EncodeBINSINO encodes sino to w. The angles are stored as an extra first
// row, so the size header reads (rows+1, cols).
func EncodeBINSINO(w io.Writer, sino *models.Sinogram, opts ...Option) error {
	o := newOptions(opts)
	if err := validateSinogram(sino); err != nil {
		return err
	}
	rows, cols := sino.Data.Rows+1, sino.Data.Cols
	if err := checkFloatShape(rows, cols); err != nil {
		return err
	}

	staging := models.NewImage(rows, cols)
	copy(staging.Pix[:cols], sino.Angles)
	copy(staging.Pix[cols:], sino.Data.Pix)

	bw := binio.NewWriter(w, o.order)
	bw.WriteFloat32s(float32(rows), float32(cols))
	bw.WriteFloat32s(columnMajor(staging)...)
	if err := bw.Err(); err != nil {
		return fmt.Errorf("%w: encode binsino: %w", ErrIO, err)
	}
	return nil
}

func validateSinogram(sino *models.Sinogram) error {
	if sino == nil || sino.Data == nil {
		return fmt.Errorf("%w: binsino needs sinogram data", ErrShapeMismatch)
	}
	if len(sino.Angles) != sino.Data.Cols {
		return fmt.Errorf("%w: %d angles for %d sinogram columns",
			ErrShapeMismatch, len(sino.Angles), sino.Data.Cols)
	}
	return nil
}
