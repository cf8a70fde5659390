package formats

import (
	"errors"
	"fmt"
	"io"
	"math"

	"microct/internal/models"
	"microct/pkg/binio"
)

// ReadBIM reads a tagged image and its metadata from path.
func ReadBIM(path string, opts ...Option) (*models.Image, *models.Metadata, error) {
	o := newOptions(opts)
	var (
		img  *models.Image
		meta *models.Metadata
	)
	err := readFile(path, o, func(r *binio.Reader) error {
		var err error
		img, meta, err = decodeBIM(r, o)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return img, meta, nil
}

// DecodeBIM decodes a tagged image from r.
func DecodeBIM(r io.Reader, opts ...Option) (*models.Image, *models.Metadata, error) {
	o := newOptions(opts)
	return decodeBIM(streamReader(r, o), o)
}

func decodeBIM(r *binio.Reader, o *options) (*models.Image, *models.Metadata, error) {
	lengths, err := r.ReadUint32s(4)
	if err != nil {
		return nil, nil, fmt.Errorf("bim field lengths: %w", err)
	}
	motorLen, dataTypeLen, dateLen, axisLen := lengths[0], lengths[1], lengths[2], lengths[3]

	meta := &models.Metadata{}
	dims, err := r.ReadUint32s(2)
	if err != nil {
		return nil, nil, fmt.Errorf("bim dimensions: %w", err)
	}
	meta.Width, meta.Height = dims[0], dims[1]
	if meta.Angle, err = r.ReadFloat64(); err != nil {
		return nil, nil, fmt.Errorf("bim angle: %w", err)
	}
	if meta.PixelSize, err = r.ReadFloat32(); err != nil {
		return nil, nil, fmt.Errorf("bim pixel size: %w", err)
	}
	bins, err := r.ReadUint32s(2)
	if err != nil {
		return nil, nil, fmt.Errorf("bim binning: %w", err)
	}
	meta.HBin, meta.VBin = bins[0], bins[1]
	if meta.Energy, err = r.ReadFloat64(); err != nil {
		return nil, nil, fmt.Errorf("bim energy: %w", err)
	}
	if meta.MotorPositions, err = r.ReadFloat32s(int(motorLen)); err != nil {
		return nil, nil, fmt.Errorf("bim motor positions: %w", err)
	}
	if meta.AxisNames, err = r.ReadText(int(axisLen), o.text); err != nil {
		return nil, nil, fmt.Errorf("bim axis names: %w", err)
	}
	if meta.ExposureTime, err = r.ReadFloat32(); err != nil {
		return nil, nil, fmt.Errorf("bim exposure time: %w", err)
	}
	if meta.ImagesTaken, err = r.ReadUint32(); err != nil {
		return nil, nil, fmt.Errorf("bim images taken: %w", err)
	}
	if meta.DataType, err = r.ReadText(int(dataTypeLen), o.text); err != nil {
		return nil, nil, fmt.Errorf("bim datatype: %w", err)
	}
	if meta.Date, err = r.ReadText(int(dateLen), o.text); err != nil {
		return nil, nil, fmt.Errorf("bim date: %w", err)
	}

	if meta.Width == 0 || meta.Height == 0 {
		return nil, nil, fmt.Errorf("%w: empty %dx%d image", ErrMalformedHeader, meta.Height, meta.Width)
	}
	n, err := pixelCount(uint64(meta.Height), uint64(meta.Width))
	if err != nil {
		return nil, nil, err
	}
	pix, err := r.ReadFloat32s(n)
	if err != nil {
		if errors.Is(err, ErrTruncatedInput) {
			return nil, nil, fmt.Errorf("%w: %dx%d pixel block: %w", ErrMalformedHeader, meta.Height, meta.Width, err)
		}
		return nil, nil, fmt.Errorf("bim pixels: %w", err)
	}
	return fromColumnMajor(int(meta.Height), int(meta.Width), pix), meta, nil
}

// WriteBIM writes img and meta to path. A nil meta is replaced by
// models.DefaultMetadata for the image shape.
func WriteBIM(path string, img *models.Image, meta *models.Metadata, opts ...Option) error {
	if err := writeFile(path, func(w io.Writer) error {
		return EncodeBIM(w, img, meta, opts...)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EncodeBIM encodes img and meta to w in the BIM layout.
func EncodeBIM(w io.Writer, img *models.Image, meta *models.Metadata, opts ...Option) error {
	o := newOptions(opts)
	if img == nil || img.Rows == 0 || img.Cols == 0 {
		return fmt.Errorf("%w: bim needs a non-empty image", ErrShapeMismatch)
	}
	if meta == nil {
		meta = models.DefaultMetadata(img.Rows, img.Cols)
	}
	if err := meta.Validate(img.Rows, img.Cols); err != nil {
		return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	for _, n := range []int{len(meta.MotorPositions), len(meta.DataType), len(meta.Date), len(meta.AxisNames)} {
		if uint64(n) > math.MaxUint32 {
			return fmt.Errorf("%w: field of %d elements exceeds the u32 length prefix", ErrShapeMismatch, n)
		}
	}

	bw := binio.NewWriter(w, o.order)
	bw.WriteUint32s(
		uint32(len(meta.MotorPositions)),
		uint32(len(meta.DataType)),
		uint32(len(meta.Date)),
		uint32(len(meta.AxisNames)),
	)
	bw.WriteUint32s(meta.Width, meta.Height)
	bw.WriteFloat64s(meta.Angle)
	bw.WriteFloat32s(meta.PixelSize)
	bw.WriteUint32s(meta.HBin, meta.VBin)
	bw.WriteFloat64s(meta.Energy)
	bw.WriteFloat32s(meta.MotorPositions...)
	bw.WriteText(meta.AxisNames)
	bw.WriteFloat32s(meta.ExposureTime)
	bw.WriteUint32s(meta.ImagesTaken)
	bw.WriteText(meta.DataType)
	bw.WriteText(meta.Date)
	bw.WriteFloat32s(columnMajor(img)...)
	if err := bw.Err(); err != nil {
		return fmt.Errorf("%w: encode bim: %w", ErrIO, err)
	}
	return nil
}
