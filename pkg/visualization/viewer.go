// Package visualization renders quicklook PNGs of single images and of
// projection stacks. A stack is treated as a volume with projections along
// z, so a y slice of it is the sinogram of one detector row.
package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"microct/internal/models"
)

// ErrInvalidSlice is returned for an unknown axis or an out-of-range position.
var ErrInvalidSlice = errors.New("visualization: invalid slice")

// Viewer extracts and renders slices of a stack of equally sized images.
type Viewer struct {
	stack []*models.Image

	// dimensions of the volume
	width  int
	height int
	depth  int

	// maxSize bounds the longer side of saved images; 0 keeps full size
	maxSize int

	// grey window shared by every slice
	lo, hi float32

	palette *Palette
}

// NewViewer creates a viewer over stack. The grey window spans the finite
// minimum and maximum of the whole stack.
func NewViewer(stack []*models.Image, maxSize int) (*Viewer, error) {
	if len(stack) == 0 {
		return nil, fmt.Errorf("%w: empty stack", ErrInvalidSlice)
	}
	if maxSize < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrInvalidSlice, maxSize)
	}
	height, width := stack[0].Shape()
	v := &Viewer{
		stack:   stack,
		width:   width,
		height:  height,
		depth:   len(stack),
		maxSize: maxSize,
	}
	for i, img := range stack {
		if img.Rows != height || img.Cols != width {
			return nil, fmt.Errorf("%w: image %d is %dx%d, expected %dx%d",
				ErrInvalidSlice, i, img.Rows, img.Cols, height, width)
		}
		lo, hi := img.MinMax()
		if i == 0 {
			v.lo, v.hi = lo, hi
			continue
		}
		v.lo = min(v.lo, lo)
		v.hi = max(v.hi, hi)
	}
	return v, nil
}

// Dims returns the volume size as width, height, depth.
func (v *Viewer) Dims() (int, int, int) {
	return v.width, v.height, v.depth
}

// ExtractSlice extracts a 2D slice of the volume along the given axis.
// An x slice is height x depth, a y slice depth x width and a z slice the
// stack image itself.
func (v *Viewer) ExtractSlice(axis string, position int) (*models.Image, error) {
	limit, err := v.axisLength(axis)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= limit {
		return nil, fmt.Errorf("%w: position %d outside [0, %d) on axis %s",
			ErrInvalidSlice, position, limit, axis)
	}

	switch strings.ToLower(axis) {
	case "x":
		out := models.NewImage(v.height, v.depth)
		for z, img := range v.stack {
			for y := 0; y < v.height; y++ {
				out.Set(y, z, img.At(y, position))
			}
		}
		return out, nil
	case "y":
		out := models.NewImage(v.depth, v.width)
		for z, img := range v.stack {
			copy(out.Row(z), img.Row(position))
		}
		return out, nil
	default:
		return v.stack[position].Clone(), nil
	}
}

// SetPalette selects the colours of rendered slices; nil renders grey.
func (v *Viewer) SetPalette(p *Palette) {
	v.palette = p
}

// Render maps img to 8-bit levels using the viewer's window and palette.
func (v *Viewer) Render(img *models.Image) image.Image {
	return v.palette.Apply(toGray(img, v.lo, v.hi))
}

// SaveSlice writes img to filename, downscaled to the viewer's size limit.
// The format follows the file extension.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	return save(img, filename, v.maxSize)
}

// SaveSliceSequence extracts and saves every slice along axis and returns
// the written file names.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) ([]string, error) {
	limit, err := v.axisLength(axis)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	axis = strings.ToLower(axis)
	names := make([]string, 0, limit)
	for pos := 0; pos < limit; pos++ {
		slice, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return names, err
		}
		name := fmt.Sprintf("slice_%s_%04d.png", axis, pos)
		if err := v.SaveSlice(v.Render(slice), filepath.Join(outputDir, name)); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (v *Viewer) axisLength(axis string) (int, error) {
	switch strings.ToLower(axis) {
	case "x":
		return v.width, nil
	case "y":
		return v.height, nil
	case "z":
		return v.depth, nil
	}
	return 0, fmt.Errorf("%w: axis %q (must be x, y, or z)", ErrInvalidSlice, axis)
}

// Quicklook renders a single image with its own grey window and saves it.
// A nil palette renders grey.
func Quicklook(img *models.Image, filename string, maxSize int, palette *Palette) error {
	if img == nil || img.Rows == 0 || img.Cols == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidSlice)
	}
	lo, hi := img.MinMax()
	return save(palette.Apply(toGray(img, lo, hi)), filename, maxSize)
}

func save(img image.Image, filename string, maxSize int) error {
	if maxSize > 0 {
		b := img.Bounds()
		if b.Dx() > maxSize || b.Dy() > maxSize {
			img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
		}
	}
	if err := imaging.Save(img, filename); err != nil {
		return fmt.Errorf("visualization: save %s: %w", filename, err)
	}
	return nil
}

// toGray scales [lo, hi] to [0, 255]. Non-finite samples render black.
func toGray(img *models.Image, lo, hi float32) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Cols, img.Rows))
	span := float64(hi) - float64(lo)
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			f := float64(img.At(r, c))
			if span <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			g := math.Round((f - float64(lo)) / span * 255)
			out.SetGray(c, r, color.Gray{Y: uint8(math.Max(0, math.Min(255, g)))})
		}
	}
	return out
}
