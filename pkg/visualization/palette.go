package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownPalette is returned by NewPalette for names it does not know.
var ErrUnknownPalette = errors.New("visualization: unknown palette")

// GrayPalette is the name of the plain grey rendering.
const GrayPalette = "gray"

var paletteStops = map[string][]string{
	"viridis": {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"inferno": {"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
	"hot":     {"#000000", "#e60000", "#ffd200", "#ffffff"},
}

// Palette maps 8-bit grey levels to colours, blending between evenly
// spaced stops in CIE L*a*b*.
type Palette struct {
	Name string
	lut  [256]color.RGBA
}

// NewPalette returns the named palette. The grey palette is nil.
func NewPalette(name string) (*Palette, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == GrayPalette {
		return nil, nil
	}
	hexes, ok := paletteStops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
		stops[i] = c
	}

	p := &Palette{Name: name}
	last := len(stops) - 1
	for i := range p.lut {
		t := float64(i) / 255 * float64(last)
		k := min(int(t), last-1)
		c := stops[k].BlendLab(stops[k+1], t-float64(k)).Clamped()
		r, g, b := c.RGB255()
		p.lut[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p, nil
}

// PaletteNames lists the accepted palette names.
func PaletteNames() []string {
	names := []string{GrayPalette}
	for name := range paletteStops {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// Apply colours g. A nil palette returns g unchanged.
func (p *Palette) Apply(g *image.Gray) image.Image {
	if p == nil {
		return g
	}
	b := g.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetRGBA(x, y, p.lut[g.GrayAt(x, y).Y])
		}
	}
	return out
}
