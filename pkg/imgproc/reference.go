package imgproc

import (
	"math"

	"microct/internal/models"
)

// ExternalReference converts a raw transmission image to attenuation with
// -ln((img-dark)/(flat-dark)). dark may be nil. Undefined samples (NaN)
// become 0 and infinite ones take the largest finite value of the result.
// With removeNegative set, negative attenuation is clamped to 0.
func ExternalReference(img, flat, dark *models.Image, removeNegative bool) (*models.Image, error) {
	refs := []*models.Image{img, flat}
	if dark != nil {
		refs = append(refs, dark)
	}
	if err := checkStack(refs); err != nil {
		return nil, err
	}

	out := models.NewImage(img.Rows, img.Cols)
	vals := make([]float64, len(img.Pix))
	maxFinite := math.Inf(-1)
	for i := range img.Pix {
		num, den := float64(img.Pix[i]), float64(flat.Pix[i])
		if dark != nil {
			num -= float64(dark.Pix[i])
			den -= float64(dark.Pix[i])
		}
		// float32 arithmetic, as the result is stored in float32
		v := -math.Log(float64(float32(num) / float32(den)))
		vals[i] = v
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > maxFinite {
			maxFinite = v
		}
	}
	if math.IsInf(maxFinite, -1) {
		maxFinite = 0
	}

	for i, v := range vals {
		switch {
		case math.IsNaN(v):
			v = 0
		case math.IsInf(v, 0):
			v = maxFinite
		}
		if removeNegative && v < 0 {
			v = 0
		}
		out.Pix[i] = float32(v)
	}
	return out, nil
}
