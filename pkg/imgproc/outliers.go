package imgproc

import (
	"fmt"
	"sort"

	"microct/internal/models"
)

// RemoveOutliers replaces bright outliers (zingers) with the local median.
// The median is taken over a size x size window with mirrored borders; a
// pixel is replaced when it exceeds that median by more than delta.
func RemoveOutliers(img *models.Image, delta float64, size int) (*models.Image, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: window size %d", ErrInvalidParameter, size)
	}
	med := MedianFilter(img, size)
	out := img.Clone()
	for i, v := range img.Pix {
		if float64(v)-float64(med.Pix[i]) > delta {
			out.Pix[i] = med.Pix[i]
		}
	}
	return out, nil
}

// MedianFilter returns the size x size rank-median of img. Borders are
// mirrored about the edge (d c b a | a b c d). For windows with an even
// number of samples the upper of the two middle values is used.
func MedianFilter(img *models.Image, size int) *models.Image {
	out := models.NewImage(img.Rows, img.Cols)
	window := make([]float32, 0, size*size)
	before := size / 2
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			window = window[:0]
			for dr := 0; dr < size; dr++ {
				rr := mirror(r-before+dr, img.Rows)
				for dc := 0; dc < size; dc++ {
					window = append(window, img.Pix[rr*img.Cols+mirror(c-before+dc, img.Cols)])
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[r*img.Cols+c] = window[len(window)/2]
		}
	}
	return out
}

func mirror(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
