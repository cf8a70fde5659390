package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"microct/internal/models"
	"microct/pkg/formats"
)

// ListFiles returns the paths of the regular files in dir with extension
// ext (case-insensitive), in acquisition order.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	ext = strings.ToLower(ext)
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ext {
			continue
		}
		names = append(names, e.Name())
	}
	sortByNumber(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// sortByNumber orders file names by the number formed from their digits,
// so proj_9 comes before proj_10. Names without digits sort first, ties
// fall back to the name.
func sortByNumber(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

func extractNumber(name string) int64 {
	var digits strings.Builder
	for _, c := range strings.TrimSuffix(name, filepath.Ext(name)) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return -1
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// ReadStack reads the images of files in parallel, keeping their order.
// All images must have the same shape.
func ReadStack(ctx context.Context, files []string, workers int, opts ...formats.Option) ([]*models.Image, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	stack := make([]*models.Image, 0, len(files))
	work := func(_ context.Context, i int) (*models.Image, error) {
		doc, err := formats.ReadAny(files[i], opts...)
		if err != nil {
			return nil, err
		}
		return doc.Image, nil
	}
	emit := func(i int, img *models.Image) error {
		if i > 0 && (img.Rows != stack[0].Rows || img.Cols != stack[0].Cols) {
			return fmt.Errorf("%w: %s is %dx%d, first image is %dx%d", ErrShapeMismatch,
				filepath.Base(files[i]), img.Rows, img.Cols, stack[0].Rows, stack[0].Cols)
		}
		stack = append(stack, img)
		return nil
	}
	if err := forEachOrdered(ctx, len(files), workers, work, emit); err != nil {
		return nil, fmt.Errorf("read stack: %w", err)
	}
	return stack, nil
}
