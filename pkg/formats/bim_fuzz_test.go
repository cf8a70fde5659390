//go:build fuzz
// +build fuzz

package formats

import (
	"bytes"
	"io"
	"testing"

	"microct/pkg/binio"
)

// FuzzDecodeBIM feeds arbitrary bytes to the BIM decoder; it must return an
// error or a consistent image, never panic.
func FuzzDecodeBIM(f *testing.F) {
	var buf bytes.Buffer
	if err := EncodeBIM(&buf, rampImage(3, 2), nil); err != nil {
		f.Fatal(err)
	}
	f.Add(buf.Bytes())
	f.Add([]byte{})
	f.Add(make([]byte, 64))

	f.Fuzz(func(t *testing.T, data []byte) {
		img, meta, err := DecodeBIM(bytes.NewReader(data))
		if err != nil {
			return
		}
		if img.Rows != int(meta.Height) || img.Cols != int(meta.Width) {
			t.Fatalf("image %dx%d does not match metadata %dx%d", img.Rows, img.Cols, meta.Height, meta.Width)
		}
	})
}

// FuzzDecodeBIN does the same for raw arrays, read from a stream that hides
// its length.
func FuzzDecodeBIN(f *testing.F) {
	var buf bytes.Buffer
	if err := EncodeBIN(&buf, rampImage(3, 2)); err != nil {
		f.Fatal(err)
	}
	f.Add(buf.Bytes())
	f.Add([]byte{})

	var hdr bytes.Buffer
	binio.NewWriter(&hdr, nil).WriteFloat32s(1<<24, 1<<24)
	f.Add(hdr.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := DecodeBIN(io.MultiReader(bytes.NewReader(data)))
		if err != nil {
			return
		}
		if len(img.Pix) != img.Rows*img.Cols {
			t.Fatalf("image %dx%d holds %d pixels", img.Rows, img.Cols, len(img.Pix))
		}
	})
}
