package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"microct/internal/models"
)

// Format identifies one of the supported file formats.
type Format int

const (
	FormatUnknown Format = iota
	FormatTaggedImage
	FormatRawArray
	FormatSinogram
)

var extensions = map[string]Format{
	".bim":      FormatTaggedImage,
	".binprj":   FormatRawArray,
	".binslice": FormatRawArray,
	".binsino":  FormatSinogram,
}

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatTaggedImage:
		return "bim"
	case FormatRawArray:
		return "bin"
	case FormatSinogram:
		return "binsino"
	default:
		return "unknown"
	}
}

// Extensions returns the lower-case file extensions of the format.
func (f Format) Extensions() []string {
	switch f {
	case FormatTaggedImage:
		return []string{".bim"}
	case FormatRawArray:
		return []string{".binprj", ".binslice"}
	case FormatSinogram:
		return []string{".binsino"}
	default:
		return nil
	}
}

// DetectFormat resolves the format of path from its extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
}

// Document is the format-independent content of a file. Metadata is only
// set for tagged images and Angles only for sinograms.
type Document struct {
	Format   Format
	Image    *models.Image
	Metadata *models.Metadata
	Angles   []float32
}

// ReadAny reads path with the codec chosen by its extension.
func ReadAny(path string, opts ...Option) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	doc := &Document{Format: format}
	switch format {
	case FormatTaggedImage:
		doc.Image, doc.Metadata, err = ReadBIM(path, opts...)
	case FormatRawArray:
		doc.Image, err = ReadBIN(path, opts...)
	case FormatSinogram:
		var sino *models.Sinogram
		if sino, err = ReadBINSINO(path, opts...); err == nil {
			doc.Image, doc.Angles = sino.Data, sino.Angles
		}
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteAny writes doc to path with the codec chosen by the extension of
// path; doc.Format is ignored. Metadata is only used for tagged images and
// is dropped for the other formats.
func WriteAny(path string, doc *Document, opts ...Option) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if doc == nil || doc.Image == nil {
		return fmt.Errorf("%w: nothing to write to %s", ErrShapeMismatch, path)
	}
	switch format {
	case FormatTaggedImage:
		return WriteBIM(path, doc.Image, doc.Metadata, opts...)
	case FormatRawArray:
		return WriteBIN(path, doc.Image, opts...)
	default:
		return WriteBINSINO(path, &models.Sinogram{Data: doc.Image, Angles: doc.Angles}, opts...)
	}
}
