package formats

import (
	"errors"

	"microct/pkg/binio"
)

var (
	// ErrTruncatedInput is returned when a file is shorter than its header declares.
	ErrTruncatedInput = binio.ErrTruncatedInput

	// ErrMalformedHeader is returned when declared dimensions are impossible
	// or inconsistent with the data that follows.
	ErrMalformedHeader = errors.New("formats: malformed header")

	// ErrShapeMismatch is returned when arrays, angles and metadata disagree
	// on dimensions.
	ErrShapeMismatch = errors.New("formats: shape mismatch")

	// ErrUnsupportedFormat is returned for file names with an unknown extension.
	ErrUnsupportedFormat = errors.New("formats: unsupported format")

	// ErrIO is returned when a file cannot be opened, created or renamed.
	ErrIO = errors.New("formats: i/o failure")
)
