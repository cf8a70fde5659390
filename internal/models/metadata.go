package models

import "fmt"

// DefaultAxisNames is the fixed-width axis label blob written by the TXM
// software: twenty labels, each padded to twenty characters.
const DefaultAxisNames = "Sample X            Sample Y            " +
	"Sample Z            Sample Theta        " +
	"Condenser X         Condenser Y         " +
	"Condenser Z         Condenser Tip       " +
	"Condenser Tilt      Pinhole X           " +
	"Pinhole Y           Pinhole Z           " +
	"Zoneplate X         Zoneplate Y         " +
	"Zoneplate Z         Phasering X         " +
	"Phasering Y         Phasering Z         " +
	"Phasering W         Tubelens            "

const (
	// DefaultMotorCount is the number of motor positions in a default record
	DefaultMotorCount = 20

	// DefaultDataType is the datatype tag written when none is supplied
	DefaultDataType = "float32"

	// DefaultDate is the date tag written when none is supplied. The value
	// is historical and kept verbatim.
	DefaultDate = "03/21/1988 22:00"
)

// Metadata describes one projection image as stored in a BIM file.
// Field widths follow the on-disk layout.
type Metadata struct {
	// Width is the number of image columns
	Width uint32 `yaml:"width"`

	// Height is the number of image rows
	Height uint32 `yaml:"height"`

	// Angle is the projection angle in radians
	Angle float64 `yaml:"angle"`

	// PixelSize is the physical size of one pixel
	PixelSize float32 `yaml:"pixelSize"`

	// HBin and VBin are the horizontal and vertical binning factors
	HBin uint32 `yaml:"hBin"`
	VBin uint32 `yaml:"vBin"`

	// Energy is the beam energy, carried opaquely
	Energy float64 `yaml:"energy"`

	// MotorPositions holds one value per motor axis
	MotorPositions []float32 `yaml:"motorPositions"`

	// AxisNames is the axis label blob; it is not parsed
	AxisNames string `yaml:"axisNames"`

	// ExposureTime is the exposure time of the image
	ExposureTime float32 `yaml:"exposureTime"`

	// ImagesTaken is the number of images averaged into this one
	ImagesTaken uint32 `yaml:"imagesTaken"`

	// DataType and Date are opaque tags kept for round-trip fidelity
	DataType string `yaml:"dataType"`
	Date     string `yaml:"date"`
}

// DefaultMetadata returns the record synthesized for an image of the given
// shape when the caller supplies none.
func DefaultMetadata(rows, cols int) *Metadata {
	return &Metadata{
		Width:          uint32(cols),
		Height:         uint32(rows),
		Angle:          0,
		PixelSize:      1.0,
		HBin:           1,
		VBin:           1,
		Energy:         0,
		MotorPositions: make([]float32, DefaultMotorCount),
		AxisNames:      DefaultAxisNames,
		ExposureTime:   1.0,
		ImagesTaken:    1,
		DataType:       DefaultDataType,
		Date:           DefaultDate,
	}
}

// Validate checks that the record describes an image of rows x cols.
func (m *Metadata) Validate(rows, cols int) error {
	if int64(m.Height) != int64(rows) || int64(m.Width) != int64(cols) {
		return fmt.Errorf("metadata shape %dx%d does not match image shape %dx%d",
			m.Height, m.Width, rows, cols)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (m *Metadata) Clone() *Metadata {
	out := *m
	out.MotorPositions = append([]float32(nil), m.MotorPositions...)
	return &out
}
