// Package formats reads and writes the three binary image formats produced
// by the microCT processing scripts.
//
// # Formats
//
// All values are stored in the byte order of the machine that wrote the
// file (see binio.NativeOrder); 32-bit IEEE-754 floats unless noted.
//
//	BIM      [4 x u32 lengths][scalar block][motor f32...][axis names]
//	         [exposure f32][images u32][datatype][date][pixels f32, column-major]
//	BIN      [rows f32][cols f32][pixels f32, column-major]
//	BINSINO  [rows+1 f32][cols f32][angles + sinogram f32, column-major]
//
// The BIM lengths block lists the motor position count and the byte
// lengths of the datatype, date and axis name fields, in that order, ahead
// of all four bodies. The BIM scalar block is width u32, height u32,
// angle f64, pixel size f32, hbin u32, vbin u32, energy f64.
//
// The BIN and BINSINO size headers are floats, not integers; existing
// .binprj, .binslice and .binsino files depend on that.
//
// # Extensions
//
//	.bim                 tagged image (image + Metadata)
//	.binprj, .binslice   raw array
//	.binsino             angle-tagged sinogram
//
// Extensions are matched case-insensitively by DetectFormat, ReadAny and
// WriteAny.
//
// # Errors
//
// Failures are reported through sentinel errors usable with errors.Is:
// ErrTruncatedInput, ErrMalformedHeader, ErrShapeMismatch,
// ErrUnsupportedFormat and ErrIO. Writes go to a temporary file in the
// destination directory that is renamed into place only after the whole
// file has been encoded, so a failed write never leaves a partial file.
package formats
