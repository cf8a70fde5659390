package formats

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microct/internal/models"
	"microct/pkg/binio"
)

func angleVector(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * 0.0174533
	}
	return out
}

func TestBINSINORoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, shape := range [][2]int{{1, 1}, {3, 7}, {12, 4}} {
		sino := &models.Sinogram{Data: rampImage(shape[0], shape[1]), Angles: angleVector(shape[1])}
		path := filepath.Join(dir, "row_0001.binsino")
		require.NoError(t, WriteBINSINO(path, sino))

		got, err := ReadBINSINO(path)
		require.NoError(t, err)
		assert.True(t, sino.Data.Equal(got.Data), "shape %v", shape)
		assert.Equal(t, sino.Angles, got.Angles)
	}
}

func TestBINSINOLayout(t *testing.T) {
	data := models.NewImage(2, 3)
	copy(data.Pix, []float32{1, 2, 3, 4, 5, 6})
	sino := &models.Sinogram{Data: data, Angles: []float32{10, 20, 30}}

	var buf bytes.Buffer
	require.NoError(t, EncodeBINSINO(&buf, sino, WithByteOrder(binary.LittleEndian)))

	r := binio.NewReader(&buf, binary.LittleEndian)
	raw, err := r.ReadFloat32s(11)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 3}, raw[:2], "header counts the angle row")
	assert.Equal(t, []float32{10, 1, 4, 20, 2, 5, 30, 3, 6}, raw[2:])
}

func TestBINSINOAngleMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.binsino")
	sino := &models.Sinogram{Data: rampImage(4, 5), Angles: angleVector(4)}

	err := WriteBINSINO(path, sino)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBINSINOCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "x.binsino")
	sino := &models.Sinogram{Data: rampImage(2, 2), Angles: angleVector(2)}
	err := WriteBINSINO(path, sino)
	require.ErrorIs(t, err, ErrIO)
}

func TestBINSINOMissingAngleRow(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf, nil)
	w.WriteFloat32s(0, 4)
	require.NoError(t, w.Err())

	_, err := DecodeBINSINO(&buf)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestBINSINOAnglesOnly(t *testing.T) {
	sino := &models.Sinogram{Data: models.NewImage(0, 3), Angles: []float32{1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, EncodeBINSINO(&buf, sino))

	got, err := DecodeBINSINO(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Data.Rows)
	assert.Equal(t, []float32{1, 2, 3}, got.Angles)
}
