package volume

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_IndexLayout(t *testing.T) {
	v := New(4, 3, 2)
	v.Set(1, 2, 1, 7)
	if got := v.Data[1+4*(2+3*1)]; got != 7 {
		t.Errorf("sample stored at wrong offset, got %v", got)
	}
	tr := v.Trace(2, 1)
	if len(tr) != 4 || tr[1] != 7 {
		t.Errorf("Trace(2,1) = %v", tr)
	}
	if !v.Contains(3, 2, 1) || v.Contains(4, 0, 0) || v.Contains(0, -1, 0) {
		t.Errorf("Contains gives wrong bounds")
	}
}

func TestFromData_RejectsBadShape(t *testing.T) {
	_, err := FromData(2, 2, 2, make([]float32, 7))
	assert.Error(t, err)
	_, err = FromData(0, 2, 2, nil)
	assert.Error(t, err)
	v, err := FromData(2, 2, 2, make([]float32, 8))
	require.NoError(t, err)
	assert.Equal(t, 8, len(v.Data))
}

func TestGaussianKernel_Normalised(t *testing.T) {
	k := GaussianKernel(1)
	require.Len(t, k, 9)
	var sum float64
	for _, w := range k {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, k[4], k[3])
	assert.InDelta(t, k[3], k[5], 1e-15)
}

func TestSmoothSlowAxes_ConstantUnchanged(t *testing.T) {
	v := Filled(5, 6, 7, 0.5)
	s, err := SmoothSlowAxes(context.Background(), v, 1)
	require.NoError(t, err)
	for i, f := range s.Data {
		if math.Abs(float64(f)-0.5) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.5", i, f)
		}
	}
}

func TestSmoothSlowAxes_DepthAxisUntouched(t *testing.T) {
	// A single bright depth slice must stay confined to that slice.
	v := New(5, 6, 6)
	for i2 := 0; i2 < 6; i2++ {
		for i3 := 0; i3 < 6; i3++ {
			v.Set(2, i2, i3, 1)
		}
	}
	s, err := SmoothSlowAxes(context.Background(), v, 1)
	require.NoError(t, err)
	for i2 := 0; i2 < 6; i2++ {
		for i3 := 0; i3 < 6; i3++ {
			assert.InDelta(t, 1.0, s.At(2, i2, i3), 1e-6)
			assert.Equal(t, float32(0), s.At(1, i2, i3))
			assert.Equal(t, float32(0), s.At(3, i2, i3))
		}
	}
}

func TestSmoothSlowAxes_PeakSpreadsButStaysMax(t *testing.T) {
	v := New(1, 9, 9)
	v.Set(0, 4, 4, 1)
	s, err := SmoothSlowAxes(context.Background(), v, 1)
	require.NoError(t, err)
	peak := s.At(0, 4, 4)
	assert.Less(t, peak, float32(1))
	assert.Greater(t, peak, s.At(0, 3, 4))
	assert.Greater(t, peak, s.At(0, 4, 5))
	assert.Greater(t, s.At(0, 3, 4), float32(0))
}

func TestSmoothSlowAxes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SmoothSlowAxes(ctx, Filled(3, 3, 3, 1), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRawRoundTrip(t *testing.T) {
	v := New(2, 3, 4)
	for i := range v.Data {
		v.Data[i] = float32(i) * 0.25
	}
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		var buf bytes.Buffer
		require.NoError(t, WriteRaw(&buf, v, order))
		assert.Equal(t, 4*len(v.Data), buf.Len())
		got, err := ReadRaw(&buf, 2, 3, 4, order)
		require.NoError(t, err)
		assert.Equal(t, v.Data, got.Data)
	}
}

func TestReadFile_SizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fl.dat")
	require.NoError(t, os.WriteFile(path, make([]byte, 12), 0o644))
	_, err := ReadFile(path, 2, 2, 2, binary.BigEndian)
	assert.Error(t, err)

	v, err := ReadFile(path, 3, 1, 1, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, v.Data)
}
