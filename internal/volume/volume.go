// Package volume holds regularly sampled 3D scalar fields.
//
// Samples are stored with i1 (depth) fastest, then i2, then i3, which is the
// layout of raw seismic attribute files.
package volume

import "fmt"

// Volume is an n1×n2×n3 array of float32 samples.
type Volume struct {
	N1, N2, N3 int
	Data       []float32
}

// New allocates a zero-filled volume.
func New(n1, n2, n3 int) *Volume {
	return &Volume{N1: n1, N2: n2, N3: n3, Data: make([]float32, n1*n2*n3)}
}

// FromData wraps data as a volume without copying.
func FromData(n1, n2, n3 int, data []float32) (*Volume, error) {
	if n1 <= 0 || n2 <= 0 || n3 <= 0 {
		return nil, fmt.Errorf("invalid shape %dx%dx%d", n1, n2, n3)
	}
	if len(data) != n1*n2*n3 {
		return nil, fmt.Errorf("data length %d does not match shape %dx%dx%d", len(data), n1, n2, n3)
	}
	return &Volume{N1: n1, N2: n2, N3: n3, Data: data}, nil
}

// Filled returns a volume with every sample set to v.
func Filled(n1, n2, n3 int, v float32) *Volume {
	vol := New(n1, n2, n3)
	for i := range vol.Data {
		vol.Data[i] = v
	}
	return vol
}

// Index returns the flat offset of sample (i1,i2,i3).
func (v *Volume) Index(i1, i2, i3 int) int { return i1 + v.N1*(i2+v.N2*i3) }

// At returns sample (i1,i2,i3).
func (v *Volume) At(i1, i2, i3 int) float32 { return v.Data[v.Index(i1, i2, i3)] }

// Set assigns sample (i1,i2,i3).
func (v *Volume) Set(i1, i2, i3 int, f float32) { v.Data[v.Index(i1, i2, i3)] = f }

// Trace returns the n1 samples at (i2,i3) as a subslice of Data.
func (v *Volume) Trace(i2, i3 int) []float32 {
	o := v.Index(0, i2, i3)
	return v.Data[o : o+v.N1]
}

// Contains reports whether (i1,i2,i3) is inside the volume.
func (v *Volume) Contains(i1, i2, i3 int) bool {
	return i1 >= 0 && i1 < v.N1 && i2 >= 0 && i2 < v.N2 && i3 >= 0 && i3 < v.N3
}

// SameShape reports whether v and o have identical dimensions.
func (v *Volume) SameShape(o *Volume) bool {
	return o != nil && v.N1 == o.N1 && v.N2 == o.N2 && v.N3 == o.N3
}

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	c := New(v.N1, v.N2, v.N3)
	copy(c.Data, v.Data)
	return c
}
