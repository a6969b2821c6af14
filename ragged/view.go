// SPDX-License-Identifier: MIT

package ragged

// View1 is a strided read-write vector over a pack's buffer.
type View1 struct {
	arr    []float64
	n      int
	stride int
}

// Len returns the number of elements.
func (v View1) Len() int { return v.n }

// At returns element i. Precondition: 0 <= i < Len().
func (v View1) At(i int) float64 { return v.arr[i*v.stride] }

// Set assigns element i. Precondition: 0 <= i < Len().
func (v View1) Set(i int, x float64) { v.arr[i*v.stride] = x }

// Slice copies the elements out.
func (v View1) Slice() []float64 {
	out := make([]float64, v.n)
	for i := range out {
		out[i] = v.arr[i*v.stride]
	}

	return out
}

// View2 is a rows×cols window over a pack's buffer with row stride stride.
// A view borrows the buffer: it stays valid only until the owning pack is
// reallocated (Stale reports this) or discarded.
type View2 struct {
	arr    []float64
	rows   int
	cols   int
	stride int
	owner  *Pack
	gen    uint64
}

// Rows returns the number of rows (atoms).
func (v View2) Rows() int { return v.rows }

// Cols returns the number of columns (channels).
func (v View2) Cols() int { return v.cols }

// Stale reports whether the owning pack reallocated after the view was taken.
func (v View2) Stale() bool { return v.owner != nil && v.owner.gen != v.gen }

// At returns element (a, c). Precondition: indices in range.
func (v View2) At(a, c int) float64 { return v.arr[a*v.stride+c] }

// Set assigns element (a, c). Precondition: indices in range.
func (v View2) Set(a, c int, x float64) { v.arr[a*v.stride+c] = x }

// Row returns row a as a slice aliasing the buffer.
func (v View2) Row(a int) []float64 {
	if v.cols == 0 {
		return nil
	}
	lo := a * v.stride
	return v.arr[lo : lo+v.cols : lo+v.cols]
}

// Col returns column c as a strided vector.
func (v View2) Col(c int) View1 {
	if v.rows == 0 {
		return View1{}
	}
	return View1{arr: v.arr[c:], n: v.rows, stride: v.stride}
}

// Slice copies the view out row-major.
func (v View2) Slice() []float64 {
	out := make([]float64, 0, v.rows*v.cols)
	for a := 0; a < v.rows; a++ {
		out = append(out, v.Row(a)...)
	}

	return out
}

// SumRowsInto adds the column sums of v to dst[:Cols()].
func (v View2) SumRowsInto(dst []float64) {
	for c := 0; c < v.cols; c++ {
		s := 0.0
		for a := 0; a < v.rows; a++ {
			s += v.arr[a*v.stride+c]
		}
		dst[c] += s
	}
}

// AvgRowsInto adds the column means of v to dst. No-op for zero rows.
func (v View2) AvgRowsInto(dst []float64) {
	if v.rows == 0 {
		return
	}
	k := float64(v.rows)
	for c := 0; c < v.cols; c++ {
		s := 0.0
		for a := 0; a < v.rows; a++ {
			s += v.arr[a*v.stride+c]
		}
		dst[c] += s / k
	}
}

// SumRowsAtInto adds the sums of rows ix (in order) to dst.
func (v View2) SumRowsAtInto(ix []int, dst []float64) {
	for c := 0; c < v.cols; c++ {
		s := 0.0
		for _, a := range ix {
			s += v.arr[a*v.stride+c]
		}
		dst[c] += s
	}
}

// AvgRowsAtInto adds the means of rows ix to dst. No-op for empty ix.
func (v View2) AvgRowsAtInto(ix []int, dst []float64) {
	if len(ix) == 0 {
		return
	}
	k := float64(len(ix))
	for c := 0; c < v.cols; c++ {
		s := 0.0
		for _, a := range ix {
			s += v.arr[a*v.stride+c]
		}
		dst[c] += s / k
	}
}

// AddRepeat adds scale*x to every row.
func (v View2) AddRepeat(x []float64, scale float64) {
	for a := 0; a < v.rows; a++ {
		row := v.Row(a)
		for c := range row {
			row[c] += scale * x[c]
		}
	}
}

// AddRepeatAt adds scale*x to rows ix, in order.
func (v View2) AddRepeatAt(ix []int, x []float64, scale float64) {
	for _, a := range ix {
		row := v.Row(a)
		for c := range row {
			row[c] += scale * x[c]
		}
	}
}

// Add adds x element-wise. Precondition: same rows and cols.
func (v View2) Add(x View2) {
	v.AddScaled(x, 1)
}

// AddScaled adds scale*x element-wise. Precondition: same rows and cols.
func (v View2) AddScaled(x View2, scale float64) {
	for a := 0; a < v.rows; a++ {
		dst, src := v.Row(a), x.Row(a)
		for c := range dst {
			dst[c] += scale * src[c]
		}
	}
}

// AddGathered adds row ix[j] of x to row j of v.
// Precondition: len(ix) == v.Rows(), same cols.
func (v View2) AddGathered(x View2, ix []int) {
	for j, a := range ix {
		dst, src := v.Row(j), x.Row(a)
		for c := range dst {
			dst[c] += src[c]
		}
	}
}

// AddScattered adds row j of x to row ix[j] of v.
// Precondition: len(ix) == x.Rows(), same cols.
func (v View2) AddScattered(ix []int, x View2) {
	for j, a := range ix {
		dst, src := v.Row(a), x.Row(j)
		for c := range dst {
			dst[c] += src[c]
		}
	}
}

// ScaleChannels multiplies column c by y[c].
func (v View2) ScaleChannels(y []float64) {
	for a := 0; a < v.rows; a++ {
		row := v.Row(a)
		for c := range row {
			row[c] *= y[c]
		}
	}
}

// AddScaleChannels adds x with column c multiplied by y[c].
// Precondition: same rows and cols, len(y) == Cols().
func (v View2) AddScaleChannels(x View2, y []float64) {
	for a := 0; a < v.rows; a++ {
		dst, src := v.Row(a), x.Row(a)
		for c := range dst {
			dst[c] += y[c] * src[c]
		}
	}
}

// Dot returns the Frobenius inner product with x. Precondition: same shape.
func (v View2) Dot(x View2) float64 {
	s := 0.0
	for a := 0; a < v.rows; a++ {
		p, q := v.Row(a), x.Row(a)
		for c := range p {
			s += p[c] * q[c]
		}
	}

	return s
}
