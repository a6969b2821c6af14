// SPDX-License-Identifier: MIT

// Package matrix - dense arithmetic.
//
// Every function validates (nil → shape) before allocating and returns a new
// matrix; inputs are never mutated. *Dense operands take a flat-slice fast
// path, other Matrix implementations go through At/Set.

package matrix

import "math"

// dense returns m as *Dense, copying through At when it is another type.
func dense(m Matrix) *Dense {
	if d, ok := m.(*Dense); ok {
		return d
	}
	d := &Dense{r: m.Rows(), c: m.Cols(), data: make([]float64, m.Rows()*m.Cols())}
	for i := 0; i < d.r; i++ {
		for j := 0; j < d.c; j++ {
			d.data[i*d.c+j], _ = m.At(i, j)
		}
	}

	return d
}

func binary(tag string, a, b Matrix, f func(x, y float64) float64) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	da, db := dense(a), dense(b)
	out := &Dense{r: da.r, c: da.c, data: make([]float64, len(da.data))}
	for i := range out.data {
		out.data[i] = f(da.data[i], db.data[i])
	}

	return out, nil
}

// Add returns a + b.
func Add(a, b Matrix) (*Dense, error) {
	return binary("Add", a, b, func(x, y float64) float64 { return x + y })
}

// ColSums returns c[j] = Σ_i m[i,j].
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("ColSums", err)
	}
	d := dense(m)
	out := make([]float64, d.c)
	for i := 0; i < d.r; i++ {
		for j, v := range d.data[i*d.c : (i+1)*d.c] {
			out[j] += v
		}
	}

	return out, nil
}

// AllClose reports |a-b| <= atol + rtol*|b| element-wise.
// Negative tolerances are taken by absolute value; NaN/Inf tolerances are rejected.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf("AllClose", ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	da, db := dense(a), dense(b)
	for i := range da.data {
		if math.Abs(da.data[i]-db.data[i]) > atol+rtol*math.Abs(db.data[i]) {
			return false, nil
		}
	}

	return true, nil
}
