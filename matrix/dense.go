// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Flat row-major buffer with index formula i*cols + j.
//   - At/Set return errors instead of panicking.
//   - RawRow / Data give the pack layer copy-free access for bulk transfers.

package matrix

import (
	"fmt"
	"strings"
)

const (
	ctxAt  = "At"
	ctxSet = "Set"
)

// Dense is a concrete row-major matrix. Zero-sized shapes are allowed so a
// pack with no atoms converts to a 0×C matrix.
type Dense struct {
	r, c int
	data []float64 // len == r*c
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix.
// Returns ErrInvalidDimensions for negative dimensions.
// Complexity: O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if err := ValidateDims(rows, cols); err != nil {
		return nil, matrixErrorf("NewDense", err)
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom copies data (row-major, len rows*cols) into a new matrix.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	if err := ValidateDims(rows, cols); err != nil {
		return nil, matrixErrorf("NewDenseFrom", err)
	}
	if len(data) != rows*cols {
		return nil, matrixErrorf("NewDenseFrom", ErrInvalidDimensions)
	}
	m := &Dense{r: rows, c: cols, data: make([]float64, len(data))}
	copy(m.data, data)

	return m, nil
}

// FromRows builds a matrix from equal-length rows.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return &Dense{}, nil
	}
	c := len(rows[0])
	m := &Dense{r: len(rows), c: c, data: make([]float64, 0, len(rows)*c)}
	for _, row := range rows {
		if len(row) != c {
			return nil, matrixErrorf("FromRows", ErrDimensionMismatch)
		}
		m.data = append(m.data, row...)
	}

	return m, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}
	return row*m.c + col, nil
}

// At returns the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(ctxAt, row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns v at (row, col).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(ctxSet, row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// RawRow returns row i aliasing the buffer, or nil when out of range.
func (m *Dense) RawRow(i int) []float64 {
	if i < 0 || i >= m.r {
		return nil
	}
	return m.data[i*m.c : (i+1)*m.c : (i+1)*m.c]
}

// Data returns the row-major buffer without copying; mutations are visible.
func (m *Dense) Data() []float64 { return m.data }

// Clone returns a deep copy.
// Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	out := &Dense{r: m.r, c: m.c, data: make([]float64, len(m.data))}
	copy(out.data, m.data)

	return out
}

// String renders one bracketed row per line.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString("[")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
