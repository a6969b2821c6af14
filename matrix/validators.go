// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Single source of truth for shape and nil checks.
//   - Return tagged sentinels so call sites can wrap uniformly.

package matrix

import "fmt"

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateDims accepts rows, cols >= 0.
func ValidateDims(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return validatorErrorf("ValidateDims", ErrInvalidDimensions)
	}
	return nil
}

// ValidateNotNil ensures m is non-nil.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	return nil
}

// ValidateSameShape ensures a and b have equal dimensions. Assumes non-nil.
func ValidateSameShape(a, b Matrix) error {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape", ErrDimensionMismatch)
	}
	return nil
}
