// SPDX-License-Identifier: MIT

package ragged

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates an item, row or channel index outside its bounds.
	ErrOutOfRange = errors.New("ragged: index out of range")

	// ErrDimensionMismatch indicates data whose length or extent does not
	// match the target layout.
	ErrDimensionMismatch = errors.New("ragged: dimension mismatch")

	// ErrChannelMismatch indicates operands with different channel counts.
	ErrChannelMismatch = errors.New("ragged: channel count mismatch")

	// ErrChannelRange indicates a channel sub-range (offs, n) not inside [0, nc).
	ErrChannelRange = errors.New("ragged: channel range out of bounds")

	// ErrDeviceMismatch indicates operands living on different devices.
	ErrDeviceMismatch = errors.New("ragged: device mismatch")

	// ErrWrongDevice indicates a host view requested from an accelerator pack.
	ErrWrongDevice = errors.New("ragged: data not on host")

	// ErrCapacity indicates a negative or overflowing buffer size.
	ErrCapacity = errors.New("ragged: invalid capacity")

	// ErrBadFill indicates an unknown fill kind or an invalid Gaussian sigma.
	ErrBadFill = errors.New("ragged: invalid fill")

	// ErrNilPack indicates a nil *Pack argument.
	ErrNilPack = errors.New("ragged: nil pack")
)

// raggedErrorf tags a sentinel with the failing operation.
func raggedErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
