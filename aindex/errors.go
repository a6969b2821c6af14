// SPDX-License-Identifier: MIT

package aindex

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates an entry index, target item or row position
	// outside its bounds.
	ErrOutOfRange = errors.New("aindex: index out of range")

	// ErrListTooLong indicates a position list longer than its target's extent.
	ErrListTooLong = errors.New("aindex: position list longer than target extent")

	// ErrNegative indicates a negative target item or position.
	ErrNegative = errors.New("aindex: negative index")
)

func aindexErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
