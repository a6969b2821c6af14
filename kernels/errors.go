// SPDX-License-Identifier: MIT

package kernels

import (
	"errors"
	"fmt"
)

// ErrNilOperand indicates a nil pack or correspondence argument.
// Shape, channel and device violations are reported with the ragged and
// aindex sentinels so callers can match them with errors.Is at any layer.
var ErrNilOperand = errors.New("kernels: nil operand")

func kernelsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
