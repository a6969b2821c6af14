// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session: closed")

	// ErrInvalidConfig wraps validation failures of a Config.
	ErrInvalidConfig = errors.New("session: invalid config")
)

func sessionErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
