// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no pack is stored under the name.
	ErrNotFound = errors.New("store: pack not found")

	// ErrBadName indicates an empty name or one containing '/'.
	ErrBadName = errors.New("store: invalid pack name")

	// ErrNoPath indicates a persistent store opened without a directory.
	ErrNoPath = errors.New("store: path required")
)

func storeErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
