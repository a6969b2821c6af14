// SPDX-License-Identifier: MIT

package atoms

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeAtom is returned when an index domain contains a negative atom.
	ErrNegativeAtom = errors.New("atoms: negative atom index")

	// ErrOutOfRange indicates an item index outside [0, Size()).
	ErrOutOfRange = errors.New("atoms: item index out of range")

	// ErrBadPermutation indicates a permutation of the wrong length or one that
	// is not a bijection on [0, Size()).
	ErrBadPermutation = errors.New("atoms: invalid permutation")

	// ErrNilPack indicates a nil *Pack argument.
	ErrNilPack = errors.New("atoms: nil pack")
)

// atomsErrorf tags a sentinel with the failing operation.
func atomsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
