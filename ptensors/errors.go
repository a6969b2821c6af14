// SPDX-License-Identifier: MIT

package ptensors

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSession indicates a constructor called without a session.
	ErrNilSession = errors.New("ptensors: nil session")

	// ErrNilPack indicates a nil pack, domain pack or correspondence argument.
	ErrNilPack = errors.New("ptensors: nil pack")

	// ErrDomainMismatch indicates storage extents that disagree with the
	// domain sizes, or operands over different domains.
	ErrDomainMismatch = errors.New("ptensors: domain mismatch")

	// ErrNoOperands indicates Cat or Sum called with an empty list.
	ErrNoOperands = errors.New("ptensors: no operands")

	// ErrBadEncoding indicates malformed binary pack data.
	ErrBadEncoding = errors.New("ptensors: malformed encoding")
)

func ptensorsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
