// SPDX-License-Identifier: MIT

package kernels

import (
	"fmt"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ragged"
)

// extents adapts a ragged pack to aindex.Extents.
type extents struct{ p *ragged.Pack }

func (e extents) Size() int        { return e.p.Size() }
func (e extents) SizeOf(i int) int { return e.p.ExtentOf(i) }

// checkOperands rejects nil packs and packs not on dev.
func checkOperands(dev device.Device, ps ...*ragged.Pack) error {
	for _, p := range ps {
		if p == nil {
			return ErrNilOperand
		}
		if p.Device() != dev {
			return fmt.Errorf("%s operand on %s backend: %w", p.Device(), dev, ragged.ErrDeviceMismatch)
		}
	}

	return nil
}

// checkOrder0 requires n items of extent 1 with nc channels.
func checkOrder0(p *ragged.Pack, n, nc int) error {
	if p.Size() != n {
		return fmt.Errorf("items %d want %d: %w", p.Size(), n, ragged.ErrDimensionMismatch)
	}
	if p.Channels() != nc {
		return fmt.Errorf("channels %d want %d: %w", p.Channels(), nc, ragged.ErrChannelMismatch)
	}
	for i := 0; i < n; i++ {
		if p.ExtentOf(i) != 1 {
			return fmt.Errorf("item %d extent %d want 1: %w", i, p.ExtentOf(i), ragged.ErrDimensionMismatch)
		}
	}

	return nil
}

// checkExtents requires p to have exactly the given extents and nc channels.
func checkExtents(p *ragged.Pack, want []int, nc int) error {
	if p.Size() != len(want) {
		return fmt.Errorf("items %d want %d: %w", p.Size(), len(want), ragged.ErrDimensionMismatch)
	}
	if p.Channels() != nc {
		return fmt.Errorf("channels %d want %d: %w", p.Channels(), nc, ragged.ErrChannelMismatch)
	}
	for i, k := range want {
		if p.ExtentOf(i) != k {
			return fmt.Errorf("item %d extent %d want %d: %w", i, p.ExtentOf(i), k, ragged.ErrDimensionMismatch)
		}
	}

	return nil
}

// checkList rejects a nil list or one not valid against p's extents.
func checkList(list *aindex.Pack, p *ragged.Pack) error {
	if list == nil {
		return ErrNilOperand
	}

	return list.Validate(extents{p})
}
