// SPDX-License-Identifier: MIT

// Package kernels - operator family shared by every backend.
//
// Each operator follows the same two stages:
//   - Stage 1 (Validate): operands non-nil, on the backend's device, with
//     matching item counts, extents, channel counts and channel ranges; lists
//     validated against the pack they index. Runs on the caller goroutine.
//   - Stage 2 (Execute): a per-item body handed to the backend's runner.
//
// Shapes (k_i = extent of item i, nix_i = list length of entry i):
//   - Reduce0*(r, x, offs, n):  r has x.Size() items of extent 1, n channels.
//   - Reduce1(r, x, offs, n):   r has x's extents, n channels.
//   - *Indexed reductions:      r has list.Size() items, extent 1 or nix_i.
//   - Broadcast0*(r, x, offs):  x has r.Size() items of extent 1.
//   - Broadcast1(r, x, offs):   x has r's extents.
//   - *Indexed broadcasts:      x has list.Size() items, extent 1 or nix_i.

package kernels

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ragged"
)

// Backend executes the reduce/broadcast family on packs of one device.
// All operators accumulate into r.
type Backend interface {
	Name() string
	Device() device.Device

	// Sync waits for all previously issued operators and returns the first
	// execution error. A no-op for synchronous backends.
	Sync() error

	Reduce0(ctx context.Context, r, x *ragged.Pack, offs, n int) error
	Reduce0N(ctx context.Context, r, x *ragged.Pack, offs, n int) error
	Reduce0Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error
	Reduce0NIndexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error
	Reduce1(ctx context.Context, r, x *ragged.Pack, offs, n int) error
	Reduce1Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error

	Broadcast0(ctx context.Context, r, x *ragged.Pack, offs int) error
	Broadcast0N(ctx context.Context, r, x *ragged.Pack, offs int) error
	Broadcast0Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error
	Broadcast0NIndexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error
	Broadcast1(ctx context.Context, r, x *ragged.Pack, offs int) error
	Broadcast1Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error

	// AddScaled computes r += scale*x for packs of identical layout.
	AddScaled(ctx context.Context, r, x *ragged.Pack, scale float64) error
	// ScaleChannels multiplies channel c of every row of r by y[c].
	ScaleChannels(ctx context.Context, r *ragged.Pack, y []float64) error
	// AddScaleChannels computes r += x with channel c of x scaled by y[c].
	AddScaleChannels(ctx context.Context, r, x *ragged.Pack, y []float64) error
}

// runner executes body(i) for i in [0, n) under the label op.
type runner func(ctx context.Context, op string, n int, body func(i int)) error

// engine implements every operator on top of a runner.
type engine struct {
	name string
	dev  device.Device
	run  runner
}

// Name returns the backend label used in logs and metrics.
func (e *engine) Name() string { return e.name }

// Device returns the device whose packs this backend accepts.
func (e *engine) Device() device.Device { return e.dev }

func (e *engine) fail(op string, err error) error {
	return kernelsErrorf(fmt.Sprintf("%s.%s", e.name, op), err)
}

// Reduce0 sums channels [offs, offs+n) of each item over its rows.
func (e *engine) Reduce0(ctx context.Context, r, x *ragged.Pack, offs, n int) error {
	return e.reduce0(ctx, "Reduce0", r, x, offs, n, false)
}

// Reduce0N is Reduce0 divided by each item's extent.
func (e *engine) Reduce0N(ctx context.Context, r, x *ragged.Pack, offs, n int) error {
	return e.reduce0(ctx, "Reduce0N", r, x, offs, n, true)
}

func (e *engine) reduce0(ctx context.Context, op string, r, x *ragged.Pack, offs, n int, mean bool) error {
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := x.CheckRange(offs, n); err != nil {
		return e.fail(op, err)
	}
	if err := checkOrder0(r, x.Size(), n); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, x.Size(), func(i int) {
		src, dst := x.DeviceBlock(i, offs, n), r.DeviceItem(i).Row(0)
		if mean {
			src.AvgRowsInto(dst)
		} else {
			src.SumRowsInto(dst)
		}
	})
}

// Reduce0Indexed sums, for each entry i, rows Ix(i) of item Tens(i).
// Empty entries leave row i of r untouched.
func (e *engine) Reduce0Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error {
	return e.reduce0Indexed(ctx, "Reduce0Indexed", r, x, list, offs, n, false)
}

// Reduce0NIndexed is Reduce0Indexed divided by each entry's list length.
func (e *engine) Reduce0NIndexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error {
	return e.reduce0Indexed(ctx, "Reduce0NIndexed", r, x, list, offs, n, true)
}

func (e *engine) reduce0Indexed(ctx context.Context, op string, r, x *ragged.Pack, list *aindex.Pack, offs, n int, mean bool) error {
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := checkList(list, x); err != nil {
		return e.fail(op, err)
	}
	if err := x.CheckRange(offs, n); err != nil {
		return e.fail(op, err)
	}
	if err := checkOrder0(r, list.Size(), n); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, list.Size(), func(i int) {
		ix := list.Ix(i)
		if len(ix) == 0 {
			return
		}
		src, dst := x.DeviceBlock(list.Tens(i), offs, n), r.DeviceItem(i).Row(0)
		if mean {
			src.AvgRowsAtInto(ix, dst)
		} else {
			src.SumRowsAtInto(ix, dst)
		}
	})
}

// Reduce1 adds channels [offs, offs+n) of each item of x into r.
func (e *engine) Reduce1(ctx context.Context, r, x *ragged.Pack, offs, n int) error {
	const op = "Reduce1"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := x.CheckRange(offs, n); err != nil {
		return e.fail(op, err)
	}
	if err := checkExtents(r, x.Extents(), n); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, x.Size(), func(i int) {
		r.DeviceItem(i).Add(x.DeviceBlock(i, offs, n))
	})
}

// Reduce1Indexed adds row Ix(i)[j] of item Tens(i) into row j of item i of r.
func (e *engine) Reduce1Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs, n int) error {
	const op = "Reduce1Indexed"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := checkList(list, x); err != nil {
		return e.fail(op, err)
	}
	if err := x.CheckRange(offs, n); err != nil {
		return e.fail(op, err)
	}
	if err := checkExtents(r, list.Nixes(), n); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, list.Size(), func(i int) {
		ix := list.Ix(i)
		if len(ix) == 0 {
			return
		}
		r.DeviceItem(i).AddGathered(x.DeviceBlock(list.Tens(i), offs, n), ix)
	})
}

// Broadcast0 adds row 0 of item i of x to every row of item i of r,
// channels [offs, offs+x.Channels()).
func (e *engine) Broadcast0(ctx context.Context, r, x *ragged.Pack, offs int) error {
	return e.broadcast0(ctx, "Broadcast0", r, x, offs, false)
}

// Broadcast0N is Broadcast0 scaled by 1/extent of the target item.
func (e *engine) Broadcast0N(ctx context.Context, r, x *ragged.Pack, offs int) error {
	return e.broadcast0(ctx, "Broadcast0N", r, x, offs, true)
}

func (e *engine) broadcast0(ctx context.Context, op string, r, x *ragged.Pack, offs int, mean bool) error {
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	nc := x.Channels()
	if err := r.CheckRange(offs, nc); err != nil {
		return e.fail(op, err)
	}
	if err := checkOrder0(x, r.Size(), nc); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, r.Size(), func(i int) {
		k := r.ExtentOf(i)
		if k == 0 {
			return
		}
		scale := 1.0
		if mean {
			scale = 1 / float64(k)
		}
		r.DeviceBlock(i, offs, nc).AddRepeat(x.DeviceItem(i).Row(0), scale)
	})
}

// Broadcast0Indexed adds row 0 of item i of x to rows Ix(i) of item Tens(i)
// of r. Empty entries are skipped.
func (e *engine) Broadcast0Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error {
	return e.broadcast0Indexed(ctx, "Broadcast0Indexed", r, x, list, offs, false)
}

// Broadcast0NIndexed is Broadcast0Indexed scaled by 1/Nix(i).
func (e *engine) Broadcast0NIndexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error {
	return e.broadcast0Indexed(ctx, "Broadcast0NIndexed", r, x, list, offs, true)
}

func (e *engine) broadcast0Indexed(ctx context.Context, op string, r, x *ragged.Pack, list *aindex.Pack, offs int, mean bool) error {
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := checkList(list, r); err != nil {
		return e.fail(op, err)
	}
	nc := x.Channels()
	if err := r.CheckRange(offs, nc); err != nil {
		return e.fail(op, err)
	}
	if err := checkOrder0(x, list.Size(), nc); err != nil {
		return e.fail(op, err)
	}

	return e.scatter(ctx, op, r, list, offs, nc, func(dst ragged.View2, i int, ix []int) {
		scale := 1.0
		if mean {
			scale = 1 / float64(len(ix))
		}
		dst.AddRepeatAt(ix, x.DeviceItem(i).Row(0), scale)
	})
}

// Broadcast1 adds item i of x into channels [offs, offs+x.Channels()) of
// item i of r.
func (e *engine) Broadcast1(ctx context.Context, r, x *ragged.Pack, offs int) error {
	const op = "Broadcast1"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	nc := x.Channels()
	if err := r.CheckRange(offs, nc); err != nil {
		return e.fail(op, err)
	}
	if err := checkExtents(x, r.Extents(), nc); err != nil {
		return e.fail(op, err)
	}

	return e.run(ctx, op, r.Size(), func(i int) {
		r.DeviceBlock(i, offs, nc).Add(x.DeviceItem(i))
	})
}

// Broadcast1Indexed adds row j of item i of x into row Ix(i)[j] of item
// Tens(i) of r.
func (e *engine) Broadcast1Indexed(ctx context.Context, r, x *ragged.Pack, list *aindex.Pack, offs int) error {
	const op = "Broadcast1Indexed"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if err := checkList(list, r); err != nil {
		return e.fail(op, err)
	}
	nc := x.Channels()
	if err := r.CheckRange(offs, nc); err != nil {
		return e.fail(op, err)
	}
	if err := checkExtents(x, list.Nixes(), nc); err != nil {
		return e.fail(op, err)
	}

	return e.scatter(ctx, op, r, list, offs, nc, func(dst ragged.View2, i int, ix []int) {
		dst.AddScattered(ix, x.DeviceItem(i))
	})
}

// scatter runs one body per distinct target item; entries sharing a target
// are applied in stored order by the same worker.
func (e *engine) scatter(ctx context.Context, op string, r *ragged.Pack, list *aindex.Pack, offs, nc int,
	apply func(dst ragged.View2, i int, ix []int)) error {
	targets := list.Targets()
	groups := list.ByTarget()

	return e.run(ctx, op, len(targets), func(t int) {
		tgt := targets[t]
		dst := r.DeviceBlock(tgt, offs, nc)
		for _, i := range groups[tgt] {
			if ix := list.Ix(i); len(ix) > 0 {
				apply(dst, i, ix)
			}
		}
	})
}

// AddScaled computes r += scale*x.
func (e *engine) AddScaled(ctx context.Context, r, x *ragged.Pack, scale float64) error {
	const op = "AddScaled"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if !r.SameLayout(x) {
		return e.fail(op, ragged.ErrDimensionMismatch)
	}

	return e.run(ctx, op, r.Size(), func(i int) {
		r.DeviceItem(i).AddScaled(x.DeviceItem(i), scale)
	})
}

// ScaleChannels multiplies channel c of r by y[c]. y is copied.
func (e *engine) ScaleChannels(ctx context.Context, r *ragged.Pack, y []float64) error {
	const op = "ScaleChannels"
	if err := checkOperands(e.dev, r); err != nil {
		return e.fail(op, err)
	}
	if len(y) != r.Channels() {
		return e.fail(op, fmt.Errorf("len(y) %d want %d: %w", len(y), r.Channels(), ragged.ErrChannelMismatch))
	}
	w := append([]float64(nil), y...)

	return e.run(ctx, op, r.Size(), func(i int) {
		r.DeviceItem(i).ScaleChannels(w)
	})
}

// AddScaleChannels adds x to r with channel c weighted by y[c]. y is copied.
func (e *engine) AddScaleChannels(ctx context.Context, r, x *ragged.Pack, y []float64) error {
	const op = "AddScaleChannels"
	if err := checkOperands(e.dev, r, x); err != nil {
		return e.fail(op, err)
	}
	if !r.SameLayout(x) {
		return e.fail(op, ragged.ErrDimensionMismatch)
	}
	if len(y) != r.Channels() {
		return e.fail(op, fmt.Errorf("len(y) %d want %d: %w", len(y), r.Channels(), ragged.ErrChannelMismatch))
	}
	w := append([]float64(nil), y...)

	return e.run(ctx, op, r.Size(), func(i int) {
		r.DeviceItem(i).AddScaleChannels(x.DeviceItem(i), w)
	})
}
