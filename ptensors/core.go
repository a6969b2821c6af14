// SPDX-License-Identifier: MIT

package ptensors

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/kernels"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
)

// core is the state shared by Pack0 and Pack1: the owning session, the ragged
// storage and the index domains. The reduce and broadcast family lives here
// and is promoted to both pack types.
type core struct {
	sess  *session.Session
	data  *ragged.Pack
	atoms *atoms.Pack
}

// Size returns the number of items.
func (c *core) Size() int { return c.data.Size() }

// Channels returns the number of channels.
func (c *core) Channels() int { return c.data.Channels() }

// Device returns the device holding the data.
func (c *core) Device() device.Device { return c.data.Device() }

// Atoms returns the index domains. The pack owns them; do not mutate.
func (c *core) Atoms() *atoms.Pack { return c.atoms }

// Ragged returns the underlying storage. The pack owns it.
func (c *core) Ragged() *ragged.Pack { return c.data }

// Session returns the owning session.
func (c *core) Session() *session.Session { return c.sess }

// backend returns the backend executing on the pack's device.
func (c *core) backend() (kernels.Backend, error) {
	return c.sess.Backend(c.data.Device())
}

// sync waits for outstanding accelerator work before host reads.
func (c *core) sync() error {
	if c.data.Device() != device.Accel {
		return nil
	}
	return c.sess.Sync()
}

// order0 allocates n zero vectors of nc channels on the pack's device.
func (c *core) order0(n, nc int) (*ragged.Pack, error) {
	return ragged.NewUniform(n, 1, nc, ragged.Zero(), nil, c.data.Device())
}

// Reduce0 sums every item over its atoms: one length-C vector per item.
func (c *core) Reduce0(ctx context.Context) (*ragged.Pack, error) {
	return c.reduce0(ctx, "Reduce0", 0, c.Channels(), false)
}

// Reduce0N averages every item over its atoms. Empty items give zero vectors.
func (c *core) Reduce0N(ctx context.Context) (*ragged.Pack, error) {
	return c.reduce0(ctx, "Reduce0N", 0, c.Channels(), true)
}

// Reduce0Range is Reduce0 restricted to channels [offs, offs+n).
func (c *core) Reduce0Range(ctx context.Context, offs, n int) (*ragged.Pack, error) {
	return c.reduce0(ctx, "Reduce0Range", offs, n, false)
}

// Reduce0NRange is Reduce0N restricted to channels [offs, offs+n).
func (c *core) Reduce0NRange(ctx context.Context, offs, n int) (*ragged.Pack, error) {
	return c.reduce0(ctx, "Reduce0NRange", offs, n, true)
}

func (c *core) reduce0(ctx context.Context, op string, offs, n int, mean bool) (r *ragged.Pack, err error) {
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.offs", offs), attribute.Int("ptens.n", n))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if r, err = c.order0(c.Size(), n); err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if mean {
		err = be.Reduce0N(ctx, r, c.data, offs, n)
	} else {
		err = be.Reduce0(ctx, r, c.data, offs, n)
	}
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}

	return r, nil
}

// Reduce0Indexed sums, for each entry i of list, rows Ix(i) of item Tens(i).
// The result has list.Size() vectors; empty entries give zeros.
func (c *core) Reduce0Indexed(ctx context.Context, list *aindex.Pack) (*ragged.Pack, error) {
	return c.reduce0Indexed(ctx, "Reduce0Indexed", list, 0, c.Channels(), false)
}

// Reduce0NIndexed is Reduce0Indexed divided by each entry's list length.
func (c *core) Reduce0NIndexed(ctx context.Context, list *aindex.Pack) (*ragged.Pack, error) {
	return c.reduce0Indexed(ctx, "Reduce0NIndexed", list, 0, c.Channels(), true)
}

// Reduce0IndexedRange is Reduce0Indexed over channels [offs, offs+n).
func (c *core) Reduce0IndexedRange(ctx context.Context, list *aindex.Pack, offs, n int) (*ragged.Pack, error) {
	return c.reduce0Indexed(ctx, "Reduce0IndexedRange", list, offs, n, false)
}

// Reduce0NIndexedRange is Reduce0NIndexed over channels [offs, offs+n).
func (c *core) Reduce0NIndexedRange(ctx context.Context, list *aindex.Pack, offs, n int) (*ragged.Pack, error) {
	return c.reduce0Indexed(ctx, "Reduce0NIndexedRange", list, offs, n, true)
}

func (c *core) reduce0Indexed(ctx context.Context, op string, list *aindex.Pack, offs, n int, mean bool) (r *ragged.Pack, err error) {
	if list == nil {
		return nil, ptensorsErrorf(op, ErrNilPack)
	}
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.entries", list.Size()))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if r, err = c.order0(list.Size(), n); err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if mean {
		err = be.Reduce0NIndexed(ctx, r, c.data, list, offs, n)
	} else {
		err = be.Reduce0Indexed(ctx, r, c.data, list, offs, n)
	}
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}

	return r, nil
}

// Reduce1 copies every item: the result has the pack's extents and channels.
func (c *core) Reduce1(ctx context.Context) (*ragged.Pack, error) {
	return c.Reduce1Range(ctx, 0, c.Channels())
}

// Reduce1Range copies channels [offs, offs+n) of every item.
func (c *core) Reduce1Range(ctx context.Context, offs, n int) (r *ragged.Pack, err error) {
	const op = "Reduce1"
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.offs", offs), attribute.Int("ptens.n", n))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if n < 0 {
		return nil, ptensorsErrorf(op, fmt.Errorf("n=%d: %w", n, ragged.ErrChannelRange))
	}
	r = c.data.ZerosLikeChannels(n)
	if err = be.Reduce1(ctx, r, c.data, offs, n); err != nil {
		return nil, ptensorsErrorf(op, err)
	}

	return r, nil
}

// Reduce1Indexed gathers, for each entry i, rows Ix(i) of item Tens(i) into
// item i of the result, whose extents are list.Nixes().
func (c *core) Reduce1Indexed(ctx context.Context, list *aindex.Pack) (*ragged.Pack, error) {
	return c.Reduce1IndexedRange(ctx, list, 0, c.Channels())
}

// Reduce1IndexedRange is Reduce1Indexed over channels [offs, offs+n).
func (c *core) Reduce1IndexedRange(ctx context.Context, list *aindex.Pack, offs, n int) (r *ragged.Pack, err error) {
	const op = "Reduce1Indexed"
	if list == nil {
		return nil, ptensorsErrorf(op, ErrNilPack)
	}
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.entries", list.Size()))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if r, err = ragged.New(list.Nixes(), n, ragged.Zero(), nil, c.Device()); err != nil {
		return nil, ptensorsErrorf(op, err)
	}
	if err = be.Reduce1Indexed(ctx, r, c.data, list, offs, n); err != nil {
		return nil, ptensorsErrorf(op, err)
	}

	return r, nil
}

// Broadcast0 adds vector i of x to every row of item i, channels
// [offs, offs+x.Channels()).
func (c *core) Broadcast0(ctx context.Context, x *ragged.Pack, offs int) error {
	return c.broadcast(ctx, "Broadcast0", x, offs, kernels.Backend.Broadcast0)
}

// Broadcast0N is Broadcast0 scaled by 1/extent of each item.
func (c *core) Broadcast0N(ctx context.Context, x *ragged.Pack, offs int) error {
	return c.broadcast(ctx, "Broadcast0N", x, offs, kernels.Backend.Broadcast0N)
}

// Broadcast1 adds item i of x into channels [offs, offs+x.Channels()) of item i.
func (c *core) Broadcast1(ctx context.Context, x *ragged.Pack, offs int) error {
	return c.broadcast(ctx, "Broadcast1", x, offs, kernels.Backend.Broadcast1)
}

// Broadcast0Indexed adds vector i of x to rows Ix(i) of item Tens(i).
func (c *core) Broadcast0Indexed(ctx context.Context, x *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.broadcastIndexed(ctx, "Broadcast0Indexed", x, list, offs, kernels.Backend.Broadcast0Indexed)
}

// Broadcast0NIndexed is Broadcast0Indexed scaled by 1/Nix(i).
func (c *core) Broadcast0NIndexed(ctx context.Context, x *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.broadcastIndexed(ctx, "Broadcast0NIndexed", x, list, offs, kernels.Backend.Broadcast0NIndexed)
}

// Broadcast1Indexed adds row j of item i of x into row Ix(i)[j] of item Tens(i).
func (c *core) Broadcast1Indexed(ctx context.Context, x *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.broadcastIndexed(ctx, "Broadcast1Indexed", x, list, offs, kernels.Backend.Broadcast1Indexed)
}

type plainBroadcast func(kernels.Backend, context.Context, *ragged.Pack, *ragged.Pack, int) error

type indexedBroadcast func(kernels.Backend, context.Context, *ragged.Pack, *ragged.Pack, *aindex.Pack, int) error

func (c *core) broadcast(ctx context.Context, op string, x *ragged.Pack, offs int, f plainBroadcast) (err error) {
	if x == nil {
		return ptensorsErrorf(op, ErrNilPack)
	}
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.offs", offs))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = f(be, ctx, c.data, x, offs); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

func (c *core) broadcastIndexed(ctx context.Context, op string, x *ragged.Pack, list *aindex.Pack, offs int, f indexedBroadcast) (err error) {
	if x == nil || list == nil {
		return ptensorsErrorf(op, ErrNilPack)
	}
	ctx, span := startSpan(ctx, op, c, attribute.Int("ptens.entries", list.Size()), attribute.Int("ptens.offs", offs))
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = f(be, ctx, c.data, x, list, offs); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

// Reduce0Back accumulates the adjoint of Reduce0Indexed: the receiver is the
// input gradient, g the gradient of the reduction.
func (c *core) Reduce0Back(ctx context.Context, g *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.Broadcast0Indexed(ctx, g, list, offs)
}

// Reduce0NBack accumulates the adjoint of Reduce0NIndexed.
func (c *core) Reduce0NBack(ctx context.Context, g *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.Broadcast0NIndexed(ctx, g, list, offs)
}

// Reduce1Back accumulates the adjoint of Reduce1Indexed.
func (c *core) Reduce1Back(ctx context.Context, g *ragged.Pack, list *aindex.Pack, offs int) error {
	return c.Broadcast1Indexed(ctx, g, list, offs)
}

// Broadcast0Back returns the adjoint of Broadcast0Indexed applied to the
// receiver, channels [offs, offs+n).
func (c *core) Broadcast0Back(ctx context.Context, list *aindex.Pack, offs, n int) (*ragged.Pack, error) {
	return c.Reduce0IndexedRange(ctx, list, offs, n)
}

// Broadcast1Back returns the adjoint of Broadcast1Indexed applied to the
// receiver, channels [offs, offs+n).
func (c *core) Broadcast1Back(ctx context.Context, list *aindex.Pack, offs, n int) (*ragged.Pack, error) {
	return c.Reduce1IndexedRange(ctx, list, offs, n)
}

// addScaled computes c += scale*x for a pack of identical layout.
func (c *core) addScaled(ctx context.Context, op string, x *core, scale float64) (err error) {
	ctx, span := startSpan(ctx, op, c)
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = be.AddScaled(ctx, c.data, x.data, scale); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

// addScaleChannels computes c += x with channel k of x weighted by y[k].
func (c *core) addScaleChannels(ctx context.Context, x *core, y []float64) (err error) {
	const op = "AddScaleChannels"
	ctx, span := startSpan(ctx, op, c)
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = be.AddScaleChannels(ctx, c.data, x.data, y); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

// scaleChannels multiplies channel k of every row by y[k].
func (c *core) scaleChannels(ctx context.Context, y []float64) (err error) {
	const op = "ScaleChannels"
	ctx, span := startSpan(ctx, op, c)
	defer func() { endSpan(span, err) }()

	be, err := c.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = be.ScaleChannels(ctx, c.data, y); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

// inp returns the Frobenius inner product with x. Both must share a layout.
func (c *core) inp(x *core) (float64, error) {
	if !c.data.SameLayout(x.data) {
		return 0, ragged.ErrDimensionMismatch
	}
	if c.Device() != x.Device() {
		return 0, ragged.ErrDeviceMismatch
	}
	if err := c.sync(); err != nil {
		return 0, err
	}
	s := 0.0
	for i := 0; i < c.Size(); i++ {
		s += c.data.DeviceItem(i).Dot(x.data.DeviceItem(i))
	}

	return s, nil
}

// diff2 returns Σ (c - x)² over all elements.
func (c *core) diff2(x *core) (float64, error) {
	if !c.data.SameLayout(x.data) {
		return 0, ragged.ErrDimensionMismatch
	}
	if c.Device() != x.Device() {
		return 0, ragged.ErrDeviceMismatch
	}
	if err := c.sync(); err != nil {
		return 0, err
	}
	s := 0.0
	for i := 0; i < c.Size(); i++ {
		a, b := c.data.DeviceItem(i), x.data.DeviceItem(i)
		for r := 0; r < a.Rows(); r++ {
			ra, rb := a.Row(r), b.Row(r)
			for k := range ra {
				d := ra[k] - rb[k]
				s += d * d
			}
		}
	}

	return s, nil
}

// host returns a host copy of the data, synchronizing first.
func (c *core) host() (*ragged.Pack, error) {
	if err := c.sync(); err != nil {
		return nil, err
	}
	return c.data.ToDevice(device.Host)
}
