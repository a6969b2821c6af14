// SPDX-License-Identifier: MIT

package ptensors

import (
	"context"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/overlap"
)

// Transfer0 sends x to an order-0 pack over domains dst: target j receives
// the sum, over every matched source i, of x_i summed over the atoms shared
// with dst_j (averaged over them when normalized).
func Transfer0(ctx context.Context, x *Pack1, dst *atoms.Pack, m *overlap.Map, normalized bool) (*Pack0, error) {
	if x == nil || dst == nil || m == nil {
		return nil, ptensorsErrorf("Transfer0", ErrNilPack)
	}
	r := x.Reduce0Indexed
	if normalized {
		r = x.Reduce0NIndexed
	}
	t, err := r(ctx, m.Src)
	if err != nil {
		return nil, ptensorsErrorf("Transfer0", err)
	}
	out, err := Zero0(x.sess, dst, x.Channels(), x.Device())
	if err != nil {
		return nil, ptensorsErrorf("Transfer0", err)
	}
	if err = out.Broadcast0Indexed(ctx, t, m.Heads, 0); err != nil {
		return nil, ptensorsErrorf("Transfer0", err)
	}

	return out, nil
}

// Transfer0Back accumulates into x's gradient the adjoint of Transfer0
// applied to g.
func Transfer0Back(ctx context.Context, x *Pack1, g *Pack0, m *overlap.Map, normalized bool) error {
	if x == nil || g == nil || m == nil {
		return ptensorsErrorf("Transfer0Back", ErrNilPack)
	}
	t, err := g.Broadcast0Back(ctx, m.Heads, 0, g.Channels())
	if err != nil {
		return ptensorsErrorf("Transfer0Back", err)
	}
	back := x.Grad().Reduce0Back
	if normalized {
		back = x.Grad().Reduce0NBack
	}
	if err = back(ctx, t, m.Src, 0); err != nil {
		return ptensorsErrorf("Transfer0Back", err)
	}

	return nil
}

// Transfer1 sends x to an order-1 pack over domains dst with 2·C channels.
// For every matched pair, channels [0, C) of the shared atoms of dst_j receive
// the sum (mean when normalized) of x_i over those atoms, and channels
// [C, 2C) receive the rows of x_i for the shared atoms themselves.
func Transfer1(ctx context.Context, x *Pack1, dst *atoms.Pack, m *overlap.Map, normalized bool) (*Pack1, error) {
	if x == nil || dst == nil || m == nil {
		return nil, ptensorsErrorf("Transfer1", ErrNilPack)
	}
	nc := x.Channels()
	r := x.Reduce0Indexed
	if normalized {
		r = x.Reduce0NIndexed
	}
	t0, err := r(ctx, m.Src)
	if err != nil {
		return nil, ptensorsErrorf("Transfer1", err)
	}
	t1, err := x.Reduce1Indexed(ctx, m.Src)
	if err != nil {
		return nil, ptensorsErrorf("Transfer1", err)
	}
	out, err := Zero(x.sess, dst, 2*nc, x.Device())
	if err != nil {
		return nil, ptensorsErrorf("Transfer1", err)
	}
	if err = out.Broadcast0Indexed(ctx, t0, m.Dst, 0); err != nil {
		return nil, ptensorsErrorf("Transfer1", err)
	}
	if err = out.Broadcast1Indexed(ctx, t1, m.Dst, nc); err != nil {
		return nil, ptensorsErrorf("Transfer1", err)
	}

	return out, nil
}

// Transfer1Back accumulates into x's gradient the adjoint of Transfer1
// applied to g.
func Transfer1Back(ctx context.Context, x *Pack1, g *Pack1, m *overlap.Map, normalized bool) error {
	if x == nil || g == nil || m == nil {
		return ptensorsErrorf("Transfer1Back", ErrNilPack)
	}
	nc := x.Channels()
	u0, err := g.Broadcast0Back(ctx, m.Dst, 0, nc)
	if err != nil {
		return ptensorsErrorf("Transfer1Back", err)
	}
	u1, err := g.Broadcast1Back(ctx, m.Dst, nc, nc)
	if err != nil {
		return ptensorsErrorf("Transfer1Back", err)
	}
	grad := x.Grad()
	back := grad.Reduce0Back
	if normalized {
		back = grad.Reduce0NBack
	}
	if err = back(ctx, u0, m.Src, 0); err != nil {
		return ptensorsErrorf("Transfer1Back", err)
	}
	if err = grad.Reduce1Back(ctx, u1, m.Src, 0); err != nil {
		return ptensorsErrorf("Transfer1Back", err)
	}

	return nil
}
