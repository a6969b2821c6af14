// SPDX-License-Identifier: MIT

package ptensors

import (
	"context"
)

// Linmaps0 maps x to the order-0 pack of its per-item sums (means when
// normalized).
func Linmaps0(ctx context.Context, x *Pack1, normalized bool) (*Pack0, error) {
	if x == nil {
		return nil, ptensorsErrorf("Linmaps0", ErrNilPack)
	}
	var (
		r   = x.Reduce0
		out *Pack0
	)
	if normalized {
		r = x.Reduce0N
	}
	data, err := r(ctx)
	if err != nil {
		return nil, ptensorsErrorf("Linmaps0", err)
	}
	if out, err = FromRagged0(x.sess, x.atoms, data); err != nil {
		return nil, ptensorsErrorf("Linmaps0", err)
	}

	return out, nil
}

// Linmaps0Back accumulates into x's gradient the adjoint of Linmaps0 applied
// to g.
func Linmaps0Back(ctx context.Context, x *Pack1, g *Pack0, normalized bool) error {
	if x == nil || g == nil {
		return ptensorsErrorf("Linmaps0Back", ErrNilPack)
	}
	b := x.Grad().Broadcast0
	if normalized {
		b = x.Grad().Broadcast0N
	}
	if err := b(ctx, g.data, 0); err != nil {
		return ptensorsErrorf("Linmaps0Back", err)
	}

	return nil
}

// Linmaps1 maps x to a pack with 2·C channels: channels [0, C) hold the
// per-item sum (mean when normalized) repeated on every atom, channels
// [C, 2C) hold x itself.
func Linmaps1(ctx context.Context, x *Pack1, normalized bool) (*Pack1, error) {
	if x == nil {
		return nil, ptensorsErrorf("Linmaps1", ErrNilPack)
	}
	nc := x.Channels()
	r := x.Reduce0
	if normalized {
		r = x.Reduce0N
	}
	t, err := r(ctx)
	if err != nil {
		return nil, ptensorsErrorf("Linmaps1", err)
	}
	out := x.ZerosLikeChannels(2 * nc)
	if err = out.Broadcast0(ctx, t, 0); err != nil {
		return nil, ptensorsErrorf("Linmaps1", err)
	}
	if err = out.Broadcast1(ctx, x.data, nc); err != nil {
		return nil, ptensorsErrorf("Linmaps1", err)
	}

	return out, nil
}

// Linmaps1Back accumulates into x's gradient the adjoint of Linmaps1 applied
// to g, which has 2·C channels.
func Linmaps1Back(ctx context.Context, x *Pack1, g *Pack1, normalized bool) error {
	if x == nil || g == nil {
		return ptensorsErrorf("Linmaps1Back", ErrNilPack)
	}
	nc := x.Channels()
	t, err := g.Reduce0Range(ctx, 0, nc)
	if err != nil {
		return ptensorsErrorf("Linmaps1Back", err)
	}
	grad := x.Grad()
	b := grad.Broadcast0
	if normalized {
		b = grad.Broadcast0N
	}
	if err = b(ctx, t, 0); err != nil {
		return ptensorsErrorf("Linmaps1Back", err)
	}
	if err = grad.AddChannels(ctx, g, nc); err != nil {
		return ptensorsErrorf("Linmaps1Back", err)
	}

	return nil
}
