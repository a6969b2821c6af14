// SPDX-License-Identifier: MIT

package ptensors

import (
	"context"
	"fmt"
	"strings"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/matrix"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
)

// Pack0 is a pack of order-0 tensors: one length-C vector per domain.
// Invariant: every item of data has extent 1.
type Pack0 struct {
	core
	grad companion[Pack0]
}

// New0 builds an order-0 pack over domains a.
func New0(s *session.Session, a *atoms.Pack, nc int, fill ragged.Fill, dev device.Device) (*Pack0, error) {
	if s == nil {
		return nil, ptensorsErrorf("New0", ErrNilSession)
	}
	if a == nil {
		return nil, ptensorsErrorf("New0", ErrNilPack)
	}
	data, err := ragged.NewUniform(a.Size(), 1, nc, fill, s, dev)
	if err != nil {
		return nil, ptensorsErrorf("New0", err)
	}

	return &Pack0{core: core{sess: s, data: data, atoms: a.Clone()}}, nil
}

// Zero0 builds a zero order-0 pack.
func Zero0(s *session.Session, a *atoms.Pack, nc int, dev device.Device) (*Pack0, error) {
	return New0(s, a, nc, ragged.Zero(), dev)
}

// Gaussian0 builds an order-0 pack of N(0, sigma²) samples.
func Gaussian0(s *session.Session, a *atoms.Pack, nc int, sigma float64, dev device.Device) (*Pack0, error) {
	return New0(s, a, nc, ragged.Gaussian(sigma), dev)
}

// FromRagged0 wraps order-0 storage. The pack takes ownership of data.
func FromRagged0(s *session.Session, a *atoms.Pack, data *ragged.Pack) (*Pack0, error) {
	if s == nil {
		return nil, ptensorsErrorf("FromRagged0", ErrNilSession)
	}
	if a == nil || data == nil {
		return nil, ptensorsErrorf("FromRagged0", ErrNilPack)
	}
	if a.Size() != data.Size() {
		return nil, ptensorsErrorf("FromRagged0", fmt.Errorf("%d domains for %d items: %w", a.Size(), data.Size(), ErrDomainMismatch))
	}
	for i := 0; i < data.Size(); i++ {
		if data.ExtentOf(i) != 1 {
			return nil, ptensorsErrorf("FromRagged0", fmt.Errorf("item %d extent %d: %w", i, data.ExtentOf(i), ErrDomainMismatch))
		}
	}

	return &Pack0{core: core{sess: s, data: data, atoms: a.Clone()}}, nil
}

// ToMatrix returns the data as a Size()×C matrix.
func (p *Pack0) ToMatrix() (*matrix.Dense, error) {
	h, err := p.host()
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}
	data, err := h.Data()
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}
	m, err := matrix.NewDenseFrom(h.Size(), h.Channels(), data)
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}

	return m, nil
}

// Vec returns a host copy of vector i.
func (p *Pack0) Vec(i int) ([]float64, error) {
	if err := p.sync(); err != nil {
		return nil, ptensorsErrorf("Vec", err)
	}
	if _, err := p.data.Dir(i); err != nil {
		return nil, ptensorsErrorf("Vec", err)
	}
	return p.data.DeviceItem(i).Slice(), nil
}

// ZerosLike returns a zero pack with p's domains, channels and device.
func (p *Pack0) ZerosLike() *Pack0 {
	return &Pack0{core: core{sess: p.sess, data: p.data.ZerosLike(), atoms: p.atoms.Clone()}}
}

// Clone returns a deep copy without the gradient.
func (p *Pack0) Clone() (*Pack0, error) {
	if err := p.sync(); err != nil {
		return nil, ptensorsErrorf("Clone", err)
	}
	return &Pack0{core: core{sess: p.sess, data: p.data.Clone(), atoms: p.atoms.Clone()}}, nil
}

// ToDevice returns a copy of p on dev.
func (p *Pack0) ToDevice(dev device.Device) (*Pack0, error) {
	h, err := p.host()
	if err != nil {
		return nil, ptensorsErrorf("ToDevice", err)
	}
	data, err := h.ToDevice(dev)
	if err != nil {
		return nil, ptensorsErrorf("ToDevice", err)
	}

	return &Pack0{core: core{sess: p.sess, data: data, atoms: p.atoms.Clone()}}, nil
}

// Add computes p += x.
func (p *Pack0) Add(ctx context.Context, x *Pack0) error {
	return p.AddScaled(ctx, x, 1)
}

// AddScaled computes p += scale*x.
func (p *Pack0) AddScaled(ctx context.Context, x *Pack0, scale float64) error {
	if x == nil {
		return ptensorsErrorf("AddScaled", ErrNilPack)
	}
	return p.addScaled(ctx, "AddScaled", &x.core, scale)
}

// ScaleChannels multiplies channel k of every vector by y[k].
func (p *Pack0) ScaleChannels(ctx context.Context, y []float64) error {
	return p.scaleChannels(ctx, y)
}

// AddScaleChannels computes p += x with channel k of every vector of x
// multiplied by y[k].
func (p *Pack0) AddScaleChannels(ctx context.Context, x *Pack0, y []float64) error {
	if x == nil {
		return ptensorsErrorf("AddScaleChannels", ErrNilPack)
	}
	return p.addScaleChannels(ctx, &x.core, y)
}

// Inp returns the inner product <p, x>.
func (p *Pack0) Inp(x *Pack0) (float64, error) {
	if x == nil {
		return 0, ptensorsErrorf("Inp", ErrNilPack)
	}
	v, err := p.inp(&x.core)
	if err != nil {
		return 0, ptensorsErrorf("Inp", err)
	}
	return v, nil
}

// Diff2 returns the squared distance to x.
func (p *Pack0) Diff2(x *Pack0) (float64, error) {
	if x == nil {
		return 0, ptensorsErrorf("Diff2", ErrNilPack)
	}
	v, err := p.diff2(&x.core)
	if err != nil {
		return 0, ptensorsErrorf("Diff2", err)
	}
	return v, nil
}

// AllClose reports whether p and q share domains and agree within tol.
func (p *Pack0) AllClose(q *Pack0, tol float64) bool {
	if q == nil || p.sync() != nil || q.sync() != nil {
		return false
	}
	return p.atoms.Equal(q.atoms) && p.data.AllClose(q.data, tol)
}

// Grad returns the gradient, allocating it on first use.
func (p *Pack0) Grad() *Pack0 {
	return p.grad.ensure(p.ZerosLike)
}

// HasGrad reports whether the gradient is allocated.
func (p *Pack0) HasGrad() bool { return p.grad.get() != nil }

// AddToGrad accumulates x into the gradient.
func (p *Pack0) AddToGrad(ctx context.Context, x *Pack0) error {
	return p.Grad().Add(ctx, x)
}

// DropGrad releases the gradient.
func (p *Pack0) DropGrad() { p.grad.drop() }

// Repr returns a one-line summary.
func (p *Pack0) Repr() string {
	return fmt.Sprintf("<Ptensors0[N=%d,nc=%d,dev=%s]>", p.Size(), p.Channels(), p.Device())
}

// String renders every vector with its domain.
func (p *Pack0) String() string {
	h, err := p.host()
	if err != nil {
		return p.Repr()
	}
	var sb strings.Builder
	for i := 0; i < h.Size(); i++ {
		a, _ := p.atoms.At(i)
		fmt.Fprintf(&sb, "Ptensor0 %v: %v\n", a, h.DeviceItem(i).Row(0))
	}

	return sb.String()
}
