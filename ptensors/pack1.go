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

// Pack1 is a pack of order-1 tensors. Item i has extent atoms.SizeOf(i).
// Invariant: data.ExtentOf(i) == atoms.SizeOf(i) for every i.
type Pack1 struct {
	core
	grad companion[Pack1]
}

// New builds a pack over domains a with nc channels on dev.
// Gaussian fills draw from the session's random source.
func New(s *session.Session, a *atoms.Pack, nc int, fill ragged.Fill, dev device.Device) (*Pack1, error) {
	if s == nil {
		return nil, ptensorsErrorf("New", ErrNilSession)
	}
	if a == nil {
		return nil, ptensorsErrorf("New", ErrNilPack)
	}
	data, err := ragged.New(a.Sizes(), nc, fill, s, dev)
	if err != nil {
		return nil, ptensorsErrorf("New", err)
	}

	return &Pack1{core: core{sess: s, data: data, atoms: a.Clone()}}, nil
}

// Zero builds a zero pack.
func Zero(s *session.Session, a *atoms.Pack, nc int, dev device.Device) (*Pack1, error) {
	return New(s, a, nc, ragged.Zero(), dev)
}

// Raw builds a pack with unspecified contents.
func Raw(s *session.Session, a *atoms.Pack, nc int, dev device.Device) (*Pack1, error) {
	return New(s, a, nc, ragged.Raw(), dev)
}

// Gaussian builds a pack of N(0, sigma²) samples.
func Gaussian(s *session.Session, a *atoms.Pack, nc int, sigma float64, dev device.Device) (*Pack1, error) {
	return New(s, a, nc, ragged.Gaussian(sigma), dev)
}

// Sequential builds a pack whose row a of every item holds a.
func Sequential(s *session.Session, a *atoms.Pack, nc int, dev device.Device) (*Pack1, error) {
	return New(s, a, nc, ragged.Sequential(), dev)
}

// FromRagged wraps existing storage. The pack takes ownership of data.
func FromRagged(s *session.Session, a *atoms.Pack, data *ragged.Pack) (*Pack1, error) {
	if s == nil {
		return nil, ptensorsErrorf("FromRagged", ErrNilSession)
	}
	if a == nil || data == nil {
		return nil, ptensorsErrorf("FromRagged", ErrNilPack)
	}
	if a.Size() != data.Size() {
		return nil, ptensorsErrorf("FromRagged", fmt.Errorf("%d domains for %d items: %w", a.Size(), data.Size(), ErrDomainMismatch))
	}
	for i := 0; i < a.Size(); i++ {
		if a.SizeOf(i) != data.ExtentOf(i) {
			return nil, ptensorsErrorf("FromRagged", fmt.Errorf("item %d: extent %d, domain %d: %w",
				i, data.ExtentOf(i), a.SizeOf(i), ErrDomainMismatch))
		}
	}

	return &Pack1{core: core{sess: s, data: data, atoms: a.Clone()}}, nil
}

// FromMatrix builds a pack from a matrix with one row per atom occurrence,
// items stacked in order, and one column per channel.
func FromMatrix(s *session.Session, m matrix.Matrix, a *atoms.Pack, dev device.Device) (*Pack1, error) {
	if m == nil {
		return nil, ptensorsErrorf("FromMatrix", ErrNilPack)
	}
	if a == nil {
		return nil, ptensorsErrorf("FromMatrix", ErrNilPack)
	}
	if m.Rows() != a.TotalSize() {
		return nil, ptensorsErrorf("FromMatrix", fmt.Errorf("%d rows for %d atoms: %w", m.Rows(), a.TotalSize(), ErrDomainMismatch))
	}
	nc := m.Cols()
	buf := make([]float64, 0, m.Rows()*nc)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < nc; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, ptensorsErrorf("FromMatrix", err)
			}
			buf = append(buf, v)
		}
	}
	data, err := ragged.FromData(a.Sizes(), nc, buf, dev)
	if err != nil {
		return nil, ptensorsErrorf("FromMatrix", err)
	}

	return FromRagged(s, a, data)
}

// ToMatrix returns the data as a dense matrix, one row per atom occurrence.
func (p *Pack1) ToMatrix() (*matrix.Dense, error) {
	h, err := p.host()
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}
	data, err := h.Data()
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}
	m, err := matrix.NewDenseFrom(h.Rows(), h.Channels(), data)
	if err != nil {
		return nil, ptensorsErrorf("ToMatrix", err)
	}

	return m, nil
}

// Item returns a host copy of item i as a k_i×C matrix.
func (p *Pack1) Item(i int) (*matrix.Dense, error) {
	if err := p.sync(); err != nil {
		return nil, ptensorsErrorf("Item", err)
	}
	if _, err := p.data.Dir(i); err != nil {
		return nil, ptensorsErrorf("Item", err)
	}
	v := p.data.DeviceItem(i)
	m, err := matrix.NewDenseFrom(v.Rows(), v.Cols(), v.Slice())
	if err != nil {
		return nil, ptensorsErrorf("Item", err)
	}

	return m, nil
}

// ZerosLike returns a zero pack with p's domains, channels and device.
func (p *Pack1) ZerosLike() *Pack1 {
	return p.ZerosLikeChannels(p.Channels())
}

// ZerosLikeChannels is ZerosLike with nc channels.
func (p *Pack1) ZerosLikeChannels(nc int) *Pack1 {
	return &Pack1{core: core{sess: p.sess, data: p.data.ZerosLikeChannels(nc), atoms: p.atoms.Clone()}}
}

// gradLike returns a zero pack sharing p's domains, so PushBack on p keeps
// both in step.
func (p *Pack1) gradLike() *Pack1 {
	return &Pack1{core: core{sess: p.sess, data: p.data.ZerosLike(), atoms: p.atoms}}
}

// GaussianLike returns a Gaussian pack shaped like p.
func (p *Pack1) GaussianLike(sigma float64) (*Pack1, error) {
	return New(p.sess, p.atoms, p.Channels(), ragged.Gaussian(sigma), p.Device())
}

// SequentialLike returns a sequential pack shaped like p.
func (p *Pack1) SequentialLike() (*Pack1, error) {
	return New(p.sess, p.atoms, p.Channels(), ragged.Sequential(), p.Device())
}

// Clone returns a deep copy of data and domains. The gradient is not copied.
func (p *Pack1) Clone() (*Pack1, error) {
	if err := p.sync(); err != nil {
		return nil, ptensorsErrorf("Clone", err)
	}
	return &Pack1{core: core{sess: p.sess, data: p.data.Clone(), atoms: p.atoms.Clone()}}, nil
}

// ToDevice returns a copy of p on dev. Moving to the current device copies.
func (p *Pack1) ToDevice(dev device.Device) (*Pack1, error) {
	if err := p.sync(); err != nil {
		return nil, ptensorsErrorf("ToDevice", err)
	}
	data, err := p.data.ToDevice(dev)
	if err != nil {
		return nil, ptensorsErrorf("ToDevice", err)
	}
	p.sess.Logger().Debug("pack moved", "from", p.Device(), "to", dev, "items", p.Size())

	return &Pack1{core: core{sess: p.sess, data: data, atoms: p.atoms.Clone()}}, nil
}

// MoveToDeviceBack accumulates into p's gradient the gradient g of a pack
// obtained from p by ToDevice.
func (p *Pack1) MoveToDeviceBack(ctx context.Context, g *Pack1) error {
	if g == nil {
		return ptensorsErrorf("MoveToDeviceBack", ErrNilPack)
	}
	moved, err := g.ToDevice(p.Device())
	if err != nil {
		return ptensorsErrorf("MoveToDeviceBack", err)
	}

	return p.AddToGrad(ctx, moved)
}

// Permute returns a new pack with item i of p placed at position pi[i].
func (p *Pack1) Permute(pi []int) (*Pack1, error) {
	a, err := p.atoms.Permute(pi)
	if err != nil {
		return nil, ptensorsErrorf("Permute", err)
	}
	if err = p.sync(); err != nil {
		return nil, ptensorsErrorf("Permute", err)
	}
	src := make([]int, len(pi))
	for i, j := range pi {
		src[j] = i
	}
	data, err := ragged.Empty(p.Channels(), p.Device())
	if err != nil {
		return nil, ptensorsErrorf("Permute", err)
	}
	if err = data.Reserve(p.data.Tail()); err != nil {
		return nil, ptensorsErrorf("Permute", err)
	}
	for _, i := range src {
		if err = data.PushBack(p.data.ExtentOf(i), p.data.DeviceItem(i).Slice()); err != nil {
			return nil, ptensorsErrorf("Permute", err)
		}
	}

	return &Pack1{core: core{sess: p.sess, data: data, atoms: a}}, nil
}

// PushBack appends an item over domain a with data laid out row-major
// (a.Size()×Channels()). An allocated gradient grows by a zero item.
func (p *Pack1) PushBack(a atoms.Atoms, data []float64) error {
	if err := p.sync(); err != nil {
		return ptensorsErrorf("PushBack", err)
	}
	// The domain is checked before the storage grows so both stay the same size.
	a, err := atoms.New(a...)
	if err != nil {
		return ptensorsErrorf("PushBack", err)
	}
	if err = p.data.PushBack(a.Size(), data); err != nil {
		return ptensorsErrorf("PushBack", err)
	}
	if err = p.atoms.Append(a); err != nil {
		return ptensorsErrorf("PushBack", err)
	}
	if g := p.grad.get(); g != nil {
		if err := g.data.PushBackZero(a.Size()); err != nil {
			return ptensorsErrorf("PushBack", err)
		}
	}

	return nil
}

// Cat concatenates packs item-wise. All must share channels and device;
// the result belongs to the first pack's session.
func Cat(packs ...*Pack1) (*Pack1, error) {
	if len(packs) == 0 {
		return nil, ptensorsErrorf("Cat", ErrNoOperands)
	}
	data := make([]*ragged.Pack, len(packs))
	domains := make([]*atoms.Pack, len(packs))
	for i, q := range packs {
		if q == nil {
			return nil, ptensorsErrorf("Cat", ErrNilPack)
		}
		if err := q.sync(); err != nil {
			return nil, ptensorsErrorf("Cat", err)
		}
		data[i], domains[i] = q.data, q.atoms
	}
	d, err := ragged.Cat(data...)
	if err != nil {
		return nil, ptensorsErrorf("Cat", err)
	}
	a, err := atoms.Cat(domains...)
	if err != nil {
		return nil, ptensorsErrorf("Cat", err)
	}

	return &Pack1{core: core{sess: packs[0].sess, data: d, atoms: a}}, nil
}

// Sum returns the element-wise sum of packs of identical shape.
func Sum(ctx context.Context, packs ...*Pack1) (*Pack1, error) {
	if len(packs) == 0 {
		return nil, ptensorsErrorf("Sum", ErrNoOperands)
	}
	if packs[0] == nil {
		return nil, ptensorsErrorf("Sum", ErrNilPack)
	}
	out, err := packs[0].Clone()
	if err != nil {
		return nil, ptensorsErrorf("Sum", err)
	}
	for _, q := range packs[1:] {
		if err = out.Add(ctx, q); err != nil {
			return nil, ptensorsErrorf("Sum", err)
		}
	}

	return out, nil
}

// Concat returns the channel-wise concatenation of x and y, which must share
// domains: channels [0, x.C) come from x and [x.C, x.C+y.C) from y.
func Concat(ctx context.Context, x, y *Pack1) (*Pack1, error) {
	if x == nil || y == nil {
		return nil, ptensorsErrorf("Concat", ErrNilPack)
	}
	if !x.atoms.Equal(y.atoms) {
		return nil, ptensorsErrorf("Concat", ErrDomainMismatch)
	}
	out := x.ZerosLikeChannels(x.Channels() + y.Channels())
	if err := out.AddToChannels(ctx, x, 0); err != nil {
		return nil, ptensorsErrorf("Concat", err)
	}
	if err := out.AddToChannels(ctx, y, x.Channels()); err != nil {
		return nil, ptensorsErrorf("Concat", err)
	}

	return out, nil
}

// AddConcatBack accumulates into p channels [offs, offs+p.C) of g, the
// adjoint of placing p at offset offs of a concatenation.
func (p *Pack1) AddConcatBack(ctx context.Context, g *Pack1, offs int) error {
	return p.AddChannels(ctx, g, offs)
}

// Add computes p += x.
func (p *Pack1) Add(ctx context.Context, x *Pack1) error {
	return p.AddScaled(ctx, x, 1)
}

// AddScaled computes p += scale*x.
func (p *Pack1) AddScaled(ctx context.Context, x *Pack1, scale float64) error {
	if x == nil {
		return ptensorsErrorf("AddScaled", ErrNilPack)
	}
	return p.addScaled(ctx, "AddScaled", &x.core, scale)
}

// AddToChannels adds x into channels [offs, offs+x.C) of p.
func (p *Pack1) AddToChannels(ctx context.Context, x *Pack1, offs int) error {
	if x == nil {
		return ptensorsErrorf("AddToChannels", ErrNilPack)
	}
	return p.Broadcast1(ctx, x.data, offs)
}

// AddChannels adds channels [offs, offs+p.C) of x into p.
func (p *Pack1) AddChannels(ctx context.Context, x *Pack1, offs int) (err error) {
	const op = "AddChannels"
	if x == nil {
		return ptensorsErrorf(op, ErrNilPack)
	}
	ctx, span := startSpan(ctx, op, &p.core)
	defer func() { endSpan(span, err) }()

	be, err := p.backend()
	if err != nil {
		return ptensorsErrorf(op, err)
	}
	if err = be.Reduce1(ctx, p.data, x.data, offs, p.Channels()); err != nil {
		return ptensorsErrorf(op, err)
	}

	return nil
}

// ScaleChannels multiplies channel k of every row by y[k].
func (p *Pack1) ScaleChannels(ctx context.Context, y []float64) error {
	return p.scaleChannels(ctx, y)
}

// AddScaleChannels computes p += x with channel k of every row of x
// multiplied by y[k].
func (p *Pack1) AddScaleChannels(ctx context.Context, x *Pack1, y []float64) error {
	if x == nil {
		return ptensorsErrorf("AddScaleChannels", ErrNilPack)
	}
	return p.addScaleChannels(ctx, &x.core, y)
}

// Inp returns the Frobenius inner product <p, x>.
func (p *Pack1) Inp(x *Pack1) (float64, error) {
	if x == nil {
		return 0, ptensorsErrorf("Inp", ErrNilPack)
	}
	v, err := p.inp(&x.core)
	if err != nil {
		return 0, ptensorsErrorf("Inp", err)
	}
	return v, nil
}

// Diff2 returns the squared Frobenius distance to x.
func (p *Pack1) Diff2(x *Pack1) (float64, error) {
	if x == nil {
		return 0, ptensorsErrorf("Diff2", ErrNilPack)
	}
	v, err := p.diff2(&x.core)
	if err != nil {
		return 0, ptensorsErrorf("Diff2", err)
	}
	return v, nil
}

// Equal reports whether p and q hold the same domains and bit-identical data.
func (p *Pack1) Equal(q *Pack1) bool {
	if q == nil || p.sync() != nil || q.sync() != nil {
		return false
	}
	return p.atoms.Equal(q.atoms) && p.data.Equal(q.data)
}

// AllClose reports whether p and q share domains and agree within tol.
func (p *Pack1) AllClose(q *Pack1, tol float64) bool {
	if q == nil || p.sync() != nil || q.sync() != nil {
		return false
	}
	return p.atoms.Equal(q.atoms) && p.data.AllClose(q.data, tol)
}

// Grad returns the gradient, allocating a zero pack of p's shape on first use.
func (p *Pack1) Grad() *Pack1 {
	return p.grad.ensure(p.gradLike)
}

// HasGrad reports whether the gradient is allocated.
func (p *Pack1) HasGrad() bool { return p.grad.get() != nil }

// AddToGrad accumulates x into the gradient.
func (p *Pack1) AddToGrad(ctx context.Context, x *Pack1) error {
	return p.Grad().Add(ctx, x)
}

// AddToGradScaled accumulates scale*x into the gradient.
func (p *Pack1) AddToGradScaled(ctx context.Context, x *Pack1, scale float64) error {
	return p.Grad().AddScaled(ctx, x, scale)
}

// ZeroGrad resets an allocated gradient to zero after pending work on it
// completes.
func (p *Pack1) ZeroGrad() error {
	g := p.grad.get()
	if g == nil {
		return nil
	}
	if err := g.sync(); err != nil {
		return ptensorsErrorf("ZeroGrad", err)
	}
	g.data = g.data.ZerosLike()

	return nil
}

// DropGrad releases the gradient.
func (p *Pack1) DropGrad() { p.grad.drop() }

// Repr returns a one-line summary.
func (p *Pack1) Repr() string {
	return fmt.Sprintf("<Ptensors1[N=%d,nc=%d,dev=%s]>", p.Size(), p.Channels(), p.Device())
}

// String renders every item with its domain.
func (p *Pack1) String() string {
	h, err := p.host()
	if err != nil {
		return p.Repr()
	}
	var sb strings.Builder
	for i := 0; i < h.Size(); i++ {
		a, _ := p.atoms.At(i)
		fmt.Fprintf(&sb, "Ptensor1 %v:\n", a)
		v := h.DeviceItem(i)
		for r := 0; r < v.Rows(); r++ {
			fmt.Fprintf(&sb, "  %v\n", v.Row(r))
		}
	}

	return sb.String()
}
