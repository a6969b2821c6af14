package ptensors_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/matrix"
	"github.com/katalvlaran/ptens/ptensors"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioSequential covers domain sizes [4,3], two channels, sequential
// fill, on both devices.
func TestScenarioSequential(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	a := mustAtoms(t, []int{0, 1, 2, 3}, []int{4, 5, 6})

	for _, dev := range devices {
		x, err := ptensors.Sequential(s, a, 2, dev)
		require.NoError(t, err)

		sum, err := x.Reduce0(ctx)
		require.NoError(t, err)
		require.Equal(t, []float64{6, 6, 3, 3}, hostData(t, s, sum), dev)
		got := hostData(t, s, sum)
		for i := 0; i < x.Size(); i++ {
			item, err := x.Item(i)
			require.NoError(t, err)
			want, err := matrix.ColSums(item)
			require.NoError(t, err)
			require.Equal(t, want, got[2*i:2*i+2], "item %d on %s", i, dev)
		}

		mean, err := x.Reduce0N(ctx)
		require.NoError(t, err)
		require.Equal(t, []float64{1.5, 1.5, 1, 1}, hostData(t, s, mean), dev)

		part, err := x.Reduce0Range(ctx, 1, 1)
		require.NoError(t, err)
		require.Equal(t, []float64{6, 3}, hostData(t, s, part), dev)
	}
}

// TestSequentialMean checks reduce0_n of a sequential pack against the mean of 0..k-1.
func TestSequentialMean(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	sizes := [][]int{{}, {9}, {1, 2}, {3, 4, 5, 6, 7, 8, 10}}
	x, err := ptensors.Sequential(s, mustAtoms(t, sizes...), 3, device.Host)
	require.NoError(t, err)

	mean, err := x.Reduce0N(ctx)
	require.NoError(t, err)
	data := hostData(t, s, mean)
	for i, it := range sizes {
		k := float64(len(it))
		want := 0.0
		if k > 0 {
			want = (k - 1) / 2
		}
		for c := 0; c < 3; c++ {
			assert.InDelta(t, want, data[3*i+c], 1e-12)
		}
	}
}

// TestFromMatrixRoundTrip covers the dense exchange format.
func TestFromMatrixRoundTrip(t *testing.T) {
	s := newSession(t)
	a := mustAtoms(t, []int{0, 1}, []int{2}, []int{})
	m, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	for _, dev := range devices {
		p, err := ptensors.FromMatrix(s, m, a, dev)
		require.NoError(t, err)
		require.Equal(t, 3, p.Size())
		require.Equal(t, 2, p.Channels())

		back, err := p.ToMatrix()
		require.NoError(t, err)
		require.Equal(t, m.Data(), back.Data())

		item, err := p.Item(1)
		require.NoError(t, err)
		require.Equal(t, []float64{5, 6}, item.Data())
	}

	_, err = ptensors.FromMatrix(s, m, mustAtoms(t, []int{0}), device.Host)
	require.ErrorIs(t, err, ptensors.ErrDomainMismatch)
}

// TestToDeviceIdempotent checks that repeated moves preserve contents.
func TestToDeviceIdempotent(t *testing.T) {
	s := newSession(t)
	x, err := ptensors.Gaussian(s, mustAtoms(t, []int{0, 1, 2}, []int{5}), 4, 1, device.Host)
	require.NoError(t, err)

	acc, err := x.ToDevice(device.Accel)
	require.NoError(t, err)
	require.Equal(t, device.Accel, acc.Device())
	once, err := acc.ToDevice(device.Host)
	require.NoError(t, err)
	twice, err := once.ToDevice(device.Host)
	require.NoError(t, err)
	require.True(t, once.Equal(twice))
	require.True(t, x.Equal(once))
}

// TestCatLaw checks that reduce0 commutes with item-wise concatenation.
func TestCatLaw(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	x, err := ptensors.Gaussian(s, mustAtoms(t, []int{0, 1}, []int{2, 3, 4}), 3, 1, device.Accel)
	require.NoError(t, err)
	y, err := ptensors.Gaussian(s, mustAtoms(t, []int{1}, []int{}, []int{0, 4}), 3, 1, device.Accel)
	require.NoError(t, err)

	xy, err := ptensors.Cat(x, y)
	require.NoError(t, err)
	require.Equal(t, 5, xy.Size())
	require.Equal(t, []int{2, 3, 1, 0, 2}, xy.Atoms().Sizes())

	whole, err := xy.Reduce0(ctx)
	require.NoError(t, err)
	rx, err := x.Reduce0(ctx)
	require.NoError(t, err)
	ry, err := y.Reduce0(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Sync())
	parts, err := ragged.Cat(rx, ry)
	require.NoError(t, err)
	require.Equal(t, hostData(t, s, parts), hostData(t, s, whole))

	_, err = ptensors.Cat()
	require.ErrorIs(t, err, ptensors.ErrNoOperands)
}

// TestPermute checks that item i lands at position pi[i] with its data.
func TestPermute(t *testing.T) {
	s := newSession(t)
	x, err := ptensors.Gaussian(s, mustAtoms(t, []int{0}, []int{1, 2}, []int{3, 4, 5}), 2, 1, device.Host)
	require.NoError(t, err)

	q, err := x.Permute([]int{2, 0, 1})
	require.NoError(t, err)
	for i, j := range []int{2, 0, 1} {
		a, _ := x.Atoms().At(i)
		b, _ := q.Atoms().At(j)
		require.True(t, a.Equal(b))
		mi, err := x.Item(i)
		require.NoError(t, err)
		mj, err := q.Item(j)
		require.NoError(t, err)
		require.Equal(t, mi.Data(), mj.Data())
	}

	_, err = x.Permute([]int{0, 0, 1})
	require.ErrorIs(t, err, atoms.ErrBadPermutation)
}

// TestPushBackGrowsGradient checks that an allocated gradient follows PushBack.
func TestPushBackGrowsGradient(t *testing.T) {
	s := newSession(t)
	x, err := ptensors.Zero(s, mustAtoms(t, []int{0, 1}), 2, device.Host)
	require.NoError(t, err)
	g := x.Grad()

	require.NoError(t, x.PushBack(atoms.Atoms{3, 4, 5}, []float64{1, 2, 3, 4, 5, 6}))
	require.Equal(t, 2, x.Size())
	require.Equal(t, []int{2, 3}, x.Atoms().Sizes())
	require.Equal(t, []int{2, 3}, g.Ragged().Extents())

	item, err := x.Item(1)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, item.Data())

	require.ErrorIs(t, x.PushBack(atoms.Atoms{7}, []float64{1}), ragged.ErrDimensionMismatch)
	require.Equal(t, 2, x.Size())
}

// TestPushBackRejectsNegativeAtom checks that a rejected domain leaves the
// storage and the domains the same size.
func TestPushBackRejectsNegativeAtom(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	x, err := ptensors.Sequential(s, mustAtoms(t, []int{0, 1}), 1, device.Host)
	require.NoError(t, err)

	err = x.PushBack(atoms.Atoms{2, -1}, []float64{1, 2})
	require.ErrorIs(t, err, atoms.ErrNegativeAtom)
	require.Equal(t, 1, x.Size())
	require.Equal(t, 1, x.Ragged().Size())
	require.Equal(t, 1, x.Atoms().Size())

	y, err := ptensors.Linmaps0(ctx, x, false)
	require.NoError(t, err)
	require.Equal(t, []float64{1}, hostData(t, s, y.Ragged()))
}

// TestConcatAndBack covers channel concatenation and its adjoint.
func TestConcatAndBack(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	a := mustAtoms(t, []int{0, 1}, []int{2, 3, 4})

	for _, dev := range devices {
		x, err := ptensors.Gaussian(s, a, 2, 1, dev)
		require.NoError(t, err)
		y, err := ptensors.Gaussian(s, a, 3, 1, dev)
		require.NoError(t, err)

		c, err := ptensors.Concat(ctx, x, y)
		require.NoError(t, err)
		require.Equal(t, 5, c.Channels())

		mx, _ := x.Item(1)
		my, _ := y.Item(1)
		mc, err := c.Item(1)
		require.NoError(t, err)
		require.Equal(t, append(mx.RawRow(0), my.RawRow(0)...), mc.RawRow(0))

		wantX, err := x.Clone()
		require.NoError(t, err)
		wantY, err := y.Clone()
		require.NoError(t, err)
		require.NoError(t, x.Grad().AddConcatBack(ctx, c, 0))
		require.NoError(t, y.Grad().AddConcatBack(ctx, c, 2))
		require.True(t, x.Grad().Equal(wantX))
		require.True(t, y.Grad().Equal(wantY))
		require.True(t, x.Equal(wantX), "AddConcatBack must not touch the primal")
	}

	z, err := ptensors.Zero(s, mustAtoms(t, []int{0}), 1, device.Host)
	require.NoError(t, err)
	w, err := ptensors.Zero(s, mustAtoms(t, []int{1}), 1, device.Host)
	require.NoError(t, err)
	_, err = ptensors.Concat(ctx, z, w)
	require.ErrorIs(t, err, ptensors.ErrDomainMismatch)
}

// TestArithmetic covers Add, Sum, Inp, Diff2 and ScaleChannels.
func TestArithmetic(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	for _, dev := range devices {
		x, err := ptensors.Sequential(s, mustAtoms(t, []int{0, 1, 2}, []int{3, 4}), 2, dev)
		require.NoError(t, err)

		inp, err := x.Inp(x)
		require.NoError(t, err)
		require.Equal(t, 2*(0.0+1+4)+2*(0.0+1), inp)

		three, err := ptensors.Sum(ctx, x, x, x)
		require.NoError(t, err)
		mx, err := x.ToMatrix()
		require.NoError(t, err)
		m2, err := matrix.Add(mx, mx)
		require.NoError(t, err)
		m3, err := matrix.Add(m2, mx)
		require.NoError(t, err)
		mt, err := three.ToMatrix()
		require.NoError(t, err)
		ok, err := matrix.AllClose(mt, m3, 0, 1e-12)
		require.NoError(t, err)
		require.True(t, ok, dev)
		scaled, err := x.Clone()
		require.NoError(t, err)
		require.NoError(t, scaled.ScaleChannels(ctx, []float64{3, 3}))
		d, err := three.Diff2(scaled)
		require.NoError(t, err)
		require.Zero(t, d)

		require.NoError(t, scaled.AddScaled(ctx, x, -3))
		zero := x.ZerosLike()
		require.True(t, scaled.Equal(zero))

		d, err = x.Diff2(zero)
		require.NoError(t, err)
		require.Equal(t, inp, d)
	}
}

// TestAddScaleChannels checks the accumulate form against ScaleChannels and
// its self-adjointness.
func TestAddScaleChannels(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	a := mustAtoms(t, []int{0, 1, 2}, []int{}, []int{3, 4})
	y := []float64{2, -0.5, 3}

	for _, dev := range devices {
		x, err := ptensors.Gaussian(s, a, 3, 1, dev)
		require.NoError(t, err)
		g, err := x.GaussianLike(1)
		require.NoError(t, err)

		r, err := g.Clone()
		require.NoError(t, err)
		require.NoError(t, r.AddScaleChannels(ctx, x, y))
		want, err := x.Clone()
		require.NoError(t, err)
		require.NoError(t, want.ScaleChannels(ctx, y))
		require.NoError(t, want.Add(ctx, g))
		require.True(t, r.AllClose(want, 1e-12), dev)

		gx := x.ZerosLike()
		require.NoError(t, gx.AddScaleChannels(ctx, x, y))
		lhs, err := gx.Inp(g)
		require.NoError(t, err)
		gg := g.ZerosLike()
		require.NoError(t, gg.AddScaleChannels(ctx, g, y))
		rhs, err := gg.Inp(x)
		require.NoError(t, err)
		require.InDelta(t, lhs, rhs, 1e-9, dev)

		require.ErrorIs(t, r.AddScaleChannels(ctx, x, y[:2]), ragged.ErrChannelMismatch)
		require.ErrorIs(t, r.AddScaleChannels(ctx, nil, y), ptensors.ErrNilPack)
	}

	v, err := ptensors.Gaussian0(s, a, 2, 1, device.Host)
	require.NoError(t, err)
	w := v.ZerosLike()
	require.NoError(t, w.AddScaleChannels(ctx, v, []float64{1, 1}))
	require.True(t, w.AllClose(v, 0))
}

// TestOperandErrors covers the synchronous precondition checks.
func TestOperandErrors(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	a := mustAtoms(t, []int{0, 1}, []int{2})

	_, err := ptensors.Zero(nil, a, 1, device.Host)
	require.ErrorIs(t, err, ptensors.ErrNilSession)
	_, err = ptensors.New(s, a, 1, ragged.Fill{Kind: 42}, device.Host)
	require.ErrorIs(t, err, ragged.ErrBadFill)

	data, err := ragged.New([]int{2, 2}, 1, ragged.Zero(), nil, device.Host)
	require.NoError(t, err)
	_, err = ptensors.FromRagged(s, a, data)
	require.ErrorIs(t, err, ptensors.ErrDomainMismatch)

	h, err := ptensors.Zero(s, a, 1, device.Host)
	require.NoError(t, err)
	g, err := ptensors.Zero(s, a, 1, device.Accel)
	require.NoError(t, err)
	require.ErrorIs(t, h.Add(ctx, g), ragged.ErrDeviceMismatch)
	_, err = h.Inp(g)
	require.ErrorIs(t, err, ragged.ErrDeviceMismatch)

	_, err = h.Reduce0Range(ctx, 1, 1)
	require.ErrorIs(t, err, ragged.ErrChannelRange)
	_, err = h.Reduce0Indexed(ctx, nil)
	require.ErrorIs(t, err, ptensors.ErrNilPack)

	closed, err := session.New()
	require.NoError(t, err)
	p, err := ptensors.Zero(closed, a, 1, device.Host)
	require.NoError(t, err)
	require.NoError(t, closed.Close())
	_, err = p.Reduce0(ctx)
	require.ErrorIs(t, err, session.ErrClosed)
}

// TestString renders items with their domains.
func TestString(t *testing.T) {
	s := newSession(t)
	x, err := ptensors.Sequential(s, mustAtoms(t, []int{3, 1}), 1, device.Accel)
	require.NoError(t, err)
	require.Equal(t, "<Ptensors1[N=1,nc=1,dev=accel]>", x.Repr())
	require.Contains(t, x.String(), "[1]")
}
