package kernels_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/kernels"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/stretchr/testify/require"
)

// fixture holds random operands shared by the backend comparison tests.
type fixture struct {
	extents []int
	nc      int
	x       *ragged.Pack // order-1, host
	x0      *ragged.Pack // order-0, host, one item per x item
	list    *aindex.Pack // entries into x, targets repeat
	l0      *ragged.Pack // order-0, one item per list entry
	l1      *ragged.Pack // order-1, extents = list.Nixes()
}

func newFixture(t *testing.T, items, nc int, seed uint64) *fixture {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	f := &fixture{nc: nc, extents: make([]int, items)}
	for i := range f.extents {
		f.extents[i] = rng.IntN(7)
	}
	var err error
	f.x, err = ragged.New(f.extents, nc, ragged.Gaussian(1), rng, device.Host)
	require.NoError(t, err)
	f.x0, err = ragged.NewUniform(items, 1, nc, ragged.Gaussian(1), rng, device.Host)
	require.NoError(t, err)

	f.list = aindex.New(2 * items)
	for e := 0; e < 2*items; e++ {
		tens := rng.IntN(items)
		k := f.extents[tens]
		ix := rng.Perm(k)[:rng.IntN(k+1)]
		require.NoError(t, f.list.Append(tens, ix))
	}
	f.l0, err = ragged.NewUniform(f.list.Size(), 1, nc, ragged.Gaussian(1), rng, device.Host)
	require.NoError(t, err)
	f.l1, err = ragged.New(f.list.Nixes(), nc, ragged.Gaussian(1), rng, device.Host)
	require.NoError(t, err)

	return f
}

func toDev(t *testing.T, p *ragged.Pack, d device.Device) *ragged.Pack {
	t.Helper()
	q, err := p.ToDevice(d)
	require.NoError(t, err)
	return q
}

func newBatched(t *testing.T, workers int) *kernels.Batched {
	t.Helper()
	s := device.NewStream(t.Name(), 0, nil)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	b, err := kernels.NewBatched(s, workers, nil)
	require.NoError(t, err)
	return b
}

// op runs one operator on backend be with operands resolved for device d and
// returns the accumulated result.
type op func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack

var ops = map[string]op{
	"Reduce0": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, zero0(t, len(f.extents), 2), d)
		require.NoError(t, be.Reduce0(context.Background(), r, toDev(t, f.x, d), 1, 2))
		return r
	},
	"Reduce0N": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, zero0(t, len(f.extents), f.nc), d)
		require.NoError(t, be.Reduce0N(context.Background(), r, toDev(t, f.x, d), 0, f.nc))
		return r
	},
	"Reduce0Indexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, zero0(t, f.list.Size(), f.nc), d)
		require.NoError(t, be.Reduce0Indexed(context.Background(), r, toDev(t, f.x, d), f.list, 0, f.nc))
		return r
	},
	"Reduce0NIndexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, zero0(t, f.list.Size(), f.nc), d)
		require.NoError(t, be.Reduce0NIndexed(context.Background(), r, toDev(t, f.x, d), f.list, 0, f.nc))
		return r
	},
	"Reduce1": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x.ZerosLikeChannels(1), d)
		require.NoError(t, be.Reduce1(context.Background(), r, toDev(t, f.x, d), 2, 1))
		return r
	},
	"Reduce1Indexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.l1.ZerosLike(), d)
		require.NoError(t, be.Reduce1Indexed(context.Background(), r, toDev(t, f.x, d), f.list, 0, f.nc))
		return r
	},
	"Broadcast0": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast0(context.Background(), r, toDev(t, f.x0, d), 0))
		return r
	},
	"Broadcast0N": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast0N(context.Background(), r, toDev(t, f.x0, d), 0))
		return r
	},
	"Broadcast0Indexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast0Indexed(context.Background(), r, toDev(t, f.l0, d), f.list, 0))
		return r
	},
	"Broadcast0NIndexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast0NIndexed(context.Background(), r, toDev(t, f.l0, d), f.list, 0))
		return r
	},
	"Broadcast1": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast1(context.Background(), r, toDev(t, f.x, d), 0))
		return r
	},
	"Broadcast1Indexed": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.Broadcast1Indexed(context.Background(), r, toDev(t, f.l1, d), f.list, 0))
		return r
	},
	"AddScaled": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		require.NoError(t, be.AddScaled(context.Background(), r, toDev(t, f.x, d), -0.25))
		return r
	},
	"ScaleChannels": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		y := make([]float64, f.nc)
		for c := range y {
			y[c] = float64(c) - 1.5
		}
		require.NoError(t, be.ScaleChannels(context.Background(), r, y))
		return r
	},
	"AddScaleChannels": func(t *testing.T, be kernels.Backend, f *fixture, d device.Device) *ragged.Pack {
		r := toDev(t, f.x, d)
		y := make([]float64, f.nc)
		for c := range y {
			y[c] = 0.5 * float64(c+1)
		}
		require.NoError(t, be.AddScaleChannels(context.Background(), r, toDev(t, f.x, d), y))
		return r
	},
}

func zero0(t *testing.T, n, nc int) *ragged.Pack {
	t.Helper()
	p, err := ragged.NewUniform(n, 1, nc, ragged.Zero(), nil, device.Host)
	require.NoError(t, err)
	return p
}

// TestBackendsAgree checks that the batched backend reproduces the host
// backend bit for bit on every operator, including aliased indexed targets.
func TestBackendsAgree(t *testing.T) {
	f := newFixture(t, 300, 4, 7)
	host := kernels.NewHost()

	for _, workers := range []int{1, 3, 8} {
		batched := newBatched(t, workers)
		for name, run := range ops {
			want := run(t, host, f, device.Host)
			got := run(t, batched, f, device.Accel)
			require.NoError(t, batched.Sync(), name)
			back := toDev(t, got, device.Host)
			require.True(t, want.Equal(back), "%s workers=%d", name, workers)
		}
	}
}

// TestScenarioSequential covers sizes [4,3], two channels, sequential fill.
func TestScenarioSequential(t *testing.T) {
	x, err := ragged.New([]int{4, 3}, 2, ragged.Sequential(), nil, device.Host)
	require.NoError(t, err)
	host := kernels.NewHost()
	ctx := context.Background()

	sum := zero0(t, 2, 2)
	require.NoError(t, host.Reduce0(ctx, sum, x, 0, 2))
	data, _ := sum.Data()
	require.Equal(t, []float64{6, 6, 3, 3}, data)

	mean := zero0(t, 2, 2)
	require.NoError(t, host.Reduce0N(ctx, mean, x, 0, 2))
	data, _ = mean.Data()
	require.Equal(t, []float64{1.5, 1.5, 1, 1}, data)
}

// TestEmptyEntries checks zero rows from indexed reductions and no-op
// indexed broadcasts for entries with empty lists.
func TestEmptyEntries(t *testing.T) {
	x, err := ragged.New([]int{3, 2}, 2, ragged.Sequential(), nil, device.Host)
	require.NoError(t, err)
	list, err := aindex.FromEntries([]int{0, 1}, [][]int{{}, {}})
	require.NoError(t, err)
	host := kernels.NewHost()
	ctx := context.Background()

	r := zero0(t, 2, 2)
	require.NoError(t, host.Reduce0NIndexed(ctx, r, x, list, 0, 2))
	data, _ := r.Data()
	require.Equal(t, []float64{0, 0, 0, 0}, data)

	before := x.Clone()
	v, err := ragged.NewUniform(2, 1, 2, ragged.Sequential(), nil, device.Host)
	require.NoError(t, err)
	require.NoError(t, host.Broadcast0NIndexed(ctx, x, v, list, 0))
	require.True(t, before.Equal(x))
}

// TestValidation covers the synchronous operand checks.
func TestValidation(t *testing.T) {
	ctx := context.Background()
	host := kernels.NewHost()
	batched := newBatched(t, 2)
	x, _ := ragged.New([]int{2, 1}, 3, ragged.Zero(), nil, device.Host)

	// device
	require.ErrorIs(t, batched.Reduce0(ctx, zero0(t, 2, 3), x, 0, 3), ragged.ErrDeviceMismatch)
	// output shape
	require.ErrorIs(t, host.Reduce0(ctx, zero0(t, 1, 3), x, 0, 3), ragged.ErrDimensionMismatch)
	require.ErrorIs(t, host.Reduce0(ctx, zero0(t, 2, 2), x, 0, 3), ragged.ErrChannelMismatch)
	// channel range
	require.ErrorIs(t, host.Reduce0(ctx, zero0(t, 2, 2), x, 2, 2), ragged.ErrChannelRange)
	require.ErrorIs(t, host.Broadcast0(ctx, x, zero0(t, 2, 2), 2), ragged.ErrChannelRange)
	// list
	bad, _ := aindex.FromEntries([]int{1}, [][]int{{0, 0}})
	require.ErrorIs(t, host.Reduce0Indexed(ctx, zero0(t, 1, 3), x, bad, 0, 3), aindex.ErrListTooLong)
	require.ErrorIs(t, host.Reduce0Indexed(ctx, zero0(t, 1, 3), x, nil, 0, 3), kernels.ErrNilOperand)
	require.ErrorIs(t, host.ScaleChannels(ctx, x, []float64{1}), ragged.ErrChannelMismatch)
	require.ErrorIs(t, host.AddScaleChannels(ctx, x, x, []float64{1, 2}), ragged.ErrChannelMismatch)

	_, err := kernels.NewBatched(nil, 1, nil)
	require.ErrorIs(t, err, kernels.ErrNilOperand)
}
