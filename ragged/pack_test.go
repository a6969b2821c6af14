package ragged_test

import (
	"math/rand/v2"
	"testing"

	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSequentialFill checks that row a of every item holds a.
func TestSequentialFill(t *testing.T) {
	p, err := ragged.New([]int{4, 3}, 2, ragged.Sequential(), nil, device.Host)
	require.NoError(t, err)
	require.Equal(t, 2, p.Size())
	require.Equal(t, 14, p.Tail())

	v, err := p.Item(0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1, 1, 2, 2, 3, 3}, v.Slice())

	e, err := p.Dir(1)
	require.NoError(t, err)
	require.Equal(t, ragged.Entry{Offset: 8, Extent: 3, Channels: 2}, e)
}

// TestFillValidation covers the closed fill variant.
func TestFillValidation(t *testing.T) {
	require.ErrorIs(t, ragged.Fill{Kind: 9}.Validate(), ragged.ErrBadFill)
	require.ErrorIs(t, ragged.Fill{Kind: ragged.FillGaussian, Sigma: -1}.Validate(), ragged.ErrBadFill)
	require.Equal(t, ragged.DefaultSigma, ragged.Gaussian(0).Sigma)

	_, err := ragged.New([]int{2}, 1, ragged.Gaussian(1), nil, device.Host)
	require.ErrorIs(t, err, ragged.ErrBadFill)

	src := rand.New(rand.NewPCG(1, 2))
	g, err := ragged.New([]int{50}, 4, ragged.Gaussian(0.5), src, device.Host)
	require.NoError(t, err)
	data, err := g.Data()
	require.NoError(t, err)
	nonZero := 0
	for _, x := range data {
		if x != 0 {
			nonZero++
		}
	}
	require.Equal(t, len(data), nonZero)

	f, err := ragged.ParseFill("sequential", 0)
	require.NoError(t, err)
	require.Equal(t, ragged.FillSequential, f.Kind)
	_, err = ragged.ParseFill("ones", 0)
	require.ErrorIs(t, err, ragged.ErrBadFill)
}

// TestPushBackMatchesReserve verifies that growth by PushBack yields the same
// buffer contents and directory as exact pre-reservation.
func TestPushBackMatchesReserve(t *testing.T) {
	const nc = 3
	extents := []int{2, 0, 5, 1, 7, 3}

	grown, err := ragged.Empty(nc, device.Host)
	require.NoError(t, err)
	exact, err := ragged.Empty(nc, device.Host)
	require.NoError(t, err)
	require.NoError(t, exact.Reserve(18*nc))
	gen := exact.Generation()

	next := 0.0
	for _, k := range extents {
		item := make([]float64, k*nc)
		for i := range item {
			item[i] = next
			next++
		}
		require.NoError(t, grown.PushBack(k, item))
		require.NoError(t, exact.PushBack(k, item))
	}

	require.Equal(t, gen, exact.Generation(), "exact reservation must not reallocate")
	require.Greater(t, grown.Generation(), uint64(1))
	require.Equal(t, exact.Extents(), grown.Extents())
	for i := range extents {
		a, _ := exact.Dir(i)
		b, _ := grown.Dir(i)
		require.Equal(t, a, b)
	}
	da, _ := exact.Data()
	db, _ := grown.Data()
	require.Equal(t, da, db)
	require.True(t, exact.Equal(grown))
}

// TestPushBackRejectsBadLength ensures malformed items leave the pack unchanged.
func TestPushBackRejectsBadLength(t *testing.T) {
	p, err := ragged.Empty(2, device.Host)
	require.NoError(t, err)
	require.ErrorIs(t, p.PushBack(2, []float64{1, 2, 3}), ragged.ErrDimensionMismatch)
	require.ErrorIs(t, p.PushBackZero(-1), ragged.ErrDimensionMismatch)
	require.Equal(t, 0, p.Size())
	require.ErrorIs(t, p.Reserve(-5), ragged.ErrCapacity)
}

// TestViewStaleAfterGrowth checks the borrow contract of views.
func TestViewStaleAfterGrowth(t *testing.T) {
	p, err := ragged.Empty(1, device.Host)
	require.NoError(t, err)
	require.NoError(t, p.PushBack(1, []float64{7}))
	v, err := p.Item(0)
	require.NoError(t, err)
	require.False(t, v.Stale())

	require.NoError(t, p.PushBack(4, []float64{1, 2, 3, 4}))
	require.True(t, v.Stale())

	w, err := p.Item(0)
	require.NoError(t, err)
	require.False(t, w.Stale())
	require.Equal(t, 7.0, w.At(0, 0))
}

// TestBlockAndBounds covers channel sub-range views and range errors.
func TestBlockAndBounds(t *testing.T) {
	p, err := ragged.FromData([]int{2}, 3, []float64{1, 2, 3, 4, 5, 6}, device.Host)
	require.NoError(t, err)

	b, err := p.Block(0, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3, 5, 6}, b.Slice())
	require.Equal(t, []float64{3, 6}, b.Col(1).Slice())

	_, err = p.Block(0, 2, 2)
	require.ErrorIs(t, err, ragged.ErrChannelRange)
	_, err = p.Item(1)
	require.ErrorIs(t, err, ragged.ErrOutOfRange)
	_, err = ragged.FromData([]int{2}, 3, []float64{1}, device.Host)
	require.ErrorIs(t, err, ragged.ErrDimensionMismatch)
}

// TestToDevice covers idempotence and the host-view guard.
func TestToDevice(t *testing.T) {
	p, err := ragged.New([]int{3, 1}, 2, ragged.Sequential(), nil, device.Host)
	require.NoError(t, err)

	acc, err := p.ToDevice(device.Accel)
	require.NoError(t, err)
	require.Equal(t, device.Accel, acc.Device())
	_, err = acc.Item(0)
	require.ErrorIs(t, err, ragged.ErrWrongDevice)

	once, err := acc.ToDevice(device.Host)
	require.NoError(t, err)
	twice, err := once.ToDevice(device.Host)
	require.NoError(t, err)
	require.True(t, once.Equal(twice))
	require.True(t, p.Equal(once))
}

// TestCatShiftsOffsets verifies directory renumbering and operand checks.
func TestCatShiftsOffsets(t *testing.T) {
	a, _ := ragged.New([]int{2}, 2, ragged.Sequential(), nil, device.Host)
	b, _ := ragged.New([]int{1, 3}, 2, ragged.Sequential(), nil, device.Host)

	c, err := ragged.Cat(a, b)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1, 3}, c.Extents())
	e, _ := c.Dir(2)
	assert.Equal(t, 6, e.Offset)
	assert.Equal(t, a.Tail()+b.Tail(), c.Tail())

	x, _ := ragged.New([]int{1}, 3, ragged.Zero(), nil, device.Host)
	_, err = ragged.Cat(a, x)
	require.ErrorIs(t, err, ragged.ErrChannelMismatch)
	y, _ := ragged.New([]int{1}, 2, ragged.Zero(), nil, device.Accel)
	_, err = ragged.Cat(a, y)
	require.ErrorIs(t, err, ragged.ErrDeviceMismatch)
	_, err = ragged.Cat(a, nil)
	require.ErrorIs(t, err, ragged.ErrNilPack)
}

// TestViewPrimitives exercises the per-item building blocks of the backends.
func TestViewPrimitives(t *testing.T) {
	p, _ := ragged.New([]int{4}, 2, ragged.Sequential(), nil, device.Host)
	v, _ := p.Item(0)

	sum := make([]float64, 2)
	v.SumRowsInto(sum)
	require.Equal(t, []float64{6, 6}, sum)

	avg := make([]float64, 2)
	v.AvgRowsInto(avg)
	require.Equal(t, []float64{1.5, 1.5}, avg)

	at := make([]float64, 2)
	v.SumRowsAtInto([]int{3, 1}, at)
	require.Equal(t, []float64{4, 4}, at)

	empty := make([]float64, 2)
	v.AvgRowsAtInto(nil, empty)
	require.Equal(t, []float64{0, 0}, empty)

	v.AddRepeatAt([]int{0}, []float64{10, 20}, 0.5)
	require.Equal(t, []float64{5, 10}, v.Row(0))

	q, _ := ragged.New([]int{2}, 2, ragged.Zero(), nil, device.Host)
	w, _ := q.Item(0)
	w.AddGathered(v, []int{3, 2})
	require.Equal(t, []float64{3, 3, 2, 2}, w.Slice())

	v.AddScattered([]int{1, 1}, w)
	require.Equal(t, []float64{6, 6}, v.Row(1))

	w.ScaleChannels([]float64{2, 0})
	require.Equal(t, []float64{6, 0, 4, 0}, w.Slice())
	require.Equal(t, 52.0, w.Dot(w))

	w.AddScaleChannels(w, []float64{1, 3})
	require.Equal(t, []float64{12, 0, 8, 0}, w.Slice())
}
