package ptensors_test

import (
	"math/rand/v2"
	"testing"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
	"github.com/stretchr/testify/require"
)

var devices = []device.Device{device.Host, device.Accel}

func newSession(t testing.TB, opts ...session.Option) *session.Session {
	t.Helper()
	s, err := session.New(append([]session.Option{session.WithSeed(11), session.WithWorkers(4)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func mustAtoms(t testing.TB, items ...[]int) *atoms.Pack {
	t.Helper()
	a, err := atoms.FromSlices(items)
	require.NoError(t, err)
	return a
}

// randomAtoms returns n domains of 0..maxK atoms drawn from [0, ground).
func randomAtoms(t testing.TB, rng *rand.Rand, n, maxK, ground int) *atoms.Pack {
	t.Helper()
	items := make([][]int, n)
	for i := range items {
		items[i] = rng.Perm(ground)[:rng.IntN(maxK+1)]
	}
	return mustAtoms(t, items...)
}

// randomList returns n entries into packs with the given extents.
func randomList(t testing.TB, rng *rand.Rand, extents []int, n int) *aindex.Pack {
	t.Helper()
	l := aindex.New(n)
	for e := 0; e < n; e++ {
		tens := rng.IntN(len(extents))
		k := extents[tens]
		require.NoError(t, l.Append(tens, rng.Perm(k)[:rng.IntN(k+1)]))
	}
	return l
}

// hostData syncs s and returns a host copy of r's elements.
func hostData(t testing.TB, s *session.Session, r *ragged.Pack) []float64 {
	t.Helper()
	require.NoError(t, s.Sync())
	h, err := r.ToDevice(device.Host)
	require.NoError(t, err)
	data, err := h.Data()
	require.NoError(t, err)
	return data
}

func dot(t testing.TB, s *session.Session, a, b *ragged.Pack) float64 {
	t.Helper()
	x, y := hostData(t, s, a), hostData(t, s, b)
	require.Len(t, y, len(x))
	v := 0.0
	for i := range x {
		v += x[i] * y[i]
	}
	return v
}

func gaussianRagged(t testing.TB, s *session.Session, extents []int, nc int, dev device.Device) *ragged.Pack {
	t.Helper()
	r, err := ragged.New(extents, nc, ragged.Gaussian(1), s, dev)
	require.NoError(t, err)
	return r
}
