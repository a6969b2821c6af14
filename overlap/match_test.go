package overlap_test

import (
	"testing"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/overlap"
	"github.com/stretchr/testify/require"
)

// TestMatchPairsSharedAtoms checks entry order and aligned positions.
func TestMatchPairsSharedAtoms(t *testing.T) {
	src, err := atoms.FromSlices([][]int{{0, 1, 2}, {2, 3}, {7}})
	require.NoError(t, err)
	dst, err := atoms.FromSlices([][]int{{3, 2}, {1, 0, 9}, {8}})
	require.NoError(t, err)

	m, err := overlap.Match(src, dst)
	require.NoError(t, err)
	require.Equal(t, 3, m.Size())

	// dst 0 = {3,2}: src 0 shares {2}, src 1 shares {2,3}
	s, d := m.Pair(0)
	require.Equal(t, [2]int{0, 0}, [2]int{s, d})
	require.Equal(t, []int{2}, m.Src.Ix(0))
	require.Equal(t, []int{1}, m.Dst.Ix(0))

	s, d = m.Pair(1)
	require.Equal(t, [2]int{1, 0}, [2]int{s, d})
	require.Equal(t, []int{0, 1}, m.Src.Ix(1)) // atoms 2,3 in src order
	require.Equal(t, []int{1, 0}, m.Dst.Ix(1))

	// dst 1 = {1,0,9}: src 0 shares {0,1}
	s, d = m.Pair(2)
	require.Equal(t, [2]int{0, 1}, [2]int{s, d})
	require.Equal(t, []int{0, 1}, m.Src.Ix(2))
	require.Equal(t, []int{1, 0}, m.Dst.Ix(2))
	require.Equal(t, []int{0}, m.Heads.Ix(2))

	require.NoError(t, m.Src.Validate(src))
	require.NoError(t, m.Dst.Validate(dst))
}

// TestMatchOptions covers MinOverlap, WithoutSelf and nil input.
func TestMatchOptions(t *testing.T) {
	p, err := atoms.FromSlices([][]int{{0, 1}, {1, 2}, {0, 1, 2}})
	require.NoError(t, err)

	all, err := overlap.Match(p, p)
	require.NoError(t, err)
	require.Equal(t, 9, all.Size())

	two, err := overlap.Match(p, p, overlap.WithMinOverlap(2))
	require.NoError(t, err)
	require.Equal(t, 7, two.Size()) // all but (0,1) and (1,0)

	noSelf, err := overlap.Match(p, p, overlap.WithoutSelf())
	require.NoError(t, err)
	require.Equal(t, 6, noSelf.Size())

	require.Panics(t, func() { overlap.WithMinOverlap(0) })
	_, err = overlap.Match(nil, p)
	require.ErrorIs(t, err, overlap.ErrNilPack)
}
