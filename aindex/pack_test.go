package aindex_test

import (
	"testing"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/atoms"
	"github.com/stretchr/testify/require"
)

// TestAppendAndAccessors covers storage of entries including empty lists.
func TestAppendAndAccessors(t *testing.T) {
	p := aindex.New(0)
	require.NoError(t, p.Append(1, []int{2, 0}))
	require.NoError(t, p.Append(0, nil))
	require.NoError(t, p.Append(1, []int{1}))

	require.Equal(t, 3, p.Size())
	require.Equal(t, 2, p.Count())
	require.Equal(t, 3, p.TotalIx())
	require.Equal(t, []int{2, 0, 1}, p.Nixes())
	require.Equal(t, []int{2, 0}, p.Ix(0))
	require.Empty(t, p.Ix(1))
	require.Equal(t, 0, p.Nix(9))

	tens, ix, err := p.Entry(2)
	require.NoError(t, err)
	require.Equal(t, 1, tens)
	require.Equal(t, []int{1}, ix)
	_, _, err = p.Entry(3)
	require.ErrorIs(t, err, aindex.ErrOutOfRange)

	require.Equal(t, map[int][]int{1: {0, 2}, 0: {1}}, p.ByTarget())
	require.Equal(t, []int{1, 0}, p.Targets())
	require.Equal(t, "1:(2,0)\n0:()\n1:(1)\n", p.String())

	require.ErrorIs(t, p.Append(-1, nil), aindex.ErrNegative)
	require.ErrorIs(t, p.Append(0, []int{-2}), aindex.ErrNegative)
}

// TestValidate checks targets, list lengths and positions against domains.
func TestValidate(t *testing.T) {
	dom, err := atoms.FromSlices([][]int{{0, 1, 2}, {5}})
	require.NoError(t, err)

	ok, err := aindex.FromEntries([]int{0, 1, 0}, [][]int{{2, 1}, {0}, {}})
	require.NoError(t, err)
	require.NoError(t, ok.Validate(dom))

	cases := []struct {
		name string
		tens []int
		ix   [][]int
		want error
	}{
		{"target past end", []int{2}, [][]int{{0}}, aindex.ErrOutOfRange},
		{"list too long", []int{1}, [][]int{{0, 0}}, aindex.ErrListTooLong},
		{"position past extent", []int{0}, [][]int{{3}}, aindex.ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := aindex.FromEntries(tc.tens, tc.ix)
			require.NoError(t, err)
			require.ErrorIs(t, p.Validate(dom), tc.want)
		})
	}

	_, err = aindex.FromEntries([]int{0}, nil)
	require.ErrorIs(t, err, aindex.ErrOutOfRange)
}
