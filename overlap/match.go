// SPDX-License-Identifier: MIT

package overlap

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/ptens/aindex"
	"github.com/katalvlaran/ptens/atoms"
)

// Map is the paired correspondence produced by Match.
// Src, Dst and Heads have one entry per matched pair, in the same order.
type Map struct {
	Src   *aindex.Pack
	Dst   *aindex.Pack
	Heads *aindex.Pack
}

// Size returns the number of matched pairs.
func (m *Map) Size() int { return m.Src.Size() }

// Pair returns the (source item, target item) of entry e.
func (m *Map) Pair(e int) (int, int) { return m.Src.Tens(e), m.Dst.Tens(e) }

// Match intersects every target domain with the source domains that share an
// atom with it.
// Stage 1 (Index): inverted index atom → source items (ascending).
// Stage 2 (Execute): per target item, collect candidate source items, sort,
// intersect and emit entries with ≥ MinOverlap shared atoms.
// Complexity: O(total domain size + Σ_pairs (|src_i| + |dst_j|)).
func Match(src, dst *atoms.Pack, opts ...Option) (*Map, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("Match: %w", ErrNilPack)
	}
	o := gatherOptions(opts)

	inv := make(map[int][]int)
	src.ForEach(func(i int, a atoms.Atoms) {
		for _, x := range a {
			if l := inv[x]; len(l) == 0 || l[len(l)-1] != i {
				inv[x] = append(l, i)
			}
		}
	})

	m := &Map{Src: aindex.New(0), Dst: aindex.New(0), Heads: aindex.New(0)}
	var err error
	seen := make(map[int]struct{})
	cand := make([]int, 0, 16)
	dst.ForEach(func(j int, b atoms.Atoms) {
		if err != nil {
			return
		}
		clear(seen)
		cand = cand[:0]
		for _, x := range b {
			for _, i := range inv[x] {
				if _, ok := seen[i]; !ok {
					seen[i] = struct{}{}
					cand = append(cand, i)
				}
			}
		}
		slices.Sort(cand)
		for _, i := range cand {
			if o.skipSelf && i == j {
				continue
			}
			a, _ := src.At(i)
			common := a.Intersect(b)
			if len(common) < o.minOverlap {
				continue
			}
			ps, _ := a.Positions(common)
			pd, _ := b.Positions(common)
			if err = m.Src.Append(i, ps); err != nil {
				return
			}
			if err = m.Dst.Append(j, pd); err != nil {
				return
			}
			if err = m.Heads.Append(j, []int{0}); err != nil {
				return
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("Match: %w", err)
	}

	return m, nil
}
