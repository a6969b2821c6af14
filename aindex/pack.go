// SPDX-License-Identifier: MIT

package aindex

import (
	"fmt"
	"strings"
	"sync"
)

// Extents is the view of a target pack that Validate needs.
// Both *atoms.Pack (SizeOf) and ptensors packs satisfy it.
type Extents interface {
	Size() int
	SizeOf(i int) int
}

// Pack is an ordered list of (Tens, Ix) entries stored flat.
type Pack struct {
	tens []int
	offs []int // len == Size()+1
	ix   []int
	cnt  int // number of distinct entries with a non-empty list

	byTargetOnce sync.Once
	byTarget     map[int][]int
}

// New returns an empty table with room for n entries.
func New(n int) *Pack {
	if n < 0 {
		n = 0
	}
	return &Pack{
		tens: make([]int, 0, n),
		offs: append(make([]int, 0, n+1), 0),
	}
}

// FromEntries builds a table from parallel slices.
func FromEntries(tens []int, ix [][]int) (*Pack, error) {
	if len(tens) != len(ix) {
		return nil, aindexErrorf("FromEntries", fmt.Errorf("%d targets, %d lists: %w", len(tens), len(ix), ErrOutOfRange))
	}
	p := New(len(tens))
	for i := range tens {
		if err := p.Append(tens[i], ix[i]); err != nil {
			return nil, aindexErrorf("FromEntries", err)
		}
	}

	return p, nil
}

// Append adds one entry. The list is copied.
// Must not be called after the table has been handed to an operator.
func (p *Pack) Append(tens int, ix []int) error {
	if tens < 0 {
		return aindexErrorf("Append", ErrNegative)
	}
	for _, a := range ix {
		if a < 0 {
			return aindexErrorf("Append", ErrNegative)
		}
	}
	p.tens = append(p.tens, tens)
	p.ix = append(p.ix, ix...)
	p.offs = append(p.offs, len(p.ix))
	if len(ix) > 0 {
		p.cnt++
	}

	return nil
}

// Size returns the number of entries.
func (p *Pack) Size() int { return len(p.tens) }

// Count returns the number of entries with a non-empty list.
func (p *Pack) Count() int { return p.cnt }

// TotalIx returns the sum of all list lengths.
func (p *Pack) TotalIx() int { return len(p.ix) }

// Tens returns the target item of entry i.
// Precondition: 0 <= i < Size().
func (p *Pack) Tens(i int) int { return p.tens[i] }

// Ix returns the position list of entry i without copying; do not mutate.
// Precondition: 0 <= i < Size().
func (p *Pack) Ix(i int) []int {
	return p.ix[p.offs[i]:p.offs[i+1]:p.offs[i+1]]
}

// Nix returns the list length of entry i, 0 when out of range.
func (p *Pack) Nix(i int) int {
	if i < 0 || i >= len(p.tens) {
		return 0
	}
	return p.offs[i+1] - p.offs[i]
}

// Nixes returns every entry's list length.
func (p *Pack) Nixes() []int {
	out := make([]int, len(p.tens))
	for i := range out {
		out[i] = p.offs[i+1] - p.offs[i]
	}

	return out
}

// Entry returns a copy of entry i.
func (p *Pack) Entry(i int) (int, []int, error) {
	if i < 0 || i >= len(p.tens) {
		return 0, nil, aindexErrorf("Entry", ErrOutOfRange)
	}
	ix := make([]int, p.Nix(i))
	copy(ix, p.Ix(i))

	return p.tens[i], ix, nil
}

// Validate checks every entry against the target pack:
// Tens(i) < target.Size(), Nix(i) <= target.SizeOf(Tens(i)) and every
// position < target.SizeOf(Tens(i)).
// Complexity: O(Size() + TotalIx()).
func (p *Pack) Validate(target Extents) error {
	n := target.Size()
	for i, t := range p.tens {
		if t >= n {
			return aindexErrorf("Validate", fmt.Errorf("entry %d target %d of %d: %w", i, t, n, ErrOutOfRange))
		}
		k := target.SizeOf(t)
		if p.Nix(i) > k {
			return aindexErrorf("Validate", fmt.Errorf("entry %d: %d > %d: %w", i, p.Nix(i), k, ErrListTooLong))
		}
		for _, a := range p.Ix(i) {
			if a >= k {
				return aindexErrorf("Validate", fmt.Errorf("entry %d position %d of %d: %w", i, a, k, ErrOutOfRange))
			}
		}
	}

	return nil
}

// ByTarget groups entry indices by target item, each group in stored order.
// Computed once; callers must not mutate the result.
func (p *Pack) ByTarget() map[int][]int {
	p.byTargetOnce.Do(func() {
		m := make(map[int][]int)
		for i, t := range p.tens {
			m[t] = append(m[t], i)
		}
		p.byTarget = m
	})

	return p.byTarget
}

// Targets returns the distinct target items in first-seen order.
func (p *Pack) Targets() []int {
	seen := make(map[int]struct{}, len(p.tens))
	out := make([]int, 0, len(p.tens))
	for _, t := range p.tens {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	return out
}

// String renders one "tens:(ix...)" entry per line.
func (p *Pack) String() string {
	var sb strings.Builder
	for i, t := range p.tens {
		fmt.Fprintf(&sb, "%d:(", t)
		for j, a := range p.Ix(i) {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", a)
		}
		sb.WriteString(")\n")
	}

	return sb.String()
}
