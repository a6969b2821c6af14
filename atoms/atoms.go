// SPDX-License-Identifier: MIT

package atoms

import (
	"strconv"
	"strings"
)

// Atoms is one index domain: an ordered sequence of ground-set indices.
// Values handed out by a Pack are copies; treat an Atoms as immutable once it
// has been appended to a Pack.
type Atoms []int

// New validates ix and returns it as an Atoms value (copied).
// Duplicates are accepted; the core never assumes distinct atoms.
// Complexity: O(len(ix)).
func New(ix ...int) (Atoms, error) {
	if err := validateAtoms(ix); err != nil {
		return nil, atomsErrorf("New", err)
	}
	out := make(Atoms, len(ix))
	copy(out, ix)

	return out, nil
}

// Range returns the domain {lo, lo+1, ..., hi-1}. Empty when hi <= lo.
func Range(lo, hi int) Atoms {
	if hi <= lo {
		return Atoms{}
	}
	out := make(Atoms, hi-lo)
	for i := range out {
		out[i] = lo + i
	}

	return out
}

// Size returns the number of atoms in the domain.
func (a Atoms) Size() int { return len(a) }

// Clone returns an independent copy.
func (a Atoms) Clone() Atoms {
	out := make(Atoms, len(a))
	copy(out, a)

	return out
}

// Index returns the position of atom x within the domain (first occurrence).
// Complexity: O(|a|).
func (a Atoms) Index(x int) (int, bool) {
	for i, v := range a {
		if v == x {
			return i, true
		}
	}

	return -1, false
}

// Contains reports whether atom x is in the domain.
func (a Atoms) Contains(x int) bool {
	_, ok := a.Index(x)
	return ok
}

// Intersect returns the atoms of a that also occur in b, in a's order.
// Complexity: O(|a| + |b|) expected (one map over b).
func (a Atoms) Intersect(b Atoms) Atoms {
	if len(a) == 0 || len(b) == 0 {
		return Atoms{}
	}
	inB := make(map[int]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	out := make(Atoms, 0, min(len(a), len(b)))
	for _, v := range a {
		if _, ok := inB[v]; ok {
			out = append(out, v)
		}
	}

	return out
}

// Positions maps each atom of sub to its position in a.
// The second result is false if some atom of sub is missing from a.
func (a Atoms) Positions(sub Atoms) ([]int, bool) {
	pos := make(map[int]int, len(a))
	for i := len(a) - 1; i >= 0; i-- { // first occurrence wins
		pos[a[i]] = i
	}
	out := make([]int, len(sub))
	for i, v := range sub {
		p, ok := pos[v]
		if !ok {
			return nil, false
		}
		out[i] = p
	}

	return out, true
}

// Equal reports element-wise equality (order matters).
func (a Atoms) Equal(b Atoms) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// String renders the domain as "(0,1,2)".
func (a Atoms) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(')')

	return sb.String()
}

// validateAtoms rejects negative indices.
func validateAtoms(ix []int) error {
	for _, v := range ix {
		if v < 0 {
			return ErrNegativeAtom
		}
	}

	return nil
}
