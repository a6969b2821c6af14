// SPDX-License-Identifier: MIT

// Package atoms - flat index-domain pack.
//
// Purpose:
//   - Store the index domains of all items of one tensor pack in a single []int.
//   - Provide O(1) SizeOf / TotalSize so ragged storage can be pre-sized exactly.
//
// Determinism:
//   - Item order is insertion order; Cat preserves argument order; Permute is explicit.

package atoms

import (
	"strings"
)

// Pack is the ordered collection of index domains of one tensor pack.
// Item i occupies data[offs[i]:offs[i+1]].
type Pack struct {
	data []int // concatenated atoms of all items
	offs []int // len == Size()+1, offs[0] == 0
}

// NewPack returns an empty pack with room for n items (hint only).
func NewPack(n int) *Pack {
	if n < 0 {
		n = 0
	}
	offs := make([]int, 1, n+1)

	return &Pack{offs: offs}
}

// FromSlices builds a pack from one []int per item.
// Stage 1 (Validate): every atom must be non-negative.
// Stage 2 (Execute): append items in order.
// Complexity: O(total domain size).
func FromSlices(items [][]int) (*Pack, error) {
	total := 0
	for _, it := range items {
		if err := validateAtoms(it); err != nil {
			return nil, atomsErrorf("FromSlices", err)
		}
		total += len(it)
	}
	p := &Pack{
		data: make([]int, 0, total),
		offs: make([]int, 1, len(items)+1),
	}
	for _, it := range items {
		p.data = append(p.data, it...)
		p.offs = append(p.offs, len(p.data))
	}

	return p, nil
}

// Uniform returns n items, item i holding atoms {i*k, ..., i*k+k-1}.
// Useful for tests and for packs over disjoint k-blocks of a ground set.
func Uniform(n, k int) *Pack {
	if n < 0 {
		n = 0
	}
	if k < 0 {
		k = 0
	}
	p := &Pack{
		data: make([]int, n*k),
		offs: make([]int, n+1),
	}
	for i := 0; i < n*k; i++ {
		p.data[i] = i
	}
	for i := 1; i <= n; i++ {
		p.offs[i] = i * k
	}

	return p
}

// Size returns the number of items.
func (p *Pack) Size() int { return len(p.offs) - 1 }

// SizeOf returns |domain(i)|, or 0 when i is out of range.
func (p *Pack) SizeOf(i int) int {
	if i < 0 || i >= p.Size() {
		return 0
	}
	return p.offs[i+1] - p.offs[i]
}

// TotalSize returns the sum of all domain sizes (total_domain_size).
func (p *Pack) TotalSize() int { return len(p.data) }

// MaxSize returns the largest domain size, 0 for an empty pack.
func (p *Pack) MaxSize() int {
	m := 0
	for i := 0; i < p.Size(); i++ {
		m = max(m, p.offs[i+1]-p.offs[i])
	}

	return m
}

// Sizes returns the per-item domain sizes.
func (p *Pack) Sizes() []int {
	out := make([]int, p.Size())
	for i := range out {
		out[i] = p.offs[i+1] - p.offs[i]
	}

	return out
}

// At returns a copy of item i's domain.
func (p *Pack) At(i int) (Atoms, error) {
	if i < 0 || i >= p.Size() {
		return nil, atomsErrorf("At", ErrOutOfRange)
	}

	return Atoms(p.data[p.offs[i]:p.offs[i+1]]).Clone(), nil
}

// view returns item i without copying; callers must not mutate it.
func (p *Pack) view(i int) Atoms {
	return Atoms(p.data[p.offs[i]:p.offs[i+1]:p.offs[i+1]])
}

// ForEach calls fn with each item index and a read-only view of its domain.
// The view is valid only during the callback.
func (p *Pack) ForEach(fn func(i int, a Atoms)) {
	for i := 0; i < p.Size(); i++ {
		fn(i, p.view(i))
	}
}

// Append adds one item at the end.
// Complexity: O(|a|) amortized.
func (p *Pack) Append(a Atoms) error {
	if err := validateAtoms(a); err != nil {
		return atomsErrorf("Append", err)
	}
	p.data = append(p.data, a...)
	p.offs = append(p.offs, len(p.data))

	return nil
}

// Cat concatenates packs in argument order. Domains are kept distinct.
// nil packs are rejected with ErrNilPack.
// Complexity: O(total items + total domain size).
func Cat(packs ...*Pack) (*Pack, error) {
	items, total := 0, 0
	for _, q := range packs {
		if q == nil {
			return nil, atomsErrorf("Cat", ErrNilPack)
		}
		items += q.Size()
		total += q.TotalSize()
	}
	out := &Pack{
		data: make([]int, 0, total),
		offs: make([]int, 1, items+1),
	}
	for _, q := range packs {
		base := len(out.data)
		out.data = append(out.data, q.data...)
		for i := 1; i < len(q.offs); i++ {
			out.offs = append(out.offs, base+q.offs[i])
		}
	}

	return out, nil
}

// Permute returns a new pack where item i of p is placed at position pi[i].
// Stage 1 (Validate): len(pi)==Size() and pi is a bijection on [0,Size()).
// Stage 2 (Execute): compute destination offsets, then copy each domain once.
// Complexity: O(total items + total domain size).
func (p *Pack) Permute(pi []int) (*Pack, error) {
	if err := ValidatePermutation(pi, p.Size()); err != nil {
		return nil, atomsErrorf("Permute", err)
	}
	n := p.Size()
	src := make([]int, n) // src[j] = old index placed at j
	for i, j := range pi {
		src[j] = i
	}
	out := &Pack{
		data: make([]int, 0, len(p.data)),
		offs: make([]int, 1, n+1),
	}
	for j := 0; j < n; j++ {
		out.data = append(out.data, p.view(src[j])...)
		out.offs = append(out.offs, len(out.data))
	}

	return out, nil
}

// Clone returns a deep copy.
func (p *Pack) Clone() *Pack {
	out := &Pack{
		data: make([]int, len(p.data)),
		offs: make([]int, len(p.offs)),
	}
	copy(out.data, p.data)
	copy(out.offs, p.offs)

	return out
}

// Equal reports whether both packs hold the same domains in the same order.
func (p *Pack) Equal(q *Pack) bool {
	if p == nil || q == nil {
		return p == q
	}
	if len(p.offs) != len(q.offs) || len(p.data) != len(q.data) {
		return false
	}
	for i := range p.offs {
		if p.offs[i] != q.offs[i] {
			return false
		}
	}
	for i := range p.data {
		if p.data[i] != q.data[i] {
			return false
		}
	}

	return true
}

// SameSizes reports whether both packs have identical per-item domain sizes.
// Atom labels may differ.
func (p *Pack) SameSizes(q *Pack) bool {
	if p.Size() != q.Size() {
		return false
	}
	for i := range p.offs {
		if p.offs[i] != q.offs[i] {
			return false
		}
	}

	return true
}

// Slices returns a copy of every domain as [][]int.
func (p *Pack) Slices() [][]int {
	out := make([][]int, p.Size())
	for i := range out {
		out[i] = []int(p.view(i).Clone())
	}

	return out
}

// String renders one domain per line.
func (p *Pack) String() string {
	var sb strings.Builder
	for i := 0; i < p.Size(); i++ {
		sb.WriteString(p.view(i).String())
		sb.WriteByte('\n')
	}

	return sb.String()
}
