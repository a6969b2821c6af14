// SPDX-License-Identifier: MIT

// Package ragged - contiguous buffer plus per-item directory.
//
// Purpose:
//   - Keep every item's extent×channels block in one []float64 so reductions
//     and device copies touch a single allocation.
//   - Allow exact pre-sizing (Reserve) and amortized growth (PushBack).
//
// Contract:
//   - len(buf) is the capacity; buf[:tail] holds live items.
//   - dir[i].Offset == dir[i-1].Offset + dir[i-1].Extent*nc.

package ragged

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/ptens/device"
)

// Entry is one directory row: where item i lives and its shape.
type Entry struct {
	Offset   int // element offset of row 0, channel 0
	Extent   int // number of rows (atoms)
	Channels int // row length
}

// Pack is a ragged collection of extent×nc float64 blocks.
type Pack struct {
	dev  device.Device
	nc   int
	buf  []float64
	tail int
	dir  []Entry
	gen  uint64
}

// Empty returns a pack with no items and no capacity.
func Empty(nc int, dev device.Device) (*Pack, error) {
	if nc < 0 {
		return nil, raggedErrorf("Empty", ErrDimensionMismatch)
	}
	if !dev.Valid() {
		return nil, raggedErrorf("Empty", device.ErrUnknownDevice)
	}

	return &Pack{dev: dev, nc: nc}, nil
}

// New allocates one item per extent, sized exactly, and applies fill.
// src is required for FillGaussian and ignored otherwise.
// Stage 1 (Validate): nc, extents, fill, device.
// Stage 2 (Execute): one allocation, directory rows, per-item fill.
// Complexity: O(sum(extents)*nc).
func New(extents []int, nc int, fill Fill, src NormSource, dev device.Device) (*Pack, error) {
	if err := fill.Validate(); err != nil {
		return nil, raggedErrorf("New", err)
	}
	if fill.Kind == FillGaussian && src == nil {
		return nil, raggedErrorf("New", fmt.Errorf("nil normal source: %w", ErrBadFill))
	}
	p, err := Empty(nc, dev)
	if err != nil {
		return nil, raggedErrorf("New", err)
	}
	total, err := elements(extents, nc)
	if err != nil {
		return nil, raggedErrorf("New", err)
	}
	p.buf = make([]float64, total)
	p.dir = make([]Entry, 0, len(extents))
	for _, k := range extents {
		e := Entry{Offset: p.tail, Extent: k, Channels: nc}
		p.dir = append(p.dir, e)
		p.tail += k * nc
		fill.apply(p.buf[e.Offset:p.tail], k, nc, src)
	}

	return p, nil
}

// NewUniform allocates n items of identical extent.
func NewUniform(n, extent, nc int, fill Fill, src NormSource, dev device.Device) (*Pack, error) {
	if n < 0 {
		return nil, raggedErrorf("NewUniform", ErrDimensionMismatch)
	}
	extents := make([]int, n)
	for i := range extents {
		extents[i] = extent
	}

	return New(extents, nc, fill, src, dev)
}

// FromData copies data into a new pack laid out by extents.
// len(data) must equal sum(extents)*nc.
func FromData(extents []int, nc int, data []float64, dev device.Device) (*Pack, error) {
	total, err := elements(extents, nc)
	if err != nil {
		return nil, raggedErrorf("FromData", err)
	}
	if len(data) != total {
		return nil, raggedErrorf("FromData", fmt.Errorf("len %d want %d: %w", len(data), total, ErrDimensionMismatch))
	}
	p, err := New(extents, nc, Raw(), nil, dev)
	if err != nil {
		return nil, raggedErrorf("FromData", err)
	}
	copy(p.buf, data)

	return p, nil
}

// elements returns sum(extents)*nc with overflow and sign checks.
func elements(extents []int, nc int) (int, error) {
	if nc < 0 {
		return 0, ErrDimensionMismatch
	}
	rows := 0
	for _, k := range extents {
		if k < 0 {
			return 0, ErrDimensionMismatch
		}
		if rows > math.MaxInt-k {
			return 0, ErrCapacity
		}
		rows += k
	}
	if nc > 0 && rows > math.MaxInt/nc {
		return 0, ErrCapacity
	}

	return rows * nc, nil
}

// Size returns the number of items.
func (p *Pack) Size() int { return len(p.dir) }

// Channels returns the uniform channel count.
func (p *Pack) Channels() int { return p.nc }

// Device returns the memory space of the buffer.
func (p *Pack) Device() device.Device { return p.dev }

// Tail returns the number of live elements.
func (p *Pack) Tail() int { return p.tail }

// Cap returns the buffer capacity in elements.
func (p *Pack) Cap() int { return len(p.buf) }

// Generation returns the reallocation counter.
func (p *Pack) Generation() uint64 { return p.gen }

// Dir returns the directory row of item i.
func (p *Pack) Dir(i int) (Entry, error) {
	if i < 0 || i >= len(p.dir) {
		return Entry{}, raggedErrorf("Dir", ErrOutOfRange)
	}
	return p.dir[i], nil
}

// ExtentOf returns the row count of item i, 0 when out of range.
func (p *Pack) ExtentOf(i int) int {
	if i < 0 || i >= len(p.dir) {
		return 0
	}
	return p.dir[i].Extent
}

// Extents returns every item's row count.
func (p *Pack) Extents() []int {
	out := make([]int, len(p.dir))
	for i, e := range p.dir {
		out[i] = e.Extent
	}

	return out
}

// Rows returns the total row count over all items.
func (p *Pack) Rows() int {
	if p.nc == 0 {
		n := 0
		for _, e := range p.dir {
			n += e.Extent
		}
		return n
	}
	return p.tail / p.nc
}

// Reserve grows capacity to at least n elements. Existing data is kept.
// Returns ErrCapacity for n < 0. Never shrinks.
func (p *Pack) Reserve(n int) error {
	if n < 0 {
		return raggedErrorf("Reserve", ErrCapacity)
	}
	if n <= len(p.buf) {
		return nil
	}
	p.realloc(n)

	return nil
}

// ReserveZero is Reserve followed by zeroing buf[tail:n].
func (p *Pack) ReserveZero(n int) error {
	if err := p.Reserve(n); err != nil {
		return raggedErrorf("ReserveZero", err)
	}
	if n > p.tail {
		clear(p.buf[p.tail:n])
	}

	return nil
}

// realloc moves live data to a buffer of exactly n elements.
func (p *Pack) realloc(n int) {
	nb := make([]float64, n)
	copy(nb, p.buf[:p.tail])
	p.buf = nb
	p.gen++
}

// grow ensures room for extra elements past tail, doubling when needed.
func (p *Pack) grow(extra int) error {
	if extra < 0 || p.tail > math.MaxInt-extra {
		return ErrCapacity
	}
	need := p.tail + extra
	if need <= len(p.buf) {
		return nil
	}
	c := len(p.buf)
	if c > math.MaxInt/2 {
		c = need
	} else {
		c = max(need, 2*c)
	}
	p.realloc(c)

	return nil
}

// PushBack appends one item with extent rows copied from data
// (len(data) must be extent*Channels()). Amortized O(len(data)).
func (p *Pack) PushBack(extent int, data []float64) error {
	if extent < 0 || len(data) != extent*p.nc {
		return raggedErrorf("PushBack", ErrDimensionMismatch)
	}
	if err := p.grow(len(data)); err != nil {
		return raggedErrorf("PushBack", err)
	}
	p.dir = append(p.dir, Entry{Offset: p.tail, Extent: extent, Channels: p.nc})
	copy(p.buf[p.tail:], data)
	p.tail += len(data)

	return nil
}

// PushBackZero appends one zero item with extent rows.
func (p *Pack) PushBackZero(extent int) error {
	if extent < 0 {
		return raggedErrorf("PushBackZero", ErrDimensionMismatch)
	}
	n := extent * p.nc
	if err := p.grow(n); err != nil {
		return raggedErrorf("PushBackZero", err)
	}
	p.dir = append(p.dir, Entry{Offset: p.tail, Extent: extent, Channels: p.nc})
	clear(p.buf[p.tail : p.tail+n])
	p.tail += n

	return nil
}

// Item returns a host view of item i.
func (p *Pack) Item(i int) (View2, error) {
	if p.dev != device.Host {
		return View2{}, raggedErrorf("Item", ErrWrongDevice)
	}
	if i < 0 || i >= len(p.dir) {
		return View2{}, raggedErrorf("Item", ErrOutOfRange)
	}

	return p.DeviceItem(i), nil
}

// Block returns a host view of channels [offs, offs+n) of item i.
func (p *Pack) Block(i, offs, n int) (View2, error) {
	if p.dev != device.Host {
		return View2{}, raggedErrorf("Block", ErrWrongDevice)
	}
	if i < 0 || i >= len(p.dir) {
		return View2{}, raggedErrorf("Block", ErrOutOfRange)
	}
	if err := p.CheckRange(offs, n); err != nil {
		return View2{}, raggedErrorf("Block", err)
	}

	return p.DeviceBlock(i, offs, n), nil
}

// CheckRange validates a channel sub-range against Channels().
func (p *Pack) CheckRange(offs, n int) error {
	if offs < 0 || n < 0 || offs > p.nc-n {
		return fmt.Errorf("(%d,%d) in %d: %w", offs, n, p.nc, ErrChannelRange)
	}
	return nil
}

// DeviceItem returns a view of item i regardless of device.
// Precondition: 0 <= i < Size(). For execution backends only.
func (p *Pack) DeviceItem(i int) View2 {
	return p.DeviceBlock(i, 0, p.nc)
}

// DeviceBlock is the channel-range form of DeviceItem.
// Precondition: i in range and CheckRange(offs, n) == nil.
func (p *Pack) DeviceBlock(i, offs, n int) View2 {
	e := p.dir[i]
	v := View2{rows: e.Extent, cols: n, stride: p.nc, owner: p, gen: p.gen}
	if e.Extent == 0 || n == 0 {
		return v
	}
	lo := e.Offset + offs
	hi := e.Offset + (e.Extent-1)*p.nc + offs + n
	v.arr = p.buf[lo:hi:hi]

	return v
}

// Data returns a copy of the live elements of a host pack.
func (p *Pack) Data() ([]float64, error) {
	if p.dev != device.Host {
		return nil, raggedErrorf("Data", ErrWrongDevice)
	}
	out := make([]float64, p.tail)
	copy(out, p.buf[:p.tail])

	return out, nil
}

// ToDevice returns a copy of p tagged with dev. The source is not modified.
// Callers owning a stream must Sync it before calling on Accel data.
func (p *Pack) ToDevice(dev device.Device) (*Pack, error) {
	if !dev.Valid() {
		return nil, raggedErrorf("ToDevice", device.ErrUnknownDevice)
	}
	out := p.Clone()
	out.dev = dev

	return out, nil
}

// Clone returns a deep copy with capacity trimmed to the live data.
func (p *Pack) Clone() *Pack {
	out := &Pack{
		dev:  p.dev,
		nc:   p.nc,
		buf:  make([]float64, p.tail),
		tail: p.tail,
		dir:  make([]Entry, len(p.dir)),
	}
	copy(out.buf, p.buf[:p.tail])
	copy(out.dir, p.dir)

	return out
}

// ZerosLike returns a zero pack with p's extents, channels and device.
func (p *Pack) ZerosLike() *Pack {
	return p.ZerosLikeChannels(p.nc)
}

// ZerosLikeChannels returns a zero pack with p's extents and device and nc channels.
func (p *Pack) ZerosLikeChannels(nc int) *Pack {
	out := &Pack{dev: p.dev, nc: nc, dir: make([]Entry, len(p.dir))}
	for i, e := range p.dir {
		out.dir[i] = Entry{Offset: out.tail, Extent: e.Extent, Channels: nc}
		out.tail += e.Extent * nc
	}
	out.buf = make([]float64, out.tail)

	return out
}

// SameLayout reports whether q has p's item count, extents and channels.
func (p *Pack) SameLayout(q *Pack) bool {
	if q == nil || p.nc != q.nc || len(p.dir) != len(q.dir) {
		return false
	}
	for i := range p.dir {
		if p.dir[i].Extent != q.dir[i].Extent {
			return false
		}
	}

	return true
}

// Cat concatenates packs item-wise. All inputs must share channels and device.
// Directory offsets of later packs are shifted by the preceding tails.
// Complexity: O(total elements + total items).
func Cat(packs ...*Pack) (*Pack, error) {
	if len(packs) == 0 {
		return Empty(0, device.Host)
	}
	total, items := 0, 0
	for _, q := range packs {
		if q == nil {
			return nil, raggedErrorf("Cat", ErrNilPack)
		}
		if q.nc != packs[0].nc {
			return nil, raggedErrorf("Cat", ErrChannelMismatch)
		}
		if q.dev != packs[0].dev {
			return nil, raggedErrorf("Cat", ErrDeviceMismatch)
		}
		total += q.tail
		items += len(q.dir)
	}
	out := &Pack{
		dev: packs[0].dev,
		nc:  packs[0].nc,
		buf: make([]float64, total),
		dir: make([]Entry, 0, items),
	}
	for _, q := range packs {
		for _, e := range q.dir {
			e.Offset += out.tail
			out.dir = append(out.dir, e)
		}
		copy(out.buf[out.tail:], q.buf[:q.tail])
		out.tail += q.tail
	}

	return out, nil
}

// Equal reports identical layout, device and element values.
func (p *Pack) Equal(q *Pack) bool {
	if !p.SameLayout(q) || p.dev != q.dev || p.tail != q.tail {
		return false
	}
	for i := 0; i < p.tail; i++ {
		if p.buf[i] != q.buf[i] {
			return false
		}
	}

	return true
}

// AllClose reports identical layout and |p-q| <= tol element-wise.
func (p *Pack) AllClose(q *Pack, tol float64) bool {
	if !p.SameLayout(q) {
		return false
	}
	for i := 0; i < p.tail; i++ {
		if math.Abs(p.buf[i]-q.buf[i]) > tol {
			return false
		}
	}

	return true
}

// String renders each item as a small matrix, one row per line.
func (p *Pack) String() string {
	var sb strings.Builder
	for i := range p.dir {
		fmt.Fprintf(&sb, "item %d:\n", i)
		v := p.DeviceItem(i)
		for a := 0; a < v.rows; a++ {
			sb.WriteString("  [")
			for c := 0; c < v.cols; c++ {
				if c > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%g", v.At(a, c))
			}
			sb.WriteString("]\n")
		}
	}

	return sb.String()
}
