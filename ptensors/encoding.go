// SPDX-License-Identifier: MIT

package ptensors

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ragged"
	"github.com/katalvlaran/ptens/session"
)

const encodingVersion = 1

var encodingMagic = [4]byte{'P', 'T', 'N', '1'}

// header precedes the item sizes ([]uint32), the atoms ([]int64) and the
// data ([]float64), all little endian.
type header struct {
	Magic    [4]byte
	Version  uint16
	Device   uint8
	_        uint8
	Channels uint32
	Items    uint32
	Atoms    uint64
	Elems    uint64
}

// MarshalBinary encodes domains and data. The gradient is not encoded.
func (p *Pack1) MarshalBinary() ([]byte, error) {
	h, err := p.host()
	if err != nil {
		return nil, ptensorsErrorf("MarshalBinary", err)
	}
	data, err := h.Data()
	if err != nil {
		return nil, ptensorsErrorf("MarshalBinary", err)
	}
	sizes := make([]uint32, p.atoms.Size())
	flat := make([]int64, 0, p.atoms.TotalSize())
	p.atoms.ForEach(func(i int, a atoms.Atoms) {
		sizes[i] = uint32(a.Size())
		for _, x := range a {
			flat = append(flat, int64(x))
		}
	})

	var buf bytes.Buffer
	buf.Grow(32 + 4*len(sizes) + 8*len(flat) + 8*len(data))
	hdr := header{
		Magic:    encodingMagic,
		Version:  encodingVersion,
		Device:   uint8(p.Device()),
		Channels: uint32(p.Channels()),
		Items:    uint32(len(sizes)),
		Atoms:    uint64(len(flat)),
		Elems:    uint64(len(data)),
	}
	for _, v := range []any{hdr, sizes, flat, data} {
		if err = binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, ptensorsErrorf("MarshalBinary", err)
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalPack1 decodes a pack produced by MarshalBinary into session s,
// on the device it was encoded from.
func UnmarshalPack1(s *session.Session, b []byte) (*Pack1, error) {
	if s == nil {
		return nil, ptensorsErrorf("UnmarshalPack1", ErrNilSession)
	}
	r := bytes.NewReader(b)
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("header: %w", ErrBadEncoding))
	}
	if hdr.Magic != encodingMagic || hdr.Version != encodingVersion {
		return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("magic %q version %d: %w", hdr.Magic[:], hdr.Version, ErrBadEncoding))
	}
	dev := device.Device(hdr.Device)
	if !dev.Valid() {
		return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("device %d: %w", hdr.Device, ErrBadEncoding))
	}
	need := 4*uint64(hdr.Items) + 8*hdr.Atoms + 8*hdr.Elems
	if hdr.Atoms > uint64(r.Len()) || hdr.Elems > uint64(r.Len()) || need != uint64(r.Len()) {
		return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("payload %d bytes, header wants %d: %w", r.Len(), need, ErrBadEncoding))
	}

	sizes := make([]uint32, hdr.Items)
	flat := make([]int64, hdr.Atoms)
	data := make([]float64, hdr.Elems)
	for _, v := range []any{sizes, flat, data} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("%v: %w", err, ErrBadEncoding))
		}
	}

	items := make([][]int, len(sizes))
	pos := uint64(0)
	for i, k := range sizes {
		if pos+uint64(k) > uint64(len(flat)) {
			return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("item %d overruns atoms: %w", i, ErrBadEncoding))
		}
		items[i] = make([]int, k)
		for j := range items[i] {
			items[i][j] = int(flat[pos])
			pos++
		}
	}
	if pos != uint64(len(flat)) {
		return nil, ptensorsErrorf("UnmarshalPack1", fmt.Errorf("%d trailing atoms: %w", uint64(len(flat))-pos, ErrBadEncoding))
	}
	a, err := atoms.FromSlices(items)
	if err != nil {
		return nil, ptensorsErrorf("UnmarshalPack1", err)
	}
	rp, err := ragged.FromData(a.Sizes(), int(hdr.Channels), data, dev)
	if err != nil {
		return nil, ptensorsErrorf("UnmarshalPack1", err)
	}

	return FromRagged(s, a, rp)
}
