// Package ragged implements a pack of variable-extent tensors stored in one
// contiguous []float64 buffer.
//
// Layout:
//   - Item i is a row-major extent×channels block starting at Dir(i).Offset.
//   - Offsets are strictly increasing and blocks never overlap.
//   - Every item of a pack has the same channel count.
//
// Growth:
//   - Reserve / ReserveZero pre-size the buffer exactly.
//   - PushBack grows by doubling when capacity runs out.
//   - Each reallocation bumps a generation counter; a View taken before the
//     bump reports Stale() and must not be used for writes.
//
// Devices:
//   - A pack is tagged Host or Accel. Item and Block hand out views only for
//     Host packs; execution backends use DeviceItem/DeviceBlock from inside
//     stream tasks, after validating indices themselves.
//
// Views carry the per-item primitives (column sums, repeats, gathers and
// scatters) that every backend composes, so all backends agree bit for bit.
package ragged
