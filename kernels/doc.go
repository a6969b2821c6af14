// Package kernels implements the reduce/broadcast operator family on ragged
// packs behind one Backend interface.
//
// Two backends exist:
//   - Host runs each operator as a single sequential pass over items on the
//     calling goroutine and returns when the result is written.
//   - Batched enqueues one task per operator on a device.Stream and returns
//     immediately; inside the task, items are split into chunks processed by
//     an errgroup. Results are visible after Stream.Sync.
//
// Both backends validate operands synchronously (errors are returned before
// anything is enqueued) and compose the same per-item primitives from package
// ragged, so they agree bit for bit. Indexed broadcasts are partitioned by
// target item so no two workers write the same item.
//
// Every operator accumulates into r ("r += op(x)"); callers wanting a fresh
// result pass a zero pack.
package kernels
