// Package ptensors implements permutation-equivariant tensor packs.
//
// A Pack1 is a ragged collection of order-1 tensors: item i is a k_i×C block
// whose rows are indexed by the atoms of domain i and whose columns are
// channels. A Pack0 holds one length-C vector per domain. Both are built
// through a *session.Session, which supplies the logger, the random source for
// Gaussian fills and the execution backend for the pack's device.
//
// Operators:
//   - Reduce0 / Reduce0N sum / average each item over its atoms.
//   - Reduce1 copies (a channel range of) each item.
//   - Broadcast0 / Broadcast0N / Broadcast1 are their adjoints and add into
//     the receiver at a channel offset.
//   - Indexed variants take an *aindex.Pack and touch only the listed rows of
//     the listed items; entries with empty lists contribute nothing.
//   - Linmaps and Transfer compose these into equivariant layers, each with a
//     Back routine accumulating into the input's gradient.
//
// On the accelerator device operators return as soon as the work is enqueued;
// every method that reads data on the host (ToMatrix, Inp, ToDevice, String,
// MarshalBinary, ...) synchronizes the session stream first.
//
// Gradients live in a lazily allocated companion pack of identical shape.
// Grad allocates it on first use; AddToGrad accumulates. Packs, including
// their gradients, are not safe for concurrent mutation.
package ptensors
