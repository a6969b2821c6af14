// Package ptens is a toolkit for permutation-equivariant message passing over
// packs of tensors anchored to index subsets of a shared ground set.
//
// What is in the box?
//
//	atoms/      index domains (Atoms) and their flat pack
//	ragged/     variable-extent tensors in one contiguous buffer
//	aindex/     correspondence tables: (target item, row positions) entries
//	kernels/    reduce/broadcast operators behind a Backend interface
//	device/     device tags and the asynchronous accelerator stream
//	session/    explicit context: logger, random source, backends
//	ptensors/   Pack0/Pack1, gradients, linmaps and transfer layers
//	overlap/    correspondences between packs by shared atoms
//	matrix/     dense row-major exchange format
//	store/      badger-backed pack checkpoints
//	cmd/ptens   command line front end
//
// Quick picture: two domains sharing atom 2
//
//	{0,1,2}   {2,3}
//	   ╲       ╱
//	   reduce over the shared atoms, broadcast back onto them
//
// Quick start:
//
//	s, _ := session.New(session.WithDefaultDevice(device.Accel))
//	defer s.Close()
//	a, _ := atoms.FromSlices([][]int{{0, 1, 2}, {2, 3}})
//	x, _ := ptensors.Gaussian(s, a, 16, 1, device.Accel)
//	y, _ := ptensors.Linmaps1(ctx, x, true) // 32 channels
//
// Install:
//
//	go get github.com/katalvlaran/ptens
package ptens
