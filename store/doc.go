// Package store checkpoints tensor packs in an embedded badger database.
//
// Packs are stored under "pack1/<name>" in the binary format of
// ptensors.Pack1.MarshalBinary. Gradients are not stored.
package store
