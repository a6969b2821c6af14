// Package atoms provides the index-domain bookkeeping for tensor packs.
//
// An Atoms value is an ordered list of ground-set indices (graph nodes, for
// example) that defines the local coordinate frame of one packed tensor: row a
// of an order-1 tensor lives on atom Atoms[a]. A Pack is the ordered collection
// of the index domains of every item of one tensor pack, stored flat:
//
//	data: [0 1 2 3 | 4 5 6 | 1 4]
//	offs: [0, 4, 7, 9]
//
// so that SizeOf, TotalSize and item lookup are O(1) and appending or
// concatenating never re-allocates per item.
//
// Operations:
//
//	Append(a)        O(|a|) amortized
//	Cat(packs...)    O(total domain size), items kept distinct (no merging)
//	Permute(pi)      O(total domain size), item i moves to position pi[i]
//
// Errors are package sentinels (ErrNegativeAtom, ErrOutOfRange,
// ErrBadPermutation); match them with errors.Is.
package atoms
