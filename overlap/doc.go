// Package overlap builds paired index-correspondence tables between two
// domain packs by atom intersection.
//
// For every (source item i, target item j) whose domains share at least
// MinOverlap atoms, Match emits one entry: Src lists the positions of the
// shared atoms inside source item i, Dst lists the positions of the same atoms
// (same order) inside target item j. Heads lists row 0 of target item j, for
// routing into order-0 targets.
//
// Entries are ordered by target item, then source item, so the result is
// deterministic.
package overlap
