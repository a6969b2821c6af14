// Package matrix provides the dense row-major matrix used to exchange pack
// data with external code.
//
// An order-1 pack over domains with total size R and C channels converts to an
// R×C Dense whose rows are the atoms of item 0, then item 1, and so on. The
// package also carries the small set of dense routines the pack layer and its
// tests rely on: addition, column sums and tolerance comparison.
//
// Public methods return sentinel errors (see errors.go) instead of panicking.
package matrix
