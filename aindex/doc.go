// Package aindex holds index-correspondence tables.
//
// An entry pairs an item of some pack (Tens) with an ordered list of row
// positions inside that item (Ix). Indexed reductions read exactly those rows
// and indexed broadcasts write exactly those rows, in stored order and without
// deduplication. An empty list is valid and contributes nothing.
//
// Tables are built by a matcher (see package overlap) and are read-only once
// handed to an operator.
package aindex
