// SPDX-License-Identifier: MIT

package ptensors

// companion is an owned, lazily allocated value of type T.
// All allocation goes through ensure.
type companion[T any] struct {
	v *T
}

// ensure returns the value, creating it with mk on first use.
func (c *companion[T]) ensure(mk func() *T) *T {
	if c.v == nil {
		c.v = mk()
	}
	return c.v
}

// get returns the value or nil.
func (c *companion[T]) get() *T { return c.v }

// drop releases the value.
func (c *companion[T]) drop() { c.v = nil }
