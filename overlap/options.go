// SPDX-License-Identifier: MIT

package overlap

// DefaultMinOverlap is the least number of shared atoms that creates an entry.
const DefaultMinOverlap = 1

const panicMinOverlapInvalid = "overlap: WithMinOverlap: k must be >= 1"

// Option configures Match.
type Option func(*options)

type options struct {
	minOverlap int
	skipSelf   bool
}

func gatherOptions(opts []Option) options {
	o := options{minOverlap: DefaultMinOverlap}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMinOverlap requires at least k shared atoms per entry. Panics for k < 1.
func WithMinOverlap(k int) Option {
	if k < 1 {
		panic(panicMinOverlapInvalid)
	}
	return func(o *options) { o.minOverlap = k }
}

// WithoutSelf drops pairs with equal source and target item index; used when
// matching a pack against itself.
func WithoutSelf() Option {
	return func(o *options) { o.skipSelf = true }
}
