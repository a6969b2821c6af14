// SPDX-License-Identifier: MIT

// Package session - functional options.
//
// Defaults are deterministic: a fixed seed, host device, GOMAXPROCS workers,
// and the process default slog logger. WithX constructors panic only on
// nonsensical values (programmer error); Config.Validate guards user input.

package session

import (
	"log/slog"
	"runtime"

	"github.com/katalvlaran/ptens/device"
)

// DefaultSeed seeds the Gaussian source when WithSeed is not given.
const DefaultSeed uint64 = 0x5eed

const (
	panicWorkersInvalid = "session: WithWorkers: n must be >= 0"
	panicDeviceInvalid  = "session: WithDefaultDevice: unknown device"
	panicDepthInvalid   = "session: WithStreamDepth: depth must be >= 0"
)

// Option mutates session options.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	seed    uint64
	workers int
	dev     device.Device
	depth   int
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		seed:    DefaultSeed,
		workers: runtime.GOMAXPROCS(0),
		dev:     device.Host,
		depth:   device.DefaultStreamDepth,
	}
}

// WithLogger sets the session logger. nil keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSeed seeds the Gaussian source.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithWorkers bounds the batched backend fan-out. 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersInvalid)
	}
	return func(o *options) {
		if n == 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithDefaultDevice sets the device reported by DefaultDevice.
func WithDefaultDevice(d device.Device) Option {
	if !d.Valid() {
		panic(panicDeviceInvalid)
	}
	return func(o *options) { o.dev = d }
}

// WithStreamDepth sets the stream queue capacity. 0 selects the default.
func WithStreamDepth(depth int) Option {
	if depth < 0 {
		panic(panicDepthInvalid)
	}
	return func(o *options) { o.depth = depth }
}
