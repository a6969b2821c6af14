// SPDX-License-Identifier: MIT

package kernels

import (
	"context"
	"time"

	"github.com/katalvlaran/ptens/device"
)

// Host runs every operator synchronously on the calling goroutine.
type Host struct {
	engine
}

var _ Backend = (*Host)(nil)

// NewHost returns the sequential host backend.
func NewHost() *Host {
	h := &Host{}
	h.engine = engine{name: "host", dev: device.Host, run: h.exec}

	return h
}

// Sync is a no-op: host operators complete before returning.
func (h *Host) Sync() error { return nil }

func (h *Host) exec(ctx context.Context, op string, n int, body func(i int)) error {
	start := time.Now()
	for i := 0; i < n; i++ {
		body(i)
	}
	recordLaunch(ctx, h.name, op, n, time.Since(start))

	return nil
}
