// SPDX-License-Identifier: MIT

// Package kernels - batched backend.
//
// One operator call == one stream task. The task splits [0, n) into chunks
// and runs them through an errgroup limited to the configured worker count.
// Below parallelThreshold items the task runs the chunk loop inline.

package kernels

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/ptens/device"
)

const (
	// parallelThreshold is the minimum item count that fans out to workers.
	parallelThreshold = 64

	// chunksPerWorker controls chunk granularity for load balance.
	chunksPerWorker = 4
)

// Batched enqueues every operator on a device.Stream.
type Batched struct {
	engine
	stream  *device.Stream
	workers int
	logger  *slog.Logger
}

var _ Backend = (*Batched)(nil)

// NewBatched returns the accelerator backend bound to stream.
// workers <= 0 selects GOMAXPROCS. logger may be nil.
func NewBatched(stream *device.Stream, workers int, logger *slog.Logger) (*Batched, error) {
	if stream == nil {
		return nil, kernelsErrorf("NewBatched", ErrNilOperand)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batched{stream: stream, workers: workers, logger: logger}
	b.engine = engine{name: "batched", dev: device.Accel, run: b.exec}

	return b, nil
}

// Workers returns the per-task fan-out limit.
func (b *Batched) Workers() int { return b.workers }

// Stream returns the stream operators are enqueued on.
func (b *Batched) Stream() *device.Stream { return b.stream }

// Sync waits for the stream and returns the first kernel error.
func (b *Batched) Sync() error {
	if err := b.stream.Sync(); err != nil {
		return kernelsErrorf("batched.Sync", err)
	}
	return nil
}

func (b *Batched) exec(ctx context.Context, op string, n int, body func(i int)) error {
	b.logger.Debug("enqueue kernel",
		slog.String("op", op),
		slog.Int("items", n),
		slog.String("stream", b.stream.Name()),
	)
	err := b.stream.Enqueue(op, func(sctx context.Context) error {
		start := time.Now()
		err := b.fanOut(sctx, n, body)
		recordLaunch(ctx, b.name, op, n, time.Since(start))
		return err
	})
	if err != nil {
		return b.fail(op, err)
	}

	return nil
}

// fanOut runs body over [0, n) in chunks on at most b.workers goroutines.
func (b *Batched) fanOut(ctx context.Context, n int, body func(i int)) error {
	if n < parallelThreshold || b.workers == 1 {
		for i := 0; i < n; i++ {
			body(i)
		}
		return nil
	}

	chunk := max(1, (n+b.workers*chunksPerWorker-1)/(b.workers*chunksPerWorker))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("chunk [%d,%d): %v", lo, hi, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				body(i)
			}
			return nil
		})
	}

	return g.Wait()
}
