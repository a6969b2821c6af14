// SPDX-License-Identifier: MIT

// Package device - asynchronous execution stream.
//
// Purpose:
//   - Give the accelerated backend a place to run batched kernels without
//     blocking the caller (enqueue-and-return), with FIFO ordering.
//   - Make synchronization explicit: Sync waits for everything enqueued so far
//     and reports the first kernel error since the previous Sync.
//
// Concurrency:
//   - Enqueue, Sync, Record and Close are safe for concurrent use.
//   - Tasks run one at a time on the stream goroutine; a task may fan out
//     internally (see kernels.Batched).

package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultStreamDepth is the task queue capacity used when depth <= 0.
const DefaultStreamDepth = 64

// Task is one unit of stream work.
type Task func(ctx context.Context) error

type namedTask struct {
	op string
	fn Task
}

// Stream executes enqueued tasks in FIFO order on a background goroutine.
type Stream struct {
	name   string
	logger *slog.Logger
	tasks  chan namedTask

	mu      sync.Mutex
	cond    *sync.Cond
	pending int   // enqueued but not yet finished
	err     error // first failure since the last Sync
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream starts a stream goroutine. depth bounds the number of queued
// tasks; Enqueue blocks (back-pressure) while the queue is full.
func NewStream(name string, depth int, logger *slog.Logger) *Stream {
	if depth <= 0 {
		depth = DefaultStreamDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{
		name:   name,
		logger: logger,
		tasks:  make(chan namedTask, depth),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()

	return s
}

// Name returns the stream label.
func (s *Stream) Name() string { return s.name }

// Enqueue schedules fn and returns without waiting for it to run.
// Returns ErrStreamClosed after Close.
func (s *Stream) Enqueue(op string, fn Task) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("Stream(%s).Enqueue(%s): %w", s.name, op, ErrStreamClosed)
	}
	s.pending++
	s.mu.Unlock()

	// Close waits for pending==0 before closing the channel, so this send
	// cannot race with close(s.tasks).
	s.tasks <- namedTask{op: op, fn: fn}

	return nil
}

// Pending returns the number of tasks enqueued but not finished.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Sync blocks until every task enqueued before the call has finished and
// returns (and clears) the first task error observed since the last Sync.
func (s *Stream) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.cond.Wait()
	}
	err := s.err
	s.err = nil

	return err
}

// Record enqueues a marker and returns an Event that completes when every
// task enqueued before it has run.
func (s *Stream) Record() (*Event, error) {
	ev := &Event{done: make(chan struct{})}
	if err := s.Enqueue("event", func(context.Context) error {
		close(ev.done)
		return nil
	}); err != nil {
		return nil, err
	}

	return ev, nil
}

// Close drains the queue, stops the goroutine and returns any unreported
// task error. Closing twice is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for s.pending > 0 {
		s.cond.Wait()
	}
	err := s.err
	s.err = nil
	s.mu.Unlock()

	close(s.tasks)
	<-s.done
	s.cancel()
	s.logger.Debug("stream closed", slog.String("stream", s.name))

	return err
}

func (s *Stream) loop() {
	defer close(s.done)
	for t := range s.tasks {
		err := s.run(t)
		s.mu.Lock()
		if err != nil && s.err == nil {
			s.err = fmt.Errorf("%s: %w", t.op, err)
		}
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
		s.mu.Unlock()
	}
}

// run executes one task, converting a panic into an error so a faulty kernel
// cannot wedge the stream.
func (s *Stream) run(t namedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in stream task: %v", r)
			s.logger.Error("stream task panicked",
				slog.String("stream", s.name),
				slog.String("op", t.op),
				slog.Any("panic", r),
			)
		}
	}()

	return t.fn(s.ctx)
}

// Event marks a point in a stream's task order.
type Event struct {
	done chan struct{}
}

// Done returns a channel closed when the event has been reached.
func (e *Event) Done() <-chan struct{} { return e.done }

// Wait blocks until the event is reached or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
