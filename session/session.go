// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/kernels"
)

// Session is the scoped context handle for building and operating on packs.
type Session struct {
	id      uuid.UUID
	logger  *slog.Logger
	dev     device.Device
	workers int
	stream  *device.Stream
	host    *kernels.Host
	batched *kernels.Batched

	rngMu sync.Mutex
	rng   *rand.Rand

	closed atomic.Bool
}

// New creates a session and starts its stream.
func New(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	logger := o.logger.With(slog.String("session", id.String()))
	stream := device.NewStream("stream-"+id.String()[:8], o.depth, logger)
	batched, err := kernels.NewBatched(stream, o.workers, logger)
	if err != nil {
		_ = stream.Close()
		return nil, sessionErrorf("New", err)
	}
	s := &Session{
		id:      id,
		logger:  logger,
		dev:     o.dev,
		workers: o.workers,
		stream:  stream,
		host:    kernels.NewHost(),
		batched: batched,
		rng:     rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)),
	}
	logger.Debug("session opened",
		slog.String("device", o.dev.String()),
		slog.Int("workers", o.workers),
		slog.Uint64("seed", o.seed),
	)

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// DefaultDevice returns the configured device. Callers that let the
// configuration choose placement, such as the CLI, pass it to pack constructors.
func (s *Session) DefaultDevice() device.Device { return s.dev }

// Workers returns the batched backend fan-out limit.
func (s *Session) Workers() int { return s.workers }

// Stream returns the accelerator stream.
func (s *Session) Stream() *device.Stream { return s.stream }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed.Load() }

// Backend returns the backend that executes operators on d.
func (s *Session) Backend(d device.Device) (kernels.Backend, error) {
	if s.closed.Load() {
		return nil, sessionErrorf("Backend", ErrClosed)
	}
	switch d {
	case device.Host:
		return s.host, nil
	case device.Accel:
		return s.batched, nil
	default:
		return nil, sessionErrorf("Backend", fmt.Errorf("%s: %w", d, device.ErrUnknownDevice))
	}
}

// Sync waits for all work enqueued on the stream.
func (s *Session) Sync() error {
	if err := s.batched.Sync(); err != nil {
		return sessionErrorf("Sync", err)
	}
	return nil
}

// NormFloat64 draws a standard normal sample. Safe for concurrent use.
func (s *Session) NormFloat64() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.NormFloat64()
}

// Close drains and stops the stream. Packs built by the session must not be
// operated on afterwards. Closing twice is a no-op.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.stream.Close()
	s.logger.Debug("session closed")
	if err != nil {
		return sessionErrorf("Close", err)
	}

	return nil
}
