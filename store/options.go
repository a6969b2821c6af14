// SPDX-License-Identifier: MIT

package store

import (
	"log/slog"
)

// Option configures Open.
type Option func(*options)

type options struct {
	syncWrites bool
	inMemory   bool
	logger     *slog.Logger
}

// Defaults: synchronous writes on, on-disk, badger logging off.
func defaultOptions() options {
	return options{syncWrites: true}
}

// WithSyncWrites toggles fsync on every commit.
func WithSyncWrites(on bool) Option {
	return func(o *options) { o.syncWrites = on }
}

// WithInMemory keeps the database in memory; the path is ignored.
func WithInMemory() Option {
	return func(o *options) { o.inMemory = true }
}

// WithLogger routes badger's internal logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
