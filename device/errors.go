// SPDX-License-Identifier: MIT

package device

import "errors"

var (
	// ErrUnknownDevice is returned by Parse for an unrecognized device name.
	ErrUnknownDevice = errors.New("device: unknown device")

	// ErrStreamClosed is returned when work is enqueued on a closed stream.
	ErrStreamClosed = errors.New("device: stream closed")
)
