// SPDX-License-Identifier: MIT

package device

import (
	"fmt"
	"strings"
)

// Device identifies the memory space of a buffer.
type Device uint8

const (
	// Host is ordinary process memory, accessed synchronously.
	Host Device = iota

	// Accel is accelerator memory, accessed only through a Stream.
	Accel
)

// String returns "host" or "accel".
func (d Device) String() string {
	switch d {
	case Host:
		return "host"
	case Accel:
		return "accel"
	default:
		return fmt.Sprintf("device(%d)", uint8(d))
	}
}

// Valid reports whether d is a known device.
func (d Device) Valid() bool { return d == Host || d == Accel }

// Parse maps a device name to a Device. Accepted names (case-insensitive):
// "host", "cpu", "0" for Host and "accel", "gpu", "1" for Accel.
func Parse(name string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "host", "cpu", "0", "":
		return Host, nil
	case "accel", "gpu", "cuda", "1":
		return Accel, nil
	default:
		return Host, fmt.Errorf("Parse(%q): %w", name, ErrUnknownDevice)
	}
}
