// Package session provides the explicit context handle passed to every
// pack-constructing call.
//
// A Session owns the resources shared by the packs built through it: a
// structured logger, a seeded random source for Gaussian fills, the
// accelerator stream, and one execution backend per device. It is created
// with New (functional options) or from a YAML Config, and released with
// Close, which drains the stream.
//
// Sessions are safe for concurrent use; packs are not.
package session
