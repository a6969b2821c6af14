// Package device names the memory spaces a tensor pack can live in and
// provides the asynchronous execution stream used by the accelerated backend.
//
// A Device is a tag: Host data is read and written directly by the calling
// goroutine; Accel data belongs to the accelerator memory space and is only
// touched by work enqueued on a Stream. A Stream is a FIFO of tasks executed
// by one background goroutine, so tasks enqueued in order observe each other's
// writes in order. Enqueue returns immediately; Sync and Event.Wait are the
// only points where a caller blocks.
package device
