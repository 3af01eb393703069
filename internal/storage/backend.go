// Package storage implements the tile storage backends named in spec.md
// §4.1: local file, Ceph RADOS, S3, and OpenStack Swift objects, all behind
// one capability interface so TileSource never needs to know which one it
// is talking to.
package storage

import (
	"context"
	"fmt"
)

// Backend is the capability set every storage variant implements: byte-range
// reads and writes against a named object. A Backend is created once at
// startup and shared across requests/threads (spec.md §5: "Each storage
// backend connection is created once at startup; readers take no lock").
type Backend interface {
	// Read returns exactly length bytes starting at offset within object.
	Read(ctx context.Context, object string, offset, length int64) ([]byte, error)

	// Write stores data at the given offset within object, creating it if
	// necessary. Only used by pyramid-build tooling, never by the read path.
	Write(ctx context.Context, object string, offset int64, data []byte) error

	// Kind identifies the backend for logging/metrics.
	Kind() string
}

// ErrNotFound is returned by Read when the object does not exist. TileSource
// treats this as a missing-tile condition and substitutes a no-data tile
// rather than propagating the error (spec.md §4.1 Failures).
var ErrNotFound = fmt.Errorf("storage: object not found")

// ErrOutOfRange is returned by Read when offset/length fall outside the
// object's actual size.
var ErrOutOfRange = fmt.Errorf("storage: read out of range")
