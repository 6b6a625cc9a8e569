// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
)

// ReadingRepository defines the persistence operations for readings.
// Readings are append-only: there is no update or delete.
type ReadingRepository interface {
	InsertReading(ctx context.Context, temperature, latitude, longitude float64) error
	ListReadings(ctx context.Context) ([]models.Reading, error)
	Ping(ctx context.Context) error
}

// ReadingMirror receives a copy of every stored reading
type ReadingMirror interface {
	MirrorReading(ctx context.Context, reading models.Reading) error
	Close()
}

// PollLock is a cross-replica mutual exclusion for poll cycles
type PollLock interface {
	// Acquire reports whether the lock was taken; release must be called when it was
	Acquire(ctx context.Context, ttl time.Duration) (acquired bool, release func(), err error)
}
