package shop

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps so store behavior is reproducible in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator supplies record identifiers.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (v4) UUIDs, so two records created within
// the same clock tick never collide.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
