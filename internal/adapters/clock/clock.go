package clock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"communityhub/internal/domain"
)

type systemClock struct{}

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() domain.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator producing "<prefix>-<uuid v4>".
func NewUUIDGenerator() domain.IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
