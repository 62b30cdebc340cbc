package acquire

import (
	"context"
	"time"
)

// Clock abstracts time for the polling and backoff loops so tests can
// simulate elapsed time without real delays.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// SystemClock returns the real wall-clock implementation.
func SystemClock() Clock { return systemClock{} }
