package render

import (
	"context"
	"time"
)

// Clock abstracts waiting between poll iterations so the state machine can be
// tested without real wall-clock delay.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock returns a Clock backed by the wall clock.
func RealClock() Clock {
	return realClock{}
}
