package engine

import (
	"context"
	"time"
)

// pauser abstracts how the engine waits between requests so tests run fast.
type pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauser struct{}

func (timerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type noopPauser struct{}

func (noopPauser) Pause(context.Context, time.Duration) {}
