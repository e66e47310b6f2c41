package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// pageRefresher is the part of the actions layer the refresher drives.
type pageRefresher interface {
	Refresh(ctx context.Context) error
}

// StartRefresher re-fetches the current page every interval while active
// reports true. Failures back off exponentially up to maxBackoff and reset
// after the next success. It returns immediately; the goroutine exits when
// ctx is cancelled.
func StartRefresher(ctx context.Context, target pageRefresher, interval time.Duration, active func() bool, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if active == nil {
		active = func() bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "refresher"))

	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if active() {
				failures = refreshOnce(ctx, target, failures, logger)
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// refreshOnce runs one refresh and returns the updated failure count.
func refreshOnce(ctx context.Context, target pageRefresher, failures int, logger *zap.Logger) int {
	if err := target.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return failures
		}
		failures++
		logger.Warn("page refresh failed", zap.Int("failures", failures), zap.Error(err))
		return failures
	}
	if failures > 0 {
		logger.Info("page refresh recovered", zap.Int("after_failures", failures))
	}
	return 0
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
