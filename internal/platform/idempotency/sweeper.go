package idempotency

import (
	"context"
	"time"
)

// SweepEvery removes expired entries from s every interval until ctx is done.
// onSweep, if set, is told how many entries each pass removed and any error.
func SweepEvery(ctx context.Context, s Sweeper, interval time.Duration, batch int, onSweep func(removed int, err error)) {
	if s == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, interval)
			removed, err := s.Sweep(passCtx, now.UTC(), batch)
			cancel()
			if onSweep != nil && (removed > 0 || err != nil) {
				onSweep(removed, err)
			}
		}
	}
}
