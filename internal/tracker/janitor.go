package tracker

import (
	"context"
	"time"

	"grindbook/internal/session"

	"github.com/rs/zerolog/log"
)

// StartJanitor sweeps active sessions that have seen no writes for
// idleAfter and pauses them, so a forgotten phone in a pocket does not keep
// the session clock running all night. Disabled when idleAfter is zero.
func (c *Coordinator) StartJanitor(ctx context.Context, interval, idleAfter time.Duration) {
	if idleAfter <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.sweepIdle(ctx, now, idleAfter)
			}
		}
	}()
}

func (c *Coordinator) sweepIdle(ctx context.Context, now time.Time, idleAfter time.Duration) {
	cutoff := now.Add(-idleAfter)
	sessions, err := c.store.ListIdleActiveSessions(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("janitor list idle sessions failed")
		return
	}
	for _, stale := range sessions {
		mu := c.sessionLock(stale.ID)
		mu.Lock()
		s, err := c.store.GetSession(ctx, stale.ID)
		if err != nil {
			mu.Unlock()
			continue
		}
		// re-check under the lock; the player may have just touched it
		if s.Status != session.StatusActive || s.UpdatedAt.After(cutoff) {
			mu.Unlock()
			continue
		}
		if err := s.Pause(c.nowFn()); err != nil {
			mu.Unlock()
			continue
		}
		if err := c.store.UpdateSession(ctx, s); err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("janitor auto-pause failed")
			mu.Unlock()
			continue
		}
		log.Info().Str("session_id", s.ID).Str("player_id", s.PlayerID).Msg("session auto-paused by janitor")
		mu.Unlock()
	}
}
