package worker

import (
	"context"
	"time"

	"turfkiosk/internal/models"
	"turfkiosk/internal/service"

	"github.com/rs/zerolog"
)

// RefreshFlow is the slice of the flow service the refresher drives.
// *service.FlowService satisfies it.
type RefreshFlow interface {
	ActiveSessions(maxIdle time.Duration) []service.SessionInfo
	Load(ctx context.Context, sessionID, date, facilityID string) (*models.SlotPage, error)
}

// Refresher periodically re-runs each active session's last slot
// query so boards stay current while a user is deciding. It goes
// through the same Load path the front ends use and shares no state
// with them.
type Refresher struct {
	flow     RefreshFlow
	interval time.Duration
	maxIdle  time.Duration
	retry    RetryPolicy
	logger   *zerolog.Logger
}

func NewRefresher(flow RefreshFlow, interval, maxIdle time.Duration, retry RetryPolicy, logger *zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = 30 * time.Minute
	}
	retry = retry.normalized()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Refresher{
		flow:     flow,
		interval: interval,
		maxIdle:  maxIdle,
		retry:    retry,
		logger:   logger,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("slot refresher started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("slot refresher stopped")
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

func (r *Refresher) refreshAll(ctx context.Context) {
	for _, info := range r.flow.ActiveSessions(r.maxIdle) {
		r.refreshOne(ctx, info)
	}
}

func (r *Refresher) refreshOne(ctx context.Context, info service.SessionInfo) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		_, err := r.flow.Load(ctx, info.ID, info.Date, info.FacilityID)
		if err == nil {
			return
		}
		lastErr = err

		// No point sleeping after the last attempt.
		if attempt >= r.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry.NextDelay(attempt)):
		}
	}
	r.logger.Warn().Err(lastErr).
		Str("session_id", info.ID).
		Str("date", info.Date).
		Msg("session refresh gave up")
}
