package repository

import (
	"context"
	"sync"
	"time"

	"turfkiosk/internal/models"
)

// MemorySessionRepository keeps session state in process memory. It
// backs single-instance deployments and serves as the failover target
// when Redis is down.
type MemorySessionRepository struct {
	states     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
	}
}

func (r *MemorySessionRepository) GetState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	return val.(*models.SessionState), nil
}

func (r *MemorySessionRepository) SetState(ctx context.Context, state *models.SessionState) error {
	r.states.Store(state.SessionID, state)
	return nil
}

func (r *MemorySessionRepository) ClearState(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(sessionID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(sessionID, entry)
	return entry.count <= limit, nil
}
