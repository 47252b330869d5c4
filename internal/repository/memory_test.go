package repository

import (
	"context"
	"testing"
	"time"

	"turfkiosk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.SessionState{
			SessionID:      "s-1",
			Date:           "2025-06-01",
			FacilityID:     "3",
			SelectedSlotID: "2025-06-01_1_3",
		}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, "s-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "2025-06-01", got.Date)
		assert.Equal(t, "2025-06-01_1_3", got.SelectedSlotID)
	})

	t.Run("GetMissingState", func(t *testing.T) {
		got, err := repo.GetState(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.SessionState{SessionID: "s-2"}))
		require.NoError(t, repo.ClearState(ctx, "s-2"))

		got, err := repo.GetState(ctx, "s-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := repo.CheckRateLimit(ctx, "s-1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.CheckRateLimit(ctx, "s-1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "fourth request in window must be rejected")

	// A different session has its own window.
	ok, err = repo.CheckRateLimit(ctx, "s-2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
