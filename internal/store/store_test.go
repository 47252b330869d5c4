package store

import (
	"testing"

	"turfkiosk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlots() []models.Slot {
	return []models.Slot{
		{ID: "2025-06-01_1_3", StartTime: "09:00", IsAvailable: true},
		{ID: "2025-06-01_2_3", StartTime: "10:00", IsAvailable: true},
		{ID: "2025-06-01_3_3", StartTime: "13:00", IsBooked: true},
	}
}

func TestSelectToggle(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)

	ok := s.Select("2025-06-01_1_3")
	require.True(t, ok)
	require.NotNil(t, s.Selection())
	assert.Equal(t, "2025-06-01_1_3", s.Selection().ID)

	// Selecting the same slot again toggles back to no selection.
	ok = s.Select("2025-06-01_1_3")
	require.True(t, ok)
	assert.Nil(t, s.Selection())
}

func TestSelectSwitchesSlots(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)

	require.True(t, s.Select("2025-06-01_1_3"))
	require.True(t, s.Select("2025-06-01_2_3"))
	assert.Equal(t, "2025-06-01_2_3", s.Selection().ID)
}

func TestSelectUnavailable(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)

	assert.False(t, s.Select("2025-06-01_3_3"), "booked slot must not be selectable")
	assert.False(t, s.Select("no-such-slot"))
	assert.Nil(t, s.Selection())
}

func TestReplaceClearsStaleSelection(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)
	require.True(t, s.Select("2025-06-01_1_3"))

	// New list no longer contains the selected id.
	s.Replace([]models.Slot{{ID: "2025-06-02_1_3", StartTime: "09:00", IsAvailable: true}}, nil)
	assert.Nil(t, s.Selection())
}

func TestReplaceKeepsLiveSelection(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)
	require.True(t, s.Select("2025-06-02_1_3") == false)
	require.True(t, s.Select("2025-06-01_2_3"))

	s.Replace(testSlots(), nil)
	require.NotNil(t, s.Selection())
	assert.Equal(t, "2025-06-01_2_3", s.Selection().ID)
}

func TestReplaceSwapsOffers(t *testing.T) {
	s := New()
	s.Replace(nil, []models.Offer{{Title: "Early Bird", DiscountPercentage: 15}})
	require.Len(t, s.Offers(), 1)

	s.Replace(nil, nil)
	assert.Empty(t, s.Offers())
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New()
	s.Replace(testSlots(), nil)

	slots := s.Slots()
	slots[0].ID = "mutated"
	assert.Equal(t, "2025-06-01_1_3", s.Slots()[0].ID)

	require.True(t, s.Select("2025-06-01_1_3"))
	sel := s.Selection()
	sel.ID = "mutated"
	assert.Equal(t, "2025-06-01_1_3", s.Selection().ID)
}
