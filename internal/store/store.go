// Package store keeps the last-fetched slot and offer lists for a
// session together with the current selection.
package store

import (
	"sync"

	"turfkiosk/internal/models"
)

// SlotStore holds one session's view of the schedule. Lists are
// replaced wholesale on every load; the selection is the only entity
// mutated in place.
type SlotStore struct {
	mu       sync.RWMutex
	slots    []models.Slot
	offers   []models.Offer
	selected *models.Slot
}

func New() *SlotStore {
	return &SlotStore{}
}

// Replace atomically swaps both lists. A selection whose slot id no
// longer appears in the new list is discarded.
func (s *SlotStore) Replace(slots []models.Slot, offers []models.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = append([]models.Slot(nil), slots...)
	s.offers = append([]models.Offer(nil), offers...)

	if s.selected == nil {
		return
	}
	for i := range s.slots {
		if s.slots[i].ID == s.selected.ID {
			return
		}
	}
	s.selected = nil
}

// Select toggles the selection for a slot id. Selecting an already
// selected slot deselects it. Returns false, leaving state unchanged,
// when the slot is missing or not available.
func (s *SlotStore) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
		return true
	}

	for i := range s.slots {
		if s.slots[i].ID != id {
			continue
		}
		if !s.slots[i].IsAvailable {
			return false
		}
		slot := s.slots[i]
		s.selected = &slot
		return true
	}
	return false
}

// ClearSelection drops the current selection, if any.
func (s *SlotStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selection returns a copy of the currently selected slot, or nil.
func (s *SlotStore) Selection() *models.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	slot := *s.selected
	return &slot
}

// Slots returns a copy of the current slot list.
func (s *SlotStore) Slots() []models.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Slot(nil), s.slots...)
}

// Offers returns a copy of the current offer list.
func (s *SlotStore) Offers() []models.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Offer(nil), s.offers...)
}
