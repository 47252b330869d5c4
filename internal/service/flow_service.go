package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"turfkiosk/internal/domain"
	"turfkiosk/internal/events"
	"turfkiosk/internal/format"
	"turfkiosk/internal/metrics"
	"turfkiosk/internal/models"
	"turfkiosk/internal/store"
	"turfkiosk/internal/turfzone"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrBookingInFlight guards the one-submission-per-selection
// contract: the previous submit for this session has not finished.
var ErrBookingInFlight = errors.New("booking submission already in flight")

// sessionEntry is the in-memory half of a session: the slot store
// plus the last query. The durable half lives in the repository.
type sessionEntry struct {
	id         string
	store      *store.SlotStore
	mu         sync.Mutex
	date       string
	facilityID string
	submitting atomic.Bool
	lastSeen   atomic.Int64
}

func (e *sessionEntry) query() (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.date, e.facilityID
}

func (e *sessionEntry) setQuery(date, facilityID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.date = date
	e.facilityID = facilityID
}

func (e *sessionEntry) touch() {
	e.lastSeen.Store(time.Now().UnixNano())
}

// SessionInfo is a session snapshot for the refresh worker.
type SessionInfo struct {
	ID         string
	Date       string
	FacilityID string
}

// FlowService drives the slot selection and booking flow: load →
// store → select → submit → reload. One instance serves all sessions.
type FlowService struct {
	api      domain.SlotAPI
	repo     domain.SessionRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewFlowService(api domain.SlotAPI, repo domain.SessionRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *FlowService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FlowService{
		api:      api,
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		sessions: make(map[string]*sessionEntry),
	}
}

// EnsureSession returns the session id, allocating one when empty,
// and restores the last query from the repository for sessions that
// survived a restart.
func (s *FlowService) EnsureSession(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.entry(ctx, sessionID)
	return sessionID
}

func (s *FlowService) entry(ctx context.Context, sessionID string) *sessionEntry {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		e.touch()
		return e
	}

	s.mu.Lock()
	if e, ok = s.sessions[sessionID]; ok {
		s.mu.Unlock()
		e.touch()
		return e
	}
	e = &sessionEntry{id: sessionID, store: store.New()}
	s.sessions[sessionID] = e
	s.mu.Unlock()
	e.touch()

	if s.repo != nil {
		if st, err := s.repo.GetState(ctx, sessionID); err != nil {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to restore session state")
		} else if st != nil {
			e.setQuery(st.Date, st.FacilityID)
		}
	}
	return e
}

// Load fetches slots for a date/facility and replaces the session's
// store contents. Missing date or facility is a no-op, not an error.
// On any load error the store is left untouched. Concurrent loads are
// not cancelled; the last response to arrive wins.
func (s *FlowService) Load(ctx context.Context, sessionID, date, facilityID string) (*models.SlotPage, error) {
	e := s.entry(ctx, sessionID)

	started := time.Now()
	page, err := s.api.LoadSlots(ctx, date, facilityID)
	if err != nil {
		metrics.IncSlotLoad("error")
		s.logger.Error().Err(err).
			Str("session_id", sessionID).
			Str("date", date).
			Str("facility_id", facilityID).
			Msg("slot load failed")
		s.publish(events.EventSlotLoadFailed, events.SlotsEventPayload{
			SessionID:  sessionID,
			Date:       date,
			FacilityID: facilityID,
			Error:      err.Error(),
		})
		return nil, err
	}
	if page == nil {
		metrics.IncSlotLoad("noop")
		return nil, nil
	}
	metrics.IncSlotLoad("ok")
	metrics.ObserveSlotLoad(time.Since(started).Seconds())

	e.store.Replace(page.Slots, page.Offers)
	e.setQuery(date, facilityID)
	s.persist(ctx, e)

	s.publish(events.EventSlotsLoaded, events.SlotsEventPayload{
		SessionID:  sessionID,
		Date:       date,
		FacilityID: facilityID,
		SlotCount:  len(page.Slots),
		OfferCount: len(page.Offers),
	})
	return page, nil
}

// Select toggles the selection for a slot id within the session.
func (s *FlowService) Select(ctx context.Context, sessionID, slotID string) (bool, error) {
	e := s.entry(ctx, sessionID)
	ok := e.store.Select(slotID)
	if ok {
		s.persist(ctx, e)
	}
	return ok, nil
}

// Submit posts the current selection to the booking endpoint. On
// success the selection is cleared and the slot list reloaded; on
// rejection the selection is preserved so the user can retry.
func (s *FlowService) Submit(ctx context.Context, sessionID string) (*models.BookingConfirmation, error) {
	e := s.entry(ctx, sessionID)

	selection := e.store.Selection()
	if selection == nil {
		return nil, turfzone.ErrNoSelection
	}
	if !e.submitting.CompareAndSwap(false, true) {
		return nil, ErrBookingInFlight
	}
	defer e.submitting.Store(false)

	date, facilityID := e.query()
	s.publish(events.EventBookingSubmitted, events.BookingEventPayload{
		SessionID:   sessionID,
		SlotID:      selection.ID,
		FacilityID:  facilityID,
		SportName:   selection.SportName,
		DisplayTime: format.DisplayTime(*selection),
		Date:        date,
		Price:       format.CurrentPrice(*selection),
	})

	confirmation, err := s.api.SubmitBooking(ctx, selection, facilityID)
	if err != nil {
		metrics.IncBooking("error")
		s.logger.Warn().Err(err).
			Str("session_id", sessionID).
			Str("slot_id", selection.ID).
			Msg("booking failed")
		s.publish(events.EventBookingFailed, events.BookingEventPayload{
			SessionID:  sessionID,
			SlotID:     selection.ID,
			FacilityID: facilityID,
			Date:       date,
			Message:    err.Error(),
		})
		return nil, err
	}

	metrics.IncBooking("ok")
	e.store.ClearSelection()
	s.persist(ctx, e)

	s.publish(events.EventBookingConfirmed, events.BookingEventPayload{
		SessionID:   sessionID,
		SlotID:      selection.ID,
		FacilityID:  facilityID,
		SportName:   selection.SportName,
		DisplayTime: format.DisplayTime(*selection),
		Date:        date,
		Price:       format.CurrentPrice(*selection),
		BookingID:   confirmation.BookingID,
		Message:     confirmation.Message,
	})

	// Refresh availability for the same query; a failure here is not
	// a booking failure.
	if _, err := s.Load(ctx, sessionID, date, facilityID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("post-booking reload failed")
	}

	return confirmation, nil
}

// FacilitySports proxies the facility's sport list for front ends
// that build their own pickers.
func (s *FlowService) FacilitySports(ctx context.Context, facilityID string) ([]models.FacilitySport, error) {
	return s.api.FacilitySports(ctx, facilityID)
}

// Snapshot returns a copy of the session's current slots/offers and
// the selected slot id, for rendering.
func (s *FlowService) Snapshot(sessionID string) (models.SlotPage, string) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return models.SlotPage{}, ""
	}

	page := models.SlotPage{Slots: e.store.Slots(), Offers: e.store.Offers()}
	selectedID := ""
	if sel := e.store.Selection(); sel != nil {
		selectedID = sel.ID
	}
	return page, selectedID
}

// Query returns the session's last date/facility pair.
func (s *FlowService) Query(sessionID string) (string, string) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return "", ""
	}
	return e.query()
}

// CheckRateLimit delegates to the session repository.
func (s *FlowService) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if s.repo == nil {
		return true, nil
	}
	return s.repo.CheckRateLimit(ctx, sessionID, limit, window)
}

// ActiveSessions lists sessions touched within maxIdle that have a
// complete query, for the background refresher.
func (s *FlowService) ActiveSessions(maxIdle time.Duration) []SessionInfo {
	cutoff := time.Now().Add(-maxIdle).UnixNano()

	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, e := range s.sessions {
		if e.lastSeen.Load() < cutoff {
			continue
		}
		date, facilityID := e.query()
		if date == "" || facilityID == "" {
			continue
		}
		infos = append(infos, SessionInfo{ID: e.id, Date: date, FacilityID: facilityID})
	}
	return infos
}

func (s *FlowService) persist(ctx context.Context, e *sessionEntry) {
	if s.repo == nil {
		return
	}

	date, facilityID := e.query()
	state := &models.SessionState{
		SessionID:  e.id,
		Date:       date,
		FacilityID: facilityID,
		UpdatedAt:  time.Now(),
	}
	if sel := e.store.Selection(); sel != nil {
		state.SelectedSlotID = sel.ID
	}

	if err := s.repo.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Str("session_id", e.id).Msg("failed to persist session state")
	}
}

func (s *FlowService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
