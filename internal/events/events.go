package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSlotsLoaded      = "slots_loaded"
	EventSlotLoadFailed   = "slot_load_failed"
	EventBookingSubmitted = "booking_submitted"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingFailed    = "booking_failed"
)

// SlotsEventPayload describes the outcome of one slot load.
type SlotsEventPayload struct {
	SessionID  string `json:"session_id"`
	Date       string `json:"date"`
	FacilityID string `json:"facility_id"`
	SlotCount  int    `json:"slot_count,omitempty"`
	OfferCount int    `json:"offer_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BookingEventPayload is the minimal booking snapshot for event
// consumers.
type BookingEventPayload struct {
	SessionID   string  `json:"session_id"`
	SlotID      string  `json:"slot_id"`
	FacilityID  string  `json:"facility_id"`
	SportName   string  `json:"sport_name,omitempty"`
	DisplayTime string  `json:"display_time,omitempty"`
	Date        string  `json:"date,omitempty"`
	Price       float64 `json:"price,omitempty"`
	BookingID   int64   `json:"booking_id,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
