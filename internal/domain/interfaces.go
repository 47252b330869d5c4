// Package domain declares the interfaces the kiosk front ends and
// services consume, keeping concrete implementations swappable.
package domain

import (
	"context"
	"time"

	"turfkiosk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SlotAPI is the booking server surface the kiosk talks to.
type SlotAPI interface {
	LoadSlots(ctx context.Context, date, facilityID string) (*models.SlotPage, error)
	SubmitBooking(ctx context.Context, selection *models.Slot, facilityID string) (*models.BookingConfirmation, error)
	FacilitySports(ctx context.Context, facilityID string) ([]models.FacilitySport, error)
}

// SessionRepository persists the durable part of a session.
type SessionRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

// FlowManager drives the slot selection and booking flow for the
// front ends.
type FlowManager interface {
	EnsureSession(ctx context.Context, sessionID string) string
	Load(ctx context.Context, sessionID, date, facilityID string) (*models.SlotPage, error)
	Select(ctx context.Context, sessionID, slotID string) (bool, error)
	Submit(ctx context.Context, sessionID string) (*models.BookingConfirmation, error)
	FacilitySports(ctx context.Context, facilityID string) ([]models.FacilitySport, error)
	Snapshot(sessionID string) (models.SlotPage, string)
	Query(sessionID string) (date, facilityID string)
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans domain events out to subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// HistoryRecorder keeps a local trace of confirmed bookings.
type HistoryRecorder interface {
	Record(ctx context.Context, rec models.BookingRecord) error
}

// HistoryArchive reads back and exports the recorded bookings.
type HistoryArchive interface {
	ListByDateRange(ctx context.Context, from, to string) ([]models.BookingRecord, error)
	ExportRange(ctx context.Context, from, to, path string) (int, error)
}

// TelegramSender abstracts the bot API for tests.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
