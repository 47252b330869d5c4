package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"turfkiosk/internal/config"
	"turfkiosk/internal/models"
	"turfkiosk/internal/service"
	"turfkiosk/internal/turfzone"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeSender) GetSelf() tgbotapi.User { return tgbotapi.User{UserName: "turfkiosk_bot"} }

func (f *fakeSender) StopReceivingUpdates() {}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg
}

type fakeFlow struct {
	page       models.SlotPage
	selectedID string
	date       string
	facilityID string
	selectOK   bool
	submitErr  error
	loadErr    error
}

func (f *fakeFlow) EnsureSession(ctx context.Context, id string) string { return id }

func (f *fakeFlow) Load(ctx context.Context, sessionID, date, facilityID string) (*models.SlotPage, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.date = date
	f.facilityID = facilityID
	return &f.page, nil
}

func (f *fakeFlow) Select(ctx context.Context, sessionID, slotID string) (bool, error) {
	if f.selectOK {
		f.selectedID = slotID
	}
	return f.selectOK, nil
}

func (f *fakeFlow) Submit(ctx context.Context, sessionID string) (*models.BookingConfirmation, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.selectedID = ""
	return &models.BookingConfirmation{Status: "success", Message: "Booking confirmed!", BookingID: 7}, nil
}

func (f *fakeFlow) FacilitySports(ctx context.Context, facilityID string) ([]models.FacilitySport, error) {
	return nil, nil
}

func (f *fakeFlow) Snapshot(sessionID string) (models.SlotPage, string) {
	return f.page, f.selectedID
}

func (f *fakeFlow) Query(sessionID string) (string, string) { return f.date, f.facilityID }

func (f *fakeFlow) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Facilities: []models.Facility{{ID: "3", Name: "Main Turf"}},
		Sessions:   config.SessionsConfig{RateLimitRequests: 30, RateLimitWindowSeconds: 60},
	}
}

func availableSlot() models.Slot {
	return models.Slot{
		ID:                 "2025-06-01_1_3",
		StartTime:          "10:00",
		EndTime:            "11:00",
		SportName:          "Football",
		BasePrice:          500,
		DiscountPercentage: 20,
		DiscountedPrice:    400,
		IsAvailable:        true,
	}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "tg:42", sessionID(42))
}

func TestRenderBoardText(t *testing.T) {
	page := models.SlotPage{
		Slots: []models.Slot{
			availableSlot(),
			{ID: "2025-06-01_2_3", StartTime: "13:00", EndTime: "14:00", SportName: "Football", BasePrice: 500, IsBooked: true},
		},
		Offers: []models.Offer{{Title: "Summer Special", DiscountPercentage: 20}},
	}

	text, keyboard := renderBoard(page, "", "2025-06-01")

	assert.Contains(t, text, "Slots for 2025-06-01")
	assert.Contains(t, text, "Morning (6 AM - 12 PM)")
	assert.Contains(t, text, "Afternoon (12 PM - 5 PM)")
	assert.Contains(t, text, "₹400.00")
	assert.Contains(t, text, "20% OFF")
	assert.Contains(t, text, "🔒")
	assert.Contains(t, text, "Summer Special - 20% off")

	require.NotNil(t, keyboard)
	// One bookable slot plus the navigation row.
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "slot:2025-06-01_1_3", *keyboard.InlineKeyboard[0][0].CallbackData)
}

func TestRenderBoardEmpty(t *testing.T) {
	text, keyboard := renderBoard(models.SlotPage{}, "", "2025-06-01")
	assert.Contains(t, text, "No slots available for this date")
	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 1)
}

func TestRenderBoardSelectedMarker(t *testing.T) {
	page := models.SlotPage{Slots: []models.Slot{availableSlot()}}
	text, keyboard := renderBoard(page, "2025-06-01_1_3", "2025-06-01")

	assert.Contains(t, text, "👉")
	// Selected slot gets no select button.
	require.Len(t, keyboard.InlineKeyboard, 1)
}

func TestFacilityCallbackAsksForDate(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "facility:3"))

	msg := sender.lastMessage(t)
	assert.Contains(t, msg.Text, "YYYY-MM-DD")
	v, ok := b.pendingFacility.Load(int64(42))
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestDateMessageLoadsBoard(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{page: models.SlotPage{Slots: []models.Slot{availableSlot()}}}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "facility:3"))
	b.processUpdate(context.Background(), messageUpdate(42, "2025-06-01"))

	assert.Equal(t, "2025-06-01", flow.date)
	assert.Equal(t, "3", flow.facilityID)

	msg := sender.lastMessage(t)
	assert.Contains(t, msg.Text, "Morning (6 AM - 12 PM)")
}

func TestInvalidDateRejected(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "facility:3"))
	b.processUpdate(context.Background(), messageUpdate(42, "01.06.2025"))

	msg := sender.lastMessage(t)
	assert.Contains(t, msg.Text, "YYYY-MM-DD")
	// Facility choice survives a bad date.
	_, ok := b.pendingFacility.Load(int64(42))
	assert.True(t, ok)
}

func TestSlotCallbackShowsConfirmation(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{page: models.SlotPage{Slots: []models.Slot{availableSlot()}}, selectOK: true}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "slot:2025-06-01_1_3"))

	msg := sender.lastMessage(t)
	assert.Contains(t, msg.Text, "Confirm booking?")
	assert.Contains(t, msg.Text, "₹400.00")
}

func TestSlotCallbackUnavailable(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{selectOK: false}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "slot:2025-06-01_1_3"))

	require.NotEmpty(t, sender.sent)
	first, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, first.Text, "no longer available")
}

func TestBookCallbackConfirms(t *testing.T) {
	sender := &fakeSender{}
	flow := &fakeFlow{page: models.SlotPage{Slots: []models.Slot{availableSlot()}}, selectOK: true, selectedID: "2025-06-01_1_3"}
	b := NewBot(sender, testConfig(), flow, nil)

	b.processUpdate(context.Background(), callbackUpdate(42, "book"))

	require.NotEmpty(t, sender.sent)
	first, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, first.Text, "Booking confirmed!")
	assert.Contains(t, first.Text, "Booking #7")
}

func TestBookCallbackErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no selection", turfzone.ErrNoSelection, "Select a slot first."},
		{"in flight", service.ErrBookingInFlight, "already being processed"},
		{"rejected", &turfzone.BookingError{Message: "This slot is no longer available."}, "This slot is no longer available."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			flow := &fakeFlow{submitErr: tt.err}
			b := NewBot(sender, testConfig(), flow, nil)

			b.processUpdate(context.Background(), callbackUpdate(42, "book"))

			msg := sender.lastMessage(t)
			assert.Contains(t, msg.Text, tt.want)
		})
	}
}

func TestStartCommandSendsFacilityMenu(t *testing.T) {
	sender := &fakeSender{}
	b := NewBot(sender, testConfig(), &fakeFlow{}, nil)

	b.processUpdate(context.Background(), messageUpdate(42, "/start"))

	msg := sender.lastMessage(t)
	assert.Contains(t, msg.Text, "Choose a facility")
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "Main Turf", markup.InlineKeyboard[0][0].Text)
}
