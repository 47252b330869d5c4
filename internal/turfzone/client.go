// Package turfzone is the HTTP client for the TurfZone booking
// server: the slot query, the booking submission and the
// facility-sports lookup. It owns no state; callers apply results to
// their stores.
package turfzone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"turfkiosk/internal/models"

	"github.com/rs/zerolog"
)

const (
	slotsPath          = "/bookings/get-slots/"
	bookPath           = "/bookings/api/book/"
	facilitySportsPath = "/facilities/admin/facility/%s/sports/"

	defaultTimeout = 15 * time.Second
)

// CSRFTokenSource supplies the token the booking endpoint requires.
// The kiosk reads it from configuration; a browser build would read
// the page cookie.
type CSRFTokenSource interface {
	Token() string
}

// StaticToken is a fixed CSRF token value.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	baseURL string
	http    *http.Client
	csrf    CSRFTokenSource
	logger  *zerolog.Logger
}

func NewClient(baseURL string, csrf CSRFTokenSource, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		csrf:    csrf,
		logger:  logger,
	}
}

// SetTimeout overrides the default HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// LoadSlots fetches the slots and offers for a date/facility pair.
// Missing date or facility makes the call a no-op: it resolves to
// (nil, nil) without issuing a request. A superseding call does not
// cancel an in-flight one; the caller applies whichever response
// arrives last.
func (c *Client) LoadSlots(ctx context.Context, date, facilityID string) (*models.SlotPage, error) {
	if date == "" || facilityID == "" {
		c.logger.Debug().Str("date", date).Str("facility_id", facilityID).Msg("slot query skipped: missing parameters")
		return nil, nil
	}

	q := url.Values{}
	q.Set("date", date)
	q.Set("facility_id", facilityID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+slotsPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build slot request: %w", err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Status: resp.StatusCode}
	}

	var payload struct {
		Error  string          `json:"error"`
		Slots  json.RawMessage `json:"slots"`
		Offers []models.Offer  `json:"offers"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Error != "" {
		return nil, &ServerError{Message: payload.Error}
	}

	slots, err := decodeSlots(payload.Slots)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("date", date).
		Str("facility_id", facilityID).
		Int("slots", len(slots)).
		Int("offers", len(payload.Offers)).
		Msg("slots loaded")

	return &models.SlotPage{Slots: slots, Offers: payload.Offers}, nil
}

// decodeSlots enforces that the slots field is an ordered sequence.
func decodeSlots(raw json.RawMessage) ([]models.Slot, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: slots is not an array", ErrMalformedResponse)
	}
	var slots []models.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return slots, nil
}

// SubmitBooking posts the selected slot to the booking endpoint.
// A nil selection fails fast with ErrNoSelection before any network
// I/O. A rejected booking surfaces as *BookingError; the caller must
// keep the selection so the user can retry.
func (c *Client) SubmitBooking(ctx context.Context, selection *models.Slot, facilityID string) (*models.BookingConfirmation, error) {
	if selection == nil {
		return nil, ErrNoSelection
	}

	reqBody, err := json.Marshal(map[string]string{
		"slot_id":     selection.ID,
		"facility_id": facilityID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode booking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+bookPath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.csrf != nil {
		req.Header.Set("X-CSRFToken", c.csrf.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: err}
	}

	// The booking endpoint reports rejections in the body, on 2xx and
	// 4xx alike.
	if msg := errorMessage(body); msg != "" {
		return nil, &BookingError{Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Status: resp.StatusCode}
	}

	var confirmation models.BookingConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.logger.Info().
		Str("slot_id", selection.ID).
		Str("facility_id", facilityID).
		Int64("booking_id", confirmation.BookingID).
		Msg("booking confirmed")

	return &confirmation, nil
}

// FacilitySports fetches the sports offered at a facility for the
// selection dropdowns.
func (c *Client) FacilitySports(ctx context.Context, facilityID string) ([]models.FacilitySport, error) {
	if facilityID == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fmt.Sprintf(facilitySportsPath, url.PathEscape(facilityID)), nil)
	if err != nil {
		return nil, fmt.Errorf("build facility sports request: %w", err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Status: resp.StatusCode}
	}

	var payload struct {
		Error  string                 `json:"error"`
		Sports []models.FacilitySport `json:"sports"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Error != "" {
		return nil, &ServerError{Message: payload.Error}
	}
	return payload.Sports, nil
}

// errorMessage extracts the application error from a response body,
// covering both {"error": ...} and {"status": "error", "message": ...}
// shapes the server uses.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Status == "error" {
		if payload.Message != "" {
			return payload.Message
		}
		return "booking rejected"
	}
	return ""
}
