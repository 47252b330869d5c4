package turfzone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"turfkiosk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSlotsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/get-slots/", r.URL.Path)
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("date"))
		assert.Equal(t, "3", r.URL.Query().Get("facility_id"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"slots": [
				{"id": "2025-06-01_1_3", "start_time": "09:00", "end_time": "10:00", "sport_name": "Football", "base_price": 500, "discount_percentage": 20, "is_available": true}
			],
			"offers": [{"title": "Early Bird", "discount_percentage": 20}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	page, err := c.LoadSlots(context.Background(), "2025-06-01", "3")
	require.NoError(t, err)
	require.NotNil(t, page)
	require.Len(t, page.Slots, 1)
	assert.Equal(t, "2025-06-01_1_3", page.Slots[0].ID)
	assert.True(t, page.Slots[0].IsAvailable)
	require.Len(t, page.Offers, 1)
	assert.Equal(t, "Early Bird", page.Offers[0].Title)
}

func TestLoadSlotsMissingParamsIsNoOp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)

	page, err := c.LoadSlots(context.Background(), "", "3")
	assert.NoError(t, err)
	assert.Nil(t, page)

	page, err = c.LoadSlots(context.Background(), "2025-06-01", "")
	assert.NoError(t, err)
	assert.Nil(t, page)

	assert.Equal(t, int32(0), calls.Load(), "no-op must not issue a request")
}

func TestLoadSlotsHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.LoadSlots(context.Background(), "2025-06-01", "3")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
}

func TestLoadSlotsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "facility closed"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.LoadSlots(context.Background(), "2025-06-01", "3")

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "facility closed", serverErr.Message)
}

func TestLoadSlotsMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"slots is an object", `{"slots": {"bad": true}}`},
		{"slots is a string", `{"slots": "nope"}`},
		{"slots missing", `{"offers": []}`},
		{"slots null", `{"slots": null}`},
		{"not json", `<html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil, nil)
			_, err := c.LoadSlots(context.Background(), "2025-06-01", "3")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSubmitBookingNoSelection(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.SubmitBooking(context.Background(), nil, "3")

	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, int32(0), calls.Load(), "must fail before any network call")
}

func TestSubmitBookingSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings/api/book/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "csrf-token-value", r.Header.Get("X-CSRFToken"))

		var req map[string]string
		require.NoError(t, readJSON(r, &req))
		assert.Equal(t, "2025-06-01_1_3", req["slot_id"])
		assert.Equal(t, "3", req["facility_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "message": "Booking initiated successfully", "booking_id": 42, "total_price": "400.00"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("csrf-token-value"), nil)
	sel := &models.Slot{ID: "2025-06-01_1_3", IsAvailable: true}
	confirmation, err := c.SubmitBooking(context.Background(), sel, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(42), confirmation.BookingID)
	assert.Equal(t, "400.00", confirmation.TotalPrice)
}

func TestSubmitBookingRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "slot already taken"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	sel := &models.Slot{ID: "2025-06-01_1_3"}
	_, err := c.SubmitBooking(context.Background(), sel, "3")

	var bookingErr *BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, "slot already taken", bookingErr.Message)
}

func TestSubmitBookingStatusMessageShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": "error", "message": "This time slot is already booked"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.SubmitBooking(context.Background(), &models.Slot{ID: "x"}, "3")

	var bookingErr *BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, "This time slot is already booked", bookingErr.Message)
}

func TestSubmitBookingTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, nil)
	_, err := c.SubmitBooking(context.Background(), &models.Slot{ID: "x"}, "3")

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestFacilitySports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/facilities/admin/facility/3/sports/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"facility_name": "City Arena", "sports": [{"id": 7, "name": "Football", "price_per_slot": 500, "is_available": true}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	sports, err := c.FacilitySports(context.Background(), "3")
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, "Football", sports[0].Name)
	assert.Equal(t, 500.0, sports[0].PricePerSlot)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
