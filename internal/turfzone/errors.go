package turfzone

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means the response body did not match the
	// documented slot-query contract.
	ErrMalformedResponse = errors.New("malformed slots response")

	// ErrNoSelection is returned when a booking is submitted without
	// an active slot selection.
	ErrNoSelection = errors.New("no slot selected")
)

// FetchError is a transport or HTTP-status failure. Status is zero
// when the request never produced a response.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slot query failed: %v", e.Err)
	}
	return fmt.Sprintf("slot query failed with status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ServerError is an application-level error reported inside a 2xx
// response body.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// BookingError is a booking rejected by the server. The caller keeps
// the current selection so the user can retry without re-selecting.
type BookingError struct {
	Message string
}

func (e *BookingError) Error() string { return e.Message }
