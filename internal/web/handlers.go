package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"turfkiosk/internal/metrics"
	"turfkiosk/internal/models"
	"turfkiosk/internal/service"
	"turfkiosk/internal/turfzone"
	"turfkiosk/internal/view"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("facilities")
	writeJSON(w, http.StatusOK, map[string]any{"facilities": s.facilities})
}

func (s *Server) handleFacilitySports(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("facility_sports")
	facilityID := strings.TrimSpace(ps.ByName("id"))
	if facilityID == "" {
		writeError(w, http.StatusBadRequest, "facility id is required")
		return
	}

	sports, err := s.flow.FacilitySports(r.Context(), facilityID)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sports": sports})
}

// handleSlots loads slots for date/facility and returns the rendered
// board. Missing parameters return the current board unchanged.
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	metrics.IncHTTP("slots")

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	facilityID := strings.TrimSpace(r.URL.Query().Get("facility_id"))

	if _, err := s.flow.Load(r.Context(), sessionID, date, facilityID); err != nil {
		s.writeFlowError(w, err)
		return
	}
	s.writeBoard(w, sessionID)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	metrics.IncHTTP("board")
	s.writeBoard(w, sessionID)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	metrics.IncHTTP("select")

	var body struct {
		SlotID string `json:"slot_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.SlotID) == "" {
		writeError(w, http.StatusBadRequest, "slot_id is required")
		return
	}

	selected, err := s.flow.Select(r.Context(), sessionID, body.SlotID)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	if !selected {
		writeError(w, http.StatusConflict, "slot is not available")
		return
	}
	s.writeBoard(w, sessionID)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	metrics.IncHTTP("book")

	confirmation, err := s.flow.Submit(r.Context(), sessionID)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmation)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("history")
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	from, to, err := dateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.history.ListByDateRange(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("history list failed")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": records})
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("history_export")
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	from, to, err := dateRange(body.From, body.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path := filepath.Join(s.exportPath, fmt.Sprintf("bookings_%s_%s.xlsx", from, to))
	count, err := s.history.ExportRange(r.Context(), from, to, path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("history export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file": path, "count": count})
}

func dateRange(from, to string) (string, string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return "", "", errors.New("from and to dates are required")
	}
	for _, v := range []string{from, to} {
		if _, err := time.Parse(models.DateLayout, v); err != nil {
			return "", "", fmt.Errorf("invalid date: %s", v)
		}
	}
	return from, to, nil
}

func (s *Server) writeBoard(w http.ResponseWriter, sessionID string) {
	page, selectedID := s.flow.Snapshot(sessionID)
	board := view.BuildBoard(page.Slots, page.Offers, selectedID)
	writeJSON(w, http.StatusOK, board)
}

// writeFlowError maps flow errors onto HTTP statuses. Upstream
// failures surface as 502 so the kiosk can distinguish its own bad
// requests from booking-server trouble.
func (s *Server) writeFlowError(w http.ResponseWriter, err error) {
	var fetchErr *turfzone.FetchError
	var serverErr *turfzone.ServerError
	var bookingErr *turfzone.BookingError

	switch {
	case errors.Is(err, turfzone.ErrNoSelection):
		writeError(w, http.StatusBadRequest, "no slot selected")
	case errors.Is(err, service.ErrBookingInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &bookingErr):
		writeError(w, http.StatusConflict, bookingErr.Message)
	case errors.As(err, &serverErr):
		writeError(w, http.StatusBadGateway, serverErr.Message)
	case errors.Is(err, turfzone.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "unexpected response from booking server")
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, "booking server unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
