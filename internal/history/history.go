// Package history keeps a local, append-only trace of confirmed
// bookings so a kiosk can show and export what was booked through it.
// The booking server remains the system of record.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"turfkiosk/internal/events"
	"turfkiosk/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Store struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func Open(path string, logger *zerolog.Logger) (*Store, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %v", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	logger.Info().Str("path", path).Msg("booking history initialized")
	return &Store{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS bookings (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        booking_id INTEGER NOT NULL,
        session_id TEXT NOT NULL,
        slot_id TEXT NOT NULL,
        facility_id TEXT NOT NULL,
        sport_name TEXT,
        display_time TEXT,
        date TEXT NOT NULL,
        price REAL NOT NULL DEFAULT 0,
        status TEXT NOT NULL DEFAULT 'confirmed',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`
	if _, err := db.Exec(query); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`)
	return err
}

// Record appends one confirmed booking.
func (s *Store) Record(ctx context.Context, rec models.BookingRecord) error {
	if rec.Status == "" {
		rec.Status = "confirmed"
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO bookings (booking_id, session_id, slot_id, facility_id, sport_name, display_time, date, price, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BookingID, rec.SessionID, rec.SlotID, rec.FacilityID,
		rec.SportName, rec.DisplayTime, rec.Date, rec.Price, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

// ListByDateRange returns records whose slot date falls in [from, to],
// newest first.
func (s *Store) ListByDateRange(ctx context.Context, from, to string) ([]models.BookingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, booking_id, session_id, slot_id, facility_id, sport_name, display_time, date, price, status, created_at
        FROM bookings
        WHERE date >= ? AND date <= ?
        ORDER BY created_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var records []models.BookingRecord
	for rows.Next() {
		var rec models.BookingRecord
		if err := rows.Scan(
			&rec.ID, &rec.BookingID, &rec.SessionID, &rec.SlotID, &rec.FacilityID,
			&rec.SportName, &rec.DisplayTime, &rec.Date, &rec.Price, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SubscribeConfirmations wires the store to the event bus so every
// confirmed booking lands in the log.
func SubscribeConfirmations(bus *events.EventBus, store *Store, logger *zerolog.Logger) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	bus.Subscribe(events.EventBookingConfirmed, func(e *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			logger.Error().Err(err).Msg("bad booking event payload")
			return err
		}

		rec := models.BookingRecord{
			BookingID:   payload.BookingID,
			SessionID:   payload.SessionID,
			SlotID:      payload.SlotID,
			FacilityID:  payload.FacilityID,
			SportName:   payload.SportName,
			DisplayTime: payload.DisplayTime,
			Date:        payload.Date,
			Price:       payload.Price,
		}
		if err := store.Record(context.Background(), rec); err != nil {
			logger.Error().Err(err).Int64("booking_id", payload.BookingID).Msg("failed to record booking")
			return err
		}
		return nil
	})
}
