// Package store persists bookings and their admin notifications. The
// canonical backend is Postgres; a process-local backend backs tests and
// deployments without a database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/wanderplan/concierge/models"
)

// Backend is what the rest of the system needs from booking persistence.
type Backend interface {
	SaveBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context) ([]*models.Notification, error)
	ArchiveMessages(ctx context.Context, sessionID string, msgs []models.Message) error
	ListArchivedMessages(ctx context.Context, sessionID string) ([]models.Message, error)
}

// ErrInvalidStatus rejects status values outside the booking lifecycle.
var ErrInvalidStatus = errors.New("invalid booking status")

type Store struct {
	DB *sql.DB
}

var _ Backend = (*Store)(nil)

// New builds a Store from the environment: DATABASE_URL wins, otherwise the
// POSTGRES_* variables are assembled into a DSN.
func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func (s *Store) SaveBooking(ctx context.Context, b *models.Booking) error {
	prefs, err := json.Marshal(b.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal itinerary: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO bookings
		(id, session_id, status, customer_email, customer_name, customer_phone,
		 destination, preferences, itinerary, total_cost, chat_summary, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		b.ID, b.SessionID, string(b.Status), b.Customer.Email, b.Customer.Name, b.Customer.Phone,
		b.Destination, prefs, items, b.TotalCost, b.ChatSummary, b.CreatedAt, b.UpdatedAt)
	return err
}

const bookingColumns = `id, session_id, status, customer_email, customer_name, customer_phone,
	destination, preferences, itinerary, total_cost, chat_summary, created_at, updated_at`

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	return b, err
}

func (s *Store) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrBookingNotFound
	}
	return nil
}

func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO notifications
		(id, booking_id, created_at, read, data) VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.BookingID, n.CreatedAt, n.Read, data)
	return err
}

func (s *Store) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, booking_id, created_at, read, data FROM notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.BookingID, &n.CreatedAt, &n.Read, &data); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("unmarshal data for %s: %w", n.ID, err)
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// ArchiveMessages replaces the archived transcript for a session. Replace
// rather than append keeps repeat confirms from duplicating rows.
func (s *Store) ArchiveMessages(ctx context.Context, sessionID string, msgs []models.Message) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id=$1`, sessionID); err != nil {
		return err
	}
	for i, m := range msgs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chat_messages
			(session_id, ordinal, role, content, created_at) VALUES ($1,$2,$3,$4,$5)`,
			sessionID, i, m.Role, m.Content, m.Timestamp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListArchivedMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT role, content, created_at FROM chat_messages WHERE session_id=$1 ORDER BY ordinal`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var status string
	var prefs, items []byte
	if err := row.Scan(&b.ID, &b.SessionID, &status, &b.Customer.Email, &b.Customer.Name, &b.Customer.Phone,
		&b.Destination, &prefs, &items, &b.TotalCost, &b.ChatSummary, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = models.BookingStatus(status)
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &b.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences for %s: %w", b.ID, err)
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &b.Items); err != nil {
			return nil, fmt.Errorf("unmarshal itinerary for %s: %w", b.ID, err)
		}
	}
	return &b, nil
}
