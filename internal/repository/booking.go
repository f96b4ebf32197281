package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
)

// uniqueViolation is the SQLSTATE for a unique-constraint violation.
const uniqueViolation = "23505"

// BookingRepository handles persistence for bookings, including the
// concurrency-safe admission transaction.
type BookingRepository struct {
	db    *pgxpool.Pool
	clock clock.Clock
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool, clk clock.Clock) *BookingRepository {
	return &BookingRepository{db: db, clock: clk}
}

// Book admits a client into a class inside one serialised transaction.
//
// Two requests racing for the last slot would both read free capacity
// under a naive read-then-write sequence and overbook the class.
// SELECT ... FOR UPDATE takes a row-level exclusive lock on the class
// the moment the SELECT executes, so concurrent admissions for the
// same class queue up behind each other while admissions for other
// classes proceed unblocked.
//
// The checks run in a fixed order (existence, timing, capacity,
// duplicate) so a request against a nonexistent class always reports
// ErrClassNotFound even if it would also have failed later checks.
// The unique constraint on (class_id, client_email) backstops the
// duplicate check in case the store-level guarantee is ever weakened.
func (r *BookingRepository) Book(ctx context.Context, classID int64, clientName, clientEmail string) (*model.BookingWithClass, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved; Rollback after a
	// successful Commit is a harmless no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the class row and read its schedule and capacity.
	var cls model.FitnessClass
	err = tx.QueryRow(ctx,
		`SELECT id, name, instructor, start_time, total_slots, available_slots, description, created_at
		 FROM classes
		 WHERE id = $1
		 FOR UPDATE`,
		classID,
	).Scan(&cls.ID, &cls.Name, &cls.Instructor, &cls.StartTime, &cls.TotalSlots, &cls.AvailableSlots, &cls.Description, &cls.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("lock class row: %w", err)
	}

	now := r.clock.Now()
	if !cls.StartTime.UTC().After(now) {
		return nil, ErrClassInPast
	}

	if cls.AvailableSlots <= 0 {
		return nil, ErrClassFull
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE class_id = $1 AND client_email = $2)`,
		classID, clientEmail,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate booking: %w", err)
	}
	if exists {
		return nil, ErrDuplicateBooking
	}

	if _, err = tx.Exec(ctx,
		`UPDATE classes SET available_slots = available_slots - 1 WHERE id = $1`,
		classID,
	); err != nil {
		return nil, fmt.Errorf("decrement available slots: %w", err)
	}

	booking := &model.Booking{
		ClassID:     classID,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		Status:      model.StatusConfirmed,
		CreatedAt:   now,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (class_id, client_name, client_email, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		booking.ClassID, booking.ClientName, booking.ClientEmail, booking.Status, booking.CreatedAt,
	).Scan(&booking.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	cls.StartTime = cls.StartTime.UTC()
	cls.CreatedAt = cls.CreatedAt.UTC()
	cls.AvailableSlots-- // reflect the decrement committed above

	return &model.BookingWithClass{Booking: *booking, FitnessClass: cls}, nil
}

// ListByEmail returns the client's bookings together with their
// classes, most recent first.
func (r *BookingRepository) ListByEmail(ctx context.Context, clientEmail string) ([]model.BookingWithClass, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.class_id, b.client_name, b.client_email, b.status, b.created_at,
		        c.id, c.name, c.instructor, c.start_time, c.total_slots, c.available_slots, c.description, c.created_at
		 FROM bookings b
		 JOIN classes c ON c.id = b.class_id
		 WHERE b.client_email = $1
		 ORDER BY b.created_at DESC`,
		clientEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.BookingWithClass
	for rows.Next() {
		var bwc model.BookingWithClass
		if err := rows.Scan(
			&bwc.ID, &bwc.ClassID, &bwc.ClientName, &bwc.ClientEmail, &bwc.Status, &bwc.CreatedAt,
			&bwc.FitnessClass.ID, &bwc.FitnessClass.Name, &bwc.FitnessClass.Instructor, &bwc.FitnessClass.StartTime,
			&bwc.FitnessClass.TotalSlots, &bwc.FitnessClass.AvailableSlots, &bwc.FitnessClass.Description, &bwc.FitnessClass.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bwc.CreatedAt = bwc.CreatedAt.UTC()
		bwc.FitnessClass.StartTime = bwc.FitnessClass.StartTime.UTC()
		bwc.FitnessClass.CreatedAt = bwc.FitnessClass.CreatedAt.UTC()
		bookings = append(bookings, bwc)
	}
	return bookings, rows.Err()
}
