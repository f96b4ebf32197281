// Package repository implements all database access for the booking
// system. It uses pgx directly (no ORM); the booking path runs inside
// a single serialised transaction, see booking.go.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
)

// ClassRepository handles persistence for fitness classes.
type ClassRepository struct {
	db    *pgxpool.Pool
	clock clock.Clock
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *pgxpool.Pool, clk clock.Clock) *ClassRepository {
	return &ClassRepository{db: db, clock: clk}
}

// Create inserts a new class with available slots seeded to the total.
func (r *ClassRepository) Create(ctx context.Context, req model.CreateClassRequest) (*model.FitnessClass, error) {
	cls := &model.FitnessClass{
		Name:           req.Name,
		Instructor:     req.Instructor,
		StartTime:      req.StartTime.UTC(),
		TotalSlots:     req.TotalSlots,
		AvailableSlots: req.TotalSlots,
		Description:    req.Description,
		CreatedAt:      r.clock.Now(),
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO classes (name, instructor, start_time, total_slots, available_slots, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		cls.Name, cls.Instructor, cls.StartTime, cls.TotalSlots, cls.AvailableSlots, cls.Description, cls.CreatedAt,
	).Scan(&cls.ID)
	if err != nil {
		return nil, fmt.Errorf("insert class: %w", err)
	}
	return cls, nil
}

// GetByID returns a single class or ErrClassNotFound.
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*model.FitnessClass, error) {
	var c model.FitnessClass
	err := r.db.QueryRow(ctx,
		`SELECT id, name, instructor, start_time, total_slots, available_slots, description, created_at
		 FROM classes WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Instructor, &c.StartTime, &c.TotalSlots, &c.AvailableSlots, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	c.StartTime = c.StartTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// ListUpcoming returns classes that start strictly after asOf and still
// have free slots, ordered by start time ascending.
func (r *ClassRepository) ListUpcoming(ctx context.Context, asOf time.Time) ([]model.FitnessClass, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, instructor, start_time, total_slots, available_slots, description, created_at
		 FROM classes
		 WHERE start_time > $1 AND available_slots > 0
		 ORDER BY start_time ASC`,
		asOf.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming classes: %w", err)
	}
	defer rows.Close()

	var classes []model.FitnessClass
	for rows.Next() {
		var c model.FitnessClass
		if err := rows.Scan(&c.ID, &c.Name, &c.Instructor, &c.StartTime, &c.TotalSlots, &c.AvailableSlots, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		c.StartTime = c.StartTime.UTC()
		c.CreatedAt = c.CreatedAt.UTC()
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
