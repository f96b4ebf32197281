// Package model defines the core domain types for the fitness class
// booking system.
package model

import "time"

// StatusConfirmed is the only booking status the system models; there
// is no cancellation or no-show transition.
const StatusConfirmed = "confirmed"

// FitnessClass represents a scheduled class with a fixed capacity.
// StartTime is always stored and compared in UTC; presentation-layer
// timezone conversion happens at the HTTP boundary.
type FitnessClass struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Instructor     string    `json:"instructor"`
	StartTime      time.Time `json:"start_time"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsFull returns true when no slots remain.
func (c *FitnessClass) IsFull() bool {
	return c.AvailableSlots <= 0
}

// Booking represents a confirmed reservation of one slot in a class.
// The (ClassID, ClientEmail) pair is unique: a client may hold at most
// one booking per class.
type Booking struct {
	ID          int64     `json:"id"`
	ClassID     int64     `json:"class_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateClassRequest is the payload for the administrative
// class-creation endpoint. AvailableSlots is seeded to TotalSlots.
type CreateClassRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=100"`
	Instructor  string    `json:"instructor" validate:"required,min=2,max=100"`
	StartTime   time.Time `json:"start_time" validate:"required,future"`
	TotalSlots  int       `json:"total_slots" validate:"positive"`
	Description string    `json:"description" validate:"max=2000"`
}

// BookRequest is the payload for booking a slot in a class.
type BookRequest struct {
	ClassID     int64  `json:"class_id" validate:"positive"`
	ClientName  string `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail string `json:"client_email" validate:"required,email"`
}

// BookingWithClass pairs a booking with the class it belongs to for
// API responses.
type BookingWithClass struct {
	Booking
	FitnessClass FitnessClass `json:"fitness_class"`
}

// BookingListResponse is the envelope for the booking-history endpoint.
type BookingListResponse struct {
	Bookings   []BookingWithClass `json:"bookings"`
	TotalCount int                `json:"total_count"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
