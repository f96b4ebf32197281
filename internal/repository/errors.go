package repository

import "errors"

// Admission failure taxonomy. Each booking attempt resolves to exactly
// one of these, or to a wrapped infrastructure error when the store
// itself fails. The checks are evaluated in a fixed order so error
// precedence is deterministic: existence, timing, capacity, duplicate.
var (
	// ErrClassNotFound is returned when no class matches the requested id.
	ErrClassNotFound = errors.New("class not found")

	// ErrClassInPast is returned when the class start time is not
	// strictly in the future.
	ErrClassInPast = errors.New("cannot book a class in the past")

	// ErrClassFull is returned when the class has no remaining slots.
	ErrClassFull = errors.New("class is fully booked")

	// ErrDuplicateBooking is returned when the client already holds a
	// booking for this class.
	ErrDuplicateBooking = errors.New("client already booked this class")
)
