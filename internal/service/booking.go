// Package service implements business logic and orchestration between
// HTTP handlers and the storage layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/notify"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/validation"
)

// ErrInvalidInput marks request payloads rejected before reaching the
// booking core. Handlers map it to a 400 response.
var ErrInvalidInput = errors.New("invalid input")

// BookingStore is the persistence contract the booking service needs.
// The Book implementation must execute the full admission sequence
// atomically; see repository.BookingRepository.Book.
type BookingStore interface {
	Book(ctx context.Context, classID int64, clientName, clientEmail string) (*model.BookingWithClass, error)
	ListByEmail(ctx context.Context, clientEmail string) ([]model.BookingWithClass, error)
}

// Notifier publishes booking-confirmed events. Implementations must
// not block the request path for long; failures are logged, never
// surfaced to the client.
type Notifier interface {
	BookingConfirmed(ctx context.Context, msg notify.BookingConfirmedMessage) error
}

// BookingService orchestrates slot booking and booking history.
type BookingService struct {
	bookings BookingStore
	notifier Notifier
	log      *zerolog.Logger
}

// NewBookingService constructs a BookingService. notifier may be nil
// when no broker is configured.
func NewBookingService(bookings BookingStore, notifier Notifier, log *zerolog.Logger) *BookingService {
	return &BookingService{bookings: bookings, notifier: notifier, log: log}
}

// Book normalizes and validates the request, then delegates the
// admission decision to the store's atomic booking transaction. On
// success it publishes a confirmation event; publish failures never
// fail the booking, which is already durable.
func (s *BookingService) Book(ctx context.Context, req model.BookRequest) (*model.BookingWithClass, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientEmail = strings.ToLower(strings.TrimSpace(req.ClientEmail))
	if err := validation.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bwc, err := s.bookings.Book(ctx, req.ClassID, req.ClientName, req.ClientEmail)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("booking_id", bwc.ID).
		Int64("class_id", bwc.ClassID).
		Str("client_email", bwc.ClientEmail).
		Msg("booking confirmed")

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, notify.MessageFromBooking(bwc)); err != nil {
			s.log.Warn().Err(err).Int64("booking_id", bwc.ID).Msg("failed to publish booking confirmation")
		}
	}

	return bwc, nil
}

// ListByEmail returns the client's booking history, most recent first.
func (s *BookingService) ListByEmail(ctx context.Context, clientEmail string) (*model.BookingListResponse, error) {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if clientEmail == "" || !strings.Contains(clientEmail, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}

	bookings, err := s.bookings.ListByEmail(ctx, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []model.BookingWithClass{}
	}

	return &model.BookingListResponse{Bookings: bookings, TotalCount: len(bookings)}, nil
}
