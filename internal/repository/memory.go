package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
)

type bookingKey struct {
	classID int64
	email   string
}

// MemoryStore is an in-memory implementation of the class and booking
// stores. It enforces the same admission semantics as the Postgres
// repositories: admissions for one class are serialised through a
// per-class mutex, while admissions for different classes proceed
// independently. Used for tests and broker-less local runs.
type MemoryStore struct {
	clock clock.Clock

	mu            sync.RWMutex
	classes       map[int64]*model.FitnessClass
	classLocks    map[int64]*sync.Mutex
	bookings      map[int64]*model.Booking
	byClassEmail  map[bookingKey]int64
	nextClassID   int64
	nextBookingID int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:        clk,
		classes:      make(map[int64]*model.FitnessClass),
		classLocks:   make(map[int64]*sync.Mutex),
		bookings:     make(map[int64]*model.Booking),
		byClassEmail: make(map[bookingKey]int64),
	}
}

// Create inserts a new class with available slots seeded to the total.
func (s *MemoryStore) Create(_ context.Context, req model.CreateClassRequest) (*model.FitnessClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextClassID++
	cls := &model.FitnessClass{
		ID:             s.nextClassID,
		Name:           req.Name,
		Instructor:     req.Instructor,
		StartTime:      req.StartTime.UTC(),
		TotalSlots:     req.TotalSlots,
		AvailableSlots: req.TotalSlots,
		Description:    req.Description,
		CreatedAt:      s.clock.Now(),
	}
	s.classes[cls.ID] = cls
	s.classLocks[cls.ID] = &sync.Mutex{}

	out := *cls
	return &out, nil
}

// GetByID returns a copy of the class or ErrClassNotFound.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*model.FitnessClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cls, ok := s.classes[id]
	if !ok {
		return nil, ErrClassNotFound
	}
	out := *cls
	return &out, nil
}

// ListUpcoming returns classes starting strictly after asOf with free
// slots, ordered by start time ascending.
func (s *MemoryStore) ListUpcoming(_ context.Context, asOf time.Time) ([]model.FitnessClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := asOf.UTC()
	var classes []model.FitnessClass
	for _, cls := range s.classes {
		if cls.StartTime.After(cutoff) && cls.AvailableSlots > 0 {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].StartTime.Before(classes[j].StartTime)
	})
	return classes, nil
}

// Book admits a client into a class. The per-class mutex serialises
// the read-check-write sequence against other admissions for the same
// class; the checks run in the same fixed order as the Postgres store.
func (s *MemoryStore) Book(_ context.Context, classID int64, clientName, clientEmail string) (*model.BookingWithClass, error) {
	s.mu.RLock()
	cls, ok := s.classes[classID]
	lock := s.classLocks[classID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrClassNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()

	s.mu.RLock()
	start := cls.StartTime
	available := cls.AvailableSlots
	_, duplicate := s.byClassEmail[bookingKey{classID, clientEmail}]
	s.mu.RUnlock()

	if !start.After(now) {
		return nil, ErrClassInPast
	}
	if available <= 0 {
		return nil, ErrClassFull
	}
	if duplicate {
		return nil, ErrDuplicateBooking
	}

	// Slots and the duplicate index are only mutated here, under the
	// class lock, so the checks above cannot be stale.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookingID++
	booking := &model.Booking{
		ID:          s.nextBookingID,
		ClassID:     classID,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		Status:      model.StatusConfirmed,
		CreatedAt:   now,
	}
	cls.AvailableSlots--
	s.bookings[booking.ID] = booking
	s.byClassEmail[bookingKey{classID, clientEmail}] = booking.ID

	return &model.BookingWithClass{Booking: *booking, FitnessClass: *cls}, nil
}

// ListByEmail returns the client's bookings with their classes, most
// recent first.
func (s *MemoryStore) ListByEmail(_ context.Context, clientEmail string) ([]model.BookingWithClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []model.BookingWithClass
	for _, b := range s.bookings {
		if b.ClientEmail != clientEmail {
			continue
		}
		bwc := model.BookingWithClass{Booking: *b}
		if cls, ok := s.classes[b.ClassID]; ok {
			bwc.FitnessClass = *cls
		}
		bookings = append(bookings, bwc)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}
