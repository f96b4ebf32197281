package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/validation"
)

// ClassStore is the persistence contract for the class catalog.
type ClassStore interface {
	Create(ctx context.Context, req model.CreateClassRequest) (*model.FitnessClass, error)
	GetByID(ctx context.Context, id int64) (*model.FitnessClass, error)
	ListUpcoming(ctx context.Context, asOf time.Time) ([]model.FitnessClass, error)
}

// CatalogService serves the class catalog: administrative creation and
// the upcoming-classes listing.
type CatalogService struct {
	classes ClassStore
	clock   clock.Clock
	log     *zerolog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(classes ClassStore, clk clock.Clock, log *zerolog.Logger) *CatalogService {
	return &CatalogService{classes: classes, clock: clk, log: log}
}

// CreateClass validates the request and creates the class with all
// slots available. Start times are normalized to UTC before storage.
func (s *CatalogService) CreateClass(ctx context.Context, req model.CreateClassRequest) (*model.FitnessClass, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Instructor = strings.TrimSpace(req.Instructor)
	if err := validation.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.StartTime = req.StartTime.UTC()

	cls, err := s.classes.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.log.Info().Int64("class_id", cls.ID).Str("name", cls.Name).Msg("class created")
	return cls, nil
}

// ListUpcoming returns classes that start after the current instant
// and still have free slots, soonest first. Pure read: stale capacity
// counts are acceptable, the booking transaction is authoritative.
func (s *CatalogService) ListUpcoming(ctx context.Context) ([]model.FitnessClass, error) {
	classes, err := s.classes.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming classes: %w", err)
	}
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	return classes, nil
}

// GetClass returns a single class by id.
func (s *CatalogService) GetClass(ctx context.Context, id int64) (*model.FitnessClass, error) {
	return s.classes.GetByID(ctx, id)
}
