// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/repository"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/service"
)

const apiVersion = "1.0.0"

// BookingHandler holds all HTTP handlers for the booking API.
type BookingHandler struct {
	catalog  *service.CatalogService
	bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(catalog *service.CatalogService, bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{catalog: catalog, bookings: bookings}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseInstant accepts RFC3339 timestamps; a value without zone
// information is interpreted as UTC.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// writeAdmissionError maps an admission outcome to its HTTP status:
// client faults keep their kind visible, anything else is a server
// fault with no internals leaked.
func writeAdmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrClassNotFound):
		writeError(w, http.StatusNotFound, "class not found")
	case errors.Is(err, repository.ErrClassInPast):
		writeError(w, http.StatusBadRequest, "cannot book a class in the past")
	case errors.Is(err, repository.ErrClassFull):
		writeError(w, http.StatusConflict, "class is fully booked")
	case errors.Is(err, repository.ErrDuplicateBooking):
		writeError(w, http.StatusConflict, "you have already booked this class")
	default:
		writeError(w, http.StatusInternalServerError, "failed to process booking")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Root handles GET /
// Returns basic API information.
func (h *BookingHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Welcome to the Fitness Studio Booking API",
		"version":      apiVersion,
		"health_check": "/health",
	})
}

// createClassPayload carries the raw class-creation body; the start
// time arrives as a string so zone-less values can default to UTC.
type createClassPayload struct {
	Name        string `json:"name"`
	Instructor  string `json:"instructor"`
	StartTime   string `json:"start_time"`
	TotalSlots  int    `json:"total_slots"`
	Description string `json:"description"`
}

// CreateClass handles POST /classes
// Creates a new class with all slots available.
func (h *BookingHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var payload createClassPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	startTime, err := parseInstant(payload.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be an RFC3339 timestamp")
		return
	}

	cls, err := h.catalog.CreateClass(r.Context(), model.CreateClassRequest{
		Name:        payload.Name,
		Instructor:  payload.Instructor,
		StartTime:   startTime,
		TotalSlots:  payload.TotalSlots,
		Description: payload.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create class")
		return
	}

	writeJSON(w, http.StatusCreated, cls)
}

// ListClasses handles GET /classes?timezone=X
// Returns upcoming classes with free slots, soonest first. The
// optional IANA timezone only changes how start times are displayed;
// storage and comparison stay in UTC.
func (h *BookingHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.catalog.ListUpcoming(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to retrieve classes")
		return
	}

	if tz := r.URL.Query().Get("timezone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			for i := range classes {
				classes[i].StartTime = classes[i].StartTime.In(loc)
			}
		}
	}

	writeJSON(w, http.StatusOK, classes)
}

// Book handles POST /book
// Runs the concurrency-safe admission for the requested class.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.bookings.Book(r.Context(), req)
	if err != nil {
		writeAdmissionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /bookings?email=
// Returns the client's booking history, most recent first.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	resp, err := h.bookings.ListByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to retrieve bookings")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "fitness-booking-api",
	})
}
