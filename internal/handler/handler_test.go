package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/repository"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/service"
)

func newTestAPI() (http.Handler, *repository.MemoryStore) {
	store := repository.NewMemoryStore(clock.Real{})
	log := zerolog.Nop()

	catalog := service.NewCatalogService(store, clock.Real{}, &log)
	bookings := service.NewBookingService(store, nil, &log)
	h := NewBookingHandler(catalog, bookings)

	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health", HealthCheck)
	r.Get("/classes", h.ListClasses)
	r.Post("/classes", h.CreateClass)
	r.Post("/book", h.Book)
	r.Get("/bookings", h.ListBookings)
	return r, store
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedClass(t *testing.T, store *repository.MemoryStore, start time.Time, slots int) *model.FitnessClass {
	t.Helper()
	cls, err := store.Create(context.Background(), model.CreateClassRequest{
		Name:       "Hatha Yoga",
		Instructor: "Priya Sharma",
		StartTime:  start,
		TotalSlots: slots,
	})
	if err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return cls
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestAPI()
	rec := doRequest(t, h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", body["status"])
	}
}

func TestBookSuccess(t *testing.T) {
	h, store := newTestAPI()
	cls := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 2)

	rec := doRequest(t, h, http.MethodPost, "/book",
		`{"class_id": `+jsonInt(cls.ID)+`, "client_name": "Jane Doe", "client_email": "jane@x.com"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	var booking model.BookingWithClass
	if err := json.Unmarshal(rec.Body.Bytes(), &booking); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", booking.Status)
	}
	if booking.FitnessClass.ID != cls.ID {
		t.Errorf("nested class id = %d, want %d", booking.FitnessClass.ID, cls.ID)
	}
	if booking.FitnessClass.AvailableSlots != 1 {
		t.Errorf("available_slots = %d, want 1", booking.FitnessClass.AvailableSlots)
	}
}

func TestBookErrorStatusCodes(t *testing.T) {
	h, store := newTestAPI()

	future := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 1)
	past := seedClass(t, store, time.Now().UTC().Add(-time.Hour), 5)

	// Fill the future class and register jane once.
	if rec := doRequest(t, h, http.MethodPost, "/book",
		`{"class_id": `+jsonInt(future.ID)+`, "client_name": "Jane Doe", "client_email": "jane@x.com"}`); rec.Code != http.StatusCreated {
		t.Fatalf("setup booking failed: %d", rec.Code)
	}
	roomy := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 5)
	if rec := doRequest(t, h, http.MethodPost, "/book",
		`{"class_id": `+jsonInt(roomy.ID)+`, "client_name": "Jane Doe", "client_email": "jane@x.com"}`); rec.Code != http.StatusCreated {
		t.Fatalf("setup booking failed: %d", rec.Code)
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"class not found", `{"class_id": 999, "client_name": "Ann", "client_email": "ann@x.com"}`, http.StatusNotFound},
		{"class in past", `{"class_id": ` + jsonInt(past.ID) + `, "client_name": "Ann", "client_email": "ann@x.com"}`, http.StatusBadRequest},
		{"class full", `{"class_id": ` + jsonInt(future.ID) + `, "client_name": "Bob", "client_email": "bob@x.com"}`, http.StatusConflict},
		{"duplicate booking", `{"class_id": ` + jsonInt(roomy.ID) + `, "client_name": "Jane Doe", "client_email": "jane@x.com"}`, http.StatusConflict},
		{"invalid payload", `{"class_id": ` + jsonInt(roomy.ID) + `, "client_name": "X", "client_email": "bad"}`, http.StatusBadRequest},
		{"malformed json", `{"class_id":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/book", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d, body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var errResp model.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errResp.Error == "" {
				t.Errorf("error message is empty")
			}
		})
	}
}

func TestCreateClassAcceptsNaiveDatetimeAsUTC(t *testing.T) {
	h, _ := newTestAPI()

	rec := doRequest(t, h, http.MethodPost, "/classes",
		`{"name": "Power Yoga", "instructor": "Rahul Kumar", "start_time": "2099-01-01T10:00:00", "total_slots": 12}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var cls model.FitnessClass
	if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC)
	if !cls.StartTime.Equal(want) {
		t.Errorf("start_time = %v, want %v (naive value read as UTC)", cls.StartTime, want)
	}
	if cls.AvailableSlots != cls.TotalSlots {
		t.Errorf("available_slots = %d, want seeded to total %d", cls.AvailableSlots, cls.TotalSlots)
	}
}

func TestCreateClassRejectsBadInput(t *testing.T) {
	h, _ := newTestAPI()

	tests := []struct {
		name string
		body string
	}{
		{"past start", `{"name": "Yoga", "instructor": "P. Sharma", "start_time": "2000-01-01T10:00:00Z", "total_slots": 10}`},
		{"unparseable start", `{"name": "Yoga", "instructor": "P. Sharma", "start_time": "tomorrow", "total_slots": 10}`},
		{"zero slots", `{"name": "Yoga", "instructor": "P. Sharma", "start_time": "2099-01-01T10:00:00Z", "total_slots": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/classes", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListClassesFiltersAndSorts(t *testing.T) {
	h, store := newTestAPI()

	later := seedClass(t, store, time.Now().UTC().Add(48*time.Hour), 5)
	sooner := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 5)
	seedClass(t, store, time.Now().UTC().Add(-time.Hour), 5) // past, excluded
	full := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 1)
	if _, err := store.Book(context.Background(), full.ID, "Jane Doe", "jane@x.com"); err != nil {
		t.Fatalf("fill class: %v", err)
	}

	rec := doRequest(t, h, http.MethodGet, "/classes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var classes []model.FitnessClass
	if err := json.Unmarshal(rec.Body.Bytes(), &classes); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("len(classes) = %d, want 2", len(classes))
	}
	if classes[0].ID != sooner.ID || classes[1].ID != later.ID {
		t.Errorf("order = [%d, %d], want [%d, %d]", classes[0].ID, classes[1].ID, sooner.ID, later.ID)
	}
}

func TestListClassesTimezoneDisplay(t *testing.T) {
	if _, err := time.LoadLocation("Asia/Kolkata"); err != nil {
		t.Skip("tzdata not available")
	}

	h, store := newTestAPI()
	seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 5)

	rec := doRequest(t, h, http.MethodGet, "/classes?timezone=Asia/Kolkata", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "+05:30") {
		t.Errorf("start_time not converted for display: %s", rec.Body.String())
	}
}

func TestListBookings(t *testing.T) {
	h, store := newTestAPI()
	cls := seedClass(t, store, time.Now().UTC().Add(24*time.Hour), 5)
	if _, err := store.Book(context.Background(), cls.ID, "Jane Doe", "jane@x.com"); err != nil {
		t.Fatalf("book: %v", err)
	}

	rec := doRequest(t, h, http.MethodGet, "/bookings?email=jane@x.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp model.BookingListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.TotalCount != 1 || len(resp.Bookings) != 1 {
		t.Fatalf("total_count = %d, len = %d, want 1, 1", resp.TotalCount, len(resp.Bookings))
	}
	if resp.Bookings[0].FitnessClass.ID != cls.ID {
		t.Errorf("nested class id = %d, want %d", resp.Bookings[0].FitnessClass.ID, cls.ID)
	}
}

func TestListBookingsRequiresEmail(t *testing.T) {
	h, _ := newTestAPI()

	rec := doRequest(t, h, http.MethodGet, "/bookings", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
