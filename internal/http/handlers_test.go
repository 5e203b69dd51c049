package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/salon-scheduler/internal/booking"
	"github.com/example/salon-scheduler/internal/persistence/memory"
	"github.com/example/salon-scheduler/internal/staff"
	"github.com/example/salon-scheduler/internal/testfixtures"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.SeedStaff(staff.Entry{
		ID:                 "staff-woyni",
		DisplayName:        "Woyni",
		Active:             true,
		HomeServiceCapable: true,
		Locations:          []string{"loc1", "loc2"},
	})

	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("appt")

	staffService := staff.NewService(store)
	checker := booking.NewAvailabilityChecker(store, nil, booking.BufferWindow{}, nil)
	resolver := booking.NewBidirectionalResolver(store, nil)
	validator := booking.NewValidator(checker, resolver, store, booking.ValidatorConfig{}, nil)
	reflections := booking.NewReflectionEngine(store, staffService, nil)
	service := booking.NewService(store, validator, reflections, ids.NextFunc(), clock.NowFunc(), nil)

	router := NewRouter(RouterConfig{
		Bookings:     NewBookingHandler(validator, nil),
		Appointments: NewAppointmentHandler(service, nil),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, store
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return ts
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	return requestJSON(t, http.MethodPost, url, body, out)
}

func requestJSON(t *testing.T, method, url, body string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	t.Run("valid booking", func(t *testing.T) {
		var result struct {
			Valid   bool   `json:"valid"`
			Summary string `json:"summary"`
		}
		resp := postJSON(t, server.URL+"/bookings/validate", `{
			"staff_id": "staff-woyni",
			"start": "2025-06-26T10:00:00Z",
			"duration_minutes": 60,
			"location": "loc1"
		}`, &result)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if !result.Valid || result.Summary != "Booking is valid." {
			t.Fatalf("unexpected result: %+v", result)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		var errResp struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		resp := postJSON(t, server.URL+"/bookings/validate", `{"duration_minutes": 0}`, &errResp)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", resp.StatusCode)
		}
		for _, field := range []string{"staff_id", "location", "start", "duration_minutes"} {
			if errResp.Errors[field] == "" {
				t.Fatalf("expected field error for %s, got %v", field, errResp.Errors)
			}
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/bookings/validate", `{`, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		resp := requestJSON(t, http.MethodGet, server.URL+"/bookings/validate", "", nil)
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", resp.StatusCode)
		}
	})
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	var created struct {
		Appointment struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			Location  string `json:"location"`
			CreatedAt string `json:"created_at"`
		} `json:"appointment"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
	}
	resp := postJSON(t, server.URL+"/appointments", `{
		"staff_id": "staff-woyni",
		"staff_name": "Woyni",
		"client_name": "Alemu",
		"service": "Haircut",
		"start": "2025-06-26T10:00:00Z",
		"duration_minutes": 90,
		"location": "loc1"
	}`, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	if created.Appointment.ID == "" || !created.Validation.Valid {
		t.Fatalf("unexpected create response: %+v", created)
	}
	wantCreatedAt := testfixtures.ReferenceTime().Format(time.RFC3339Nano)
	if created.Appointment.CreatedAt != wantCreatedAt {
		t.Fatalf("created_at = %q, want %q", created.Appointment.CreatedAt, wantCreatedAt)
	}

	// Listing includes the shadow produced for the home location.
	var listed struct {
		Appointments []struct {
			ID          string `json:"id"`
			Location    string `json:"location"`
			IsReflected bool   `json:"is_reflected"`
			ClientName  string `json:"client_name"`
		} `json:"appointments"`
	}
	resp = requestJSON(t, http.MethodGet, server.URL+"/appointments?staff_id=staff-woyni", "", &listed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	if len(listed.Appointments) != 2 {
		t.Fatalf("expected original plus shadow, got %d", len(listed.Appointments))
	}
	var shadowSeen bool
	for _, a := range listed.Appointments {
		if a.IsReflected {
			shadowSeen = true
			if a.Location != "home" || a.ClientName != "[LOC1] Alemu" {
				t.Fatalf("unexpected shadow: %+v", a)
			}
		}
	}
	if !shadowSeen {
		t.Fatal("shadow missing from listing")
	}

	// A conflicting booking is rejected with the validation payload. The
	// home shadow of the existing booking counts as a cross-location
	// conflict alongside the direct same-location one.
	var conflict struct {
		Valid   bool     `json:"valid"`
		Summary string   `json:"summary"`
		Errors  []string `json:"errors"`
	}
	resp = postJSON(t, server.URL+"/appointments", `{
		"staff_id": "staff-woyni",
		"start": "2025-06-26T10:30:00Z",
		"duration_minutes": 60,
		"location": "loc1"
	}`, &conflict)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict status = %d, want 409", resp.StatusCode)
	}
	if conflict.Valid || conflict.Summary != "Cannot book: staff member has 1 cross-location conflict(s)." {
		t.Fatalf("unexpected conflict payload: %+v", conflict)
	}
	if len(conflict.Errors) != 2 {
		t.Fatalf("expected cross-location and same-location errors, got %v", conflict.Errors)
	}

	// Status transitions answer with the updated appointment.
	var status struct {
		Appointment struct {
			Status string `json:"status"`
		} `json:"appointment"`
	}
	resp = requestJSON(t, http.MethodPut, server.URL+"/appointments/"+created.Appointment.ID+"/status", `{"status":"completed"}`, &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status change = %d, want 200", resp.StatusCode)
	}
	if status.Appointment.Status != "completed" {
		t.Fatalf("status = %q, want completed", status.Appointment.Status)
	}

	// Unknown status names come back as a field validation error.
	resp = requestJSON(t, http.MethodPut, server.URL+"/appointments/"+created.Appointment.ID+"/status", `{"status":"teleported"}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, want 422", resp.StatusCode)
	}

	// Deletion cascades to shadows and reports 204.
	resp = requestJSON(t, http.MethodDelete, server.URL+"/appointments/"+created.Appointment.ID, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = requestJSON(t, http.MethodGet, server.URL+"/appointments/"+created.Appointment.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", resp.StatusCode)
	}

	var remaining struct {
		Appointments []struct {
			ID string `json:"id"`
		} `json:"appointments"`
	}
	resp = requestJSON(t, http.MethodGet, server.URL+"/appointments", "", &remaining)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	if len(remaining.Appointments) != 0 {
		t.Fatalf("expected empty calendar after delete, got %v", remaining.Appointments)
	}
}

func TestBlockedTimeEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	var created struct {
		Appointment struct {
			ID    string `json:"id"`
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"appointment"`
	}
	resp := postJSON(t, server.URL+"/blocked-times", `{
		"staff_id": "staff-woyni",
		"start": "2025-06-26T12:00:00Z",
		"duration_minutes": 60,
		"location": "loc1",
		"title": "Lunch"
	}`, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if created.Appointment.Type != "blocked" || created.Appointment.Title != "Lunch" {
		t.Fatalf("unexpected blocked entry: %+v", created)
	}

	// The blocked slot now rejects bookings with the block title.
	var result struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	resp = postJSON(t, server.URL+"/bookings/validate", `{
		"staff_id": "staff-woyni",
		"start": "2025-06-26T12:00:00Z",
		"duration_minutes": 30,
		"location": "loc1"
	}`, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if result.Valid || len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Lunch") {
		t.Fatalf("unexpected validation: %+v", result)
	}
}

func TestCleanupEndpoint(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t)

	// An orphaned shadow with no surviving original.
	store.SeedAppointments(booking.Appointment{
		ID:                    "reflected-gone-home",
		StaffID:               "staff-woyni",
		Location:              "home",
		Start:                 mustParseTime(t, "2025-06-26T10:00:00Z"),
		DurationMinutes:       60,
		Status:                booking.StatusConfirmed,
		IsReflected:           true,
		OriginalAppointmentID: "gone",
		ReflectionType:        booking.ReflectionPhysicalToHome,
	})

	var result struct {
		Removed int `json:"removed"`
	}
	resp := postJSON(t, server.URL+"/reflections/cleanup", "", &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if result.Removed != 1 {
		t.Fatalf("removed = %d, want 1", result.Removed)
	}
}
