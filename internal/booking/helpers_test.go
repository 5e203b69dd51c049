package booking

import (
	"context"
	"time"

	"github.com/example/salon-scheduler/internal/staff"
)

// storeStub is an in-memory AppointmentStore with failure injection, shared
// by the package tests.
type storeStub struct {
	appointments []Appointment
	loadErr      error
	saveErr      error
	saveCalls    int
}

func (s *storeStub) LoadAllAppointments(ctx context.Context) ([]Appointment, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out, nil
}

func (s *storeStub) SaveAllAppointments(ctx context.Context, appointments []Appointment) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saveCalls++
	s.appointments = make([]Appointment, len(appointments))
	copy(s.appointments, appointments)
	return nil
}

func (s *storeStub) byID(id string) (Appointment, bool) {
	for _, a := range s.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return Appointment{}, false
}

type directoryStub struct {
	entries map[string]staff.Entry
	err     error
}

func (d *directoryStub) GetStaffDirectoryEntry(ctx context.Context, staffID string) (staff.Entry, error) {
	if d.err != nil {
		return staff.Entry{}, d.err
	}
	entry, ok := d.entries[staffID]
	if !ok {
		return staff.Entry{}, ErrNotFound
	}
	return entry, nil
}

func staffServiceWith(entries ...staff.Entry) *staff.Service {
	byID := make(map[string]staff.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}
	return staff.NewService(&directoryStub{entries: byID})
}

// woyni matches the reference scenario: home-service capable, assigned to two
// physical branches.
func woyni() staff.Entry {
	return staff.Entry{
		ID:                 "staff-woyni",
		DisplayName:        "Woyni",
		Active:             true,
		HomeServiceCapable: true,
		Locations:          []string{"loc1", "loc2"},
	}
}

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 26, hour, min, 0, 0, time.UTC)
}

func appt(id, staffID, location string, start time.Time, durationMinutes int) Appointment {
	return Appointment{
		ID:              id,
		StaffID:         staffID,
		StaffName:       "Woyni",
		ClientName:      "Alemu",
		Service:         "Haircut",
		Start:           start,
		DurationMinutes: durationMinutes,
		Location:        location,
		Status:          StatusConfirmed,
	}
}

func newChecker(store AppointmentStore, policy BufferPolicy, buffer BufferWindow) *AvailabilityChecker {
	return NewAvailabilityChecker(store, policy, buffer, nil)
}

func newValidator(store AppointmentStore, buffer BufferWindow) *Validator {
	checker := NewAvailabilityChecker(store, nil, buffer, nil)
	resolver := NewBidirectionalResolver(store, nil)
	return NewValidator(checker, resolver, store, ValidatorConfig{}, nil)
}
