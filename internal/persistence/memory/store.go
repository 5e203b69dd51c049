// Package memory provides the in-memory persistence backend. It is the
// default store for development and the backing store for tests.
package memory

import (
	"context"
	"sync"

	"github.com/example/salon-scheduler/internal/booking"
	"github.com/example/salon-scheduler/internal/staff"
)

// Store holds the appointment collection and the staff directory behind a
// single lock. Load and save work on copies so callers can mutate freely.
type Store struct {
	mu           sync.RWMutex
	appointments []booking.Appointment
	staff        map[string]staff.Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{staff: make(map[string]staff.Entry)}
}

// LoadAllAppointments returns a snapshot of the full appointment collection.
func (s *Store) LoadAllAppointments(_ context.Context) ([]booking.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAppointments(s.appointments), nil
}

// SaveAllAppointments replaces the full appointment collection.
func (s *Store) SaveAllAppointments(_ context.Context, appointments []booking.Appointment) error {
	snapshot := cloneAppointments(appointments)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = snapshot
	return nil
}

// GetStaffDirectoryEntry looks up one staff member.
func (s *Store) GetStaffDirectoryEntry(_ context.Context, staffID string) (staff.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.staff[staffID]
	if !ok {
		return staff.Entry{}, staff.ErrUnknownStaff
	}
	entry.Locations = append([]string(nil), entry.Locations...)
	return entry, nil
}

// SeedStaff registers or replaces staff directory entries.
func (s *Store) SeedStaff(entries ...staff.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		entry.Locations = append([]string(nil), entry.Locations...)
		s.staff[entry.ID] = entry
	}
}

// SeedAppointments replaces the appointment collection without going through
// the booking service. Intended for tests and sample data.
func (s *Store) SeedAppointments(appointments ...booking.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = cloneAppointments(appointments)
}

func cloneAppointments(appointments []booking.Appointment) []booking.Appointment {
	if len(appointments) == 0 {
		return nil
	}
	return append([]booking.Appointment(nil), appointments...)
}
