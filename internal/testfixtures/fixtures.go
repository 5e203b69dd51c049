// Package testfixtures provides deterministic fixtures shared by tests across
// the module: a controllable clock, a sequential id generator, and builders
// for staff and appointment records.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/salon-scheduler/internal/booking"
	"github.com/example/salon-scheduler/internal/staff"
)

var (
	staffCounter       uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2025, time.June, 26, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures: the
// opening hour of an ordinary working day.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Staff fixtures -----------------------------

// StaffOption configures a generated staff entry.
type StaffOption func(*staff.Entry)

// NewStaffEntry returns a deterministic staff directory entry. By default the
// entry is active, assigned to two physical branches, and not home-service
// capable.
func NewStaffEntry(opts ...StaffOption) staff.Entry {
	idx := atomic.AddUint64(&staffCounter, 1)
	entry := staff.Entry{
		ID:          fmt.Sprintf("staff-%03d", idx),
		DisplayName: fmt.Sprintf("Staff %03d", idx),
		Active:      true,
		Locations:   []string{"loc1", "loc2"},
	}
	for _, opt := range opts {
		opt(&entry)
	}
	return entry
}

// WithStaffID overrides the generated staff id.
func WithStaffID(id string) StaffOption {
	return func(e *staff.Entry) { e.ID = id }
}

// WithStaffName overrides the generated display name.
func WithStaffName(name string) StaffOption {
	return func(e *staff.Entry) { e.DisplayName = name }
}

// WithHomeService marks the entry as home-service capable.
func WithHomeService() StaffOption {
	return func(e *staff.Entry) { e.HomeServiceCapable = true }
}

// WithLocations overrides the assigned locations.
func WithLocations(locations ...string) StaffOption {
	return func(e *staff.Entry) { e.Locations = locations }
}

// -------------------------- Appointment fixtures --------------------------

// AppointmentOption configures a generated appointment.
type AppointmentOption func(*booking.Appointment)

// NewAppointment returns a deterministic confirmed appointment. Consecutive
// fixtures are spaced an hour apart starting from ReferenceTime.
func NewAppointment(opts ...AppointmentOption) booking.Appointment {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	appointment := booking.Appointment{
		ID:              fmt.Sprintf("appointment-%03d", idx),
		StaffID:         "staff-001",
		StaffName:       "Staff 001",
		ClientName:      fmt.Sprintf("Client %03d", idx),
		Service:         "Haircut",
		Start:           referenceTime.Add(time.Duration(idx) * time.Hour),
		DurationMinutes: 60,
		Location:        "loc1",
		Status:          booking.StatusConfirmed,
	}
	for _, opt := range opts {
		opt(&appointment)
	}
	return appointment
}

// WithAppointmentID overrides the generated appointment id.
func WithAppointmentID(id string) AppointmentOption {
	return func(a *booking.Appointment) { a.ID = id }
}

// ForStaff points the appointment at a specific staff member.
func ForStaff(staffID, staffName string) AppointmentOption {
	return func(a *booking.Appointment) {
		a.StaffID = staffID
		a.StaffName = staffName
	}
}

// AtLocation overrides the location.
func AtLocation(location string) AppointmentOption {
	return func(a *booking.Appointment) { a.Location = location }
}

// StartingAt overrides the start time.
func StartingAt(start time.Time) AppointmentOption {
	return func(a *booking.Appointment) { a.Start = start }
}

// Lasting overrides the duration.
func Lasting(minutes int) AppointmentOption {
	return func(a *booking.Appointment) { a.DurationMinutes = minutes }
}

// WithStatus overrides the lifecycle status.
func WithStatus(status booking.Status) AppointmentOption {
	return func(a *booking.Appointment) { a.Status = status }
}

// AsBlockedTime turns the fixture into a blocked-time entry with the given
// title.
func AsBlockedTime(title string) AppointmentOption {
	return func(a *booking.Appointment) {
		a.Type = booking.TypeBlocked
		a.Title = title
		a.ClientName = ""
		a.Service = ""
	}
}
