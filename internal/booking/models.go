package booking

import (
	"context"
	"time"

	"github.com/example/salon-scheduler/internal/staff"
	"github.com/example/salon-scheduler/internal/timeslot"
)

// Status tracks the lifecycle of an appointment from booking to completion.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusArrived        Status = "arrived"
	StatusServiceStarted Status = "service-started"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusNoShow         Status = "no-show"
)

// Terminal reports whether the appointment can no longer conflict with new
// bookings. Completed, cancelled and no-show appointments are skipped by every
// conflict scan.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// TypeBlocked marks entries that represent blocked-out staff time rather than
// a client appointment.
const TypeBlocked = "blocked"

// ReflectionType records which direction produced a shadow appointment.
type ReflectionType string

const (
	// ReflectionPhysicalToHome marks a shadow created at the home location
	// for an original booked at a physical branch.
	ReflectionPhysicalToHome ReflectionType = "physical-to-home"
	// ReflectionHomeToPhysical marks a shadow created at a physical branch
	// for an original booked as home service.
	ReflectionHomeToPhysical ReflectionType = "home-to-physical"
)

// Appointment is the unit of scheduling for a staff member. Shadow
// appointments produced by the reflection engine use the same shape with the
// reflection fields populated.
type Appointment struct {
	ID              string
	StaffID         string
	StaffName       string
	ClientName      string
	Service         string
	Start           time.Time
	DurationMinutes int
	Location        string
	Status          Status
	Type            string
	Title           string

	// Reflection fields. IsReflected never changes once set; the shadow is
	// owned by the appointment referenced by OriginalAppointmentID.
	IsReflected           bool
	OriginalAppointmentID string
	ReflectionType        ReflectionType

	// Audit timestamps, stamped by the service clock. Shadows carry their
	// original's timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot returns the time interval the appointment occupies.
func (a Appointment) Slot() timeslot.TimeSlot {
	return timeslot.New(a.Start, a.DurationMinutes)
}

// Blocked reports whether the entry is blocked staff time.
func (a Appointment) Blocked() bool {
	return a.Type == TypeBlocked
}

// AppointmentStore is the storage collaborator. The engine always reads the
// full collection and writes it back in one call; atomicity of the
// read-modify-write belongs to the implementation.
type AppointmentStore interface {
	LoadAllAppointments(ctx context.Context) ([]Appointment, error)
	SaveAllAppointments(ctx context.Context, appointments []Appointment) error
}

// ConflictType classifies a detected booking conflict.
type ConflictType string

const (
	ConflictSameLocation  ConflictType = "same-location"
	ConflictCrossLocation ConflictType = "cross-location"
	ConflictBlockedTime   ConflictType = "blocked-time"
)

// LocationType distinguishes the virtual home location from physical branches
// in conflict records.
type LocationType string

const (
	LocationTypeHome     LocationType = "home"
	LocationTypePhysical LocationType = "physical"
)

// LocationTypeOf classifies a location identifier.
func LocationTypeOf(location string) LocationType {
	if location == staff.LocationHome {
		return LocationTypeHome
	}
	return LocationTypePhysical
}

// Conflict is a structured description of one offending appointment,
// presentable to booking callers alongside the formatted message.
type Conflict struct {
	Type          ConflictType
	AppointmentID string
	Location      string
	LocationType  LocationType
	ClientName    string
	Service       string
	Start         time.Time
	End           time.Time
	Message       string
}

// BookingRequest carries everything the validator needs to judge a candidate
// booking. ExcludeAppointmentID is set when re-validating an appointment under
// modification so it does not conflict with itself.
type BookingRequest struct {
	StaffID              string
	Start                time.Time
	DurationMinutes      int
	Location             string
	ClientName           string
	Service              string
	ExcludeAppointmentID string
}

// Slot returns the candidate time slot for the request.
func (r BookingRequest) Slot() timeslot.TimeSlot {
	return timeslot.New(r.Start, r.DurationMinutes)
}

// ValidationResult is the outcome of a booking validation. Errors and warnings
// are pre-formatted for display; callers surface them verbatim.
type ValidationResult struct {
	Valid     bool
	Errors    []string
	Warnings  []string
	Conflicts []Conflict
}
