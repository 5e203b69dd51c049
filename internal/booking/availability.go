package booking

import (
	"context"
	"log/slog"

	"github.com/example/salon-scheduler/internal/timeslot"
)

// CheckContext narrows an availability scan to the booking under
// consideration. Location drives the same- vs cross-location classification
// and, together with Service, the dynamic buffer lookup.
type CheckContext struct {
	Location             string
	Service              string
	ExcludeAppointmentID string
}

// AvailabilityResult reports whether a staff member is free for a slot, with
// the offending appointments when not.
type AvailabilityResult struct {
	Available bool
	Conflicts []Conflict
	Reason    string
}

// AvailabilityChecker scans a staff member's existing appointments and
// blocked-time entries for collisions with a candidate slot. It is read-only;
// storage read failures make the checker report unavailable rather than
// propagate an error.
type AvailabilityChecker struct {
	store        AppointmentStore
	bufferPolicy BufferPolicy
	staticBuffer BufferWindow
	logger       *slog.Logger
}

// NewAvailabilityChecker wires the checker to its collaborators. bufferPolicy
// may be nil, in which case only the static buffer applies.
func NewAvailabilityChecker(store AppointmentStore, bufferPolicy BufferPolicy, staticBuffer BufferWindow, logger *slog.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{
		store:        store,
		bufferPolicy: bufferPolicy,
		staticBuffer: staticBuffer,
		logger:       defaultLogger(logger),
	}
}

// CheckAvailability reports whether the staff member is free for the slot.
//
// Ordinary appointments are tested against the candidate with a buffer, the
// field-wise larger of the static buffer and the policy buffer for the
// appointment's service, location and time. Blocked-time entries are tested
// raw. Appointments in a terminal status and the appointment named by
// cc.ExcludeAppointmentID never conflict.
func (c *AvailabilityChecker) CheckAvailability(ctx context.Context, staffID string, slot timeslot.TimeSlot, cc CheckContext) AvailabilityResult {
	logger := serviceLogger(ctx, c.logger, "availability", "check", "staff_id", staffID)

	all, err := c.store.LoadAllAppointments(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load appointments; reporting unavailable", "error", err)
		return AvailabilityResult{Available: false, Reason: unavailableReason}
	}

	var conflicts []Conflict
	for _, existing := range relevantAppointments(all, staffID, cc.ExcludeAppointmentID) {
		existingSlot := existing.Slot()

		if existing.Blocked() {
			if timeslot.Overlaps(existingSlot, slot) {
				conflicts = append(conflicts, c.buildConflict(existing, ConflictBlockedTime, blockedTimeMessage(existing)))
			}
			continue
		}

		before, after := c.bufferFor(ctx, existing)
		buffered := timeslot.Buffered(existingSlot, before, after)
		if !timeslot.Overlaps(buffered, slot) {
			continue
		}

		conflictType := ConflictSameLocation
		message := sameLocationMessage(existing)
		if cc.Location != "" && existing.Location != cc.Location {
			conflictType = ConflictCrossLocation
			message = bidirectionalMessage(existing, cc.Location)
		}
		conflicts = append(conflicts, c.buildConflict(existing, conflictType, message))
	}

	if len(conflicts) == 0 {
		return AvailabilityResult{Available: true}
	}

	return AvailabilityResult{
		Available: false,
		Conflicts: conflicts,
		Reason:    conflicts[0].Message,
	}
}

// bufferFor resolves the buffer window for an existing appointment. The
// static buffer is the floor; a failing policy lookup degrades to it.
func (c *AvailabilityChecker) bufferFor(ctx context.Context, existing Appointment) (int, int) {
	window := c.staticBuffer
	if c.bufferPolicy != nil {
		dynamic, err := c.bufferPolicy.GetBufferPolicy(ctx, existing.Service, existing.Location, existing.Start)
		if err != nil {
			serviceLogger(ctx, c.logger, "availability", "buffer").WarnContext(ctx, "buffer policy lookup failed; using static buffer", "error", err)
		} else {
			window = window.max(dynamic)
		}
	}
	return window.BeforeMinutes, window.AfterMinutes
}

func (c *AvailabilityChecker) buildConflict(existing Appointment, conflictType ConflictType, message string) Conflict {
	slot := existing.Slot()
	return Conflict{
		Type:          conflictType,
		AppointmentID: existing.ID,
		Location:      existing.Location,
		LocationType:  LocationTypeOf(existing.Location),
		ClientName:    existing.ClientName,
		Service:       existing.Service,
		Start:         slot.Start,
		End:           slot.End,
		Message:       message,
	}
}

// relevantAppointments filters the collection to one staff member's
// non-terminal entries, dropping the appointment under modification.
func relevantAppointments(all []Appointment, staffID, excludeID string) []Appointment {
	relevant := make([]Appointment, 0, len(all))
	for _, a := range all {
		if a.StaffID != staffID {
			continue
		}
		if excludeID != "" && (a.ID == excludeID || a.OriginalAppointmentID == excludeID) {
			continue
		}
		if a.Status.Terminal() {
			continue
		}
		relevant = append(relevant, a)
	}
	return relevant
}
