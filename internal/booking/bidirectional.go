package booking

import (
	"context"
	"log/slog"

	"github.com/example/salon-scheduler/internal/timeslot"
)

// BidirectionalResult carries only the cross-location subset of conflicts for
// a candidate booking.
type BidirectionalResult struct {
	HasConflicts bool
	Conflicts    []Conflict
}

// BidirectionalResolver re-scans a staff member's appointments for
// time-overlapping entries at a different location than the requested one.
//
// This is a separate pass from the availability checker on purpose: booking
// call-sites that implement bidirectional blocking need only the
// cross-location subset, with its own wording, independent of buffer-policy
// conflicts.
type BidirectionalResolver struct {
	store  AppointmentStore
	logger *slog.Logger
}

// NewBidirectionalResolver wires the resolver to the appointment store.
func NewBidirectionalResolver(store AppointmentStore, logger *slog.Logger) *BidirectionalResolver {
	return &BidirectionalResolver{store: store, logger: defaultLogger(logger)}
}

// CheckBidirectionalConflicts returns every non-terminal appointment of the
// staff member that overlaps the slot in time and sits at a location other
// than requestedLocation. Overlap is tested raw, without buffers.
func (r *BidirectionalResolver) CheckBidirectionalConflicts(ctx context.Context, staffID string, slot timeslot.TimeSlot, requestedLocation, excludeAppointmentID string) BidirectionalResult {
	logger := serviceLogger(ctx, r.logger, "bidirectional", "check", "staff_id", staffID, "location", requestedLocation)

	all, err := r.store.LoadAllAppointments(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load appointments; reporting conflict", "error", err)
		return BidirectionalResult{
			HasConflicts: true,
			Conflicts: []Conflict{{
				Type:    ConflictCrossLocation,
				Message: unavailableReason,
			}},
		}
	}

	var conflicts []Conflict
	for _, existing := range relevantAppointments(all, staffID, excludeAppointmentID) {
		if existing.Location == requestedLocation {
			continue
		}
		existingSlot := existing.Slot()
		if !timeslot.Overlaps(existingSlot, slot) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			Type:          ConflictCrossLocation,
			AppointmentID: existing.ID,
			Location:      existing.Location,
			LocationType:  LocationTypeOf(existing.Location),
			ClientName:    existing.ClientName,
			Service:       existing.Service,
			Start:         existingSlot.Start,
			End:           existingSlot.End,
			Message:       bidirectionalMessage(existing, requestedLocation),
		})
	}

	return BidirectionalResult{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	}
}
