package booking

import (
	"fmt"
	"time"

	"github.com/example/salon-scheduler/internal/staff"
)

const (
	// unavailableReason is returned when the storage collaborator cannot be
	// read. Availability fails closed, never open.
	unavailableReason = "Unable to verify staff availability. Please try again."

	fallbackStaffName  = "Staff member"
	fallbackBlockTitle = "Blocked time"
)

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

func formatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", formatClock(start), formatClock(end))
}

func staffNameOf(a Appointment) string {
	if a.StaffName != "" {
		return a.StaffName
	}
	return fallbackStaffName
}

func blockTitleOf(a Appointment) string {
	if a.Title != "" {
		return a.Title
	}
	if a.Service != "" {
		return a.Service
	}
	return fallbackBlockTitle
}

func sameLocationMessage(existing Appointment) string {
	slot := existing.Slot()
	return fmt.Sprintf("%s already has an appointment with %s (%s) from %s at this location.",
		staffNameOf(existing), existing.ClientName, existing.Service, formatTimeRange(slot.Start, slot.End))
}

func blockedTimeMessage(existing Appointment) string {
	slot := existing.Slot()
	return fmt.Sprintf("%s has blocked time (%s) from %s.",
		staffNameOf(existing), blockTitleOf(existing), formatTimeRange(slot.Start, slot.End))
}

// bidirectionalMessage renders the cross-location wording. Which branch
// applies depends on whether the existing appointment or the request sits at
// the virtual home location.
func bidirectionalMessage(existing Appointment, requestedLocation string) string {
	slot := existing.Slot()
	timeRange := formatTimeRange(slot.Start, slot.End)

	switch {
	case existing.Location == staff.LocationHome && requestedLocation != staff.LocationHome:
		return fmt.Sprintf("%s has a home service appointment with %s (%s) from %s. Cannot book at %s during this time due to bidirectional blocking.",
			staffNameOf(existing), existing.ClientName, existing.Service, timeRange, requestedLocation)
	case existing.Location != staff.LocationHome && requestedLocation == staff.LocationHome:
		return fmt.Sprintf("%s has an appointment at %s with %s (%s) from %s. Cannot book home service during this time due to bidirectional blocking.",
			staffNameOf(existing), existing.Location, existing.ClientName, existing.Service, timeRange)
	default:
		return fmt.Sprintf("%s has an appointment with %s (%s) from %s at %s. Cannot book at %s during this time.",
			staffNameOf(existing), existing.ClientName, existing.Service, timeRange, existing.Location, requestedLocation)
	}
}
