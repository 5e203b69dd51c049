package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/salon-scheduler/internal/staff"
	"github.com/example/salon-scheduler/internal/timeslot"
)

// ValidatorConfig tunes the warning pass of the booking validator.
type ValidatorConfig struct {
	// OpenHour and CloseHour bound normal business hours. Bookings starting
	// before OpenHour or at/after CloseHour are flagged with a warning.
	OpenHour  int
	CloseHour int
	// TravelWindowMinutes is the margin around the candidate slot within
	// which an appointment at another location triggers a travel warning.
	TravelWindowMinutes int
}

const (
	defaultOpenHour     = 9
	defaultCloseHour    = 20
	defaultTravelWindow = 30
)

func (c ValidatorConfig) withDefaults() ValidatorConfig {
	if c.OpenHour <= 0 {
		c.OpenHour = defaultOpenHour
	}
	if c.CloseHour <= 0 {
		c.CloseHour = defaultCloseHour
	}
	if c.TravelWindowMinutes <= 0 {
		c.TravelWindowMinutes = defaultTravelWindow
	}
	return c
}

// Validator is the single entry point booking flows call before committing a
// write. It orchestrates the availability checker and the bidirectional
// resolver and turns raw conflicts into display-ready errors and warnings.
type Validator struct {
	checker  *AvailabilityChecker
	resolver *BidirectionalResolver
	store    AppointmentStore
	cfg      ValidatorConfig
	logger   *slog.Logger
}

// NewValidator wires the validator to its collaborators.
func NewValidator(checker *AvailabilityChecker, resolver *BidirectionalResolver, store AppointmentStore, cfg ValidatorConfig, logger *slog.Logger) *Validator {
	return &Validator{
		checker:  checker,
		resolver: resolver,
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   defaultLogger(logger),
	}
}

// ValidateBooking judges a candidate booking. The result is valid iff no
// errors were produced; warnings are collected regardless of validity and
// never block a booking on their own.
func (v *Validator) ValidateBooking(ctx context.Context, req BookingRequest) ValidationResult {
	slot := req.Slot()
	result := ValidationResult{Valid: true}

	availability := v.checker.CheckAvailability(ctx, req.StaffID, slot, CheckContext{
		Location:             req.Location,
		Service:              req.Service,
		ExcludeAppointmentID: req.ExcludeAppointmentID,
	})

	if !availability.Available {
		result.Valid = false

		bidi := v.resolver.CheckBidirectionalConflicts(ctx, req.StaffID, slot, req.Location, req.ExcludeAppointmentID)
		for _, conflict := range bidi.Conflicts {
			result.Errors = append(result.Errors, conflict.Message)
			result.Conflicts = append(result.Conflicts, conflict)
		}

		for _, conflict := range availability.Conflicts {
			switch conflict.Type {
			case ConflictSameLocation:
				result.Errors = append(result.Errors, conflict.Message)
				result.Conflicts = append(result.Conflicts, conflict)
			case ConflictBlockedTime:
				result.Errors = append(result.Errors, conflict.Message)
				result.Conflicts = append(result.Conflicts, conflict)
			}
		}

		// Buffered-only conflicts produce no specific message above; fall
		// back to the checker's generated reason.
		if len(result.Errors) == 0 && availability.Reason != "" {
			result.Errors = append(result.Errors, availability.Reason)
		}
	}

	result.Warnings = v.collectWarnings(ctx, req, slot)
	return result
}

func (v *Validator) collectWarnings(ctx context.Context, req BookingRequest, slot timeslot.TimeSlot) []string {
	var warnings []string

	hour := slot.Start.Hour()
	if hour < v.cfg.OpenHour {
		warnings = append(warnings, fmt.Sprintf("Booking starts at %s, before opening time (%02d:00).", formatClock(slot.Start), v.cfg.OpenHour))
	} else if hour >= v.cfg.CloseHour {
		warnings = append(warnings, fmt.Sprintf("Booking starts at %s, at or after closing time (%02d:00).", formatClock(slot.Start), v.cfg.CloseHour))
	}

	if req.Location == staff.LocationHome {
		warnings = append(warnings, "Home service appointments require additional travel time to and from the client's location.")
	}

	warnings = append(warnings, v.travelWarnings(ctx, req, slot)...)
	return warnings
}

// travelWarnings flags appointments at other locations that end shortly
// before or start shortly after the candidate slot. A failing store read only
// suppresses these advisory warnings; it never fails the validation pass.
func (v *Validator) travelWarnings(ctx context.Context, req BookingRequest, slot timeslot.TimeSlot) []string {
	all, err := v.store.LoadAllAppointments(ctx)
	if err != nil {
		serviceLogger(ctx, v.logger, "validator", "travel_warnings", "staff_id", req.StaffID).
			WarnContext(ctx, "failed to load appointments; skipping travel warnings", "error", err)
		return nil
	}

	window := time.Duration(v.cfg.TravelWindowMinutes) * time.Minute

	var warnings []string
	for _, existing := range relevantAppointments(all, req.StaffID, req.ExcludeAppointmentID) {
		if existing.Location == req.Location || existing.Blocked() {
			continue
		}
		existingSlot := existing.Slot()

		// Ends inside the window leading up to the candidate slot.
		if !existingSlot.End.After(slot.Start) && existingSlot.End.After(slot.Start.Add(-window)) {
			warnings = append(warnings, fmt.Sprintf("%s has an appointment at %s ending at %s, within %d minutes before this booking. Allow for travel time.",
				staffNameOf(existing), existing.Location, formatClock(existingSlot.End), v.cfg.TravelWindowMinutes))
		}
		// Starts inside the window following the candidate slot.
		if !existingSlot.Start.Before(slot.End) && existingSlot.Start.Before(slot.End.Add(window)) {
			warnings = append(warnings, fmt.Sprintf("%s has an appointment at %s starting at %s, within %d minutes after this booking. Allow for travel time.",
				staffNameOf(existing), existing.Location, formatClock(existingSlot.Start), v.cfg.TravelWindowMinutes))
		}
	}
	return warnings
}

// Summary condenses a validation result into one display line.
// Cross-location phrasing takes priority over the generic conflict count.
func (r ValidationResult) Summary() string {
	if r.Valid {
		if len(r.Warnings) == 0 {
			return "Booking is valid."
		}
		return fmt.Sprintf("Booking is valid with %d warning(s).", len(r.Warnings))
	}

	crossLocation := 0
	for _, conflict := range r.Conflicts {
		if conflict.Type == ConflictCrossLocation {
			crossLocation++
		}
	}
	if crossLocation > 0 {
		return fmt.Sprintf("Cannot book: staff member has %d cross-location conflict(s).", crossLocation)
	}

	count := len(r.Conflicts)
	if count == 0 {
		count = len(r.Errors)
	}
	return fmt.Sprintf("Cannot book: %d conflict(s) found.", count)
}
