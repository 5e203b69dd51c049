package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/salon-scheduler/internal/staff"
)

// ReflectionEngine maintains shadow appointments: synthetic records that block
// a staff member's availability at every location other than the one the real
// appointment occupies. Shadows move through none -> reflected -> updated ->
// deleted, always driven by their original; they are never edited directly.
type ReflectionEngine struct {
	store  AppointmentStore
	staff  *staff.Service
	logger *slog.Logger
}

// NewReflectionEngine wires the engine to the appointment store and the staff
// capability lookup.
func NewReflectionEngine(store AppointmentStore, staffService *staff.Service, logger *slog.Logger) *ReflectionEngine {
	return &ReflectionEngine{
		store:  store,
		staff:  staffService,
		logger: defaultLogger(logger),
	}
}

// ReflectedID derives the deterministic shadow identifier for an original
// appointment and a target location. Creation keyed on this id is idempotent.
func ReflectedID(originalID, targetLocation string) string {
	return fmt.Sprintf("reflected-%s-%s", originalID, targetLocation)
}

// CreateReflectedAppointments synthesizes shadows for a freshly created
// original and persists them in one batched write. It returns the shadows it
// created, which is empty when the staff member has no home-service
// capability, when the original is itself a shadow, or when every target
// shadow already exists.
func (e *ReflectionEngine) CreateReflectedAppointments(ctx context.Context, original Appointment) ([]Appointment, error) {
	logger := serviceLogger(ctx, e.logger, "reflection", "create", "appointment_id", original.ID)

	if original.IsReflected {
		// Never reflect a shadow.
		return nil, nil
	}
	if original.Blocked() {
		return nil, nil
	}

	entry, err := e.staff.Entry(ctx, original.StaffID)
	if err != nil {
		return nil, fmt.Errorf("resolve staff %s: %w", original.StaffID, err)
	}
	if !entry.IsHomeServiceCapable() {
		return nil, nil
	}

	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	existingIDs := make(map[string]struct{}, len(all))
	for _, a := range all {
		existingIDs[a.ID] = struct{}{}
	}

	var targets []string
	var reflectionType ReflectionType
	if original.Location == staff.LocationHome {
		// Home-service booking blocks every physical branch the staff is
		// assigned to, in directory order.
		targets = entry.PhysicalLocations()
		reflectionType = ReflectionHomeToPhysical
	} else {
		targets = []string{staff.LocationHome}
		reflectionType = ReflectionPhysicalToHome
	}

	created := make([]Appointment, 0, len(targets))
	for _, target := range targets {
		id := ReflectedID(original.ID, target)
		if _, ok := existingIDs[id]; ok {
			continue
		}
		created = append(created, e.buildShadow(original, id, target, reflectionType))
	}

	if len(created) == 0 {
		return nil, nil
	}

	if err := e.store.SaveAllAppointments(ctx, append(all, created...)); err != nil {
		return nil, fmt.Errorf("save appointments: %w", err)
	}

	logger.InfoContext(ctx, "created reflected appointments", "count", len(created), "type", string(reflectionType))
	return created, nil
}

// UpdateReflectedAppointments propagates content changes on an original to
// its shadows: staff name, time, duration, status and the update timestamp
// are overwritten, and the display strings are re-derived. A shadow's id, location and reflection type
// never change. Returns the number of shadows refreshed.
func (e *ReflectionEngine) UpdateReflectedAppointments(ctx context.Context, original Appointment) (int, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}

	updated := 0
	for i, a := range all {
		if !a.IsReflected || a.OriginalAppointmentID != original.ID {
			continue
		}
		a.StaffName = original.StaffName
		a.Start = original.Start
		a.DurationMinutes = original.DurationMinutes
		a.Status = original.Status
		a.ClientName = shadowClientName(original, a.ReflectionType)
		a.Service = shadowService(original)
		a.UpdatedAt = original.UpdatedAt
		all[i] = a
		updated++
	}

	if updated == 0 {
		return 0, nil
	}

	if err := e.store.SaveAllAppointments(ctx, all); err != nil {
		return 0, fmt.Errorf("save appointments: %w", err)
	}

	serviceLogger(ctx, e.logger, "reflection", "update", "appointment_id", original.ID).
		InfoContext(ctx, "updated reflected appointments", "count", updated)
	return updated, nil
}

// DeleteReflectedAppointments removes every shadow owned by the given
// original in one batched write. Returns the number removed.
func (e *ReflectionEngine) DeleteReflectedAppointments(ctx context.Context, originalID string) (int, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}

	remaining := make([]Appointment, 0, len(all))
	removed := 0
	for _, a := range all {
		if a.IsReflected && a.OriginalAppointmentID == originalID {
			removed++
			continue
		}
		remaining = append(remaining, a)
	}

	if removed == 0 {
		return 0, nil
	}

	if err := e.store.SaveAllAppointments(ctx, remaining); err != nil {
		return 0, fmt.Errorf("save appointments: %w", err)
	}

	serviceLogger(ctx, e.logger, "reflection", "delete", "appointment_id", originalID).
		InfoContext(ctx, "deleted reflected appointments", "count", removed)
	return removed, nil
}

// CleanupOrphanedReflections removes shadows whose original no longer exists.
// An orphan is a detectable, repairable state rather than a hard error; the
// cleanup is safe to re-run and a no-op when nothing is orphaned. Returns the
// number of shadows removed.
func (e *ReflectionEngine) CleanupOrphanedReflections(ctx context.Context) (int, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}

	originals := make(map[string]struct{}, len(all))
	for _, a := range all {
		if !a.IsReflected {
			originals[a.ID] = struct{}{}
		}
	}

	remaining := make([]Appointment, 0, len(all))
	removed := 0
	for _, a := range all {
		if a.IsReflected {
			if _, ok := originals[a.OriginalAppointmentID]; !ok {
				removed++
				continue
			}
		}
		remaining = append(remaining, a)
	}

	if removed == 0 {
		return 0, nil
	}

	if err := e.store.SaveAllAppointments(ctx, remaining); err != nil {
		return 0, fmt.Errorf("save appointments: %w", err)
	}

	serviceLogger(ctx, e.logger, "reflection", "cleanup").
		InfoContext(ctx, "removed orphaned reflections", "count", removed)
	return removed, nil
}

// IsReflectedAppointment reports whether the id names a shadow appointment.
func (e *ReflectionEngine) IsReflectedAppointment(ctx context.Context, id string) (bool, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return false, fmt.Errorf("load appointments: %w", err)
	}
	for _, a := range all {
		if a.ID == id {
			return a.IsReflected, nil
		}
	}
	return false, nil
}

// GetOriginalAppointment resolves the original behind a shadow id.
func (e *ReflectionEngine) GetOriginalAppointment(ctx context.Context, reflectedID string) (Appointment, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, fmt.Errorf("load appointments: %w", err)
	}

	var originalID string
	for _, a := range all {
		if a.ID == reflectedID && a.IsReflected {
			originalID = a.OriginalAppointmentID
			break
		}
	}
	if originalID == "" {
		return Appointment{}, ErrNotFound
	}

	for _, a := range all {
		if a.ID == originalID && !a.IsReflected {
			return a, nil
		}
	}
	return Appointment{}, ErrNotFound
}

// GetReflectedAppointments returns every shadow owned by an original.
func (e *ReflectionEngine) GetReflectedAppointments(ctx context.Context, originalID string) ([]Appointment, error) {
	all, err := e.store.LoadAllAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	var shadows []Appointment
	for _, a := range all {
		if a.IsReflected && a.OriginalAppointmentID == originalID {
			shadows = append(shadows, a)
		}
	}
	return shadows, nil
}

func (e *ReflectionEngine) buildShadow(original Appointment, id, targetLocation string, reflectionType ReflectionType) Appointment {
	return Appointment{
		ID:                    id,
		StaffID:               original.StaffID,
		StaffName:             original.StaffName,
		ClientName:            shadowClientName(original, reflectionType),
		Service:               shadowService(original),
		Start:                 original.Start,
		DurationMinutes:       original.DurationMinutes,
		Location:              targetLocation,
		Status:                original.Status,
		IsReflected:           true,
		OriginalAppointmentID: original.ID,
		ReflectionType:        reflectionType,
		CreatedAt:             original.CreatedAt,
		UpdatedAt:             original.UpdatedAt,
	}
}

// shadowClientName embeds the originating location in the display name so
// operators can recognize shadows in a shared calendar view.
func shadowClientName(original Appointment, reflectionType ReflectionType) string {
	if reflectionType == ReflectionHomeToPhysical {
		return "[HOME SERVICE] " + original.ClientName
	}
	return "[" + strings.ToUpper(original.Location) + "] " + original.ClientName
}

func shadowService(original Appointment) string {
	return original.Service + " (Location Blocking)"
}
