package booking

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// AppointmentInput captures caller provided appointment fields.
type AppointmentInput struct {
	StaffID         string
	StaffName       string
	ClientName      string
	Service         string
	Start           time.Time
	DurationMinutes int
	Location        string
	Title           string
}

// Service implements the booking flow the engine is designed for: validate,
// persist the original appointment, then let the reflection engine mirror it.
// Reflection failures are logged and never fail the primary operation.
type Service struct {
	store       AppointmentStore
	validator   *Validator
	reflections *ReflectionEngine
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewService wires dependencies for appointment operations.
func NewService(store AppointmentStore, validator *Validator, reflections *ReflectionEngine, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Service {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		validator:   validator,
		reflections: reflections,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateAppointment validates the booking and persists it. The validation
// result is returned in every case so callers can surface errors and warnings
// verbatim; on conflict the returned error is ErrConflict.
func (s *Service) CreateAppointment(ctx context.Context, input AppointmentInput) (Appointment, ValidationResult, error) {
	if err := validateInput(input); err != nil {
		return Appointment{}, ValidationResult{}, err
	}

	result := s.validator.ValidateBooking(ctx, BookingRequest{
		StaffID:         input.StaffID,
		Start:           input.Start,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		ClientName:      input.ClientName,
		Service:         input.Service,
	})
	if !result.Valid {
		return Appointment{}, result, ErrConflict
	}

	stamped := s.now()
	appointment := Appointment{
		ID:              s.idGenerator(),
		StaffID:         input.StaffID,
		StaffName:       strings.TrimSpace(input.StaffName),
		ClientName:      strings.TrimSpace(input.ClientName),
		Service:         strings.TrimSpace(input.Service),
		Start:           input.Start,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Status:          StatusPending,
		CreatedAt:       stamped,
		UpdatedAt:       stamped,
	}

	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, result, err
	}
	if err := s.store.SaveAllAppointments(ctx, append(all, appointment)); err != nil {
		return Appointment{}, result, err
	}

	s.reflect(ctx, "create", appointment.ID, func() error {
		_, err := s.reflections.CreateReflectedAppointments(ctx, appointment)
		return err
	})

	return appointment, result, nil
}

// CreateBlockedTime records blocked staff time. Blocked entries bypass
// booking validation and are never reflected; they simply make the slot
// unavailable to future availability scans.
func (s *Service) CreateBlockedTime(ctx context.Context, input AppointmentInput) (Appointment, error) {
	if err := validateInput(input); err != nil {
		return Appointment{}, err
	}

	stamped := s.now()
	entry := Appointment{
		ID:              s.idGenerator(),
		StaffID:         input.StaffID,
		StaffName:       strings.TrimSpace(input.StaffName),
		Start:           input.Start,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Status:          StatusConfirmed,
		Type:            TypeBlocked,
		Title:           strings.TrimSpace(input.Title),
		CreatedAt:       stamped,
		UpdatedAt:       stamped,
	}

	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, err
	}
	if err := s.store.SaveAllAppointments(ctx, append(all, entry)); err != nil {
		return Appointment{}, err
	}
	return entry, nil
}

// UpdateAppointment re-validates the changed booking (excluding the
// appointment itself from conflict scans) and persists it, then refreshes its
// shadows. Status and reflection fields are not touched here.
func (s *Service) UpdateAppointment(ctx context.Context, id string, input AppointmentInput) (Appointment, ValidationResult, error) {
	if err := validateInput(input); err != nil {
		return Appointment{}, ValidationResult{}, err
	}

	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, ValidationResult{}, err
	}

	index := indexOf(all, id)
	if index < 0 {
		return Appointment{}, ValidationResult{}, ErrNotFound
	}
	existing := all[index]
	if existing.IsReflected {
		// Shadows are only ever modified through their original.
		return Appointment{}, ValidationResult{}, ErrNotFound
	}

	result := s.validator.ValidateBooking(ctx, BookingRequest{
		StaffID:              input.StaffID,
		Start:                input.Start,
		DurationMinutes:      input.DurationMinutes,
		Location:             input.Location,
		ClientName:           input.ClientName,
		Service:              input.Service,
		ExcludeAppointmentID: id,
	})
	if !result.Valid {
		return Appointment{}, result, ErrConflict
	}

	updated := existing
	updated.StaffID = input.StaffID
	updated.StaffName = strings.TrimSpace(input.StaffName)
	updated.ClientName = strings.TrimSpace(input.ClientName)
	updated.Service = strings.TrimSpace(input.Service)
	updated.Start = input.Start
	updated.DurationMinutes = input.DurationMinutes
	updated.Location = input.Location
	updated.UpdatedAt = s.now()
	all[index] = updated

	if err := s.store.SaveAllAppointments(ctx, all); err != nil {
		return Appointment{}, result, err
	}

	s.reflect(ctx, "update", id, func() error {
		_, err := s.reflections.UpdateReflectedAppointments(ctx, updated)
		return err
	})

	return updated, result, nil
}

// ChangeStatus moves an appointment through its lifecycle and propagates the
// new status to its shadows.
func (s *Service) ChangeStatus(ctx context.Context, id string, status Status) (Appointment, error) {
	if !knownStatus(status) {
		vErr := &ValidationError{}
		vErr.add("status", "unknown status")
		return Appointment{}, vErr
	}

	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, err
	}

	index := indexOf(all, id)
	if index < 0 || all[index].IsReflected {
		return Appointment{}, ErrNotFound
	}

	updated := all[index]
	updated.Status = status
	updated.UpdatedAt = s.now()
	all[index] = updated

	if err := s.store.SaveAllAppointments(ctx, all); err != nil {
		return Appointment{}, err
	}

	s.reflect(ctx, "status", id, func() error {
		_, err := s.reflections.UpdateReflectedAppointments(ctx, updated)
		return err
	})

	return updated, nil
}

// DeleteAppointment removes an original appointment and its shadows.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return err
	}

	index := indexOf(all, id)
	if index < 0 || all[index].IsReflected {
		return ErrNotFound
	}

	remaining := append(all[:index:index], all[index+1:]...)
	if err := s.store.SaveAllAppointments(ctx, remaining); err != nil {
		return err
	}

	s.reflect(ctx, "delete", id, func() error {
		_, err := s.reflections.DeleteReflectedAppointments(ctx, id)
		return err
	})

	return nil
}

// GetAppointment returns a single appointment, shadow or original.
func (s *Service) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return Appointment{}, err
	}
	if index := indexOf(all, id); index >= 0 {
		return all[index], nil
	}
	return Appointment{}, ErrNotFound
}

// ListAppointments returns appointments ordered by start time, optionally
// narrowed to one staff member. Shadows are included; they are real entries
// in the shared calendar.
func (s *Service) ListAppointments(ctx context.Context, staffID string) ([]Appointment, error) {
	all, err := s.store.LoadAllAppointments(ctx)
	if err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(all))
	for _, a := range all {
		if staffID != "" && a.StaffID != staffID {
			continue
		}
		appointments = append(appointments, a)
	}
	sortAppointments(appointments)
	return appointments, nil
}

// CleanupReflections removes orphaned shadows, returning the count removed.
func (s *Service) CleanupReflections(ctx context.Context) (int, error) {
	return s.reflections.CleanupOrphanedReflections(ctx)
}

// reflect runs a reflection-engine call, logging failures instead of
// surfacing them: the shadow system is a consistency aid and must never fail
// the primary booking operation.
func (s *Service) reflect(ctx context.Context, operation, appointmentID string, fn func() error) {
	if err := fn(); err != nil {
		serviceLogger(ctx, s.logger, "appointments", operation, "appointment_id", appointmentID).
			ErrorContext(ctx, "reflection maintenance failed", "error", err, "error_kind", ErrorKind(err))
	}
}

// ValidateRequest applies the structural field rules shared with appointment
// writes to a dry-run validation request. A failure means the request is
// malformed, not that the booking conflicts.
func ValidateRequest(req BookingRequest) error {
	return validateInput(AppointmentInput{
		StaffID:         req.StaffID,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
	})
}

func validateInput(input AppointmentInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.StaffID) == "" {
		vErr.add("staff_id", "staff id is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		vErr.add("location", "location is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func knownStatus(status Status) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusArrived, StatusServiceStarted,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func indexOf(appointments []Appointment, id string) int {
	for i, a := range appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func sortAppointments(appointments []Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Start.Equal(appointments[j].Start) {
			return appointments[i].ID < appointments[j].ID
		}
		return appointments[i].Start.Before(appointments[j].Start)
	})
}
