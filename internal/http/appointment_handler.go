package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/salon-scheduler/internal/booking"
)

type appointmentService interface {
	CreateAppointment(ctx context.Context, input booking.AppointmentInput) (booking.Appointment, booking.ValidationResult, error)
	CreateBlockedTime(ctx context.Context, input booking.AppointmentInput) (booking.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, input booking.AppointmentInput) (booking.Appointment, booking.ValidationResult, error)
	ChangeStatus(ctx context.Context, id string, status booking.Status) (booking.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	GetAppointment(ctx context.Context, id string) (booking.Appointment, error)
	ListAppointments(ctx context.Context, staffID string) ([]booking.Appointment, error)
	CleanupReflections(ctx context.Context) (int, error)
}

// AppointmentHandler serves the appointment lifecycle endpoints.
type AppointmentHandler struct {
	service   appointmentService
	responder responder
	logger    *slog.Logger
}

func NewAppointmentHandler(service appointmentService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, result, err := h.service.CreateAppointment(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, booking.ErrConflict) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict, validationResponse(result))
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentResponse{
		Appointment: toAppointmentDTO(appointment),
		Validation:  validationResponse(result),
	})
}

func (h *AppointmentHandler) CreateBlockedTime(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	entry, err := h.service.CreateBlockedTime(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentResponse{
		Appointment: toAppointmentDTO(entry),
	})
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, result, err := h.service.UpdateAppointment(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, booking.ErrConflict) {
			h.responder.writeJSON(r.Context(), w, http.StatusConflict, validationResponse(result))
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{
		Appointment: toAppointmentDTO(appointment),
		Validation:  validationResponse(result),
	})
}

func (h *AppointmentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, err := h.service.ChangeStatus(r.Context(), id, booking.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{
		Appointment: toAppointmentDTO(appointment),
	})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	if err := h.service.DeleteAppointment(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{
		Appointment: toAppointmentDTO(appointment),
	})
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	appointments, err := h.service.ListAppointments(r.Context(), staffID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAppointmentsResponse{
		Appointments: toAppointmentDTOs(appointments),
	})
}

func (h *AppointmentHandler) CleanupReflections(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	removed, err := h.service.CleanupReflections(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "appointments", "cleanup").
		InfoContext(r.Context(), "orphaned reflections removed", "count", removed)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, cleanupResponse{Removed: removed})
}

type appointmentRequest struct {
	StaffID         string `json:"staff_id"`
	StaffName       string `json:"staff_name"`
	ClientName      string `json:"client_name"`
	Service         string `json:"service"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
	Location        string `json:"location"`
	Title           string `json:"title"`
}

func (r appointmentRequest) toInput() booking.AppointmentInput {
	return booking.AppointmentInput{
		StaffID:         strings.TrimSpace(r.StaffID),
		StaffName:       r.StaffName,
		ClientName:      r.ClientName,
		Service:         r.Service,
		Start:           parseTime(r.Start),
		DurationMinutes: r.DurationMinutes,
		Location:        strings.TrimSpace(r.Location),
		Title:           r.Title,
	}
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type statusRequest struct {
	Status string `json:"status"`
}

type appointmentResponse struct {
	Appointment appointmentDTO       `json:"appointment"`
	Validation  *validationResultDTO `json:"validation,omitempty"`
}

type listAppointmentsResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

type cleanupResponse struct {
	Removed int `json:"removed"`
}

type appointmentDTO struct {
	ID                    string `json:"id"`
	StaffID               string `json:"staff_id"`
	StaffName             string `json:"staff_name,omitempty"`
	ClientName            string `json:"client_name,omitempty"`
	Service               string `json:"service,omitempty"`
	Start                 string `json:"start"`
	End                   string `json:"end"`
	DurationMinutes       int    `json:"duration_minutes"`
	Location              string `json:"location"`
	Status                string `json:"status"`
	Type                  string `json:"type,omitempty"`
	Title                 string `json:"title,omitempty"`
	IsReflected           bool   `json:"is_reflected,omitempty"`
	OriginalAppointmentID string `json:"original_appointment_id,omitempty"`
	ReflectionType        string `json:"reflection_type,omitempty"`
	CreatedAt             string `json:"created_at,omitempty"`
	UpdatedAt             string `json:"updated_at,omitempty"`
}

func toAppointmentDTO(a booking.Appointment) appointmentDTO {
	slot := a.Slot()
	dto := appointmentDTO{
		ID:                    a.ID,
		StaffID:               a.StaffID,
		StaffName:             a.StaffName,
		ClientName:            a.ClientName,
		Service:               a.Service,
		Start:                 slot.Start.UTC().Format(time.RFC3339Nano),
		End:                   slot.End.UTC().Format(time.RFC3339Nano),
		DurationMinutes:       a.DurationMinutes,
		Location:              a.Location,
		Status:                string(a.Status),
		Type:                  a.Type,
		Title:                 a.Title,
		IsReflected:           a.IsReflected,
		OriginalAppointmentID: a.OriginalAppointmentID,
		ReflectionType:        string(a.ReflectionType),
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !a.UpdatedAt.IsZero() {
		dto.UpdatedAt = a.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func toAppointmentDTOs(appointments []booking.Appointment) []appointmentDTO {
	if len(appointments) == 0 {
		return nil
	}
	out := make([]appointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, toAppointmentDTO(a))
	}
	return out
}
