package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/salon-scheduler/internal/booking"
)

type bookingValidator interface {
	ValidateBooking(ctx context.Context, req booking.BookingRequest) booking.ValidationResult
}

// BookingHandler serves dry-run booking validation. It never writes; callers
// use it to preview conflicts and warnings before committing a booking.
type BookingHandler struct {
	validator bookingValidator
	responder responder
}

func NewBookingHandler(validator bookingValidator, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{validator: validator, responder: newResponder(logger)}
}

func (h *BookingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.validator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req validateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	bookingReq := req.toBookingRequest()
	if err := booking.ValidateRequest(bookingReq); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	result := h.validator.ValidateBooking(r.Context(), bookingReq)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, validationResponse(result))
}

type validateBookingRequest struct {
	StaffID              string `json:"staff_id"`
	Start                string `json:"start"`
	DurationMinutes      int    `json:"duration_minutes"`
	Location             string `json:"location"`
	ClientName           string `json:"client_name"`
	Service              string `json:"service"`
	ExcludeAppointmentID string `json:"exclude_appointment_id"`
}

func (r validateBookingRequest) toBookingRequest() booking.BookingRequest {
	return booking.BookingRequest{
		StaffID:              strings.TrimSpace(r.StaffID),
		Start:                parseTime(r.Start),
		DurationMinutes:      r.DurationMinutes,
		Location:             strings.TrimSpace(r.Location),
		ClientName:           r.ClientName,
		Service:              r.Service,
		ExcludeAppointmentID: strings.TrimSpace(r.ExcludeAppointmentID),
	}
}

type validationResultDTO struct {
	Valid     bool          `json:"valid"`
	Summary   string        `json:"summary"`
	Errors    []string      `json:"errors,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
	Conflicts []conflictDTO `json:"conflicts,omitempty"`
}

type conflictDTO struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Location      string `json:"location,omitempty"`
	LocationType  string `json:"location_type,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	Service       string `json:"service,omitempty"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	Message       string `json:"message"`
}

func validationResponse(result booking.ValidationResult) *validationResultDTO {
	dto := &validationResultDTO{
		Valid:    result.Valid,
		Summary:  result.Summary(),
		Errors:   append([]string(nil), result.Errors...),
		Warnings: append([]string(nil), result.Warnings...),
	}
	for _, conflict := range result.Conflicts {
		dto.Conflicts = append(dto.Conflicts, toConflictDTO(conflict))
	}
	return dto
}

func toConflictDTO(conflict booking.Conflict) conflictDTO {
	dto := conflictDTO{
		Type:          string(conflict.Type),
		AppointmentID: conflict.AppointmentID,
		Location:      conflict.Location,
		LocationType:  string(conflict.LocationType),
		ClientName:    conflict.ClientName,
		Service:       conflict.Service,
		Message:       conflict.Message,
	}
	if !conflict.Start.IsZero() {
		dto.Start = conflict.Start.UTC().Format(time.RFC3339Nano)
	}
	if !conflict.End.IsZero() {
		dto.End = conflict.End.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
