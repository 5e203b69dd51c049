// Package http provides HTTP handlers and middleware for the salon booking
// API.
//
// The router exposes the following endpoints:
//   - POST /bookings/validate: dry-run validation of a candidate booking.
//     Responds with the `validationResultDTO` payload defined in
//     booking_handler.go: a summary line, display-ready errors and warnings,
//     and structured conflict records.
//   - GET /appointments, POST /appointments: listing (optionally filtered by
//     `staff_id`) and booking creation. Creation re-runs validation and
//     answers 409 with the validation payload when the slot conflicts.
//   - GET /appointments/{id}, PUT /appointments/{id}, DELETE
//     /appointments/{id}: single appointment access, rescheduling and
//     cancellation. Mutations cascade to the appointment's reflected shadows.
//   - PUT /appointments/{id}/status: lifecycle transitions. Body:
//     {"status"}.
//   - POST /blocked-times: records blocked staff time; bypasses booking
//     validation.
//   - POST /reflections/cleanup: removes orphaned reflected appointments and
//     reports the count.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
