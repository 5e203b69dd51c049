// Package sqlite provides the durable persistence backend, backed by a
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/salon-scheduler/internal/booking"
	"github.com/example/salon-scheduler/internal/staff"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS appointments (
	id                      TEXT PRIMARY KEY,
	staff_id                TEXT NOT NULL,
	staff_name              TEXT NOT NULL DEFAULT '',
	client_name             TEXT NOT NULL DEFAULT '',
	service                 TEXT NOT NULL DEFAULT '',
	start                   TEXT NOT NULL,
	duration_minutes        INTEGER NOT NULL,
	location                TEXT NOT NULL,
	status                  TEXT NOT NULL,
	type                    TEXT NOT NULL DEFAULT '',
	title                   TEXT NOT NULL DEFAULT '',
	is_reflected            INTEGER NOT NULL DEFAULT 0,
	original_appointment_id TEXT NOT NULL DEFAULT '',
	reflection_type         TEXT NOT NULL DEFAULT '',
	created_at              TEXT NOT NULL,
	updated_at              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_appointments_staff ON appointments (staff_id, start);

CREATE TABLE IF NOT EXISTS staff (
	id                   TEXT PRIMARY KEY,
	display_name         TEXT NOT NULL,
	active               INTEGER NOT NULL DEFAULT 1,
	home_service_capable INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS staff_locations (
	staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
	location TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (staff_id, location)
);
`

// Store implements the appointment store and staff directory on SQLite.
type Store struct {
	db *sql.DB
}

// Open connects to the database identified by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// The collection is rewritten as a whole; a single writer keeps
	// save transactions from contending with each other.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// LoadAllAppointments reads the full appointment collection.
func (s *Store) LoadAllAppointments(ctx context.Context) ([]booking.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, staff_name, client_name, service, start,
		       duration_minutes, location, status, type, title,
		       is_reflected, original_appointment_id, reflection_type,
		       created_at, updated_at
		FROM appointments
		ORDER BY start, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load appointments: %w", err)
	}
	defer rows.Close()

	var appointments []booking.Appointment
	for rows.Next() {
		var (
			a         booking.Appointment
			start     string
			reflected int
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(
			&a.ID, &a.StaffID, &a.StaffName, &a.ClientName, &a.Service, &start,
			&a.DurationMinutes, &a.Location, &a.Status, &a.Type, &a.Title,
			&reflected, &a.OriginalAppointmentID, &a.ReflectionType,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan appointment: %w", err)
		}
		a.Start, err = time.Parse(time.RFC3339Nano, start)
		if err != nil {
			return nil, fmt.Errorf("sqlite: appointment %s has malformed start %q: %w", a.ID, start, err)
		}
		a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: appointment %s has malformed created_at %q: %w", a.ID, createdAt, err)
		}
		a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: appointment %s has malformed updated_at %q: %w", a.ID, updatedAt, err)
		}
		a.IsReflected = reflected != 0
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load appointments: %w", err)
	}
	return appointments, nil
}

// SaveAllAppointments replaces the full appointment collection in one
// transaction so readers never observe a partial rewrite.
func (s *Store) SaveAllAppointments(ctx context.Context, appointments []booking.Appointment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments`); err != nil {
		return fmt.Errorf("sqlite: clear appointments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO appointments (
			id, staff_id, staff_name, client_name, service, start,
			duration_minutes, location, status, type, title,
			is_reflected, original_appointment_id, reflection_type,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range appointments {
		reflected := 0
		if a.IsReflected {
			reflected = 1
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.StaffID, a.StaffName, a.ClientName, a.Service,
			a.Start.UTC().Format(time.RFC3339Nano),
			a.DurationMinutes, a.Location, string(a.Status), a.Type, a.Title,
			reflected, a.OriginalAppointmentID, string(a.ReflectionType),
			a.CreatedAt.UTC().Format(time.RFC3339Nano),
			a.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("sqlite: insert appointment %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

// GetStaffDirectoryEntry looks up one staff member with assigned locations in
// their stored order.
func (s *Store) GetStaffDirectoryEntry(ctx context.Context, staffID string) (staff.Entry, error) {
	var (
		entry   staff.Entry
		active  int
		capable int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, active, home_service_capable
		FROM staff WHERE id = ?`, staffID).
		Scan(&entry.ID, &entry.DisplayName, &active, &capable)
	if errors.Is(err, sql.ErrNoRows) {
		return staff.Entry{}, staff.ErrUnknownStaff
	}
	if err != nil {
		return staff.Entry{}, fmt.Errorf("sqlite: load staff %s: %w", staffID, err)
	}
	entry.Active = active != 0
	entry.HomeServiceCapable = capable != 0

	rows, err := s.db.QueryContext(ctx, `
		SELECT location FROM staff_locations
		WHERE staff_id = ? ORDER BY position`, staffID)
	if err != nil {
		return staff.Entry{}, fmt.Errorf("sqlite: load staff locations %s: %w", staffID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return staff.Entry{}, fmt.Errorf("sqlite: scan staff location: %w", err)
		}
		entry.Locations = append(entry.Locations, location)
	}
	if err := rows.Err(); err != nil {
		return staff.Entry{}, fmt.Errorf("sqlite: load staff locations %s: %w", staffID, err)
	}
	return entry, nil
}

// SeedStaff registers or replaces staff directory entries.
func (s *Store) SeedStaff(ctx context.Context, entries ...staff.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		active, capable := 0, 0
		if entry.Active {
			active = 1
		}
		if entry.HomeServiceCapable {
			capable = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO staff (id, display_name, active, home_service_capable)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				active = excluded.active,
				home_service_capable = excluded.home_service_capable`,
			entry.ID, entry.DisplayName, active, capable,
		); err != nil {
			return fmt.Errorf("sqlite: seed staff %s: %w", entry.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM staff_locations WHERE staff_id = ?`, entry.ID); err != nil {
			return fmt.Errorf("sqlite: reset staff locations %s: %w", entry.ID, err)
		}
		for position, location := range entry.Locations {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO staff_locations (staff_id, location, position)
				VALUES (?, ?, ?)`,
				entry.ID, location, position,
			); err != nil {
				return fmt.Errorf("sqlite: seed staff location %s/%s: %w", entry.ID, location, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit seed: %w", err)
	}
	return nil
}
