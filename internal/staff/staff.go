package staff

import (
	"context"
	"errors"
)

// ErrUnknownStaff is returned by directories when a staff id has no entry.
var ErrUnknownStaff = errors.New("staff: unknown staff member")

// LocationHome is the sentinel identifier for the virtual home-service
// location. Staff assigned to it visit clients instead of working at a
// physical branch.
const LocationHome = "home"

// Entry is a read-only view of a staff member as kept by the external staff
// directory. Assigned locations preserve the directory's ordering.
type Entry struct {
	ID                 string
	DisplayName        string
	Active             bool
	HomeServiceCapable bool
	Locations          []string
}

// Directory exposes staff lookups owned by the surrounding staff-management
// system.
type Directory interface {
	GetStaffDirectoryEntry(ctx context.Context, staffID string) (Entry, error)
}

// HomeServiceCapable reports whether the staff member may take home-service
// bookings. Both representations found in directory data count: the explicit
// profile flag and a "home" entry in the assigned-location set.
func (e Entry) IsHomeServiceCapable() bool {
	if e.HomeServiceCapable {
		return true
	}
	for _, location := range e.Locations {
		if location == LocationHome {
			return true
		}
	}
	return false
}

// PhysicalLocations returns the staff member's assigned locations with the
// virtual home location excluded, in directory order.
func (e Entry) PhysicalLocations() []string {
	physical := make([]string, 0, len(e.Locations))
	for _, location := range e.Locations {
		if location == LocationHome {
			continue
		}
		physical = append(physical, location)
	}
	return physical
}

// Service resolves staff capabilities through an injected directory.
type Service struct {
	directory Directory
}

// NewService wires the capability lookup to a directory implementation.
func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

// Entry fetches the directory entry for a staff member.
func (s *Service) Entry(ctx context.Context, staffID string) (Entry, error) {
	return s.directory.GetStaffDirectoryEntry(ctx, staffID)
}

// IsHomeServiceCapable resolves the home-service capability for a staff id.
func (s *Service) IsHomeServiceCapable(ctx context.Context, staffID string) (bool, error) {
	entry, err := s.directory.GetStaffDirectoryEntry(ctx, staffID)
	if err != nil {
		return false, err
	}
	return entry.IsHomeServiceCapable(), nil
}

// PhysicalLocations resolves the physical branch assignments for a staff id.
func (s *Service) PhysicalLocations(ctx context.Context, staffID string) ([]string, error) {
	entry, err := s.directory.GetStaffDirectoryEntry(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return entry.PhysicalLocations(), nil
}
