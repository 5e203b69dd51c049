package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/salon-scheduler/internal/timeslot"
)

func TestCheckBidirectionalConflicts_HomeBlocksPhysical(t *testing.T) {
	t.Parallel()

	existing := appt("a1", "staff-woyni", "home", at(14, 0), 120)
	store := &storeStub{appointments: []Appointment{existing}}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(14, 30), 60), "loc1", "")

	if !result.HasConflicts {
		t.Fatal("expected a cross-location conflict")
	}
	message := result.Conflicts[0].Message
	if !strings.Contains(message, "home service appointment") {
		t.Fatalf("expected home-service wording, got %q", message)
	}
	if !strings.Contains(message, "Cannot book at loc1") {
		t.Fatalf("expected requested location in message, got %q", message)
	}
	if !strings.Contains(message, "bidirectional blocking") {
		t.Fatalf("expected bidirectional blocking notice, got %q", message)
	}
	if result.Conflicts[0].LocationType != LocationTypeHome {
		t.Fatalf("location type = %s, want home", result.Conflicts[0].LocationType)
	}
}

func TestCheckBidirectionalConflicts_PhysicalBlocksHome(t *testing.T) {
	t.Parallel()

	existing := appt("a1", "staff-woyni", "loc1", at(10, 0), 90)
	store := &storeStub{appointments: []Appointment{existing}}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), "home", "")

	if !result.HasConflicts {
		t.Fatal("expected a cross-location conflict")
	}
	message := result.Conflicts[0].Message
	if !strings.Contains(message, "has an appointment at loc1") {
		t.Fatalf("expected physical location wording, got %q", message)
	}
	if !strings.Contains(message, "Cannot book home service") {
		t.Fatalf("expected home-service denial, got %q", message)
	}
	if !strings.Contains(message, "bidirectional blocking") {
		t.Fatalf("expected bidirectional blocking notice, got %q", message)
	}
}

func TestCheckBidirectionalConflicts_TwoPhysicalLocations(t *testing.T) {
	t.Parallel()

	existing := appt("a1", "staff-woyni", "loc2", at(10, 0), 60)
	store := &storeStub{appointments: []Appointment{existing}}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), "loc1", "")

	if !result.HasConflicts {
		t.Fatal("expected a cross-location conflict")
	}
	message := result.Conflicts[0].Message
	if strings.Contains(message, "bidirectional blocking") {
		t.Fatalf("generic physical-to-physical wording should not mention bidirectional blocking, got %q", message)
	}
	if !strings.Contains(message, "Cannot book at loc1") {
		t.Fatalf("expected requested location in message, got %q", message)
	}
	if !strings.Contains(message, "Alemu") || !strings.Contains(message, "Haircut") {
		t.Fatalf("expected client and service context, got %q", message)
	}
}

func TestCheckBidirectionalConflicts_SameLocationIgnored(t *testing.T) {
	t.Parallel()

	existing := appt("a1", "staff-woyni", "loc1", at(10, 0), 60)
	store := &storeStub{appointments: []Appointment{existing}}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), "loc1", "")

	if result.HasConflicts {
		t.Fatalf("same-location overlap is not a bidirectional conflict, got %v", result.Conflicts)
	}
}

func TestCheckBidirectionalConflicts_NonOverlappingIgnored(t *testing.T) {
	t.Parallel()

	existing := appt("a1", "staff-woyni", "home", at(8, 0), 60)
	store := &storeStub{appointments: []Appointment{existing}}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), "loc1", "")

	if result.HasConflicts {
		t.Fatalf("non-overlapping appointments must not conflict, got %v", result.Conflicts)
	}
}

func TestCheckBidirectionalConflicts_FailsClosedOnReadError(t *testing.T) {
	t.Parallel()

	store := &storeStub{loadErr: errors.New("disk gone")}
	resolver := NewBidirectionalResolver(store, nil)

	result := resolver.CheckBidirectionalConflicts(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), "loc1", "")

	if !result.HasConflicts {
		t.Fatal("resolver must fail closed on read errors")
	}
}
