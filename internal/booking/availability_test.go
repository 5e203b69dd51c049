package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/salon-scheduler/internal/timeslot"
)

func TestCheckAvailability_FreeSlot(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(13, 0), 60), CheckContext{Location: "loc1"})

	if !result.Available {
		t.Fatalf("expected available, got conflicts %v", result.Conflicts)
	}
	if len(result.Conflicts) != 0 || result.Reason != "" {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestCheckAvailability_OverlapSameLocation(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 30), 60), CheckContext{Location: "loc1"})

	if result.Available {
		t.Fatal("expected unavailable")
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", result.Conflicts)
	}
	conflict := result.Conflicts[0]
	if conflict.Type != ConflictSameLocation {
		t.Fatalf("conflict type = %s, want same-location", conflict.Type)
	}
	if conflict.AppointmentID != "a1" {
		t.Fatalf("conflict appointment = %s, want a1", conflict.AppointmentID)
	}
	if result.Reason != conflict.Message {
		t.Fatalf("reason %q does not match conflict message %q", result.Reason, conflict.Message)
	}
}

func TestCheckAvailability_CrossLocationClassification(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc2", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), CheckContext{Location: "loc1"})

	if result.Available {
		t.Fatal("expected unavailable")
	}
	if result.Conflicts[0].Type != ConflictCrossLocation {
		t.Fatalf("conflict type = %s, want cross-location", result.Conflicts[0].Type)
	}
	if result.Conflicts[0].LocationType != LocationTypePhysical {
		t.Fatalf("location type = %s, want physical", result.Conflicts[0].LocationType)
	}
}

func TestCheckAvailability_TerminalStatusesNeverConflict(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			existing := appt("a1", "staff-woyni", "loc1", at(10, 0), 60)
			existing.Status = status
			store := &storeStub{appointments: []Appointment{existing}}
			checker := newChecker(store, nil, BufferWindow{})

			result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), CheckContext{Location: "loc1"})

			if !result.Available {
				t.Fatalf("terminal status %s produced conflicts: %v", status, result.Conflicts)
			}
		})
	}
}

func TestCheckAvailability_ExcludesAppointmentUnderModification(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 90), CheckContext{
		Location:             "loc1",
		ExcludeAppointmentID: "a1",
	})

	if !result.Available {
		t.Fatalf("expected excluded appointment to be ignored, got %v", result.Conflicts)
	}
}

func TestCheckAvailability_ExcludesShadowsOfExcludedAppointment(t *testing.T) {
	t.Parallel()

	original := appt("a1", "staff-woyni", "loc1", at(10, 0), 60)
	shadow := appt(ReflectedID("a1", "home"), "staff-woyni", "home", at(10, 0), 60)
	shadow.IsReflected = true
	shadow.OriginalAppointmentID = "a1"
	shadow.ReflectionType = ReflectionPhysicalToHome

	store := &storeStub{appointments: []Appointment{original, shadow}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), CheckContext{
		Location:             "loc1",
		ExcludeAppointmentID: "a1",
	})

	if !result.Available {
		t.Fatalf("shadow of excluded appointment should not conflict, got %v", result.Conflicts)
	}
}

func TestCheckAvailability_StaticBufferApplies(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{AfterMinutes: 15})

	// 11:05 is free without a buffer, busy with a 15 minute after-buffer.
	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(11, 5), 60), CheckContext{Location: "loc1"})

	if result.Available {
		t.Fatal("expected buffered conflict")
	}
}

func TestCheckAvailability_DynamicBufferWinsWhenLarger(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	policy := NewStaticBufferPolicy(0, 30)
	checker := newChecker(store, policy, BufferWindow{AfterMinutes: 5})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(11, 20), 60), CheckContext{Location: "loc1"})

	if result.Available {
		t.Fatal("expected policy buffer to apply")
	}
}

func TestCheckAvailability_BlockedTimeUsesRawOverlap(t *testing.T) {
	t.Parallel()

	blocked := Appointment{
		ID:              "b1",
		StaffID:         "staff-woyni",
		StaffName:       "Woyni",
		Start:           at(12, 0),
		DurationMinutes: 60,
		Location:        "loc1",
		Status:          StatusConfirmed,
		Type:            TypeBlocked,
		Title:           "Lunch",
	}
	store := &storeStub{appointments: []Appointment{blocked}}
	checker := newChecker(store, nil, BufferWindow{BeforeMinutes: 30, AfterMinutes: 30})

	// Inside the blocked window: conflicts.
	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(12, 30), 30), CheckContext{Location: "loc1"})
	if result.Available {
		t.Fatal("expected blocked-time conflict")
	}
	if result.Conflicts[0].Type != ConflictBlockedTime {
		t.Fatalf("conflict type = %s, want blocked-time", result.Conflicts[0].Type)
	}
	if !strings.Contains(result.Conflicts[0].Message, "Lunch") {
		t.Fatalf("blocked message should reference the block title, got %q", result.Conflicts[0].Message)
	}

	// Just after the blocked window: buffers do not apply to blocked entries.
	result = checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(13, 0), 30), CheckContext{Location: "loc1"})
	if !result.Available {
		t.Fatalf("blocked entries must not be buffered, got %v", result.Conflicts)
	}
}

func TestCheckAvailability_FailsClosedOnReadError(t *testing.T) {
	t.Parallel()

	store := &storeStub{loadErr: errors.New("disk gone")}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), CheckContext{Location: "loc1"})

	if result.Available {
		t.Fatal("availability must fail closed on read errors")
	}
	if result.Reason == "" {
		t.Fatal("expected a generic reason")
	}
}

func TestCheckAvailability_IgnoresOtherStaff(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-other", "loc1", at(10, 0), 60),
	}}
	checker := newChecker(store, nil, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(10, 0), 60), CheckContext{Location: "loc1"})

	if !result.Available {
		t.Fatalf("other staff appointments must not conflict, got %v", result.Conflicts)
	}
}

func TestBufferPolicyFailureDegradesToStaticBuffer(t *testing.T) {
	t.Parallel()

	store := &storeStub{appointments: []Appointment{
		appt("a1", "staff-woyni", "loc1", at(10, 0), 60),
	}}
	policy := failingBufferPolicy{}
	checker := newChecker(store, policy, BufferWindow{})

	result := checker.CheckAvailability(context.Background(), "staff-woyni", timeslot.New(at(11, 30), 60), CheckContext{Location: "loc1"})

	if !result.Available {
		t.Fatalf("expected static-only buffering after policy failure, got %v", result.Conflicts)
	}
}

type failingBufferPolicy struct{}

func (failingBufferPolicy) GetBufferPolicy(context.Context, string, string, time.Time) (BufferWindow, error) {
	return BufferWindow{}, errors.New("policy backend down")
}
