package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

type stubSlotSource struct {
	weekly  []string
	special []string
}

func (s *stubSlotSource) WeeklySlots(_ context.Context, _ int64, _ time.Weekday) ([]string, error) {
	return s.weekly, nil
}

func (s *stubSlotSource) SpecialSlots(_ context.Context, _ int64, _ time.Time) ([]string, error) {
	return s.special, nil
}

type stubBookedSource struct {
	sessions []models.Session
}

func (s *stubBookedSource) ListByMentorAndDate(_ context.Context, _ int64, _ time.Time, _ []string) ([]models.Session, error) {
	return s.sessions, nil
}

func bookedSession(startTime string, hours int) models.Session {
	return models.Session{StartTime: startTime, DurationHours: hours, Status: models.SessionUpcoming}
}

func TestAvailableSlotsMergesAndSorts(t *testing.T) {
	service := NewAvailabilityService(
		&stubSlotSource{
			weekly:  []string{"10:00", "14:00", "09:00"},
			special: []string{"14:00", "08:00"},
		},
		&stubBookedSource{},
	)

	slots, err := service.AvailableSlots(context.Background(), 1, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 1)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	want := []string{"08:00", "09:00", "10:00", "14:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestAvailableSlotsSubtractsBookedHours(t *testing.T) {
	service := NewAvailabilityService(
		&stubSlotSource{weekly: []string{"09:00", "10:00", "11:00", "12:00"}},
		&stubBookedSource{sessions: []models.Session{bookedSession("10:00", 2)}},
	)

	slots, err := service.AvailableSlots(context.Background(), 1, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 1)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	want := []string{"09:00", "12:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestAvailableSlotsExcludesSlotsWhoseDurationWouldOverlap(t *testing.T) {
	// A two-hour request starting at 09:00 would collide with the 10:00
	// booking, so only 11:00 can host it.
	service := NewAvailabilityService(
		&stubSlotSource{weekly: []string{"09:00", "10:00", "11:00", "12:00"}},
		&stubBookedSource{sessions: []models.Session{bookedSession("10:00", 1)}},
	)

	slots, err := service.AvailableSlots(context.Background(), 1, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 2)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	want := []string{"11:00", "12:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestAvailableSlotsEmptyConfigurationYieldsEmptyResult(t *testing.T) {
	service := NewAvailabilityService(&stubSlotSource{}, &stubBookedSource{})

	slots, err := service.AvailableSlots(context.Background(), 1, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 1)
	if err != nil {
		t.Fatalf("expected no error for empty configuration, got %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected empty slice, got %v", slots)
	}
}

func TestIsSlotAvailable(t *testing.T) {
	service := NewAvailabilityService(
		&stubSlotSource{weekly: []string{"09:00", "10:00"}},
		&stubBookedSource{sessions: []models.Session{bookedSession("10:00", 1)}},
	)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free, err := service.IsSlotAvailable(context.Background(), 1, date, "09:00", 1)
	if err != nil {
		t.Fatalf("IsSlotAvailable: %v", err)
	}
	if !free {
		t.Fatalf("expected 09:00 to be available")
	}

	taken, err := service.IsSlotAvailable(context.Background(), 1, date, "10:00", 1)
	if err != nil {
		t.Fatalf("IsSlotAvailable: %v", err)
	}
	if taken {
		t.Fatalf("expected 10:00 to be booked")
	}
}

func TestAddHours(t *testing.T) {
	if got := AddHours("09:30", 2); got != "11:30" {
		t.Errorf("expected 11:30, got %s", got)
	}
	if got := AddHours("23:00", 1); got != "24:00" {
		t.Errorf("expected 24:00, got %s", got)
	}
}

func TestValidSlotLabel(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, label := range valid {
		if !ValidSlotLabel(label) {
			t.Errorf("expected %q to be valid", label)
		}
	}
	invalid := []string{"", "9:00", "24:00", "12:60", "ab:cd", "12-30"}
	for _, label := range invalid {
		if ValidSlotLabel(label) {
			t.Errorf("expected %q to be invalid", label)
		}
	}
}
