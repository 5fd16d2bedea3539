package services

import (
	"errors"
	"testing"
	"time"
)

func TestProposalInputValidate(t *testing.T) {
	valid := ProposalInput{
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "12:00",
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("expected valid proposal, got %v", err)
	}

	cases := []ProposalInput{
		{StartTime: "10:00", EndTime: "10:00"},
		{StartTime: "12:00", EndTime: "10:00"},
		{StartTime: "bogus", EndTime: "12:00"},
		{StartTime: "10:00", EndTime: "25:00"},
	}
	for _, input := range cases {
		if err := input.validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestSlotHoursBetween(t *testing.T) {
	if got := slotHoursBetween("10:00", "13:00"); got != 3 {
		t.Errorf("expected 3 hours, got %d", got)
	}
	if got := slotHoursBetween("10:00", "11:00"); got != 1 {
		t.Errorf("expected 1 hour, got %d", got)
	}
	// Malformed ranges still produce a bookable length.
	if got := slotHoursBetween("10:00", "10:00"); got != 1 {
		t.Errorf("expected floor of 1 hour, got %d", got)
	}
}
