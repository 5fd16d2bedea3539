package models

import (
	"testing"
	"time"
)

func TestSessionStartAndEnd(t *testing.T) {
	session := Session{
		Date:          time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:30",
		DurationHours: 2,
	}

	wantStart := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	if !session.StartAt().Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, session.StartAt())
	}

	wantEnd := wantStart.Add(2 * time.Hour)
	if !session.EndAt().Equal(wantEnd) {
		t.Fatalf("expected end %v, got %v", wantEnd, session.EndAt())
	}
}

func TestSessionIsTerminal(t *testing.T) {
	terminal := []SessionStatus{SessionCompleted, SessionCanceled, SessionRejected, SessionExpired}
	for _, status := range terminal {
		s := Session{Status: status}
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", status)
		}
	}

	open := []SessionStatus{SessionPending, SessionApproved, SessionUpcoming, SessionOngoing}
	for _, status := range open {
		s := Session{Status: status}
		if s.IsTerminal() {
			t.Errorf("expected %s to be open", status)
		}
	}
}

func TestProposalSameTime(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	a := Proposal{Date: date, StartTime: "10:00", EndTime: "11:00"}
	b := Proposal{Date: date, StartTime: "10:00", EndTime: "11:00"}
	if !a.SameTime(b) {
		t.Fatalf("expected identical proposals to match")
	}

	c := Proposal{Date: date.AddDate(0, 0, 1), StartTime: "10:00", EndTime: "11:00"}
	if a.SameTime(c) {
		t.Fatalf("expected different dates not to match")
	}

	msg := "note"
	d := Proposal{Date: date, StartTime: "10:00", EndTime: "11:00", Message: &msg}
	if !a.SameTime(d) {
		t.Fatalf("expected message to be ignored in time comparison")
	}
}
