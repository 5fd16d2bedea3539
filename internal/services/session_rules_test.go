package services

import (
	"testing"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

func TestSessionTransitions(t *testing.T) {
	allowed := []struct {
		from, to models.SessionStatus
	}{
		{models.SessionPending, models.SessionApproved},
		{models.SessionPending, models.SessionRejected},
		{models.SessionPending, models.SessionExpired},
		{models.SessionApproved, models.SessionUpcoming},
		{models.SessionApproved, models.SessionCanceled},
		{models.SessionApproved, models.SessionExpired},
		{models.SessionUpcoming, models.SessionOngoing},
		{models.SessionUpcoming, models.SessionCanceled},
		{models.SessionUpcoming, models.SessionExpired},
		{models.SessionOngoing, models.SessionCompleted},
	}
	for _, tc := range allowed {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to models.SessionStatus
	}{
		{models.SessionPending, models.SessionUpcoming},
		{models.SessionPending, models.SessionCanceled},
		{models.SessionApproved, models.SessionCompleted},
		{models.SessionUpcoming, models.SessionCompleted},
		{models.SessionOngoing, models.SessionCanceled},
		{models.SessionOngoing, models.SessionExpired},
		{models.SessionCompleted, models.SessionCanceled},
		{models.SessionCanceled, models.SessionUpcoming},
		{models.SessionRejected, models.SessionApproved},
		{models.SessionExpired, models.SessionUpcoming},
	}
	for _, tc := range forbidden {
		if canTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestSessionNotificationPicksAudienceText(t *testing.T) {
	menteeNote := sessionNotification(7, models.SessionApproved, 42, true)
	if menteeNote.RecipientID != 42 {
		t.Fatalf("expected recipient 42, got %d", menteeNote.RecipientID)
	}
	if menteeNote.Type != "session_approved" {
		t.Fatalf("expected type session_approved, got %s", menteeNote.Type)
	}
	if menteeNote.Link == nil || *menteeNote.Link != "/sessions/7" {
		t.Fatalf("expected link /sessions/7, got %v", menteeNote.Link)
	}

	mentorNote := sessionNotification(7, models.SessionApproved, 9, false)
	if mentorNote.Message == menteeNote.Message {
		t.Fatalf("expected different text for mentor and mentee")
	}
}

func TestSessionNotificationUnknownStatusFallsBack(t *testing.T) {
	note := sessionNotification(1, models.SessionStatus("bogus"), 2, true)
	if note.Type != "session_updated" {
		t.Fatalf("expected fallback type session_updated, got %s", note.Type)
	}
}
