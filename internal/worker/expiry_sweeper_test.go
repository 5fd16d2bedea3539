package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

type stubOverdueSource struct {
	sessions []models.Session
	before   time.Time
}

func (s *stubOverdueSource) ListOverdue(_ context.Context, before time.Time) ([]models.Session, error) {
	s.before = before
	return s.sessions, nil
}

type stubExpirer struct {
	expired []int64
	fail    map[int64]error
}

func (s *stubExpirer) Expire(_ context.Context, sessionID int64) error {
	if err := s.fail[sessionID]; err != nil {
		return err
	}
	s.expired = append(s.expired, sessionID)
	return nil
}

func TestSweepExpiresEveryOverdueSession(t *testing.T) {
	source := &stubOverdueSource{sessions: []models.Session{{ID: 1}, {ID: 2}, {ID: 3}}}
	expirer := &stubExpirer{}
	sweeper := NewExpirySweeper(source, expirer, time.Minute, 10*time.Minute)

	sweeper.Sweep(context.Background())

	if len(expirer.expired) != 3 {
		t.Fatalf("expected 3 expirations, got %v", expirer.expired)
	}
}

func TestSweepAppliesGracePeriod(t *testing.T) {
	source := &stubOverdueSource{}
	sweeper := NewExpirySweeper(source, &stubExpirer{}, time.Minute, 10*time.Minute)

	before := time.Now().UTC()
	sweeper.Sweep(context.Background())

	cutoff := source.before
	if cutoff.After(before.Add(-9 * time.Minute)) {
		t.Fatalf("expected cutoff at least 10 minutes in the past, got %v", cutoff)
	}
}

func TestSweepToleratesRacedTransitions(t *testing.T) {
	source := &stubOverdueSource{sessions: []models.Session{{ID: 1}, {ID: 2}}}
	expirer := &stubExpirer{fail: map[int64]error{1: errors.New("state conflict")}}
	sweeper := NewExpirySweeper(source, expirer, time.Minute, 10*time.Minute)

	sweeper.Sweep(context.Background())

	if len(expirer.expired) != 1 || expirer.expired[0] != 2 {
		t.Fatalf("expected session 2 to still expire, got %v", expirer.expired)
	}
}
