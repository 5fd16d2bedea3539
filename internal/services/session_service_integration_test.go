package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newIntegrationSessionService(pool *pgxpool.Pool, notifier Notifier) *SessionService {
	sessionRepo := repository.NewSessionRepository(pool)
	return NewSessionService(
		pool,
		sessionRepo,
		repository.NewUserRepository(pool),
		NewAvailabilityService(repository.NewAvailabilityRepository(pool), sessionRepo),
		NewSettlementService(defaultFees()),
		notifier,
		24*time.Hour,
		5*time.Minute,
	)
}

type recordingNotifier struct {
	mu    sync.Mutex
	types []string
}

func (n *recordingNotifier) Notify(_ context.Context, input NotificationInput) {
	n.mu.Lock()
	n.types = append(n.types, input.Type)
	n.mu.Unlock()
}

func (n *recordingNotifier) count(notificationType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, t := range n.types {
		if t == notificationType {
			total++
		}
	}
	return total
}

func configureWeeklyAvailability(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorID int64, weekday time.Weekday, slots ...string) {
	t.Helper()

	for _, slot := range slots {
		if _, err := pool.Exec(ctx, `
			INSERT INTO weekly_availability (mentor_id, weekday, start_time)
			VALUES ($1, $2, $3)
		`, mentorID, int(weekday), slot); err != nil {
			t.Fatalf("configure availability: %v", err)
		}
	}
}

func cleanupTestSessions(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorID int64) {
	t.Helper()

	if _, err := pool.Exec(ctx, `
		DELETE FROM reschedule_requests
		WHERE session_id IN (SELECT id FROM sessions WHERE mentor_id = $1)
	`, mentorID); err != nil {
		t.Logf("cleanup reschedule_requests for mentor %d: %v", mentorID, err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM sessions WHERE mentor_id = $1`, mentorID); err != nil {
		t.Logf("cleanup sessions for mentor %d: %v", mentorID, err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM weekly_availability WHERE mentor_id = $1`, mentorID); err != nil {
		t.Logf("cleanup weekly_availability for mentor %d: %v", mentorID, err)
	}
}

func TestFreeSessionRequestApproveRescheduleCancel(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool, dropNotifier{})
	reschedules := NewRescheduleService(pool, repository.NewRescheduleRepository(pool), repository.NewSessionRepository(pool), dropNotifier{})

	userID := createTestAccount(t, ctx, pool, "user", 0)
	mentorID := createTestAccount(t, ctx, pool, "mentor", 0)
	t.Cleanup(func() {
		cleanupTestSessions(t, ctx, pool, mentorID)
		cleanupTestUsers(t, ctx, pool, userID, mentorID)
	})

	date := time.Now().UTC().AddDate(0, 0, 30)
	configureWeeklyAvailability(t, ctx, pool, mentorID, date.Weekday(), "10:00", "11:00", "12:00")

	detail, err := service.RequestSession(ctx, userID, RequestSessionInput{
		MentorID:      mentorID,
		Topic:         "Goroutine leaks",
		Format:        "one_on_one",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("RequestSession: %v", err)
	}
	if detail.Status != models.SessionPending {
		t.Fatalf("expected pending session, got %s", detail.Status)
	}
	if detail.Pricing != models.PricingFree {
		t.Fatalf("expected free pricing for mentor without a rate, got %s", detail.Pricing)
	}
	if len(detail.Participants) != 1 || detail.Participants[0].PaymentStatus != models.PaymentCompleted {
		t.Fatalf("expected one pre-settled participant, got %+v", detail.Participants)
	}

	approved, err := service.Approve(ctx, mentorID, detail.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.SessionUpcoming {
		t.Fatalf("expected free session to confirm on approval, got %s", approved.Status)
	}

	// Negotiate a new time: user proposes, mentor counters, user accepts the
	// counter; the session schedule must follow the accepted proposal.
	if _, err := reschedules.Propose(ctx, userID, detail.ID, ProposalInput{
		Date: date, StartTime: "11:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if _, err := reschedules.Counter(ctx, mentorID, detail.ID, ProposalInput{
		Date: date, StartTime: "12:00", EndTime: "13:00",
	}); err != nil {
		t.Fatalf("Counter: %v", err)
	}
	if _, err := reschedules.Accept(ctx, userID, detail.ID, true); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	rescheduled, err := service.GetSession(ctx, userID, "user", detail.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rescheduled.StartTime != "12:00" || rescheduled.EndTime != "13:00" {
		t.Fatalf("expected session moved to 12:00-13:00, got %s-%s", rescheduled.StartTime, rescheduled.EndTime)
	}

	canceled, err := service.CancelByMentee(ctx, userID, detail.ID, "schedule conflict")
	if err != nil {
		t.Fatalf("CancelByMentee: %v", err)
	}
	if canceled.Status != models.SessionCanceled {
		t.Fatalf("expected canceled session, got %s", canceled.Status)
	}
}

func TestApproveRefusesDoubleBookedSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool, dropNotifier{})

	firstUser := createTestAccount(t, ctx, pool, "user", 0)
	secondUser := createTestAccount(t, ctx, pool, "user", 0)
	mentorID := createTestAccount(t, ctx, pool, "mentor", 0)
	t.Cleanup(func() {
		cleanupTestSessions(t, ctx, pool, mentorID)
		cleanupTestUsers(t, ctx, pool, firstUser, secondUser, mentorID)
	})

	date := time.Now().UTC().AddDate(0, 0, 31)
	configureWeeklyAvailability(t, ctx, pool, mentorID, date.Weekday(), "10:00")

	input := RequestSessionInput{
		MentorID:      mentorID,
		Topic:         "Profiling",
		Format:        "one_on_one",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 1,
	}
	first, err := service.RequestSession(ctx, firstUser, input)
	if err != nil {
		t.Fatalf("first RequestSession: %v", err)
	}
	second, err := service.RequestSession(ctx, secondUser, input)
	if err != nil {
		t.Fatalf("second RequestSession: %v", err)
	}

	if _, err := service.Approve(ctx, mentorID, first.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	if _, err := service.Approve(ctx, mentorID, second.ID); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken for competing approval, got %v", err)
	}
}

func TestResolveRequiresCounterpartTurn(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool, dropNotifier{})
	rescheduleRepo := repository.NewRescheduleRepository(pool)
	reschedules := NewRescheduleService(pool, rescheduleRepo, repository.NewSessionRepository(pool), dropNotifier{})

	userID := createTestAccount(t, ctx, pool, "user", 0)
	mentorID := createTestAccount(t, ctx, pool, "mentor", 0)
	t.Cleanup(func() {
		cleanupTestSessions(t, ctx, pool, mentorID)
		cleanupTestUsers(t, ctx, pool, userID, mentorID)
	})

	date := time.Now().UTC().AddDate(0, 0, 32)
	configureWeeklyAvailability(t, ctx, pool, mentorID, date.Weekday(), "10:00", "11:00", "12:00")

	detail, err := service.RequestSession(ctx, userID, RequestSessionInput{
		MentorID:      mentorID,
		Topic:         "Context propagation",
		Format:        "one_on_one",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("RequestSession: %v", err)
	}
	if _, err := service.Approve(ctx, mentorID, detail.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, err := reschedules.Propose(ctx, userID, detail.ID, ProposalInput{
		Date: date, StartTime: "11:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	request, err := reschedules.Counter(ctx, mentorID, detail.ID, ProposalInput{
		Date: date, StartTime: "12:00", EndTime: "13:00",
	})
	if err != nil {
		t.Fatalf("Counter: %v", err)
	}

	// The mentor countered last, so a resolution write by the mentor must
	// match zero rows even when it skips the service's pre-check. This is
	// the guard that stops a counter/accept interleave from recording two
	// consecutive actions by one party.
	if _, err := rescheduleRepo.ResolveIfPending(ctx, request.ID, models.RescheduleAccepted, mentorID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected the same-actor resolution to match no rows, got %v", err)
	}
	if _, err := reschedules.Accept(ctx, mentorID, detail.ID, true); err != ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn for the acting party, got %v", err)
	}

	// The counterpart's acceptance still goes through.
	if _, err := reschedules.Accept(ctx, userID, detail.ID, true); err != nil {
		t.Fatalf("Accept by counterpart: %v", err)
	}
}

func TestRejectClosesOpenNegotiation(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool, dropNotifier{})
	rescheduleRepo := repository.NewRescheduleRepository(pool)
	reschedules := NewRescheduleService(pool, rescheduleRepo, repository.NewSessionRepository(pool), dropNotifier{})

	userID := createTestAccount(t, ctx, pool, "user", 0)
	mentorID := createTestAccount(t, ctx, pool, "mentor", 0)
	t.Cleanup(func() {
		cleanupTestSessions(t, ctx, pool, mentorID)
		cleanupTestUsers(t, ctx, pool, userID, mentorID)
	})

	date := time.Now().UTC().AddDate(0, 0, 33)
	configureWeeklyAvailability(t, ctx, pool, mentorID, date.Weekday(), "10:00", "11:00", "12:00")

	detail, err := service.RequestSession(ctx, userID, RequestSessionInput{
		MentorID:      mentorID,
		Topic:         "Error wrapping",
		Format:        "one_on_one",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("RequestSession: %v", err)
	}
	if _, err := reschedules.Propose(ctx, userID, detail.ID, ProposalInput{
		Date: date, StartTime: "11:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("Propose: %v", err)
	}

	rejected, err := service.Reject(ctx, mentorID, detail.ID, "not taking new requests")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.SessionRejected {
		t.Fatalf("expected rejected session, got %s", rejected.Status)
	}
	if _, err := rescheduleRepo.GetActiveBySessionID(ctx, detail.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected no open negotiation on a rejected session, got %v", err)
	}
}

func TestApprovalAnnouncesCollapsedTransitions(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	notifier := &recordingNotifier{}
	service := newIntegrationSessionService(pool, notifier)

	userID := createTestAccount(t, ctx, pool, "user", 0)
	mentorID := createTestAccount(t, ctx, pool, "mentor", 0)
	t.Cleanup(func() {
		cleanupTestSessions(t, ctx, pool, mentorID)
		cleanupTestUsers(t, ctx, pool, userID, mentorID)
	})

	date := time.Now().UTC().AddDate(0, 0, 34)
	configureWeeklyAvailability(t, ctx, pool, mentorID, date.Weekday(), "10:00")

	detail, err := service.RequestSession(ctx, userID, RequestSessionInput{
		MentorID:      mentorID,
		Topic:         "Table-driven tests",
		Format:        "one_on_one",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("RequestSession: %v", err)
	}

	// The free session jumps straight to upcoming, but both the approval and
	// the confirmation must be announced.
	approved, err := service.Approve(ctx, mentorID, detail.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.SessionUpcoming {
		t.Fatalf("expected upcoming, got %s", approved.Status)
	}
	if got := notifier.count("session_approved"); got != 2 {
		t.Fatalf("expected approval notices for mentee and mentor, got %d", got)
	}
	if got := notifier.count("session_upcoming"); got != 2 {
		t.Fatalf("expected confirmation notices for mentee and mentor, got %d", got)
	}
}
