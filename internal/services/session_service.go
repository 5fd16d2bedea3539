package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionService owns the session state machine. Sessions are mutated only
// through its transition operations.
type SessionService struct {
	db            *pgxpool.Pool
	sessions      *repository.SessionRepository
	users         userReader
	availability  *AvailabilityService
	settlement    *SettlementService
	notifier      Notifier
	cancelCutoff  time.Duration
	paymentWindow time.Duration
}

func NewSessionService(
	db *pgxpool.Pool,
	sessions *repository.SessionRepository,
	users userReader,
	availability *AvailabilityService,
	settlement *SettlementService,
	notifier Notifier,
	cancelCutoff time.Duration,
	paymentWindow time.Duration,
) *SessionService {
	return &SessionService{
		db:            db,
		sessions:      sessions,
		users:         users,
		availability:  availability,
		settlement:    settlement,
		notifier:      notifier,
		cancelCutoff:  cancelCutoff,
		paymentWindow: paymentWindow,
	}
}

type RequestSessionInput struct {
	MentorID         int64
	Topic            string
	Format           string
	Date             time.Time
	StartTime        string
	DurationHours    int
	Message          *string
	CoParticipantIDs []int64
}

func (s *SessionService) RequestSession(
	ctx context.Context,
	userID int64,
	input RequestSessionInput,
) (*models.SessionDetail, error) {
	if input.MentorID <= 0 || input.DurationHours <= 0 || !ValidSlotLabel(input.StartTime) {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Topic) == "" {
		return nil, ErrInvalidInput
	}
	if userID == input.MentorID {
		return nil, ErrInvalidInput
	}

	mentor, err := s.users.GetByID(ctx, input.MentorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}
	if mentor.Role != "mentor" {
		return nil, ErrMentorNotFound
	}

	date := truncateToDate(input.Date)
	startAt := combineDateTime(date, input.StartTime)
	if startAt.Before(time.Now().UTC()) {
		return nil, ErrInvalidInput
	}

	available, err := s.availability.IsSlotAvailable(ctx, input.MentorID, date, input.StartTime, input.DurationHours)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotTaken
	}

	pricing := models.PricingFree
	total := decimal.Zero
	paymentStatus := models.PaymentCompleted
	if mentor.HourlyRate != nil && *mentor.HourlyRate > 0 {
		pricing = models.PricingPaid
		total = decimal.NewFromFloat(*mentor.HourlyRate).Mul(decimal.NewFromInt(int64(input.DurationHours))).Round(2)
		paymentStatus = models.PaymentPending
	}

	participantIDs := append([]int64{userID}, input.CoParticipantIDs...)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.Create(ctx, repository.CreateSessionInput{
		MentorID:       input.MentorID,
		Topic:          strings.TrimSpace(input.Topic),
		Format:         input.Format,
		Date:           date,
		StartTime:      input.StartTime,
		EndTime:        AddHours(input.StartTime, input.DurationHours),
		DurationHours:  input.DurationHours,
		Message:        input.Message,
		Pricing:        pricing,
		TotalAmount:    total,
		ParticipantIDs: participantIDs,
		PaymentStatus:  paymentStatus,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	link := sessionLink(session.ID)
	s.notifier.Notify(ctx, NotificationInput{
		RecipientID: session.MentorID,
		Title:       "New session request",
		Message:     "You have a new session request waiting for approval.",
		Type:        "session_requested",
		Link:        &link,
	})

	return s.detail(ctx, session)
}

// Approve re-validates the slot under a per-mentor advisory lock. When two
// conflicting sessions are approved concurrently, at most one wins; the
// other fails with ErrSlotTaken.
func (s *SessionService) Approve(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", mentorID); err != nil {
		return nil, err
	}

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionPending {
		return nil, ErrInvalidStateTransition
	}

	txAvailability := NewAvailabilityService(repository.NewAvailabilityRepository(tx), txSessions)
	available, err := txAvailability.IsSlotAvailable(ctx, session.MentorID, session.Date, session.StartTime, session.DurationHours)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotTaken
	}

	updated, err := txSessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionPending, models.SessionApproved, nil)
	if err != nil {
		return nil, err
	}

	unpaid, err := txSessions.CountUnpaidParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if unpaid == 0 {
		updated, err = txSessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionApproved, models.SessionUpcoming, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	// A fully-paid approval lands directly on upcoming; both transitions
	// still announce themselves.
	if detail.Status == models.SessionUpcoming {
		s.notifyStatus(ctx, detail, models.SessionApproved)
	}
	s.notifyTransition(ctx, detail)
	return detail, nil
}

func (s *SessionService) Reject(ctx context.Context, mentorID int64, sessionID int64, reason string) (*models.SessionDetail, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionPending {
		return nil, ErrInvalidStateTransition
	}

	updated, err := txSessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionPending, models.SessionRejected, &reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	txReschedules := repository.NewRescheduleRepository(tx)
	if err := txReschedules.CancelOpenBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, detail)
	return detail, nil
}

// ConfirmPayment debits the participant's wallet and holds the funds on the
// platform wallet until settlement. Calling it again for an already-paid
// participant is a no-op.
func (s *SessionService) ConfirmPayment(ctx context.Context, userID int64, sessionID int64) (*models.SessionDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Pricing != models.PricingPaid {
		return nil, ErrInvalidStateTransition
	}
	if session.Status != models.SessionPending && session.Status != models.SessionApproved {
		return nil, ErrInvalidStateTransition
	}
	if time.Now().UTC().After(session.StartAt().Add(s.paymentWindow)) {
		return nil, ErrPaymentWindowClosed
	}

	participant, err := txSessions.GetParticipantForUpdate(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if participant.PaymentStatus == models.PaymentCompleted {
		return s.detail(ctx, session)
	}

	participants, err := txSessions.Participants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	share := participantShare(session.TotalAmount, len(participants))

	wallets := repository.NewWalletRepository(tx)
	if _, err := wallets.Create(ctx, userID, models.RoleUser); err != nil {
		return nil, err
	}
	platform, err := wallets.Platform(ctx)
	if err != nil {
		return nil, err
	}

	description := "session payment held for settlement"
	if err := transferFunds(ctx, wallets, transferInput{
		FromUserID:  &userID,
		ToUserID:    &platform.UserID,
		FromRole:    models.RoleUser,
		ToRole:      models.RolePlatform,
		Amount:      share,
		Purpose:     models.PurposeSessionFee,
		SessionID:   &sessionID,
		Description: &description,
	}); err != nil {
		return nil, err
	}

	paymentID := uuid.NewString()
	if _, err := txSessions.UpdateParticipantPaymentIfCurrent(
		ctx, sessionID, userID, models.PaymentPending, models.PaymentCompleted, &paymentID,
	); err != nil {
		return nil, err
	}

	updated := session
	if session.Status == models.SessionApproved {
		unpaid, err := txSessions.CountUnpaidParticipants(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if unpaid == 0 {
			updated, err = txSessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionApproved, models.SessionUpcoming, nil)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	if updated.Status == models.SessionUpcoming {
		s.notifyTransition(ctx, detail)
	}
	return detail, nil
}

func (s *SessionService) Start(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionUpcoming {
		return nil, ErrInvalidStateTransition
	}
	if time.Now().UTC().Before(session.StartAt()) {
		return nil, ErrInvalidStateTransition
	}

	updated, err := s.sessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionUpcoming, models.SessionOngoing, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, detail)
	return detail, nil
}

// Complete flips an ongoing session to completed, bumps each paid
// participant's counter, and releases the mentor's earnings. The status flip
// and the payout commit together; a repeat call fails the status guard, so
// the payout can never run twice.
func (s *SessionService) Complete(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionOngoing {
		return nil, ErrInvalidStateTransition
	}
	if time.Now().UTC().Before(session.EndAt()) {
		return nil, ErrInvalidStateTransition
	}

	updated, err := txSessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionOngoing, models.SessionCompleted, nil)
	if err != nil {
		return nil, err
	}

	participants, err := txSessions.Participants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	txUsers := repository.NewUserRepository(tx)
	for _, p := range participants {
		if p.PaymentStatus != models.PaymentCompleted {
			continue
		}
		if err := txUsers.IncrementCompletedSessions(ctx, p.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.settlement.PayoutCompletion(ctx, tx, updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, detail)
	return detail, nil
}

func (s *SessionService) CancelByMentee(ctx context.Context, userID int64, sessionID int64, reason string) (*models.SessionDetail, error) {
	return s.cancel(ctx, userID, "user", sessionID, reason)
}

func (s *SessionService) CancelByMentor(ctx context.Context, mentorID int64, sessionID int64, reason string) (*models.SessionDetail, error) {
	return s.cancel(ctx, mentorID, "mentor", sessionID, reason)
}

func (s *SessionService) cancel(ctx context.Context, actorID int64, role string, sessionID int64, reason string) (*models.SessionDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	participants, err := txSessions.Participants(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if role == "mentor" {
		if session.MentorID != actorID {
			return nil, ErrForbidden
		}
		if session.Status == models.SessionPending {
			return nil, ErrMentorMustReject
		}
	} else {
		if !isParticipant(participants, actorID) {
			return nil, ErrForbidden
		}
	}
	if !canTransition(session.Status, models.SessionCanceled) {
		return nil, ErrInvalidStateTransition
	}
	if !time.Now().UTC().Before(session.StartAt().Add(-s.cancelCutoff)) {
		return nil, ErrCancelCutoff
	}

	updated, err := txSessions.UpdateStatusIfCurrent(ctx, sessionID, session.Status, models.SessionCanceled, nil)
	if err != nil {
		return nil, err
	}

	txReschedules := repository.NewRescheduleRepository(tx)
	if err := txReschedules.CancelOpenBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	share := participantShare(session.TotalAmount, len(participants))
	for _, p := range participants {
		if _, err := s.settlement.RefundCancellation(ctx, tx, session, p, share, role, reason); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail, err := s.detail(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, detail)
	return detail, nil
}

// Expire moves an overdue session to expired and closes any open reschedule
// negotiation. Driven by the periodic sweep, not by request handling.
func (s *SessionService) Expire(ctx context.Context, sessionID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessions := repository.NewSessionRepository(tx)
	session, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return err
	}
	if !canTransition(session.Status, models.SessionExpired) {
		return ErrInvalidStateTransition
	}

	updated, err := txSessions.UpdateStatusIfCurrent(ctx, sessionID, session.Status, models.SessionExpired, nil)
	if err != nil {
		return err
	}

	txReschedules := repository.NewRescheduleRepository(tx)
	if err := txReschedules.CancelOpenBySessionID(ctx, sessionID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if detail, err := s.detail(ctx, updated); err == nil {
		s.notifyTransition(ctx, detail)
	}
	return nil
}

func (s *SessionService) GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	detail, err := s.detail(ctx, session)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, detail) {
		return nil, ErrForbidden
	}
	return detail, nil
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.SessionListFilter,
) ([]models.SessionDetail, error) {
	sessions, err := s.sessions.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	sessionIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}
	participantsBySession, err := s.sessions.ParticipantsBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		details = append(details, models.SessionDetail{
			Session:      session,
			Participants: participantsBySession[session.ID],
		})
	}
	return details, nil
}

func (s *SessionService) detail(ctx context.Context, session *models.Session) (*models.SessionDetail, error) {
	participants, err := s.sessions.Participants(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return &models.SessionDetail{Session: *session, Participants: participants}, nil
}

func (s *SessionService) notifyTransition(ctx context.Context, detail *models.SessionDetail) {
	s.notifyStatus(ctx, detail, detail.Status)
}

func (s *SessionService) notifyStatus(ctx context.Context, detail *models.SessionDetail, status models.SessionStatus) {
	for _, p := range detail.Participants {
		s.notifier.Notify(ctx, sessionNotification(detail.ID, status, p.UserID, true))
	}
	s.notifier.Notify(ctx, sessionNotification(detail.ID, status, detail.MentorID, false))
}

func canAccessSession(role string, actorID int64, detail *models.SessionDetail) bool {
	if role == "mentor" {
		return detail.MentorID == actorID
	}
	if role == "user" {
		return isParticipant(detail.Participants, actorID)
	}
	return role == "admin"
}

func isParticipant(participants []models.SessionParticipant, userID int64) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func participantShare(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return total
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func combineDateTime(date time.Time, slot string) time.Time {
	hour, minute := 0, 0
	if ValidSlotLabel(slot) {
		hour = int(slot[0]-'0')*10 + int(slot[1]-'0')
		minute = int(slot[3]-'0')*10 + int(slot[4]-'0')
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}

func sessionLink(sessionID int64) string {
	return "/sessions/" + strconv.FormatInt(sessionID, 10)
}
