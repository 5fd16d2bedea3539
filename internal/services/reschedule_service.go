package services

import (
	"context"
	"errors"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RescheduleService runs the negotiation protocol attached to a session.
// The session's own schedule is touched only when a proposal is accepted.
type RescheduleService struct {
	db          *pgxpool.Pool
	reschedules *repository.RescheduleRepository
	sessions    *repository.SessionRepository
	notifier    Notifier
}

func NewRescheduleService(
	db *pgxpool.Pool,
	reschedules *repository.RescheduleRepository,
	sessions *repository.SessionRepository,
	notifier Notifier,
) *RescheduleService {
	return &RescheduleService{db: db, reschedules: reschedules, sessions: sessions, notifier: notifier}
}

type ProposalInput struct {
	Date      time.Time
	StartTime string
	EndTime   string
	Message   *string
}

func (in ProposalInput) toProposal() models.Proposal {
	return models.Proposal{
		Date:      truncateToDate(in.Date),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Message:   in.Message,
	}
}

func (in ProposalInput) validate() error {
	if !ValidSlotLabel(in.StartTime) || !ValidSlotLabel(in.EndTime) {
		return ErrInvalidInput
	}
	if in.EndTime <= in.StartTime {
		return ErrInvalidInput
	}
	return nil
}

func sessionProposal(session *models.Session) models.Proposal {
	return models.Proposal{
		Date:      session.Date,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}
}

// Propose opens a negotiation. Only one pending request may exist per
// session, and proposing the session's current time is a no-op.
func (s *RescheduleService) Propose(
	ctx context.Context,
	actorID int64,
	sessionID int64,
	input ProposalInput,
) (*models.RescheduleRequest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParty(session, participants, actorID) {
		return nil, ErrForbidden
	}
	if session.IsTerminal() || session.Status == models.SessionOngoing {
		return nil, ErrInvalidStateTransition
	}

	proposal := input.toProposal()
	if proposal.SameTime(sessionProposal(session)) {
		return nil, ErrNoopProposal
	}

	if _, err := s.reschedules.GetActiveBySessionID(ctx, sessionID); err == nil {
		return nil, ErrDuplicateReschedule
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	request, err := s.reschedules.Create(ctx, repository.CreateRescheduleInput{
		SessionID:       sessionID,
		InitiatorID:     actorID,
		OldProposal:     sessionProposal(session),
		CurrentProposal: proposal,
	})
	if err != nil {
		return nil, err
	}

	s.notifyCounterpart(ctx, session, participants, actorID, "Reschedule requested",
		"A new time was proposed for your session.", "reschedule_proposed")
	return request, nil
}

// Counter records a counter proposal and passes the turn. The guard against
// the same party acting twice in a row lives in the conditional update, so
// two racing counters cannot both land.
func (s *RescheduleService) Counter(
	ctx context.Context,
	actorID int64,
	sessionID int64,
	input ProposalInput,
) (*models.RescheduleRequest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParty(session, participants, actorID) {
		return nil, ErrForbidden
	}

	request, err := s.activeRequest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if request.LastActionBy == actorID {
		return nil, ErrNotYourTurn
	}

	proposal := input.toProposal()
	if proposal.SameTime(request.CurrentProposal) || proposal.SameTime(sessionProposal(session)) {
		return nil, ErrNoopProposal
	}

	updated, err := s.reschedules.SetCounterIfPending(ctx, request.ID, proposal, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotYourTurn
		}
		return nil, err
	}

	s.notifyCounterpart(ctx, session, participants, actorID, "Reschedule countered",
		"A counter proposal was made for your session.", "reschedule_countered")
	return updated, nil
}

// Accept applies the current proposal — or, when useCounter is set, the
// counter proposal — to the session and closes the negotiation. The schedule
// update and the closure commit in one transaction.
func (s *RescheduleService) Accept(
	ctx context.Context,
	actorID int64,
	sessionID int64,
	useCounter bool,
) (*models.RescheduleRequest, error) {
	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParty(session, participants, actorID) {
		return nil, ErrForbidden
	}

	request, err := s.activeRequest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if request.LastActionBy == actorID {
		return nil, ErrNotYourTurn
	}

	chosen := request.CurrentProposal
	if useCounter {
		if request.CounterProposal == nil {
			return nil, ErrNoCounterProposal
		}
		chosen = *request.CounterProposal
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReschedules := repository.NewRescheduleRepository(tx)
	accepted, err := txReschedules.ResolveIfPending(ctx, request.ID, models.RescheduleAccepted, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotYourTurn
		}
		return nil, err
	}

	hours := slotHoursBetween(chosen.StartTime, chosen.EndTime)
	txSessions := repository.NewSessionRepository(tx)
	if _, err := txSessions.UpdateSchedule(ctx, sessionID, chosen.Date, chosen.StartTime, chosen.EndTime, hours); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifyCounterpart(ctx, session, participants, actorID, "Reschedule accepted",
		"The new session time was accepted.", "reschedule_accepted")
	return accepted, nil
}

func (s *RescheduleService) Reject(ctx context.Context, actorID int64, sessionID int64) (*models.RescheduleRequest, error) {
	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParty(session, participants, actorID) {
		return nil, ErrForbidden
	}

	request, err := s.activeRequest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if request.LastActionBy == actorID {
		return nil, ErrNotYourTurn
	}

	rejected, err := s.reschedules.ResolveIfPending(ctx, request.ID, models.RescheduleRejected, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotYourTurn
		}
		return nil, err
	}

	s.notifyCounterpart(ctx, session, participants, actorID, "Reschedule rejected",
		"The proposed session time was declined.", "reschedule_rejected")
	return rejected, nil
}

// Cancel withdraws the negotiation. Only the initiator may cancel; turn
// order does not apply to a withdrawal.
func (s *RescheduleService) Cancel(ctx context.Context, actorID int64, sessionID int64) (*models.RescheduleRequest, error) {
	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	request, err := s.activeRequest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if request.InitiatorID != actorID {
		return nil, ErrForbidden
	}

	canceled, err := s.reschedules.WithdrawIfPending(ctx, request.ID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.notifyCounterpart(ctx, session, participants, actorID, "Reschedule canceled",
		"The reschedule request was withdrawn.", "reschedule_canceled")
	return canceled, nil
}

func (s *RescheduleService) GetForSession(ctx context.Context, actorID int64, sessionID int64) (*models.RescheduleRequest, error) {
	session, participants, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParty(session, participants, actorID) {
		return nil, ErrForbidden
	}
	return s.activeRequest(ctx, sessionID)
}

func (s *RescheduleService) loadSession(ctx context.Context, sessionID int64) (*models.Session, []models.SessionParticipant, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.sessions.Participants(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, participants, nil
}

func (s *RescheduleService) activeRequest(ctx context.Context, sessionID int64) (*models.RescheduleRequest, error) {
	request, err := s.reschedules.GetActiveBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RescheduleService) notifyCounterpart(
	ctx context.Context,
	session *models.Session,
	participants []models.SessionParticipant,
	actorID int64,
	title string,
	message string,
	ntype string,
) {
	link := sessionLink(session.ID)
	if actorID == session.MentorID {
		for _, p := range participants {
			s.notifier.Notify(ctx, NotificationInput{RecipientID: p.UserID, Title: title, Message: message, Type: ntype, Link: &link})
		}
		return
	}
	s.notifier.Notify(ctx, NotificationInput{RecipientID: session.MentorID, Title: title, Message: message, Type: ntype, Link: &link})
}

func isParty(session *models.Session, participants []models.SessionParticipant, actorID int64) bool {
	return session.MentorID == actorID || isParticipant(participants, actorID)
}

// slotHoursBetween counts whole hourly slots between two HH:MM labels.
func slotHoursBetween(start, end string) int {
	startAt := combineDateTime(time.Time{}, start)
	endAt := combineDateTime(time.Time{}, end)
	hours := int(endAt.Sub(startAt).Hours())
	if hours < 1 {
		hours = 1
	}
	return hours
}
