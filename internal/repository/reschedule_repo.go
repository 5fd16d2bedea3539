package repository

import (
	"context"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

type CreateRescheduleInput struct {
	SessionID       int64
	InitiatorID     int64
	OldProposal     models.Proposal
	CurrentProposal models.Proposal
}

const rescheduleColumns = `id, session_id, initiator_id,
	old_date, old_start_time, old_end_time,
	current_date_proposed, current_start_time, current_end_time, current_message,
	counter_date, counter_start_time, counter_end_time, counter_message,
	status, last_action_by, created_at, updated_at`

type RescheduleRepository struct {
	db DBTX
}

func NewRescheduleRepository(db DBTX) *RescheduleRepository {
	return &RescheduleRepository{db: db}
}

func scanReschedule(row interface{ Scan(dest ...any) error }) (*models.RescheduleRequest, error) {
	var (
		req          models.RescheduleRequest
		counter      models.Proposal
		counterDate  *time.Time
		counterStart *string
		counterEnd   *string
	)
	err := row.Scan(
		&req.ID,
		&req.SessionID,
		&req.InitiatorID,
		&req.OldProposal.Date,
		&req.OldProposal.StartTime,
		&req.OldProposal.EndTime,
		&req.CurrentProposal.Date,
		&req.CurrentProposal.StartTime,
		&req.CurrentProposal.EndTime,
		&req.CurrentProposal.Message,
		&counterDate,
		&counterStart,
		&counterEnd,
		&counter.Message,
		&req.Status,
		&req.LastActionBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if counterDate != nil && counterStart != nil && counterEnd != nil {
		counter.Date = *counterDate
		counter.StartTime = *counterStart
		counter.EndTime = *counterEnd
		req.CounterProposal = &counter
	}
	return &req, nil
}

func (r *RescheduleRepository) Create(
	ctx context.Context,
	input CreateRescheduleInput,
) (*models.RescheduleRequest, error) {
	query := `
		INSERT INTO reschedule_requests
			(session_id, initiator_id,
			 old_date, old_start_time, old_end_time,
			 current_date_proposed, current_start_time, current_end_time, current_message,
			 status, last_action_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $2)
		RETURNING ` + rescheduleColumns
	return scanReschedule(r.db.QueryRow(
		ctx,
		query,
		input.SessionID,
		input.InitiatorID,
		input.OldProposal.Date,
		input.OldProposal.StartTime,
		input.OldProposal.EndTime,
		input.CurrentProposal.Date,
		input.CurrentProposal.StartTime,
		input.CurrentProposal.EndTime,
		input.CurrentProposal.Message,
	))
}

// GetActiveBySessionID returns the pending request for a session, if any.
func (r *RescheduleRepository) GetActiveBySessionID(
	ctx context.Context,
	sessionID int64,
) (*models.RescheduleRequest, error) {
	query := `
		SELECT ` + rescheduleColumns + `
		FROM reschedule_requests
		WHERE session_id = $1 AND status = 'pending'
		ORDER BY id DESC
		LIMIT 1
	`
	return scanReschedule(r.db.QueryRow(ctx, query, sessionID))
}

func (r *RescheduleRepository) GetByID(ctx context.Context, id int64) (*models.RescheduleRequest, error) {
	query := `SELECT ` + rescheduleColumns + ` FROM reschedule_requests WHERE id = $1`
	return scanReschedule(r.db.QueryRow(ctx, query, id))
}

func (r *RescheduleRepository) ListBySessionIDs(
	ctx context.Context,
	sessionIDs []int64,
) (map[int64]models.RescheduleRequest, error) {
	requests := make(map[int64]models.RescheduleRequest, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return requests, nil
	}

	query := `
		SELECT DISTINCT ON (session_id) ` + rescheduleColumns + `
		FROM reschedule_requests
		WHERE session_id = ANY($1)
		ORDER BY session_id, id DESC
	`
	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		req, err := scanReschedule(rows)
		if err != nil {
			return nil, err
		}
		requests[req.SessionID] = *req
	}
	return requests, rows.Err()
}

// SetCounterIfPending records a counter proposal and passes the turn, guarded
// against the same party acting twice in a row.
func (r *RescheduleRepository) SetCounterIfPending(
	ctx context.Context,
	id int64,
	proposal models.Proposal,
	actorID int64,
) (*models.RescheduleRequest, error) {
	query := `
		UPDATE reschedule_requests
		SET counter_date = $2, counter_start_time = $3, counter_end_time = $4,
		    counter_message = $5, last_action_by = $6, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND last_action_by <> $6
		RETURNING ` + rescheduleColumns
	return scanReschedule(r.db.QueryRow(
		ctx,
		query,
		id,
		proposal.Date,
		proposal.StartTime,
		proposal.EndTime,
		proposal.Message,
		actorID,
	))
}

// ResolveIfPending closes the negotiation as accepted or rejected. Like
// SetCounterIfPending, the turn check rides in the UPDATE itself so the
// resolution cannot land after a racing counter by the same party.
func (r *RescheduleRepository) ResolveIfPending(
	ctx context.Context,
	id int64,
	nextStatus models.RescheduleStatus,
	actorID int64,
) (*models.RescheduleRequest, error) {
	query := `
		UPDATE reschedule_requests
		SET status = $2, last_action_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND last_action_by <> $3
		RETURNING ` + rescheduleColumns
	return scanReschedule(r.db.QueryRow(ctx, query, id, nextStatus, actorID))
}

// WithdrawIfPending cancels the negotiation. Withdrawal is exempt from turn
// order; the service restricts it to the initiator.
func (r *RescheduleRepository) WithdrawIfPending(
	ctx context.Context,
	id int64,
	actorID int64,
) (*models.RescheduleRequest, error) {
	query := `
		UPDATE reschedule_requests
		SET status = 'canceled', last_action_by = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + rescheduleColumns
	return scanReschedule(r.db.QueryRow(ctx, query, id, actorID))
}

// CancelOpenBySessionID closes any pending negotiation on the session. Used
// when the session itself is canceled or expires.
func (r *RescheduleRepository) CancelOpenBySessionID(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(
		ctx,
		`UPDATE reschedule_requests SET status = 'canceled', updated_at = NOW() WHERE session_id = $1 AND status = 'pending'`,
		sessionID,
	)
	return err
}
