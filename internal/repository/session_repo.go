package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/shopspring/decimal"
)

type CreateSessionInput struct {
	MentorID       int64
	Topic          string
	Format         string
	Date           time.Time
	StartTime      string
	EndTime        string
	DurationHours  int
	Message        *string
	Pricing        string
	TotalAmount    decimal.Decimal
	ParticipantIDs []int64
	PaymentStatus  string
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

const sessionColumns = `id, mentor_id, topic, format, date, start_time, end_time, duration_hours, message, status, pricing, total_amount, reject_reason, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.MentorID,
		&session.Topic,
		&session.Format,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.DurationHours,
		&session.Message,
		&session.Status,
		&session.Pricing,
		&session.TotalAmount,
		&session.RejectReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (mentor_id, topic, format, date, start_time, end_time, duration_hours, message, status, pricing, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9, $10)
		RETURNING %s
	`, sessionColumns)

	session, err := scanSession(r.db.QueryRow(
		ctx,
		query,
		input.MentorID,
		input.Topic,
		input.Format,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.DurationHours,
		input.Message,
		input.Pricing,
		input.TotalAmount,
	))
	if err != nil {
		return nil, err
	}

	for _, userID := range input.ParticipantIDs {
		if _, err := r.db.Exec(
			ctx,
			`INSERT INTO session_participants (session_id, user_id, payment_status) VALUES ($1, $2, $3)`,
			session.ID,
			userID,
			input.PaymentStatus,
		); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1 FOR UPDATE`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, error) {
	args := []any{filter.ActorID}
	var whereParts []string
	if filter.Role == "mentor" {
		whereParts = append(whereParts, "s.mentor_id = $1")
	} else {
		whereParts = append(whereParts, "s.id IN (SELECT session_id FROM session_participants WHERE user_id = $1)")
	}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("s.status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "(s.date + s.start_time::time + (s.duration_hours * INTERVAL '1 hour')) > NOW()")
	case "past":
		whereParts = append(whereParts, "(s.date + s.start_time::time + (s.duration_hours * INTERVAL '1 hour')) <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions s
		WHERE %s
		ORDER BY s.date ASC, s.start_time ASC, s.id ASC
	`, prefixedSessionColumns("s"), strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) ListByMentorAndDate(
	ctx context.Context,
	mentorID int64,
	date time.Time,
	statuses []string,
) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE mentor_id = $1 AND date = $2 AND status = ANY($3)
		ORDER BY start_time ASC
	`, sessionColumns)

	rows, err := r.db.Query(ctx, query, mentorID, date, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// ListOverdue returns non-terminal sessions whose start time passed before the cutoff.
func (r *SessionRepository) ListOverdue(ctx context.Context, before time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE status = ANY($1)
		  AND (date + start_time::time) < $2
		ORDER BY id ASC
	`, sessionColumns)

	rows, err := r.db.Query(ctx, query, []string{"pending", "approved", "upcoming"}, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
	reason *string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, reject_reason = COALESCE($4, reject_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus, reason))
}

func (r *SessionRepository) UpdateSchedule(
	ctx context.Context,
	sessionID int64,
	date time.Time,
	startTime string,
	endTime string,
	durationHours int,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET date = $2, start_time = $3, end_time = $4, duration_hours = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, date, startTime, endTime, durationHours))
}

func (r *SessionRepository) Participants(ctx context.Context, sessionID int64) ([]models.SessionParticipant, error) {
	query := `
		SELECT session_id, user_id, payment_status, payment_id
		FROM session_participants
		WHERE session_id = $1
		ORDER BY user_id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.SessionParticipant, 0)
	for rows.Next() {
		var p models.SessionParticipant
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.PaymentStatus, &p.PaymentID); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *SessionRepository) ParticipantsBySessionIDs(
	ctx context.Context,
	sessionIDs []int64,
) (map[int64][]models.SessionParticipant, error) {
	participants := make(map[int64][]models.SessionParticipant, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return participants, nil
	}

	query := `
		SELECT session_id, user_id, payment_status, payment_id
		FROM session_participants
		WHERE session_id = ANY($1)
		ORDER BY session_id, user_id
	`
	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.SessionParticipant
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.PaymentStatus, &p.PaymentID); err != nil {
			return nil, err
		}
		participants[p.SessionID] = append(participants[p.SessionID], p)
	}
	return participants, rows.Err()
}

func (r *SessionRepository) GetParticipantForUpdate(
	ctx context.Context,
	sessionID int64,
	userID int64,
) (*models.SessionParticipant, error) {
	query := `
		SELECT session_id, user_id, payment_status, payment_id
		FROM session_participants
		WHERE session_id = $1 AND user_id = $2
		FOR UPDATE
	`
	var p models.SessionParticipant
	err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(&p.SessionID, &p.UserID, &p.PaymentStatus, &p.PaymentID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SessionRepository) UpdateParticipantPaymentIfCurrent(
	ctx context.Context,
	sessionID int64,
	userID int64,
	currentStatus string,
	nextStatus string,
	paymentID *string,
) (*models.SessionParticipant, error) {
	query := `
		UPDATE session_participants
		SET payment_status = $4, payment_id = COALESCE($5, payment_id)
		WHERE session_id = $1 AND user_id = $2 AND payment_status = $3
		RETURNING session_id, user_id, payment_status, payment_id
	`
	var p models.SessionParticipant
	err := r.db.QueryRow(ctx, query, sessionID, userID, currentStatus, nextStatus, paymentID).
		Scan(&p.SessionID, &p.UserID, &p.PaymentStatus, &p.PaymentID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SessionRepository) CountUnpaidParticipants(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM session_participants WHERE session_id = $1 AND payment_status <> 'completed'`,
		sessionID,
	).Scan(&count)
	return count, err
}

func prefixedSessionColumns(alias string) string {
	cols := strings.Split(sessionColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
