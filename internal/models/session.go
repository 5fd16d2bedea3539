package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionApproved  SessionStatus = "approved"
	SessionUpcoming  SessionStatus = "upcoming"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCanceled  SessionStatus = "canceled"
	SessionRejected  SessionStatus = "rejected"
	SessionExpired   SessionStatus = "expired"
)

const (
	PricingFree = "free"
	PricingPaid = "paid"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type Session struct {
	ID            int64           `json:"id"`
	MentorID      int64           `json:"mentor_id"`
	Topic         string          `json:"topic"`
	Format        string          `json:"format"`
	Date          time.Time       `json:"date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	DurationHours int             `json:"duration_hours"`
	Message       *string         `json:"message"`
	Status        SessionStatus   `json:"status"`
	Pricing       string          `json:"pricing"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	RejectReason  *string         `json:"reject_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type SessionParticipant struct {
	SessionID     int64   `json:"session_id"`
	UserID        int64   `json:"user_id"`
	PaymentStatus string  `json:"payment_status"`
	PaymentID     *string `json:"payment_id,omitempty"`
}

type SessionDetail struct {
	Session
	Participants []SessionParticipant `json:"participants"`
}

// StartAt combines the session date with its HH:MM start label in UTC.
func (s *Session) StartAt() time.Time {
	hour, minute := splitSlot(s.StartTime)
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), hour, minute, 0, 0, time.UTC)
}

func (s *Session) EndAt() time.Time {
	return s.StartAt().Add(time.Duration(s.DurationHours) * time.Hour)
}

func (s *Session) IsTerminal() bool {
	switch s.Status {
	case SessionCompleted, SessionCanceled, SessionRejected, SessionExpired:
		return true
	}
	return false
}

func splitSlot(label string) (int, int) {
	hour, minute := 0, 0
	if len(label) >= 5 {
		hour = int(label[0]-'0')*10 + int(label[1]-'0')
		minute = int(label[3]-'0')*10 + int(label[4]-'0')
	}
	return hour, minute
}
