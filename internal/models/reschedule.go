package models

import "time"

type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "pending"
	RescheduleAccepted RescheduleStatus = "accepted"
	RescheduleRejected RescheduleStatus = "rejected"
	RescheduleCanceled RescheduleStatus = "canceled"
)

// Proposal is a candidate schedule for a session.
type Proposal struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Message   *string   `json:"message,omitempty"`
}

func (p Proposal) SameTime(other Proposal) bool {
	return p.Date.Equal(other.Date) && p.StartTime == other.StartTime && p.EndTime == other.EndTime
}

type RescheduleRequest struct {
	ID              int64            `json:"id"`
	SessionID       int64            `json:"session_id"`
	InitiatorID     int64            `json:"initiator_id"`
	OldProposal     Proposal         `json:"old_proposal"`
	CurrentProposal Proposal         `json:"current_proposal"`
	CounterProposal *Proposal        `json:"counter_proposal,omitempty"`
	Status          RescheduleStatus `json:"status"`
	LastActionBy    int64            `json:"last_action_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
