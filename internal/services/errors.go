package services

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrForbidden              = errors.New("forbidden")
	ErrMentorNotFound         = errors.New("mentor not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrSlotTaken              = errors.New("slot already booked")
	ErrCancelCutoff           = errors.New("cancellation window has closed")
	ErrPaymentWindowClosed    = errors.New("payment window has closed")
	ErrRejectReasonRequired   = errors.New("rejection reason is required")
	ErrMentorMustReject       = errors.New("pending sessions are rejected, not canceled")

	ErrDuplicateReschedule = errors.New("a pending reschedule request already exists")
	ErrNotYourTurn         = errors.New("waiting for the other party to respond")
	ErrNoopProposal        = errors.New("proposed time matches the existing schedule")
	ErrNoCounterProposal   = errors.New("no counter proposal to accept")

	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWithdrawalPending   = errors.New("a withdrawal request is already pending")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrRefundExceedsCharge = errors.New("refund exceeds the original amount")
)
