package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

type Refund struct {
	ID                  int64           `json:"id"`
	SessionID           int64           `json:"session_id"`
	PaymentID           string          `json:"payment_id"`
	UserID              int64           `json:"user_id"`
	InitiatedBy         string          `json:"initiated_by"`
	Reason              string          `json:"reason"`
	OriginalAmount      decimal.Decimal `json:"original_amount"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	PlatformFeeRefunded bool            `json:"platform_fee_refunded"`
	Status              RefundStatus    `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
