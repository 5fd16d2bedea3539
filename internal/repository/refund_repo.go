package repository

import (
	"context"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/shopspring/decimal"
)

type CreateRefundInput struct {
	SessionID           int64
	PaymentID           string
	UserID              int64
	InitiatedBy         string
	Reason              string
	OriginalAmount      decimal.Decimal
	RefundAmount        decimal.Decimal
	PlatformFeeRefunded bool
	Status              models.RefundStatus
}

const refundColumns = `id, session_id, payment_id, user_id, initiated_by, reason, original_amount, refund_amount, platform_fee_refunded, status, created_at, updated_at`

type RefundRepository struct {
	db DBTX
}

func NewRefundRepository(db DBTX) *RefundRepository {
	return &RefundRepository{db: db}
}

func scanRefund(row interface{ Scan(dest ...any) error }) (*models.Refund, error) {
	var refund models.Refund
	err := row.Scan(
		&refund.ID,
		&refund.SessionID,
		&refund.PaymentID,
		&refund.UserID,
		&refund.InitiatedBy,
		&refund.Reason,
		&refund.OriginalAmount,
		&refund.RefundAmount,
		&refund.PlatformFeeRefunded,
		&refund.Status,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *RefundRepository) Create(ctx context.Context, input CreateRefundInput) (*models.Refund, error) {
	query := `
		INSERT INTO refunds
			(session_id, payment_id, user_id, initiated_by, reason, original_amount, refund_amount, platform_fee_refunded, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + refundColumns
	return scanRefund(r.db.QueryRow(
		ctx,
		query,
		input.SessionID,
		input.PaymentID,
		input.UserID,
		input.InitiatedBy,
		input.Reason,
		input.OriginalAmount,
		input.RefundAmount,
		input.PlatformFeeRefunded,
		input.Status,
	))
}

func (r *RefundRepository) GetByID(ctx context.Context, id int64) (*models.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	return scanRefund(r.db.QueryRow(ctx, query, id))
}

// UpdateStatusIfCurrent refuses to move a refund out of processed; processed
// refunds are immutable.
func (r *RefundRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus models.RefundStatus,
	nextStatus models.RefundStatus,
) (*models.Refund, error) {
	query := `
		UPDATE refunds
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND status <> 'processed'
		RETURNING ` + refundColumns
	return scanRefund(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}
