package services

import (
	"context"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/shopspring/decimal"
)

// FeeConfig holds the platform's fee model: a fixed fee plus a commission
// rate applied to the session total.
type FeeConfig struct {
	FixedFee       decimal.Decimal
	CommissionRate decimal.Decimal
}

func (f FeeConfig) PlatformFee(total decimal.Decimal) decimal.Decimal {
	return f.FixedFee.Add(total.Mul(f.CommissionRate)).Round(2)
}

func (f FeeConfig) MentorEarnings(total decimal.Decimal) decimal.Decimal {
	earnings := total.Sub(f.PlatformFee(total))
	if earnings.IsNegative() {
		return decimal.Zero
	}
	return earnings
}

// RefundAmount computes how much of the charge goes back on cancellation.
// When the mentor is at fault the full amount is returned, fixed fee
// included; otherwise the platform retains the fixed fee.
func (f FeeConfig) RefundAmount(original decimal.Decimal, mentorFault bool) decimal.Decimal {
	if mentorFault {
		return original
	}
	return original.Sub(f.FixedFee)
}

// SettlementService moves held funds to their final destination. All methods
// run inside the caller's transaction so ledger entries, wallet balances, and
// the session-status flip commit or roll back together.
type SettlementService struct {
	fees FeeConfig
}

func NewSettlementService(fees FeeConfig) *SettlementService {
	return &SettlementService{fees: fees}
}

func (s *SettlementService) Fees() FeeConfig {
	return s.fees
}

// PayoutCompletion releases the mentor's share of a completed paid session
// from the platform wallet.
func (s *SettlementService) PayoutCompletion(
	ctx context.Context,
	q repository.DBTX,
	session *models.Session,
) error {
	if session.Pricing != models.PricingPaid || !session.TotalAmount.IsPositive() {
		return nil
	}
	earnings := s.fees.MentorEarnings(session.TotalAmount)
	if !earnings.IsPositive() {
		return nil
	}

	wallets := repository.NewWalletRepository(q)
	platform, err := wallets.Platform(ctx)
	if err != nil {
		return err
	}
	if _, err := wallets.Create(ctx, session.MentorID, models.RoleMentor); err != nil {
		return err
	}

	description := "session earnings"
	return transferFunds(ctx, wallets, transferInput{
		FromUserID:  &platform.UserID,
		ToUserID:    &session.MentorID,
		FromRole:    models.RolePlatform,
		ToRole:      models.RoleMentor,
		Amount:      earnings,
		Purpose:     models.PurposeSessionFee,
		SessionID:   &session.ID,
		Description: &description,
	})
}

// RefundCancellation reverses a participant's completed payment. Returns nil
// without touching the ledger when the participant never paid (free sessions
// short-circuit here).
func (s *SettlementService) RefundCancellation(
	ctx context.Context,
	q repository.DBTX,
	session *models.Session,
	participant models.SessionParticipant,
	original decimal.Decimal,
	initiatedBy string,
	reason string,
) (*models.Refund, error) {
	if session.Pricing != models.PricingPaid || participant.PaymentStatus != models.PaymentCompleted {
		return nil, nil
	}

	mentorFault := initiatedBy == "mentor"
	amount := s.fees.RefundAmount(original, mentorFault)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.GreaterThan(original) {
		return nil, ErrRefundExceedsCharge
	}

	wallets := repository.NewWalletRepository(q)
	platform, err := wallets.Platform(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := wallets.Create(ctx, participant.UserID, models.RoleUser); err != nil {
		return nil, err
	}

	description := "session refund"
	if err := transferFunds(ctx, wallets, transferInput{
		FromUserID:  &platform.UserID,
		ToUserID:    &participant.UserID,
		FromRole:    models.RolePlatform,
		ToRole:      models.RoleUser,
		Amount:      amount,
		Purpose:     models.PurposeRefund,
		SessionID:   &session.ID,
		Description: &description,
	}); err != nil {
		return nil, err
	}

	paymentID := ""
	if participant.PaymentID != nil {
		paymentID = *participant.PaymentID
	}
	return repository.NewRefundRepository(q).Create(ctx, repository.CreateRefundInput{
		SessionID:           session.ID,
		PaymentID:           paymentID,
		UserID:              participant.UserID,
		InitiatedBy:         initiatedBy,
		Reason:              reason,
		OriginalAmount:      original,
		RefundAmount:        amount,
		PlatformFeeRefunded: mentorFault,
		Status:              models.RefundProcessed,
	})
}
