package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func defaultFees() FeeConfig {
	return FeeConfig{
		FixedFee:       decimal.NewFromInt(40),
		CommissionRate: decimal.NewFromFloat(0.15),
	}
}

func TestPlatformFee(t *testing.T) {
	fees := defaultFees()

	got := fees.PlatformFee(decimal.NewFromInt(500))
	if !got.Equal(decimal.NewFromInt(115)) {
		t.Fatalf("expected platform fee 115, got %s", got)
	}
}

func TestMentorEarnings(t *testing.T) {
	fees := defaultFees()

	got := fees.MentorEarnings(decimal.NewFromInt(500))
	if !got.Equal(decimal.NewFromInt(385)) {
		t.Fatalf("expected mentor earnings 385, got %s", got)
	}
}

func TestMentorEarningsNeverNegative(t *testing.T) {
	fees := defaultFees()

	// Fee exceeds a tiny session total; earnings clamp to zero rather than
	// charging the mentor.
	got := fees.MentorEarnings(decimal.NewFromInt(30))
	if !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero earnings, got %s", got)
	}
}

func TestRefundAmountMenteeFaultKeepsFixedFee(t *testing.T) {
	fees := defaultFees()

	got := fees.RefundAmount(decimal.NewFromInt(500), false)
	if !got.Equal(decimal.NewFromInt(460)) {
		t.Fatalf("expected refund 460, got %s", got)
	}
}

func TestRefundAmountMentorFaultReturnsEverything(t *testing.T) {
	fees := defaultFees()

	got := fees.RefundAmount(decimal.NewFromInt(500), true)
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected refund 500, got %s", got)
	}
}

func TestParticipantShareSplitsEvenly(t *testing.T) {
	share := participantShare(decimal.NewFromInt(300), 3)
	if !share.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected share 100, got %s", share)
	}

	uneven := participantShare(decimal.NewFromInt(100), 3)
	if !uneven.Equal(decimal.NewFromFloat(33.33)) {
		t.Fatalf("expected share 33.33, got %s", uneven)
	}
}
