package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletRole string

const (
	RoleUser     WalletRole = "user"
	RoleMentor   WalletRole = "mentor"
	RolePlatform WalletRole = "platform"
)

type TransactionType string

const (
	TransactionCredit     TransactionType = "credit"
	TransactionDebit      TransactionType = "debit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionPurpose string

const (
	PurposeSessionFee  TransactionPurpose = "session_fee"
	PurposePlatformFee TransactionPurpose = "platform_fee"
	PurposeRefund      TransactionPurpose = "refund"
	PurposeWithdrawal  TransactionPurpose = "withdrawal"
	PurposeTopUp       TransactionPurpose = "top_up"
)

type Wallet struct {
	ID                    int64           `json:"id"`
	UserID                int64           `json:"user_id"`
	Role                  WalletRole      `json:"role"`
	Balance               decimal.Decimal `json:"balance"`
	IsRequestedWithdrawal bool            `json:"is_requested_withdrawal"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// WalletTransaction is an append-only ledger entry. Rows are never
// updated or deleted; corrections are written as new entries.
type WalletTransaction struct {
	ID          int64              `json:"id"`
	FromUserID  *int64             `json:"from_user_id,omitempty"`
	ToUserID    *int64             `json:"to_user_id,omitempty"`
	FromRole    WalletRole         `json:"from_role"`
	ToRole      WalletRole         `json:"to_role"`
	Amount      decimal.Decimal    `json:"amount"`
	Type        TransactionType    `json:"type"`
	Purpose     TransactionPurpose `json:"purpose"`
	SessionID   *int64             `json:"session_id,omitempty"`
	Description *string            `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

type WithdrawalRequest struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	Role          WalletRole       `json:"role"`
	Amount        decimal.Decimal  `json:"amount"`
	Status        WithdrawalStatus `json:"status"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
