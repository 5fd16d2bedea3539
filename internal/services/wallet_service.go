package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/gateway"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type transferInput struct {
	FromUserID  *int64
	ToUserID    *int64
	FromRole    models.WalletRole
	ToRole      models.WalletRole
	Amount      decimal.Decimal
	Purpose     models.TransactionPurpose
	SessionID   *int64
	Description *string
}

// transferFunds moves money between two wallets and writes the paired ledger
// entries: one from the payer's perspective, one from the payee's. Callers
// must run it inside a transaction so the debit and credit land together.
func transferFunds(ctx context.Context, wallets *repository.WalletRepository, input transferInput) error {
	if !input.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if input.FromUserID != nil {
		if _, err := wallets.Debit(ctx, *input.FromUserID, input.FromRole, input.Amount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInsufficientBalance
			}
			return err
		}
	}
	if input.ToUserID != nil {
		if _, err := wallets.Credit(ctx, *input.ToUserID, input.ToRole, input.Amount); err != nil {
			return err
		}
	}

	entry := repository.CreateTransactionInput{
		FromUserID:  input.FromUserID,
		ToUserID:    input.ToUserID,
		FromRole:    input.FromRole,
		ToRole:      input.ToRole,
		Amount:      input.Amount,
		Purpose:     input.Purpose,
		SessionID:   input.SessionID,
		Description: input.Description,
	}

	entry.Type = models.TransactionDebit
	if _, err := wallets.CreateTransaction(ctx, entry); err != nil {
		return err
	}
	entry.Type = models.TransactionCredit
	if _, err := wallets.CreateTransaction(ctx, entry); err != nil {
		return err
	}
	return nil
}

// WalletService is the ledger's public surface: balances, top-ups,
// withdrawals, and transaction history.
type WalletService struct {
	db       *pgxpool.Pool
	wallets  *repository.WalletRepository
	payments gateway.PaymentGateway
	notifier Notifier
}

func NewWalletService(
	db *pgxpool.Pool,
	wallets *repository.WalletRepository,
	payments gateway.PaymentGateway,
	notifier Notifier,
) *WalletService {
	return &WalletService{db: db, wallets: wallets, payments: payments, notifier: notifier}
}

func (s *WalletService) GetWallet(ctx context.Context, userID int64, role models.WalletRole) (*models.Wallet, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.wallets.Create(ctx, userID, role)
		}
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID int64, limit int) ([]models.WalletTransaction, error) {
	return s.wallets.ListTransactionsByUser(ctx, userID, limit)
}

type TopUpResult struct {
	Wallet *models.Wallet `json:"wallet"`
	Order  *gateway.Order `json:"order"`
}

// TopUp creates a payment-gateway order and credits the wallet. The gateway
// call happens before any write; a gateway failure leaves the ledger
// untouched.
func (s *WalletService) TopUp(ctx context.Context, userID int64, role models.WalletRole, amount decimal.Decimal) (*TopUpResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	receipt := "topup-" + uuid.NewString()
	order, err := s.payments.CreateOrder(ctx, amount, receipt, map[string]string{
		"user_id": strconv.FormatInt(userID, 10),
		"purpose": string(models.PurposeTopUp),
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWallets := repository.NewWalletRepository(tx)
	if _, err := txWallets.Create(ctx, userID, role); err != nil {
		return nil, err
	}
	wallet, err := txWallets.Credit(ctx, userID, role, amount)
	if err != nil {
		return nil, err
	}
	description := "wallet top-up " + order.ID
	if _, err := txWallets.CreateTransaction(ctx, repository.CreateTransactionInput{
		ToUserID:    &userID,
		FromRole:    models.RolePlatform,
		ToRole:      role,
		Amount:      amount,
		Type:        models.TransactionCredit,
		Purpose:     models.PurposeTopUp,
		Description: &description,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &TopUpResult{Wallet: wallet, Order: order}, nil
}

// RequestWithdrawal opens a payout request. The wallet flag guarantees at
// most one outstanding request per principal.
func (s *WalletService) RequestWithdrawal(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
	amount decimal.Decimal,
) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWallets := repository.NewWalletRepository(tx)
	if _, err := txWallets.Create(ctx, userID, role); err != nil {
		return nil, err
	}
	wallet, err := txWallets.SetWithdrawalFlag(ctx, userID, role, true)
	if err != nil {
		// The wallet row exists, so zero matched rows means the flag is set.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWithdrawalPending
		}
		return nil, err
	}
	if wallet.Balance.LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	request, err := txWallets.CreateWithdrawalRequest(ctx, userID, role, amount)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return request, nil
}

// ApproveWithdrawal debits the wallet, records the single withdrawal entry,
// completes the request, and clears the wallet flag in one transaction.
func (s *WalletService) ApproveWithdrawal(ctx context.Context, requestID int64) (*models.WithdrawalRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWallets := repository.NewWalletRepository(tx)
	request, err := txWallets.GetWithdrawalForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.WithdrawalPending {
		return nil, ErrInvalidStateTransition
	}

	if _, err := txWallets.Debit(ctx, request.UserID, request.Role, request.Amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	description := "wallet withdrawal"
	entry, err := txWallets.CreateTransaction(ctx, repository.CreateTransactionInput{
		FromUserID:  &request.UserID,
		FromRole:    request.Role,
		ToRole:      request.Role,
		Amount:      request.Amount,
		Type:        models.TransactionWithdrawal,
		Purpose:     models.PurposeWithdrawal,
		Description: &description,
	})
	if err != nil {
		return nil, err
	}

	resolved, err := txWallets.ResolveWithdrawalIfPending(ctx, requestID, models.WithdrawalCompleted, &entry.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := txWallets.SetWithdrawalFlag(ctx, request.UserID, request.Role, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, NotificationInput{
		RecipientID: resolved.UserID,
		Title:       "Withdrawal processed",
		Message:     "Your withdrawal request was approved and processed.",
		Type:        "withdrawal_completed",
	})
	return resolved, nil
}

func (s *WalletService) RejectWithdrawal(ctx context.Context, requestID int64) (*models.WithdrawalRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWallets := repository.NewWalletRepository(tx)
	request, err := txWallets.GetWithdrawalForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.WithdrawalPending {
		return nil, ErrInvalidStateTransition
	}

	resolved, err := txWallets.ResolveWithdrawalIfPending(ctx, requestID, models.WithdrawalRejected, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := txWallets.SetWithdrawalFlag(ctx, request.UserID, request.Role, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, NotificationInput{
		RecipientID: resolved.UserID,
		Title:       "Withdrawal rejected",
		Message:     "Your withdrawal request was rejected.",
		Type:        "withdrawal_rejected",
	})
	return resolved, nil
}

func (s *WalletService) Withdrawals(ctx context.Context, userID int64) ([]models.WithdrawalRequest, error) {
	return s.wallets.ListWithdrawalsByUser(ctx, userID)
}
