package repository

import (
	"context"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/shopspring/decimal"
)

type CreateTransactionInput struct {
	FromUserID  *int64
	ToUserID    *int64
	FromRole    models.WalletRole
	ToRole      models.WalletRole
	Amount      decimal.Decimal
	Type        models.TransactionType
	Purpose     models.TransactionPurpose
	SessionID   *int64
	Description *string
}

const walletColumns = `id, user_id, role, balance, is_requested_withdrawal, created_at, updated_at`

const transactionColumns = `id, from_user_id, to_user_id, from_role, to_role, amount, type, purpose, session_id, description, created_at`

const withdrawalColumns = `id, user_id, role, amount, status, transaction_id, processed_at, created_at`

type WalletRepository struct {
	db DBTX
}

func NewWalletRepository(db DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

func scanWallet(row interface{ Scan(dest ...any) error }) (*models.Wallet, error) {
	var wallet models.Wallet
	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Role,
		&wallet.Balance,
		&wallet.IsRequestedWithdrawal,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func scanTransaction(row interface{ Scan(dest ...any) error }) (*models.WalletTransaction, error) {
	var entry models.WalletTransaction
	err := row.Scan(
		&entry.ID,
		&entry.FromUserID,
		&entry.ToUserID,
		&entry.FromRole,
		&entry.ToRole,
		&entry.Amount,
		&entry.Type,
		&entry.Purpose,
		&entry.SessionID,
		&entry.Description,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *WalletRepository) GetByUser(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND role = $2`
	return scanWallet(r.db.QueryRow(ctx, query, userID, role))
}

func (r *WalletRepository) Create(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, role, balance, is_requested_withdrawal)
		VALUES ($1, $2, 0, FALSE)
		ON CONFLICT (user_id, role) DO UPDATE SET updated_at = NOW()
		RETURNING ` + walletColumns
	return scanWallet(r.db.QueryRow(ctx, query, userID, role))
}

// Platform returns the distinguished platform account that intermediates all
// fee flows.
func (r *WalletRepository) Platform(ctx context.Context) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE role = 'platform' LIMIT 1`
	return scanWallet(r.db.QueryRow(ctx, query))
}

// Credit atomically increments a wallet balance.
func (r *WalletRepository) Credit(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
	amount decimal.Decimal,
) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $3, updated_at = NOW()
		WHERE user_id = $1 AND role = $2
		RETURNING ` + walletColumns
	return scanWallet(r.db.QueryRow(ctx, query, userID, role, amount))
}

// Debit atomically decrements a wallet balance. The balance guard is part of
// the UPDATE itself, so a debit below zero can never be written; pgx.ErrNoRows
// means the wallet is missing or underfunded.
func (r *WalletRepository) Debit(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
	amount decimal.Decimal,
) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1 AND role = $2 AND balance >= $3
		RETURNING ` + walletColumns
	return scanWallet(r.db.QueryRow(ctx, query, userID, role, amount))
}

func (r *WalletRepository) SetWithdrawalFlag(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
	requested bool,
) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET is_requested_withdrawal = $3, updated_at = NOW()
		WHERE user_id = $1 AND role = $2 AND is_requested_withdrawal = NOT $3
		RETURNING ` + walletColumns
	return scanWallet(r.db.QueryRow(ctx, query, userID, role, requested))
}

func (r *WalletRepository) CreateTransaction(
	ctx context.Context,
	input CreateTransactionInput,
) (*models.WalletTransaction, error) {
	query := `
		INSERT INTO wallet_transactions
			(from_user_id, to_user_id, from_role, to_role, amount, type, purpose, session_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRow(
		ctx,
		query,
		input.FromUserID,
		input.ToUserID,
		input.FromRole,
		input.ToRole,
		input.Amount,
		input.Type,
		input.Purpose,
		input.SessionID,
		input.Description,
	))
}

func (r *WalletRepository) ListTransactionsByUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.WalletTransaction, 0)
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *WalletRepository) CreateWithdrawalRequest(
	ctx context.Context,
	userID int64,
	role models.WalletRole,
	amount decimal.Decimal,
) (*models.WithdrawalRequest, error) {
	query := `
		INSERT INTO withdrawal_requests (user_id, role, amount, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + withdrawalColumns
	var req models.WithdrawalRequest
	err := r.db.QueryRow(ctx, query, userID, role, amount).Scan(
		&req.ID,
		&req.UserID,
		&req.Role,
		&req.Amount,
		&req.Status,
		&req.TransactionID,
		&req.ProcessedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *WalletRepository) GetWithdrawalForUpdate(
	ctx context.Context,
	id int64,
) (*models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE id = $1
		FOR UPDATE
	`
	var req models.WithdrawalRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.UserID,
		&req.Role,
		&req.Amount,
		&req.Status,
		&req.TransactionID,
		&req.ProcessedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *WalletRepository) ResolveWithdrawalIfPending(
	ctx context.Context,
	id int64,
	nextStatus models.WithdrawalStatus,
	transactionID *int64,
	processedAt time.Time,
) (*models.WithdrawalRequest, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $2, transaction_id = $3, processed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + withdrawalColumns + `
	`
	var req models.WithdrawalRequest
	err := r.db.QueryRow(ctx, query, id, nextStatus, transactionID, processedAt).Scan(
		&req.ID,
		&req.UserID,
		&req.Role,
		&req.Amount,
		&req.Status,
		&req.TransactionID,
		&req.ProcessedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *WalletRepository) ListWithdrawalsByUser(
	ctx context.Context,
	userID int64,
) ([]models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.WithdrawalRequest, 0)
	for rows.Next() {
		var req models.WithdrawalRequest
		if err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Role,
			&req.Amount,
			&req.Status,
			&req.TransactionID,
			&req.ProcessedAt,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
