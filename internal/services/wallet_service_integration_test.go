package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/gateway"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string, _ map[string]string) (*gateway.Order, error) {
	return &gateway.Order{ID: "order_test", Receipt: receipt, Amount: amount, Currency: "INR", Status: "created"}, nil
}

type dropNotifier struct{}

func (dropNotifier) Notify(_ context.Context, _ NotificationInput) {}

func TestWalletTopUpAndWithdrawalFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewWalletService(pool, repository.NewWalletRepository(pool), stubGateway{}, dropNotifier{})

	userID := createTestAccount(t, ctx, pool, "mentor", 100)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	wallet, err := service.GetWallet(ctx, userID, models.RoleMentor)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero opening balance, got %s", wallet.Balance)
	}

	result, err := service.TopUp(ctx, userID, models.RoleMentor, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if !result.Wallet.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance 500 after top-up, got %s", result.Wallet.Balance)
	}

	request, err := service.RequestWithdrawal(ctx, userID, models.RoleMentor, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if request.Status != models.WithdrawalPending {
		t.Fatalf("expected pending request, got %s", request.Status)
	}

	// A second request while one is outstanding must be refused.
	if _, err := service.RequestWithdrawal(ctx, userID, models.RoleMentor, decimal.NewFromInt(50)); err != ErrWithdrawalPending {
		t.Fatalf("expected ErrWithdrawalPending, got %v", err)
	}

	resolved, err := service.ApproveWithdrawal(ctx, request.ID)
	if err != nil {
		t.Fatalf("ApproveWithdrawal: %v", err)
	}
	if resolved.Status != models.WithdrawalCompleted {
		t.Fatalf("expected completed request, got %s", resolved.Status)
	}
	if resolved.TransactionID == nil {
		t.Fatalf("expected completed request to link its ledger entry")
	}

	wallet, err = service.GetWallet(ctx, userID, models.RoleMentor)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected balance 300 after withdrawal, got %s", wallet.Balance)
	}
	if wallet.IsRequestedWithdrawal {
		t.Fatalf("expected withdrawal flag cleared after approval")
	}

	// Flag cleared, so a fresh request goes through again.
	again, err := service.RequestWithdrawal(ctx, userID, models.RoleMentor, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("RequestWithdrawal after approval: %v", err)
	}
	if _, err := service.RejectWithdrawal(ctx, again.ID); err != nil {
		t.Fatalf("RejectWithdrawal: %v", err)
	}

	wallet, err = service.GetWallet(ctx, userID, models.RoleMentor)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected rejection to leave balance untouched, got %s", wallet.Balance)
	}
}

func TestWalletRefusesOverdraft(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewWalletService(pool, repository.NewWalletRepository(pool), stubGateway{}, dropNotifier{})

	userID := createTestAccount(t, ctx, pool, "user", 0)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	// No wallet row exists yet. The request must create the empty wallet and
	// refuse the overdraft, not claim a request is already pending.
	if _, err := service.RequestWithdrawal(ctx, userID, models.RoleUser, decimal.NewFromInt(10)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	wallet, err := service.GetWallet(ctx, userID, models.RoleUser)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if wallet.IsRequestedWithdrawal {
		t.Fatalf("expected no withdrawal flag after a refused request")
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string, hourlyRate float64) int64 {
	t.Helper()

	var rate *float64
	if hourlyRate > 0 {
		rate = &hourlyRate
	}

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, hourly_rate)
		VALUES ($1, 'x', $2, $3, $4)
		RETURNING id
	`, fmt.Sprintf("it-%s-%d@example.com", role, time.Now().UnixNano()), "Test "+role, role, rate).Scan(&id)
	if err != nil {
		t.Fatalf("create test account: %v", err)
	}
	return id
}

func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, ids ...int64) {
	t.Helper()

	for _, id := range ids {
		if _, err := pool.Exec(ctx, `DELETE FROM withdrawal_requests WHERE user_id = $1`, id); err != nil {
			t.Logf("cleanup withdrawal_requests for %d: %v", id, err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM wallet_transactions WHERE from_user_id = $1 OR to_user_id = $1`, id); err != nil {
			t.Logf("cleanup wallet_transactions for %d: %v", id, err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM wallets WHERE user_id = $1`, id); err != nil {
			t.Logf("cleanup wallets for %d: %v", id, err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			t.Logf("cleanup users for %d: %v", id, err)
		}
	}
}
