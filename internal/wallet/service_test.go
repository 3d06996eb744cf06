package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/internal/ledger"
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestTopUpCreditsBalanceAndAppendsLedger(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()

	if err := svc.TopUp(ctx, user, 50000); err != nil {
		t.Fatalf("top up: %v", err)
	}

	balance, err := svc.Balance(ctx, user)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 50000 {
		t.Fatalf("expected balance 50000, got %d", balance)
	}

	var entries []models.LedgerEntry
	if err := db.Find(&entries, "user_id = ?", user).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Type != enums.LedgerEntryTypeWalletTopup {
		t.Fatalf("expected wallet_topup entry, got %s", entries[0].Type)
	}
	if entries[0].BalanceAfterPaise != 50000 {
		t.Fatalf("expected balance_after 50000, got %d", entries[0].BalanceAfterPaise)
	}
}

func TestDebitInsufficientBalanceLeavesNoTrace(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()

	if err := svc.TopUp(ctx, user, 20000); err != nil {
		t.Fatalf("top up: %v", err)
	}

	err := svc.Debit(ctx, MovementInput{
		UserID:      user,
		AmountPaise: 50000,
		EntryType:   enums.LedgerEntryTypeOrderPayment,
		Description: "order payment",
	})
	if err == nil {
		t.Fatal("expected insufficient balance error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("unexpected error: %v", err)
	}

	balance, err := svc.Balance(ctx, user)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 20000 {
		t.Fatalf("expected balance unchanged at 20000, got %d", balance)
	}

	var txnCount, entryCount int64
	if err := db.Model(&models.WalletTransaction{}).Where("user_id = ? AND type = ?", user, enums.WalletTransactionTypeDebit).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if err := db.Model(&models.LedgerEntry{}).Where("user_id = ? AND type = ?", user, enums.LedgerEntryTypeOrderPayment).Count(&entryCount).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if txnCount != 0 || entryCount != 0 {
		t.Fatalf("expected no debit records, got txns=%d entries=%d", txnCount, entryCount)
	}
}

func TestLedgerReplayMatchesBalance(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()

	if err := svc.TopUp(ctx, user, 100000); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if err := svc.Debit(ctx, MovementInput{
		UserID:      user,
		AmountPaise: 35000,
		EntryType:   enums.LedgerEntryTypeOrderPayment,
		Description: "order payment",
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := svc.Credit(ctx, MovementInput{
		UserID:      user,
		AmountPaise: 10000,
		EntryType:   enums.LedgerEntryTypeRefund,
		Description: "refund",
	}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, err := svc.Balance(ctx, user)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 75000 {
		t.Fatalf("expected balance 75000, got %d", balance)
	}

	replayed, err := ledger.NewRepository(db).SignedSumByUser(ctx, user)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replayed != balance {
		t.Fatalf("ledger replay %d does not match balance %d", replayed, balance)
	}
}

func TestPaymentAttemptLeavesBalanceUntouched(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()
	orderID := uuid.New()

	if err := svc.TopUp(ctx, user, 100000); err != nil {
		t.Fatalf("top up: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordPaymentAttemptTx(ctx, tx, MovementInput{
			UserID:      user,
			AmountPaise: 55000,
			EntryType:   enums.LedgerEntryTypePaymentAttempt,
			OrderID:     &orderID,
			Description: "gateway payment pending",
		})
	})
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	balance, err := svc.Balance(ctx, user)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100000 {
		t.Fatalf("expected balance untouched at 100000, got %d", balance)
	}

	var entries []models.LedgerEntry
	if err := db.Find(&entries, "user_id = ? AND type = ?", user, enums.LedgerEntryTypePaymentAttempt).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].BalanceAfterPaise != 100000 {
		t.Fatalf("expected one attempt entry snapshotting 100000, got %v", entries)
	}

	var txnCount int64
	if err := db.Model(&models.WalletTransaction{}).Where("user_id = ?", user).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("expected only the top-up transaction, got %d", txnCount)
	}

	replayed, err := ledger.NewRepository(db).SignedSumByUser(ctx, user)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replayed != balance {
		t.Fatalf("ledger replay %d does not match balance %d", replayed, balance)
	}

	// the attempt type never moves money through the debit path
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.DebitTx(ctx, tx, MovementInput{
			UserID:      user,
			AmountPaise: 1000,
			EntryType:   enums.LedgerEntryTypePaymentAttempt,
			Description: "bogus debit",
		})
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()

	if err := svc.TopUp(ctx, user, 10000); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if err := svc.Debit(ctx, MovementInput{
		UserID:      user,
		AmountPaise: 4000,
		EntryType:   enums.LedgerEntryTypeOrderPayment,
		Description: "order payment",
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	txns, _, err := svc.History(ctx, user, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Type != enums.WalletTransactionTypeDebit {
		t.Fatalf("expected newest (debit) first, got %s", txns[0].Type)
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:       NewRepository(db),
		LedgerRepo: ledger.NewRepository(db),
		TxRunner:   gormTxRunner{db: db},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:wallet_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	walletAccounts := `
CREATE TABLE IF NOT EXISTS wallet_accounts (
  user_id TEXT PRIMARY KEY,
  balance_paise INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	walletTransactions := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_paise INTEGER NOT NULL,
  order_id TEXT,
  description TEXT NOT NULL,
  created_at DATETIME
);`
	ledgerEntries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_paise INTEGER NOT NULL,
  balance_after_paise INTEGER NOT NULL,
  order_id TEXT,
  description TEXT NOT NULL,
  created_at DATETIME
);`
	for _, ddl := range []string{walletAccounts, walletTransactions, ledgerEntries} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create wallet tables: %v", err)
		}
	}
	return db
}
