package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
)

func TestReportAggregatesCreditsAndDebits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedEntry(t, db, user, enums.LedgerEntryTypeWalletTopup, 100000, 100000, base)
	seedEntry(t, db, user, enums.LedgerEntryTypeOrderPayment, 40000, 60000, base.Add(time.Hour))
	seedEntry(t, db, user, enums.LedgerEntryTypeRefund, 15000, 75000, base.Add(2*time.Hour))
	// informational, listed but excluded from both totals
	seedEntry(t, db, user, enums.LedgerEntryTypePaymentAttempt, 30000, 75000, base.Add(150*time.Minute))
	// outside the range, must not count
	seedEntry(t, db, user, enums.LedgerEntryTypeOrderPayment, 99999, 1, base.AddDate(0, 1, 0))

	report, err := svc.Report(ctx, ReportParams{
		From:  base.Add(-time.Hour),
		To:    base.Add(3 * time.Hour),
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(report.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(report.Entries))
	}
	if report.Totals.CreditPaise != 115000 {
		t.Fatalf("expected credits 115000, got %d", report.Totals.CreditPaise)
	}
	if report.Totals.DebitPaise != 40000 {
		t.Fatalf("expected debits 40000, got %d", report.Totals.DebitPaise)
	}
	if report.Totals.Entries != 4 {
		t.Fatalf("expected 4 counted entries, got %d", report.Totals.Entries)
	}
}

func TestReportPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedEntry(t, db, user, enums.LedgerEntryTypeWalletTopup, 1000, int64(1000*(i+1)), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.Report(ctx, ReportParams{From: base, To: base.Add(time.Hour), Limit: 3})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Entries) != 3 || first.NextCursor == "" {
		t.Fatalf("expected full first page with cursor, got %d entries", len(first.Entries))
	}

	second, err := svc.Report(ctx, ReportParams{From: base, To: base.Add(time.Hour), Limit: 3, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Entries) != 2 || second.NextCursor != "" {
		t.Fatalf("expected final page of 2 without cursor, got %d entries cursor=%q", len(second.Entries), second.NextCursor)
	}
	if !second.Entries[0].CreatedAt.After(first.Entries[2].CreatedAt.Add(-time.Second)) {
		t.Fatalf("expected pages in ascending order")
	}
}

func TestReportRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	now := time.Now()
	_, err := svc.Report(context.Background(), ReportParams{From: now, To: now.Add(-time.Hour)})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExportCSVWritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedEntry(t, db, user, enums.LedgerEntryTypeWalletTopup, 100000, 100000, base)
	seedEntry(t, db, user, enums.LedgerEntryTypeOrderPayment, 40000, 60000, base.Add(time.Hour))

	var buf bytes.Buffer
	if err := svc.ExportCSV(ctx, &buf, base.Add(-time.Hour), base.Add(2*time.Hour)); err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][3] != "amount_paise" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][2] != "wallet_topup" || records[1][3] != "100000" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][2] != "order_payment" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
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
	if err := db.Exec(ledgerEntries).Error; err != nil {
		t.Fatalf("create ledger table: %v", err)
	}
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, userID uuid.UUID, entryType enums.LedgerEntryType, amount, balanceAfter int64, createdAt time.Time) {
	t.Helper()
	entry := models.LedgerEntry{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              entryType,
		AmountPaise:       amount,
		BalanceAfterPaise: balanceAfter,
		Description:       "seed",
		CreatedAt:         createdAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}
