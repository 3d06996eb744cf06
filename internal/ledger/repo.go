package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	"github.com/vastra-shop/backend/pkg/pagination"
)

// Repository manages persistence for ledger entries. Entries are append-only;
// there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error)
	ListRange(ctx context.Context, from, to time.Time, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error)
	Totals(ctx context.Context, from, to time.Time) (Totals, error)
	SignedSumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Totals aggregates a date range of ledger entries.
type Totals struct {
	CreditPaise int64 `json:"credit_paise"`
	DebitPaise  int64 `json:"debit_paise"`
	Entries     int64 `json:"entries"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC, id ASC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at > ? OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Totals(ctx context.Context, from, to time.Time) (Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN type IN ? THEN amount_paise ELSE 0 END), 0) AS credit_paise, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount_paise ELSE 0 END), 0) AS debit_paise, "+
				"COUNT(*) AS entries",
			[]enums.LedgerEntryType{enums.LedgerEntryTypeRefund, enums.LedgerEntryTypeWalletTopup},
			enums.LedgerEntryTypeOrderPayment,
		).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&totals).Error
	return totals, err
}

// SignedSumByUser replays a user's entries with signed amounts. The result
// must equal the wallet balance; a drift means the ledger and wallet were
// written outside a shared transaction. Payment-attempt entries record money
// settled outside the wallet and replay as zero.
func (r *repository) SignedSumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN type IN ? THEN amount_paise WHEN type = ? THEN -amount_paise ELSE 0 END), 0)",
			[]enums.LedgerEntryType{enums.LedgerEntryTypeRefund, enums.LedgerEntryTypeWalletTopup},
			enums.LedgerEntryTypeOrderPayment,
		).
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}
