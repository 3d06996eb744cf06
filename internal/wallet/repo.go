package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/pagination"
)

// Repository persists wallet accounts and their transaction trail. Balance
// mutations are conditional or additive updates, never read-modify-write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetAccount(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
	EnsureAccount(ctx context.Context, userID uuid.UUID) error
	IncrementBalance(ctx context.Context, userID uuid.UUID, amountPaise int64) error
	TryDecrementBalance(ctx context.Context, userID uuid.UUID, amountPaise int64) (bool, error)
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetAccount(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WalletAccount{UserID: userID}).Error
}

func (r *repository) IncrementBalance(ctx context.Context, userID uuid.UUID, amountPaise int64) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE wallet_accounts
		    SET balance_paise = balance_paise + ?, updated_at = CURRENT_TIMESTAMP
		  WHERE user_id = ?`,
		amountPaise, userID,
	).Error
}

// TryDecrementBalance withdraws only when the balance covers the amount.
// Returns false when the guard failed.
func (r *repository) TryDecrementBalance(ctx context.Context, userID uuid.UUID, amountPaise int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE wallet_accounts
		    SET balance_paise = balance_paise - ?, updated_at = CURRENT_TIMESTAMP
		  WHERE user_id = ? AND balance_paise >= ?`,
		amountPaise, userID, amountPaise,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
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
	var txns []models.WalletTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
