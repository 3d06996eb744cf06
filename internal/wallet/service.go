package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/internal/ledger"
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MovementInput describes one wallet credit or debit. EntryType decides the
// ledger classification; OrderID links the movement to an order when one is
// involved.
type MovementInput struct {
	UserID      uuid.UUID
	AmountPaise int64
	EntryType   enums.LedgerEntryType
	OrderID     *uuid.UUID
	Description string
}

// Service owns wallet balances. Every movement writes the balance update,
// the wallet transaction and the ledger entry in one transaction, so the
// ledger replay invariant holds by construction. The Tx variants let the
// order orchestrator fold a movement into its own unit of work.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error)
	TopUp(ctx context.Context, userID uuid.UUID, amountPaise int64) error
	Credit(ctx context.Context, input MovementInput) error
	Debit(ctx context.Context, input MovementInput) error
	CreditTx(ctx context.Context, tx *gorm.DB, input MovementInput) error
	DebitTx(ctx context.Context, tx *gorm.DB, input MovementInput) error
	RecordPaymentAttemptTx(ctx context.Context, tx *gorm.DB, input MovementInput) error
}

// ServiceParams wires the wallet service dependencies.
type ServiceParams struct {
	Repo       Repository
	LedgerRepo ledger.Repository
	TxRunner   txRunner
}

type service struct {
	repo       Repository
	ledgerRepo ledger.Repository
	txRunner   txRunner
}

// NewService validates and wires the wallet service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if params.LedgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:       params.Repo,
		ledgerRepo: params.LedgerRepo,
		txRunner:   params.TxRunner,
	}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet account")
	}
	return account.BalancePaise, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	txns, err := s.repo.ListTransactions(ctx, userID, limit+1, cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallet transactions")
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}

func (s *service) TopUp(ctx context.Context, userID uuid.UUID, amountPaise int64) error {
	return s.Credit(ctx, MovementInput{
		UserID:      userID,
		AmountPaise: amountPaise,
		EntryType:   enums.LedgerEntryTypeWalletTopup,
		Description: "wallet top-up",
	})
}

func (s *service) Credit(ctx context.Context, input MovementInput) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.CreditTx(ctx, tx, input)
	})
}

func (s *service) Debit(ctx context.Context, input MovementInput) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.DebitTx(ctx, tx, input)
	})
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, input MovementInput) error {
	if err := validateMovement(input); err != nil {
		return err
	}
	if !input.EntryType.IsCredit() {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit requires a credit ledger entry type")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.EnsureAccount(ctx, input.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensuring wallet account")
	}
	if err := repo.IncrementBalance(ctx, input.UserID, input.AmountPaise); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting wallet")
	}

	return s.record(ctx, tx, repo, input, enums.WalletTransactionTypeCredit)
}

func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, input MovementInput) error {
	if err := validateMovement(input); err != nil {
		return err
	}
	if input.EntryType.IsCredit() || !input.EntryType.MovesBalance() {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit requires a debit ledger entry type")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.EnsureAccount(ctx, input.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensuring wallet account")
	}
	ok, err := repo.TryDecrementBalance(ctx, input.UserID, input.AmountPaise)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting wallet")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient wallet balance").
			WithDetails(map[string]any{"requested_paise": input.AmountPaise})
	}

	return s.record(ctx, tx, repo, input, enums.WalletTransactionTypeDebit)
}

// RecordPaymentAttemptTx appends a ledger entry for a payment collected
// outside the wallet (gateway intent or cash on delivery). The balance is
// untouched, so the entry carries the current snapshot and replays as zero.
func (s *service) RecordPaymentAttemptTx(ctx context.Context, tx *gorm.DB, input MovementInput) error {
	if err := validateMovement(input); err != nil {
		return err
	}
	if input.EntryType.MovesBalance() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment attempts require the payment-attempt entry type")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.EnsureAccount(ctx, input.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensuring wallet account")
	}
	account, err := repo.GetAccount(ctx, input.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading wallet balance")
	}

	entry, err := ledger.NewEntry(input.UserID, input.EntryType, input.AmountPaise, account.BalancePaise, input.OrderID, input.Description)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building ledger entry")
	}
	if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending ledger entry")
	}
	return nil
}

// record writes the transaction row and the ledger entry with the balance
// snapshot read inside the same transaction.
func (s *service) record(ctx context.Context, tx *gorm.DB, repo Repository, input MovementInput, txnType enums.WalletTransactionType) error {
	account, err := repo.GetAccount(ctx, input.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading wallet balance")
	}

	txn := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Type:        txnType,
		AmountPaise: input.AmountPaise,
		OrderID:     input.OrderID,
		Description: input.Description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording wallet transaction")
	}

	entry, err := ledger.NewEntry(input.UserID, input.EntryType, input.AmountPaise, account.BalancePaise, input.OrderID, input.Description)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building ledger entry")
	}
	if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending ledger entry")
	}
	return nil
}

func validateMovement(input MovementInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.AmountPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.EntryType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry type")
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	return nil
}
