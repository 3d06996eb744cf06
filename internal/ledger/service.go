package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/pagination"
)

// Service defines the reporting and audit surface over the ledger. Writing
// entries happens through the wallet service so the balance snapshot and the
// entry always commit together.
type Service interface {
	Report(ctx context.Context, params ReportParams) (*Report, error)
	ExportCSV(ctx context.Context, w io.Writer, from, to time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	ReplayedBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ReportParams selects a date range plus cursor pagination inputs.
type ReportParams struct {
	From   time.Time
	To     time.Time
	Limit  int
	Cursor string
}

// Report carries one page of entries plus range-wide aggregates.
type Report struct {
	Entries    []models.LedgerEntry `json:"entries"`
	Totals     Totals               `json:"totals"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Report(ctx context.Context, params ReportParams) (*Report, error) {
	if err := validateRange(params.From, params.To); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListRange(ctx, params.From, params.To, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ledger entries")
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	totals, err := s.repo.Totals(ctx, params.From, params.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating ledger totals")
	}

	return &Report{Entries: entries, Totals: totals, NextCursor: next}, nil
}

var csvHeader = []string{"id", "user_id", "type", "amount_paise", "balance_after_paise", "order_id", "description", "created_at"}

// ExportCSV streams every entry in the range, oldest first, walking the same
// cursor the paged report uses so large ranges never load at once.
func (s *service) ExportCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	if err := validateRange(from, to); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv header")
	}

	var cursor *pagination.Cursor
	for {
		entries, err := s.repo.ListRange(ctx, from, to, pagination.MaxLimit, cursor)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ledger entries")
		}
		if len(entries) == 0 {
			break
		}
		for _, entry := range entries {
			orderID := ""
			if entry.OrderID != nil {
				orderID = entry.OrderID.String()
			}
			record := []string{
				entry.ID.String(),
				entry.UserID.String(),
				entry.Type.String(),
				strconv.FormatInt(entry.AmountPaise, 10),
				strconv.FormatInt(entry.BalanceAfterPaise, 10),
				orderID,
				entry.Description,
				entry.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv record")
			}
		}
		if len(entries) < pagination.MaxLimit {
			break
		}
		last := entries[len(entries)-1]
		cursor = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing csv")
	}
	return nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListByUser(ctx, userID, limit+1, cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ledger entries")
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (s *service) ReplayedBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	sum, err := s.repo.SignedSumByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replaying ledger")
	}
	return sum, nil
}

// NewEntry builds a validated ledger row; callers persist it through a
// tx-scoped repository alongside the wallet balance update.
func NewEntry(userID uuid.UUID, entryType enums.LedgerEntryType, amountPaise, balanceAfterPaise int64, orderID *uuid.UUID, description string) (*models.LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if !entryType.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry type %q", entryType)
	}
	if amountPaise <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return &models.LedgerEntry{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              entryType,
		AmountPaise:       amountPaise,
		BalanceAfterPaise: balanceAfterPaise,
		OrderID:           orderID,
		Description:       description,
	}, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
	}
	if to.Before(from) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	return nil
}
