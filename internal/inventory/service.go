package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
)

// Line identifies one reservation unit.
type Line struct {
	ProductID uuid.UUID
	Size      string
	Qty       int
}

// Service reserves and releases sellable stock. ReserveAll is all-or-nothing:
// when a line fails, every line reserved before it is released again so the
// caller sees no partial decrement even outside a surrounding transaction.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ReserveAll(ctx context.Context, lines []Line) error
	ReleaseAll(ctx context.Context, lines []Line) error
	Release(ctx context.Context, line Line) error
}

type service struct {
	repo Repository
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) ReserveAll(ctx context.Context, lines []Line) error {
	for i, line := range lines {
		if err := validateLine(line); err != nil {
			s.rollback(ctx, lines[:i])
			return err
		}
		ok, err := s.repo.Reserve(ctx, line.ProductID, line.Size, line.Qty)
		if err != nil {
			s.rollback(ctx, lines[:i])
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving stock")
		}
		if !ok {
			s.rollback(ctx, lines[:i])
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": line.ProductID,
					"size":       line.Size,
					"requested":  line.Qty,
				})
		}
	}
	return nil
}

func (s *service) ReleaseAll(ctx context.Context, lines []Line) error {
	for _, line := range lines {
		if err := s.Release(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Release(ctx context.Context, line Line) error {
	if err := validateLine(line); err != nil {
		return err
	}
	if err := s.repo.Release(ctx, line.ProductID, line.Size, line.Qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing stock")
	}
	return nil
}

func (s *service) rollback(ctx context.Context, reserved []Line) {
	for _, line := range reserved {
		// best effort: a surrounding transaction also covers this
		_ = s.repo.Release(ctx, line.ProductID, line.Size, line.Qty)
	}
}

func validateLine(line Line) error {
	if line.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.Size == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if line.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
