package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
)

type productLoader interface {
	Product(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type offerResolver interface {
	ActiveForProduct(ctx context.Context, productID, categoryID uuid.UUID) ([]models.Offer, error)
	CouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

// AddItemInput adds a product/size line to a cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// Snapshot is the priced view the order orchestrator consumes. Lines whose
// size is out of stock are excluded; the raw cart rows keep them so the buyer
// can recover them later.
type Snapshot struct {
	CartID        uuid.UUID
	CouponID      *uuid.UUID
	Items         []SnapshotItem
	TotalPaise    int64
	DiscountPaise int64
	FinalPaise    int64
	TotalQuantity int
}

// SnapshotItem is one orderable line of a priced cart.
type SnapshotItem struct {
	ProductID      uuid.UUID
	Name           string
	Size           string
	Quantity       int
	UnitPricePaise int64
	DiscountPaise  int64
	TotalPaise     int64
}

// Service owns the single active cart per user. Every mutation re-derives
// the cached totals from the item list; nothing is adjusted incrementally.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.CartRecord, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
}

// ServiceParams wires the cart service dependencies.
type ServiceParams struct {
	Repo    Repository
	Catalog productLoader
	Offers  offerResolver
}

type service struct {
	repo    Repository
	catalog productLoader
	offers  offerResolver
}

// NewService validates and wires the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("offer resolver required")
	}
	return &service{
		repo:    params.Repo,
		catalog: params.Catalog,
		offers:  params.Offers,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	return s.loadOrCreate(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.catalog.Product(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	size, ok := findSize(product, input.Size)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product size not found")
	}
	if size.Stock < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"product_id": product.ID, "size": input.Size, "available": size.Stock})
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing := findItem(record, input.ProductID, input.Size); existing != nil {
		existing.Quantity += input.Quantity
		existing.UnitPricePaise = product.PricePaise
		if err := s.repo.SaveItem(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}
	} else {
		item := models.CartItem{
			ID:             uuid.New(),
			CartID:         record.ID,
			ProductID:      input.ProductID,
			Size:           input.Size,
			Quantity:       input.Quantity,
			UnitPricePaise: product.PricePaise,
		}
		if err := s.repo.SaveItem(ctx, &item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
		}
		record.Items = append(record.Items, item)
	}

	return s.recalculate(ctx, record)
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := findItemByID(record, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	item.Quantity = quantity
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}
	return s.recalculate(ctx, record)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := findItemByID(record, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}

	kept := record.Items[:0]
	for i := range record.Items {
		if record.Items[i].ID != itemID {
			kept = append(kept, record.Items[i])
		}
	}
	record.Items = kept

	return s.recalculate(ctx, record)
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.CartRecord, error) {
	coupon, err := s.offers.CouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record.AppliedCouponID != nil && *record.AppliedCouponID == coupon.ID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon already applied")
	}

	// gate against the pre-coupon total of the current pricing pass
	preCoupon := record.TotalPaise
	if preCoupon < coupon.MinPurchasePaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total below coupon minimum").
			WithDetails(map[string]any{"min_purchase_paise": coupon.MinPurchasePaise, "total_paise": preCoupon})
	}

	record.AppliedCouponID = &coupon.ID
	return s.recalculate(ctx, record)
}

func (s *service) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	record.AppliedCouponID = nil
	return s.recalculate(ctx, record)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart items")
	}
	record.Items = nil
	record.AppliedCouponID = nil
	_, err = s.recalculate(ctx, record)
	return err
}

func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	record, err = s.recalculate(ctx, record)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	products, err := s.loadProducts(ctx, record)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		CartID:        record.ID,
		CouponID:      record.AppliedCouponID,
		TotalPaise:    record.TotalPaise,
		DiscountPaise: record.DiscountPaise,
		FinalPaise:    record.FinalPaise,
		TotalQuantity: record.TotalQuantity,
	}
	for _, item := range record.Items {
		product, ok := products[item.ProductID]
		if !ok || sizeStock(&product, item.Size) <= 0 {
			continue
		}
		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ProductID:      item.ProductID,
			Name:           product.Name,
			Size:           item.Size,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
			DiscountPaise:  item.DiscountPaise,
			TotalPaise:     item.TotalPaise,
		})
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no orderable items in cart")
	}
	return snapshot, nil
}

// recalculate re-derives every cached money field from the item list and
// persists the result. Out-of-stock lines are zeroed and excluded from the
// totals but stay in the cart.
func (s *service) recalculate(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	products, err := s.loadProducts(ctx, record)
	if err != nil {
		return nil, err
	}

	var preCouponTotal int64
	var totalQuantity int
	for i := range record.Items {
		item := &record.Items[i]
		product, ok := products[item.ProductID]
		if !ok || sizeStock(&product, item.Size) <= 0 {
			item.TotalPaise = 0
			item.DiscountPaise = 0
			item.AppliedOfferIDs = nil
			if err := s.repo.SaveItem(ctx, item); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart item")
			}
			continue
		}

		activeOffers, err := s.offers.ActiveForProduct(ctx, product.ID, product.CategoryID)
		if err != nil {
			return nil, err
		}

		total, discount, offerIDs := applyOffers(item.UnitPricePaise, item.Quantity, activeOffers)
		item.TotalPaise = total
		item.DiscountPaise = discount
		item.AppliedOfferIDs = offerIDs
		if err := s.repo.SaveItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart item")
		}

		preCouponTotal += total
		totalQuantity += item.Quantity
	}

	var coupon *models.Coupon
	if record.AppliedCouponID != nil {
		coupon, err = s.offers.CouponByID(ctx, *record.AppliedCouponID)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				return nil, err
			}
			// expired or deactivated since it was applied
			coupon = nil
		}
	}
	if coupon != nil && preCouponTotal < coupon.MinPurchasePaise {
		coupon = nil
	}
	if coupon == nil {
		record.AppliedCouponID = nil
	}
	discount := couponDiscount(preCouponTotal, coupon)

	record.TotalPaise = preCouponTotal
	record.DiscountPaise = discount
	record.FinalPaise = preCouponTotal - discount
	record.TotalQuantity = totalQuantity

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart")
	}
	return record, nil
}

func (s *service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.GetByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	fresh := &models.CartRecord{ID: uuid.New(), UserID: userID}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return fresh, nil
}

func (s *service) loadProducts(ctx context.Context, record *models.CartRecord) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		ids = append(ids, item.ProductID)
	}
	return s.catalog.ProductsByID(ctx, ids)
}

func findSize(product *models.Product, size string) (*models.ProductSize, bool) {
	for i := range product.Sizes {
		if product.Sizes[i].Size == size {
			return &product.Sizes[i], true
		}
	}
	return nil, false
}

func sizeStock(product *models.Product, size string) int {
	if row, ok := findSize(product, size); ok {
		return row.Stock
	}
	return 0
}

func findItem(record *models.CartRecord, productID uuid.UUID, size string) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].ProductID == productID && record.Items[i].Size == size {
			return &record.Items[i]
		}
	}
	return nil
}

func findItemByID(record *models.CartRecord, itemID uuid.UUID) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].ID == itemID {
			return &record.Items[i]
		}
	}
	return nil
}
