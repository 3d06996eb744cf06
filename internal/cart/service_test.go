package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
)

func TestAddItemAppliesProductOffer(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addOffer(shirt.ID, 10)

	record, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 2})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(record.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(record.Items))
	}
	item := record.Items[0]
	if item.DiscountPaise != 10000 {
		t.Fatalf("expected item discount 10000, got %d", item.DiscountPaise)
	}
	if item.TotalPaise != 90000 {
		t.Fatalf("expected item total 90000, got %d", item.TotalPaise)
	}
	if record.TotalPaise != 90000 || record.FinalPaise != 90000 {
		t.Fatalf("expected cart total/final 90000/90000, got %d/%d", record.TotalPaise, record.FinalPaise)
	}
	if record.DiscountPaise != 0 {
		t.Fatalf("expected no coupon discount, got %d", record.DiscountPaise)
	}
	if record.TotalQuantity != 2 {
		t.Fatalf("expected quantity 2, got %d", record.TotalQuantity)
	}
}

func TestApplyCouponDiscountsPostOfferTotal(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addOffer(shirt.ID, 10)
	fixture.offers.addCoupon("SAVE10", 10, 80000)

	if _, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 2}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	record, err := fixture.svc.ApplyCoupon(ctx, userID, "SAVE10")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if record.TotalPaise != 90000 {
		t.Fatalf("expected pre-coupon total 90000, got %d", record.TotalPaise)
	}
	if record.DiscountPaise != 9000 {
		t.Fatalf("expected coupon discount 9000, got %d", record.DiscountPaise)
	}
	if record.FinalPaise != 81000 {
		t.Fatalf("expected final 81000, got %d", record.FinalPaise)
	}
}

func TestApplyCouponBelowMinimumRejected(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addCoupon("BIGSPEND", 10, 200000)

	if _, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	_, err := fixture.svc.ApplyCoupon(ctx, userID, "BIGSPEND")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyCouponTwiceConflicts(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addCoupon("SAVE10", 10, 0)

	if _, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := fixture.svc.ApplyCoupon(ctx, userID, "SAVE10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	_, err := fixture.svc.ApplyCoupon(ctx, userID, "SAVE10")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCouponDroppedWhenTotalFallsBelowMinimum(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addCoupon("SAVE10", 10, 80000)

	record, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 2})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := fixture.svc.ApplyCoupon(ctx, userID, "SAVE10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	record, err = fixture.svc.UpdateQuantity(ctx, userID, record.Items[0].ID, 1)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if record.AppliedCouponID != nil {
		t.Fatal("expected coupon to be dropped below minimum purchase")
	}
	if record.DiscountPaise != 0 {
		t.Fatalf("expected zero discount, got %d", record.DiscountPaise)
	}
	if record.FinalPaise != 50000 {
		t.Fatalf("expected final 50000, got %d", record.FinalPaise)
	}
}

func TestOutOfStockLineExcludedFromTotals(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	jeans := fixture.catalog.addProduct("Jeans", 120000, map[string]int{"32": 5})

	if _, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 1}); err != nil {
		t.Fatalf("add shirt: %v", err)
	}
	record, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: jeans.ID, Size: "32", Quantity: 1})
	if err != nil {
		t.Fatalf("add jeans: %v", err)
	}
	if record.TotalPaise != 170000 {
		t.Fatalf("expected total 170000, got %d", record.TotalPaise)
	}

	fixture.catalog.setStock(jeans.ID, "32", 0)

	record, err = fixture.svc.UpdateQuantity(ctx, userID, record.Items[0].ID, 1)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if len(record.Items) != 2 {
		t.Fatalf("expected both lines kept, got %d", len(record.Items))
	}
	if record.TotalPaise != 50000 || record.TotalQuantity != 1 {
		t.Fatalf("expected totals to exclude out-of-stock line, got total %d quantity %d",
			record.TotalPaise, record.TotalQuantity)
	}

	snapshot, err := fixture.svc.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].ProductID != shirt.ID {
		t.Fatalf("expected snapshot with only the in-stock line, got %+v", snapshot.Items)
	}
}

func TestAddItemInsufficientStockRejected(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 2})

	_, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 3})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	fixture := newTestFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shirt := fixture.catalog.addProduct("Shirt", 50000, map[string]int{"M": 10})
	fixture.offers.addCoupon("SAVE10", 10, 0)

	if _, err := fixture.svc.AddItem(ctx, userID, AddItemInput{ProductID: shirt.ID, Size: "M", Quantity: 2}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := fixture.svc.ApplyCoupon(ctx, userID, "SAVE10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	if err := fixture.svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	record, err := fixture.svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(record.Items) != 0 || record.TotalPaise != 0 || record.AppliedCouponID != nil {
		t.Fatalf("expected empty cart, got %+v", record)
	}
}

type testFixture struct {
	svc     Service
	catalog *fakeCatalog
	offers  *fakeOffers
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	cartRecords := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  applied_coupon_id TEXT,
  total_paise INTEGER NOT NULL DEFAULT 0,
  discount_paise INTEGER NOT NULL DEFAULT 0,
  final_paise INTEGER NOT NULL DEFAULT 0,
  total_quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  size TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_paise INTEGER NOT NULL,
  discount_paise INTEGER NOT NULL DEFAULT 0,
  total_paise INTEGER NOT NULL DEFAULT 0,
  applied_offer_ids TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{cartRecords, cartItems} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create cart tables: %v", err)
		}
	}

	catalog := &fakeCatalog{products: map[uuid.UUID]*models.Product{}}
	offers := &fakeOffers{
		byProduct:     map[uuid.UUID][]models.Offer{},
		couponsByCode: map[string]*models.Coupon{},
		couponsByID:   map[uuid.UUID]*models.Coupon{},
	}

	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(db),
		Catalog: catalog,
		Offers:  offers,
	})
	if err != nil {
		t.Fatalf("wiring service: %v", err)
	}
	return &testFixture{svc: svc, catalog: catalog, offers: offers}
}

type fakeCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeCatalog) addProduct(name string, pricePaise int64, stock map[string]int) *models.Product {
	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: uuid.New(),
		PricePaise: pricePaise,
		Active:     true,
	}
	for size, qty := range stock {
		product.Sizes = append(product.Sizes, models.ProductSize{
			ProductID: product.ID,
			Size:      size,
			Stock:     qty,
		})
	}
	f.products[product.ID] = product
	return product
}

func (f *fakeCatalog) setStock(productID uuid.UUID, size string, stock int) {
	product := f.products[productID]
	for i := range product.Sizes {
		if product.Sizes[i].Size == size {
			product.Sizes[i].Stock = stock
		}
	}
}

func (f *fakeCatalog) Product(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (f *fakeCatalog) ProductsByID(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	byID := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			byID[id] = *product
		}
	}
	return byID, nil
}

type fakeOffers struct {
	byProduct     map[uuid.UUID][]models.Offer
	couponsByCode map[string]*models.Coupon
	couponsByID   map[uuid.UUID]*models.Coupon
}

func (f *fakeOffers) addOffer(productID uuid.UUID, pct int) {
	offer := models.Offer{
		ID:              uuid.New(),
		Name:            "test offer",
		ProductID:       &productID,
		DiscountPercent: pct,
		Active:          true,
		ValidFrom:       time.Now().Add(-time.Hour),
		ValidUntil:      time.Now().Add(time.Hour),
	}
	f.byProduct[productID] = append(f.byProduct[productID], offer)
}

func (f *fakeOffers) addCoupon(code string, pct int, minPurchasePaise int64) *models.Coupon {
	coupon := &models.Coupon{
		ID:               uuid.New(),
		Code:             code,
		DiscountPercent:  pct,
		MinPurchasePaise: minPurchasePaise,
		Active:           true,
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	f.couponsByCode[code] = coupon
	f.couponsByID[coupon.ID] = coupon
	return coupon
}

func (f *fakeOffers) ActiveForProduct(_ context.Context, productID, _ uuid.UUID) ([]models.Offer, error) {
	return f.byProduct[productID], nil
}

func (f *fakeOffers) CouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	coupon, ok := f.couponsByCode[code]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
	}
	return coupon, nil
}

func (f *fakeOffers) CouponByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, ok := f.couponsByID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
	}
	return coupon, nil
}
