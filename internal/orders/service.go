package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/internal/cart"
	"github.com/vastra-shop/backend/internal/inventory"
	"github.com/vastra-shop/backend/internal/payments"
	"github.com/vastra-shop/backend/internal/wallet"
	"github.com/vastra-shop/backend/pkg/config"
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/logger"
	"github.com/vastra-shop/backend/pkg/metrics"
	"github.com/vastra-shop/backend/pkg/pagination"
	"github.com/vastra-shop/backend/pkg/types"
)

type cartSource interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type walletMover interface {
	CreditTx(ctx context.Context, tx *gorm.DB, input wallet.MovementInput) error
	DebitTx(ctx context.Context, tx *gorm.DB, input wallet.MovementInput) error
	RecordPaymentAttemptTx(ctx context.Context, tx *gorm.DB, input wallet.MovementInput) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type checkoutLocker interface {
	AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, userID string) error
}

// checkoutLockTTL bounds how long a crashed checkout can block its user.
const checkoutLockTTL = 30 * time.Second

// CreateInput starts checkout for the caller's active cart.
type CreateInput struct {
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	ShippingAddress types.Address       `json:"shipping_address" validate:"required"`
}

// CreateResult carries the stored order plus, for gateway payments, the
// intent the client completes payment against.
type CreateResult struct {
	Order  *models.Order
	Intent *payments.Intent
}

// VerifyInput carries the gateway callback fields for local verification. The
// order is addressed by the gateway's own order id, the one key both the
// client callback and the webhook share.
type VerifyInput struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// Service orchestrates checkout, payment settlement, fulfilment tracking and
// the return/refund workflow. Checkout is all-or-nothing: stock reservation,
// wallet movement and the order insert commit in one transaction, with the
// gateway call as the last fallible step so a gateway failure leaves nothing
// behind.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*CreateResult, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Order, error)
	RetryPayment(ctx context.Context, userID, orderID uuid.UUID) (*CreateResult, error)
	MarkPaymentFailedByGatewayOrder(ctx context.Context, gatewayOrderID string) error
	CancelItem(ctx context.Context, userID, orderID, itemID uuid.UUID) (*models.Order, error)
	UpdateTracking(ctx context.Context, orderID, itemID uuid.UUID, status enums.TrackingStatus) (*models.Order, error)
	RequestReturn(ctx context.Context, userID, orderID, itemID uuid.UUID, reason string) (*models.Order, error)
	DecideReturn(ctx context.Context, orderID, itemID uuid.UUID, approve bool) (*models.Order, error)
	ProcessRefund(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	Detail(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	Repo            Repository
	Cart            cartSource
	Inventory       inventory.Service
	Wallet          walletMover
	Gateway         payments.Gateway
	TxRunner        txRunner
	Locks           checkoutLocker
	Metrics         *metrics.CheckoutMetrics
	Logger          *logger.Logger
	Checkout        config.CheckoutConfig
	SignatureSecret string
}

type service struct {
	repo      Repository
	cart      cartSource
	inventory inventory.Service
	wallet    walletMover
	gateway   payments.Gateway
	txRunner  txRunner
	locks     checkoutLocker
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	checkout  config.CheckoutConfig
	sigSecret string
}

// NewService validates and wires the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart dependency required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory dependency required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet dependency required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      params.Repo,
		cart:      params.Cart,
		inventory: params.Inventory,
		wallet:    params.Wallet,
		gateway:   params.Gateway,
		txRunner:  params.TxRunner,
		locks:     params.Locks,
		metrics:   params.Metrics,
		logg:      params.Logger,
		checkout:  params.Checkout,
		sigSecret: params.SignatureSecret,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*CreateResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquireCheckoutLock(ctx, userID.String(), checkoutLockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring checkout lock")
		}
		if !acquired {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
		}
		defer func() {
			if err := s.locks.ReleaseCheckoutLock(ctx, userID.String()); err != nil {
				s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "releasing checkout lock failed")
			}
		}()
	}

	snapshot, err := s.cart.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	finalPaise := snapshot.FinalPaise + s.checkout.DeliveryChargePaise
	if input.PaymentMethod == enums.PaymentMethodCOD && finalPaise > s.checkout.CODCeilingPaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order exceeds cash-on-delivery ceiling").
			WithDetails(map[string]any{
				"final_paise":   finalPaise,
				"ceiling_paise": s.checkout.CODCeilingPaise,
			})
	}

	order := &models.Order{
		ID:                  uuid.New(),
		UserID:              userID,
		Status:              enums.OrderStatusPending,
		PaymentMethod:       input.PaymentMethod,
		PaymentStatus:       enums.PaymentStatusPending,
		TotalPaise:          snapshot.TotalPaise,
		DiscountPaise:       snapshot.DiscountPaise,
		DeliveryChargePaise: s.checkout.DeliveryChargePaise,
		FinalPaise:          finalPaise,
		ShippingAddress:     input.ShippingAddress,
		AdminApproval:       enums.AdminApprovalPending,
	}
	lines := make([]inventory.Line, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Size:           item.Size,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
			DiscountPaise:  item.DiscountPaise,
			TotalPaise:     item.TotalPaise,
			TrackingStatus: enums.TrackingStatusPending,
		})
		lines = append(lines, inventory.Line{
			ProductID: item.ProductID,
			Size:      item.Size,
			Qty:       item.Quantity,
		})
	}

	var intent *payments.Intent
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.inventory.WithTx(tx).ReserveAll(ctx, lines); err != nil {
			return err
		}

		switch input.PaymentMethod {
		case enums.PaymentMethodWallet:
			if err := s.wallet.DebitTx(ctx, tx, wallet.MovementInput{
				UserID:      userID,
				AmountPaise: finalPaise,
				EntryType:   enums.LedgerEntryTypeOrderPayment,
				OrderID:     &order.ID,
				Description: "order payment",
			}); err != nil {
				return err
			}
			order.PaymentStatus = enums.PaymentStatusPaid
		case enums.PaymentMethodCOD:
			// collected on delivery, the ledger only notes the amount owed
			if err := s.wallet.RecordPaymentAttemptTx(ctx, tx, wallet.MovementInput{
				UserID:      userID,
				AmountPaise: finalPaise,
				EntryType:   enums.LedgerEntryTypePaymentAttempt,
				OrderID:     &order.ID,
				Description: "cash on delivery pending",
			}); err != nil {
				return err
			}
		case enums.PaymentMethodRazorpay:
			// last fallible step: a gateway failure rolls everything back
			created, err := s.gateway.CreateIntent(ctx, payments.IntentInput{
				AmountPaise: finalPaise,
				Receipt:     order.ID.String(),
			})
			if err != nil {
				return err
			}
			intent = created
			order.GatewayOrderID = &created.GatewayOrderID
			if err := s.wallet.RecordPaymentAttemptTx(ctx, tx, wallet.MovementInput{
				UserID:      userID,
				AmountPaise: finalPaise,
				EntryType:   enums.LedgerEntryTypePaymentAttempt,
				OrderID:     &order.ID,
				Description: "gateway payment pending",
			}); err != nil {
				return err
			}
		}

		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		// order is committed; a stale cart re-derives on its next mutation
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "clearing cart after checkout failed")
	}
	s.metrics.IncOrderCreated(input.PaymentMethod.String())
	return &CreateResult{Order: order, Intent: intent}, nil
}

func (s *service) VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.GatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}
	order, err := s.repo.GetByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	// a foreign order looks like a missing one
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentMethod != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no gateway payment")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return order, nil
	}

	if !payments.VerifyPaymentSignature(s.sigSecret, input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		order.PaymentStatus = enums.PaymentStatusFailed
		order.Status = enums.OrderStatusPaymentFailed
		if err := s.repo.Save(ctx, order); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		s.metrics.IncPaymentFailure("signature")
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i := range order.Items {
			order.Items[i].GatewayPaymentID = &input.GatewayPaymentID
			if err := txRepo.SaveItem(ctx, &order.Items[i]); err != nil {
				return err
			}
		}
		order.PaymentStatus = enums.PaymentStatusPaid
		order.Status = enums.OrderStatusConfirmed
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
	}
	return order, nil
}

func (s *service) RetryPayment(ctx context.Context, userID, orderID uuid.UUID) (*CreateResult, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no gateway payment")
	}
	if order.PaymentStatus != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not in a failed state")
	}
	if order.PaymentRetries >= s.checkout.MaxPaymentRetries {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment retry limit reached").
			WithDetails(map[string]any{"max_retries": s.checkout.MaxPaymentRetries})
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.IntentInput{
		AmountPaise: order.FinalPaise,
		Receipt:     fmt.Sprintf("%s-r%d", order.ID, order.PaymentRetries+1),
	})
	if err != nil {
		return nil, err
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i := range order.Items {
			order.Items[i].GatewayPaymentID = nil
			if err := txRepo.SaveItem(ctx, &order.Items[i]); err != nil {
				return err
			}
		}
		order.GatewayOrderID = &intent.GatewayOrderID
		order.PaymentRetries++
		order.PaymentStatus = enums.PaymentStatusPending
		order.Status = enums.OrderStatusPending
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment retry")
	}
	return &CreateResult{Order: order, Intent: intent}, nil
}

// MarkPaymentFailedByGatewayOrder converges an order onto the payment-failed
// state from a gateway webhook. A webhook arriving after local verification
// succeeded is ignored.
func (s *service) MarkPaymentFailedByGatewayOrder(ctx context.Context, gatewayOrderID string) error {
	order, err := s.repo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "ignoring failure webhook for paid order")
		return nil
	}

	order.PaymentStatus = enums.PaymentStatusFailed
	order.Status = enums.OrderStatusPaymentFailed
	if err := s.repo.Save(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
	}
	return nil
}

func (s *service) CancelItem(ctx context.Context, userID, orderID, itemID uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	item := findOrderItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	if item.TrackingStatus != enums.TrackingStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending items can be cancelled").
			WithDetails(map[string]any{"tracking_status": item.TrackingStatus})
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item.TrackingStatus = enums.TrackingStatusCancelled
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := s.inventory.WithTx(tx).Release(ctx, inventory.Line{
			ProductID: item.ProductID,
			Size:      item.Size,
			Qty:       item.Quantity,
		}); err != nil {
			return err
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			if err := s.wallet.CreditTx(ctx, tx, wallet.MovementInput{
				UserID:      order.UserID,
				AmountPaise: item.TotalPaise,
				EntryType:   enums.LedgerEntryTypeRefund,
				OrderID:     &order.ID,
				Description: "item cancellation refund",
			}); err != nil {
				return err
			}
		}

		order.Status = nextStatus(order.Status, order.Items)
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) UpdateTracking(ctx context.Context, orderID, itemID uuid.UUID, status enums.TrackingStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown tracking status")
	}
	if status.InReturnFlow() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return states are set by the return workflow")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := findOrderItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	switch {
	case item.TrackingStatus == enums.TrackingStatusCancelled,
		item.TrackingStatus == enums.TrackingStatusReturned:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item tracking is terminal").
			WithDetails(map[string]any{"tracking_status": item.TrackingStatus})
	case item.TrackingStatus == enums.TrackingStatusReturnRequested,
		item.TrackingStatus == enums.TrackingStatusReturnApproved:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is in the return workflow").
			WithDetails(map[string]any{"tracking_status": item.TrackingStatus})
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item.TrackingStatus = status
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return err
		}
		order.Status = nextStatus(order.Status, order.Items)
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving tracking update")
	}
	return order, nil
}

// RequestReturn opens a return for one delivered item. The order records the
// request through returnRequested and the approval state; other items keep
// moving through fulfilment untouched.
func (s *service) RequestReturn(ctx context.Context, userID, orderID, itemID uuid.UUID, reason string) (*models.Order, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason is required")
	}
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	item := findOrderItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	if item.TrackingStatus != enums.TrackingStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered items can be returned").
			WithDetails(map[string]any{"tracking_status": item.TrackingStatus})
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item.TrackingStatus = enums.TrackingStatusReturnRequested
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return err
		}
		order.ReturnRequested = true
		order.ReturnReason = &reason
		order.AdminApproval = enums.AdminApprovalPending
		if order.Status == enums.OrderStatusDelivered {
			order.Status = enums.OrderStatusReturnRequested
		}
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving return request")
	}
	return order, nil
}

func (s *service) DecideReturn(ctx context.Context, orderID, itemID uuid.UUID, approve bool) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := findOrderItem(order, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	if item.TrackingStatus != enums.TrackingStatusReturnRequested {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending return request").
			WithDetails(map[string]any{"tracking_status": item.TrackingStatus})
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if approve {
			item.TrackingStatus = enums.TrackingStatusReturnApproved
			order.AdminApproval = enums.AdminApprovalApproved
			if order.Status == enums.OrderStatusReturnRequested {
				order.Status = enums.OrderStatusReturnApproved
			}
		} else {
			item.TrackingStatus = enums.TrackingStatusReturnRejected
			order.AdminApproval = enums.AdminApprovalRejected
			if order.Status == enums.OrderStatusReturnRequested {
				order.Status = enums.OrderStatusReturnRejected
			}
		}
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return err
		}
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving return decision")
	}
	return order, nil
}

// ProcessRefund settles an approved return: every approved item goes back to
// stock, and the sum of their totals is credited to the buyer's wallet as a
// single refund movement.
func (s *service) ProcessRefund(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.ReturnRequested || order.AdminApproval != enums.AdminApprovalApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return is not approved").
			WithDetails(map[string]any{"admin_approval": order.AdminApproval})
	}
	if order.Refunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already refunded")
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txInventory := s.inventory.WithTx(tx)

		var refundPaise int64
		refundable := 0
		for i := range order.Items {
			item := &order.Items[i]
			if item.TrackingStatus != enums.TrackingStatusReturnApproved {
				continue
			}
			if err := txInventory.Release(ctx, inventory.Line{
				ProductID: item.ProductID,
				Size:      item.Size,
				Qty:       item.Quantity,
			}); err != nil {
				return err
			}
			item.TrackingStatus = enums.TrackingStatusReturned
			if err := txRepo.SaveItem(ctx, item); err != nil {
				return err
			}
			refundPaise += item.TotalPaise
			refundable++
		}
		if refundable == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing left to refund")
		}

		if err := s.wallet.CreditTx(ctx, tx, wallet.MovementInput{
			UserID:      order.UserID,
			AmountPaise: refundPaise,
			EntryType:   enums.LedgerEntryTypeRefund,
			OrderID:     &order.ID,
			Description: "order return refund",
		}); err != nil {
			return err
		}

		order.Refunded = true
		order.RefundPaise = refundPaise
		if allItemsClosed(order.Items) {
			order.Status = enums.OrderStatusReturned
		}
		return txRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRefundIssued()
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, limit+1, cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *service) Detail(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return s.ownedOrder(ctx, userID, orderID)
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// a foreign order looks like a missing one
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// allItemsClosed reports whether every item has left fulfilment for good,
// either returned or cancelled.
func allItemsClosed(items []models.OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		switch item.TrackingStatus {
		case enums.TrackingStatusReturned, enums.TrackingStatusCancelled:
		default:
			return false
		}
	}
	return true
}

func findOrderItem(order *models.Order, itemID uuid.UUID) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}
