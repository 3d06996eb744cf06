package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/internal/ledger"
	"github.com/vastra-shop/backend/internal/orders"
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
	"github.com/vastra-shop/backend/pkg/types"
)

type cartItemView struct {
	ID              uuid.UUID   `json:"id"`
	ProductID       uuid.UUID   `json:"product_id"`
	Size            string      `json:"size"`
	Quantity        int         `json:"quantity"`
	UnitPricePaise  int64       `json:"unit_price_paise"`
	DiscountPaise   int64       `json:"discount_paise"`
	TotalPaise      int64       `json:"total_paise"`
	AppliedOfferIDs []uuid.UUID `json:"applied_offer_ids,omitempty"`
}

type cartView struct {
	ID              uuid.UUID      `json:"id"`
	AppliedCouponID *uuid.UUID     `json:"applied_coupon_id,omitempty"`
	Items           []cartItemView `json:"items"`
	TotalPaise      int64          `json:"total_paise"`
	DiscountPaise   int64          `json:"discount_paise"`
	FinalPaise      int64          `json:"final_paise"`
	TotalQuantity   int            `json:"total_quantity"`
}

func newCartView(record *models.CartRecord) cartView {
	items := make([]cartItemView, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemView{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Size:            item.Size,
			Quantity:        item.Quantity,
			UnitPricePaise:  item.UnitPricePaise,
			DiscountPaise:   item.DiscountPaise,
			TotalPaise:      item.TotalPaise,
			AppliedOfferIDs: item.AppliedOfferIDs,
		})
	}
	return cartView{
		ID:              record.ID,
		AppliedCouponID: record.AppliedCouponID,
		Items:           items,
		TotalPaise:      record.TotalPaise,
		DiscountPaise:   record.DiscountPaise,
		FinalPaise:      record.FinalPaise,
		TotalQuantity:   record.TotalQuantity,
	}
}

type orderItemView struct {
	ID             uuid.UUID            `json:"id"`
	ProductID      uuid.UUID            `json:"product_id"`
	Name           string               `json:"name"`
	Size           string               `json:"size"`
	Quantity       int                  `json:"quantity"`
	UnitPricePaise int64                `json:"unit_price_paise"`
	DiscountPaise  int64                `json:"discount_paise"`
	TotalPaise     int64                `json:"total_paise"`
	TrackingStatus enums.TrackingStatus `json:"tracking_status"`
}

type orderView struct {
	ID                  uuid.UUID           `json:"id"`
	Status              enums.OrderStatus   `json:"status"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	PaymentStatus       enums.PaymentStatus `json:"payment_status"`
	GatewayOrderID      *string             `json:"gateway_order_id,omitempty"`
	PaymentRetries      int                 `json:"payment_retries"`
	TotalPaise          int64               `json:"total_paise"`
	DiscountPaise       int64               `json:"discount_paise"`
	DeliveryChargePaise int64               `json:"delivery_charge_paise"`
	FinalPaise          int64               `json:"final_paise"`
	ShippingAddress     types.Address       `json:"shipping_address"`
	ReturnRequested     bool                `json:"return_requested"`
	ReturnReason        *string             `json:"return_reason,omitempty"`
	AdminApproval       enums.AdminApproval `json:"admin_approval"`
	Refunded            bool                `json:"refunded"`
	RefundPaise         int64               `json:"refund_paise"`
	Items               []orderItemView     `json:"items"`
	CreatedAt           time.Time           `json:"created_at"`
}

func newOrderView(order *models.Order) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Size:           item.Size,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
			DiscountPaise:  item.DiscountPaise,
			TotalPaise:     item.TotalPaise,
			TrackingStatus: item.TrackingStatus,
		})
	}
	return orderView{
		ID:                  order.ID,
		Status:              order.Status,
		PaymentMethod:       order.PaymentMethod,
		PaymentStatus:       order.PaymentStatus,
		GatewayOrderID:      order.GatewayOrderID,
		PaymentRetries:      order.PaymentRetries,
		TotalPaise:          order.TotalPaise,
		DiscountPaise:       order.DiscountPaise,
		DeliveryChargePaise: order.DeliveryChargePaise,
		FinalPaise:          order.FinalPaise,
		ShippingAddress:     order.ShippingAddress,
		ReturnRequested:     order.ReturnRequested,
		ReturnReason:        order.ReturnReason,
		AdminApproval:       order.AdminApproval,
		Refunded:            order.Refunded,
		RefundPaise:         order.RefundPaise,
		Items:               items,
		CreatedAt:           order.CreatedAt,
	}
}

type checkoutView struct {
	Order  orderView   `json:"order"`
	Intent *intentView `json:"payment_intent,omitempty"`
}

type intentView struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
}

func newCheckoutView(result *orders.CreateResult) checkoutView {
	view := checkoutView{Order: newOrderView(result.Order)}
	if result.Intent != nil {
		view.Intent = &intentView{
			GatewayOrderID: result.Intent.GatewayOrderID,
			AmountPaise:    result.Intent.AmountPaise,
			Currency:       result.Intent.Currency,
		}
	}
	return view
}

type orderListView struct {
	Orders     []orderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func newOrderListView(rows []models.Order, nextCursor string) orderListView {
	views := make([]orderView, 0, len(rows))
	for i := range rows {
		views = append(views, newOrderView(&rows[i]))
	}
	return orderListView{Orders: views, NextCursor: nextCursor}
}

type transactionView struct {
	ID          uuid.UUID                   `json:"id"`
	Type        enums.WalletTransactionType `json:"type"`
	AmountPaise int64                       `json:"amount_paise"`
	OrderID     *uuid.UUID                  `json:"order_id,omitempty"`
	Description string                      `json:"description"`
	CreatedAt   time.Time                   `json:"created_at"`
}

type walletHistoryView struct {
	Transactions []transactionView `json:"transactions"`
	NextCursor   string            `json:"next_cursor,omitempty"`
}

func newWalletHistoryView(rows []models.WalletTransaction, nextCursor string) walletHistoryView {
	views := make([]transactionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, transactionView{
			ID:          row.ID,
			Type:        row.Type,
			AmountPaise: row.AmountPaise,
			OrderID:     row.OrderID,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return walletHistoryView{Transactions: views, NextCursor: nextCursor}
}

type ledgerEntryView struct {
	ID                uuid.UUID             `json:"id"`
	UserID            uuid.UUID             `json:"user_id"`
	Type              enums.LedgerEntryType `json:"type"`
	AmountPaise       int64                 `json:"amount_paise"`
	BalanceAfterPaise int64                 `json:"balance_after_paise"`
	OrderID           *uuid.UUID            `json:"order_id,omitempty"`
	Description       string                `json:"description"`
	CreatedAt         time.Time             `json:"created_at"`
}

type ledgerReportView struct {
	Entries          []ledgerEntryView `json:"entries"`
	TotalCreditPaise int64             `json:"total_credit_paise"`
	TotalDebitPaise  int64             `json:"total_debit_paise"`
	EntryCount       int64             `json:"entry_count"`
	NextCursor       string            `json:"next_cursor,omitempty"`
}

func newLedgerReportView(report *ledger.Report) ledgerReportView {
	entries := make([]ledgerEntryView, 0, len(report.Entries))
	for _, entry := range report.Entries {
		entries = append(entries, ledgerEntryView{
			ID:                entry.ID,
			UserID:            entry.UserID,
			Type:              entry.Type,
			AmountPaise:       entry.AmountPaise,
			BalanceAfterPaise: entry.BalanceAfterPaise,
			OrderID:           entry.OrderID,
			Description:       entry.Description,
			CreatedAt:         entry.CreatedAt,
		})
	}
	return ledgerReportView{
		Entries:          entries,
		TotalCreditPaise: report.Totals.CreditPaise,
		TotalDebitPaise:  report.Totals.DebitPaise,
		EntryCount:       report.Totals.Entries,
		NextCursor:       report.NextCursor,
	}
}
