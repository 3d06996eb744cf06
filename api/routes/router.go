package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vastra-shop/backend/api/controllers"
	webhookcontrollers "github.com/vastra-shop/backend/api/controllers/webhooks"
	"github.com/vastra-shop/backend/api/middleware"
	"github.com/vastra-shop/backend/internal/cart"
	"github.com/vastra-shop/backend/internal/ledger"
	"github.com/vastra-shop/backend/internal/orders"
	"github.com/vastra-shop/backend/internal/payments"
	"github.com/vastra-shop/backend/internal/users"
	"github.com/vastra-shop/backend/internal/wallet"
	"github.com/vastra-shop/backend/pkg/config"
	"github.com/vastra-shop/backend/pkg/db"
	"github.com/vastra-shop/backend/pkg/enums"
	"github.com/vastra-shop/backend/pkg/logger"
	"github.com/vastra-shop/backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry
	Cart     cart.Service
	Orders   orders.Service
	Wallet   wallet.Service
	Ledger   ledger.Service
	Users    users.Service
	Webhooks payments.WebhookService
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", time.Minute, 10)
	verifyPolicy := middleware.NewRateLimitPolicy("payment_verify", time.Minute, 20)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// signature-authenticated, so outside the JWT surface
	if deps.Webhooks != nil {
		r.Route("/api/v1/webhooks", func(r chi.Router) {
			r.Post("/razorpay", webhookcontrollers.Razorpay(deps.Webhooks, logg))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Post("/coupon", controllers.CartApplyCoupon(deps.Cart, logg))
			r.Delete("/coupon", controllers.CartRemoveCoupon(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RateLimit(checkoutPolicy, deps.Redis, logg)).
				Post("/", controllers.Checkout(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.With(middleware.RateLimit(verifyPolicy, deps.Redis, logg)).
				Post("/verify-payment", controllers.OrderVerifyPayment(deps.Orders, logg))
			r.Post("/payment-failed", controllers.OrderPaymentFailed(deps.Orders, logg))
			r.Post("/{orderID}/retry", controllers.OrderRetryPayment(deps.Orders, logg))
			r.Post("/{orderID}/items/{itemID}/cancel", controllers.OrderCancelItem(deps.Orders, logg))
			r.Post("/{orderID}/items/{itemID}/return", controllers.OrderRequestReturn(deps.Orders, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletHistory(deps.Wallet, logg))
			r.Post("/topup", controllers.WalletTopUp(deps.Wallet, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Patch("/orders/{orderID}/items/{itemID}/tracking", controllers.AdminUpdateTracking(deps.Orders, logg))
			r.Post("/orders/{orderID}/items/{itemID}/return-decision", controllers.AdminReturnDecision(deps.Orders, logg))
			r.Post("/orders/{orderID}/refund", controllers.AdminProcessRefund(deps.Orders, logg))
			r.Get("/ledger/report", controllers.LedgerReport(deps.Ledger, logg))
			r.Get("/ledger/export", controllers.LedgerExport(deps.Ledger, logg))
		})
	})

	return r
}
