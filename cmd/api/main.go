package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vastra-shop/backend/api/routes"
	"github.com/vastra-shop/backend/internal/cart"
	"github.com/vastra-shop/backend/internal/catalog"
	"github.com/vastra-shop/backend/internal/inventory"
	"github.com/vastra-shop/backend/internal/ledger"
	"github.com/vastra-shop/backend/internal/offers"
	"github.com/vastra-shop/backend/internal/orders"
	"github.com/vastra-shop/backend/internal/payments"
	"github.com/vastra-shop/backend/internal/users"
	"github.com/vastra-shop/backend/internal/wallet"
	"github.com/vastra-shop/backend/pkg/config"
	"github.com/vastra-shop/backend/pkg/db"
	"github.com/vastra-shop/backend/pkg/logger"
	"github.com/vastra-shop/backend/pkg/metrics"
	"github.com/vastra-shop/backend/pkg/migrate"
	"github.com/vastra-shop/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	offersService, err := offers.NewService(offers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(wallet.ServiceParams{
		Repo:       wallet.NewRepository(dbClient.DB()),
		LedgerRepo: ledger.NewRepository(dbClient.DB()),
		TxRunner:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cart.NewRepository(dbClient.DB()),
		Catalog: catalogService,
		Offers:  offersService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	gateway, err := payments.NewRazorpayGateway(cfg.Razorpay, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:            orders.NewRepository(dbClient.DB()),
		Cart:            cartService,
		Inventory:       inventoryService,
		Wallet:          walletService,
		Gateway:         gateway,
		TxRunner:        dbClient,
		Locks:           redisClient,
		Metrics:         checkoutMetrics,
		Logger:          logg,
		Checkout:        cfg.Checkout,
		SignatureSecret: cfg.Razorpay.KeySecret,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	var webhookService payments.WebhookService
	if cfg.Razorpay.WebhookSecret != "" {
		webhookService, err = payments.NewWebhookService(payments.WebhookServiceParams{
			Secret:  cfg.Razorpay.WebhookSecret,
			Orders:  ordersService,
			Metrics: checkoutMetrics,
			Logger:  logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create webhook service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "razorpay webhook secret not set, webhook endpoint disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Cart:     cartService,
			Orders:   ordersService,
			Wallet:   walletService,
			Ledger:   ledgerService,
			Users:    usersService,
			Webhooks: webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
