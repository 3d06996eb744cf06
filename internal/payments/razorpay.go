package payments

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/vastra-shop/backend/pkg/config"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/metrics"
)

const intentCurrency = "INR"

type razorpayGateway struct {
	client  *razorpay.Client
	metrics *metrics.CheckoutMetrics
}

// NewRazorpayGateway wires the Razorpay SDK behind the Gateway interface.
// Outbound calls carry the configured timeout so a stalled gateway surfaces
// as GatewayUnavailable instead of hanging the checkout.
func NewRazorpayGateway(cfg config.RazorpayConfig, checkoutMetrics *metrics.CheckoutMetrics) (Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials required")
	}
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if seconds := int16(cfg.RequestTimeout / time.Second); seconds > 0 {
		client.SetTimeout(seconds)
	}
	return &razorpayGateway{
		client:  client,
		metrics: checkoutMetrics,
	}, nil
}

func (g *razorpayGateway) CreateIntent(ctx context.Context, input IntentInput) (*Intent, error) {
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "context done before gateway call")
	}

	data := map[string]interface{}{
		"amount":   input.AmountPaise,
		"currency": intentCurrency,
		"receipt":  input.Receipt,
	}

	started := time.Now()
	body, err := g.client.Order.Create(data, nil)
	g.metrics.ObserveGatewayLatency("create_intent", time.Since(started))
	if err != nil {
		g.metrics.IncPaymentFailure("gateway")
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "creating gateway order")
	}

	id, _ := body["id"].(string)
	if id == "" {
		g.metrics.IncPaymentFailure("gateway")
		return nil, pkgerrors.New(pkgerrors.CodeGatewayUnavailable, "gateway order response missing id")
	}

	return &Intent{
		GatewayOrderID: id,
		AmountPaise:    input.AmountPaise,
		Currency:       intentCurrency,
	}, nil
}
