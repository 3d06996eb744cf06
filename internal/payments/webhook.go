package payments

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/logger"
	"github.com/vastra-shop/backend/pkg/metrics"
)

const (
	// EventPaymentFailed is the gateway event converging an order onto the
	// payment-failed state.
	EventPaymentFailed = "payment.failed"
)

type orderFailer interface {
	MarkPaymentFailedByGatewayOrder(ctx context.Context, gatewayOrderID string) error
}

// WebhookService authenticates and applies gateway webhook deliveries.
type WebhookService interface {
	HandleDelivery(ctx context.Context, body []byte, signature string) error
}

// WebhookServiceParams wires the webhook service dependencies.
type WebhookServiceParams struct {
	Secret  string
	Orders  orderFailer
	Metrics *metrics.CheckoutMetrics
	Logger  *logger.Logger
}

type webhookService struct {
	secret  string
	orders  orderFailer
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewWebhookService validates and wires the webhook service.
func NewWebhookService(params WebhookServiceParams) (WebhookService, error) {
	if params.Secret == "" {
		return nil, fmt.Errorf("webhook secret required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders dependency required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &webhookService{
		secret:  params.Secret,
		orders:  params.Orders,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *webhookService) HandleDelivery(ctx context.Context, body []byte, signature string) error {
	if !VerifyWebhookSignature(s.secret, body, signature) {
		s.metrics.IncPaymentFailure("webhook_signature")
		return pkgerrors.New(pkgerrors.CodePaymentVerification, "webhook signature mismatch")
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding webhook payload")
	}

	switch envelope.Event {
	case EventPaymentFailed:
		gatewayOrderID := envelope.Payload.Payment.Entity.OrderID
		if gatewayOrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "webhook payload missing order id")
		}
		s.metrics.IncPaymentFailure("gateway_webhook")
		return s.orders.MarkPaymentFailedByGatewayOrder(ctx, gatewayOrderID)
	default:
		// unhandled events are acknowledged so the gateway stops retrying
		s.logg.Info(s.logg.WithField(ctx, "event", envelope.Event), "ignoring webhook event")
		return nil
	}
}
