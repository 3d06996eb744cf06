package payments

import "context"

// IntentInput describes the order a payment intent must cover. Amounts are
// integer paise, which is also the gateway's smallest INR unit.
type IntentInput struct {
	AmountPaise int64
	Receipt     string
}

// Intent is the gateway-side order the client completes payment against.
type Intent struct {
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
}

// Gateway creates payment intents with the upstream provider. Checkout holds
// the only call site; verification is local HMAC work and never leaves the
// process.
type Gateway interface {
	CreateIntent(ctx context.Context, input IntentInput) (*Intent, error)
}
