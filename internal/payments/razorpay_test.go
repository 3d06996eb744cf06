package payments

import (
	"testing"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/vastra-shop/backend/pkg/config"
)

// not parallel: the SDK shares one package-level request across clients

func TestNewRazorpayGatewayRequiresCredentials(t *testing.T) {
	_, err := NewRazorpayGateway(config.RazorpayConfig{KeyID: "rzp_test_key"}, nil)
	if err == nil {
		t.Fatal("expected error without a key secret")
	}
}

func TestNewRazorpayGatewayBoundsRequestTimeout(t *testing.T) {
	_, err := NewRazorpayGateway(config.RazorpayConfig{
		KeyID:          "rzp_test_key",
		KeySecret:      "secret",
		RequestTimeout: 3 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if razorpay.Request == nil || razorpay.Request.HTTPClient == nil {
		t.Fatal("expected the SDK http client to be configured")
	}
	if got := razorpay.Request.HTTPClient.Timeout; got != 3*time.Second {
		t.Fatalf("expected 3s request timeout, got %s", got)
	}
}
