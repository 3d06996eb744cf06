package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifyPaymentSignature(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	orderID := "order_MkWq3nq1"
	paymentID := "pay_9aT4xZ2f"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !VerifyPaymentSignature(secret, orderID, paymentID, valid) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyPaymentSignatureRejectsTampered(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	orderID := "order_MkWq3nq1"
	paymentID := "pay_9aT4xZ2f"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	valid := hex.EncodeToString(mac.Sum(nil))

	tampered := []byte(valid)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}

	if VerifyPaymentSignature(secret, orderID, paymentID, string(tampered)) {
		t.Fatal("expected tampered signature to fail")
	}
	if VerifyPaymentSignature(secret, orderID, "pay_other", valid) {
		t.Fatal("expected signature over different payment id to fail")
	}
	if VerifyPaymentSignature("other-secret", orderID, paymentID, valid) {
		t.Fatal("expected signature under different secret to fail")
	}
}

func TestVerifyPaymentSignatureEmptyInputs(t *testing.T) {
	t.Parallel()

	if VerifyPaymentSignature("", "order", "pay", "sig") {
		t.Fatal("empty secret must not verify")
	}
	if VerifyPaymentSignature("secret", "order", "pay", "") {
		t.Fatal("empty signature must not verify")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Parallel()

	secret := "webhook-secret"
	body := []byte(`{"event":"payment.failed"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(secret, body, valid) {
		t.Fatal("expected valid webhook signature to verify")
	}
	if VerifyWebhookSignature(secret, []byte(`{"event":"payment.captured"}`), valid) {
		t.Fatal("expected altered body to fail")
	}
}
