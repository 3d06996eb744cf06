package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signPayload returns the lowercase hex HMAC-SHA256 of payload under secret.
func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks the gateway callback signature computed over
// "{gatewayOrderID}|{paymentID}". Comparison is constant-time.
func VerifyPaymentSignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if secret == "" || gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := signPayload(secret, []byte(gatewayOrderID+"|"+paymentID))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the signature the gateway sends with webhook
// deliveries, computed over the raw request body.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || len(body) == 0 || signature == "" {
		return false
	}
	expected := signPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
