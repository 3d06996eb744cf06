package webhooks

import (
	"io"
	"net/http"

	"github.com/vastra-shop/backend/api/responses"
	"github.com/vastra-shop/backend/internal/payments"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/logger"
)

const signatureHeader = "X-Razorpay-Signature"

// Razorpay authenticates and applies gateway webhook deliveries. The raw
// body is what the signature covers, so it must not be decoded first.
func Razorpay(svc payments.WebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading webhook body"))
			return
		}

		signature := r.Header.Get(signatureHeader)
		if err := svc.HandleDelivery(r.Context(), body, signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
