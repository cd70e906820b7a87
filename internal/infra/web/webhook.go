package web

import (
	"errors"
	"io"
	"net/http"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/infra/payment/razorpay"
)

// webhookBodyLimit caps gateway event payloads.
const webhookBodyLimit = 1 << 20

// handleRazorpayWebhook applies one gateway event delivery. The signature is
// computed over the exact raw bytes, so the body must not be re-serialized
// before verification.
func (s *Server) handleRazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
		return
	}
	signature := r.Header.Get(razorpay.SignatureHeader)

	if err := s.settlementUC.HandleWebhook(r.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, domain.ErrSecretNotConfigured):
			s.log.Error().Msg("webhook secret is not configured")
			writeJSON(w, http.StatusInternalServerError, map[string]bool{"ok": false})
		case errors.Is(err, domain.ErrUnauthorizedPayment), errors.Is(err, domain.ErrInvalidArgument):
			writeJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
		default:
			s.log.Error().Err(err).Msg("webhook processing failed")
			writeJSON(w, http.StatusInternalServerError, map[string]bool{"ok": false})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
