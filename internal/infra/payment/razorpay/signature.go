package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks a hex-encoded HMAC-SHA256 signature over payload.
// Both ingress paths go through here: the redirect path signs
// "{orderID}|{paymentID}" with the key secret, the webhook path signs the raw
// request body with the webhook secret.
func VerifySignature(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// RedirectPayload builds the canonical payload the gateway signs on the
// client-redirect confirmation: "{orderID}|{paymentID}".
func RedirectPayload(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}
