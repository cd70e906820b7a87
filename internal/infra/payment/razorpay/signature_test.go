package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_key_secret"

	t.Run("valid redirect signature", func(t *testing.T) {
		payload := RedirectPayload("order_abc123", "pay_xyz789")
		if string(payload) != "order_abc123|pay_xyz789" {
			t.Fatalf("unexpected payload: %s", payload)
		}
		if !VerifySignature(secret, payload, sign(secret, payload)) {
			t.Fatal("valid signature rejected")
		}
	})

	t.Run("valid raw-body signature", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured","payload":{}}`)
		if !VerifySignature(secret, body, sign(secret, body)) {
			t.Fatal("valid signature rejected")
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		payload := RedirectPayload("order_abc123", "pay_xyz789")
		sig := sign(secret, payload)
		tampered := RedirectPayload("order_abc123", "pay_other")
		if VerifySignature(secret, tampered, sig) {
			t.Fatal("tampered payload accepted")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		payload := RedirectPayload("order_abc123", "pay_xyz789")
		if VerifySignature(secret, payload, sign("other_secret", payload)) {
			t.Fatal("signature from wrong secret accepted")
		}
	})

	t.Run("empty signature", func(t *testing.T) {
		if VerifySignature(secret, []byte("x"), "") {
			t.Fatal("empty signature accepted")
		}
	})

	t.Run("empty secret fails closed", func(t *testing.T) {
		payload := []byte("x")
		if VerifySignature("", payload, sign("", payload)) {
			t.Fatal("empty secret accepted")
		}
	})

	t.Run("signature is case sensitive hex", func(t *testing.T) {
		payload := RedirectPayload("order_a", "pay_b")
		sig := sign(secret, payload)
		upper := make([]byte, len(sig))
		for i := range sig {
			c := sig[i]
			if c >= 'a' && c <= 'f' {
				c -= 32
			}
			upper[i] = c
		}
		if string(upper) != sig && VerifySignature(secret, payload, string(upper)) {
			t.Fatal("uppercased signature accepted")
		}
	})
}
