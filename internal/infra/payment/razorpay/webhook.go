package razorpay

import "encoding/json"

// EventPaymentCaptured is the only event type the settlement path acts on;
// everything else is acknowledged and ignored.
const EventPaymentCaptured = "payment.captured"

// SignatureHeader carries the webhook HMAC on gateway deliveries.
const SignatureHeader = "X-Razorpay-Signature"

// PaymentEntity is the nested payment/order entity inside a webhook event.
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Email    string `json:"email"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Method   string `json:"method"`
	Notes    struct {
		Receipt string `json:"receipt"`
	} `json:"notes"`
	Created int64 `json:"created"`
}

// WebhookEvent is the gateway's server-to-server event envelope.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity *PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity *PaymentEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var e WebhookEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Entity returns the payment entity when present, falling back to the order
// entity. May be nil.
func (e *WebhookEvent) Entity() *PaymentEntity {
	if e.Payload.Payment.Entity != nil {
		return e.Payload.Payment.Entity
	}
	return e.Payload.Order.Entity
}
