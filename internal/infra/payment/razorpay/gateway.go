package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"audio-track-subscription/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Gateway implements adapter.OrderGateway against the Razorpay Orders API
// using direct HTTP calls with basic auth (key id / key secret).
type Gateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

var _ adapter.OrderGateway = (*Gateway)(nil)

// NewGateway creates a gateway client. baseURL may be empty to use the
// production endpoint; tests point it at an httptest server.
func NewGateway(keyID, keySecret, baseURL string) *Gateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Gateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *Gateway) Name() string { return "razorpay" }

type orderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// GatewayError carries the gateway's human-readable description so callers can
// surface it.
type GatewayError struct {
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("razorpay error: %s", e.Code)
}

// CreateOrder implements adapter.OrderGateway.
func (g *Gateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*adapter.Order, error) {
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send order request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && (er.Error.Description != "" || er.Error.Code != "") {
			return nil, &GatewayError{Code: er.Error.Code, Description: er.Error.Description}
		}
		return nil, fmt.Errorf("razorpay order create failed: status %d", resp.StatusCode)
	}

	var or orderResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w, body: %s", err, string(body))
	}

	return &adapter.Order{
		ID:        or.ID,
		Amount:    or.Amount,
		Currency:  or.Currency,
		Receipt:   or.Receipt,
		Status:    or.Status,
		CreatedAt: time.Unix(or.CreatedAt, 0),
	}, nil
}
