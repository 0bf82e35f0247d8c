package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roost/internal/domain"
)

// HostedPayProvider implements Gateway against a hosted-checkout REST API.
// The provider renders its own payment form; we only initialize the session,
// confirm its callback token and drive capture/void/refund/transfer calls.
type HostedPayProvider struct {
	BaseURL string
	APIKey  string
	Secret  string
	client  *http.Client
}

func NewHostedPayProvider(baseURL, apiKey, secret string, timeout time.Duration) *HostedPayProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HostedPayProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Secret:  secret,
		client:  &http.Client{Timeout: timeout},
	}
}

type hostedCheckoutReq struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	BuyerEmail  string `json:"buyer_email"`
	BuyerName   string `json:"buyer_name"`
	CallbackURL string `json:"callback_url"`
	Capture     bool   `json:"capture"` // false: authorize only, capture later
}

type hostedCheckoutResp struct {
	Token       string `json:"token"`
	CheckoutURL string `json:"checkout_url"`
	ExpiresAt   string `json:"expires_at"`
}

func (p *HostedPayProvider) InitializeCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	payload := hostedCheckoutReq{
		OrderID:     req.OrderID,
		Amount:      req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		BuyerEmail:  req.BuyerEmail,
		BuyerName:   req.BuyerName,
		CallbackURL: req.CallbackURL,
		Capture:     false,
	}
	var out hostedCheckoutResp
	if err := p.post(ctx, "initialize_checkout", "/v1/checkouts", payload, &out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.CheckoutURL == "" {
		return nil, domain.NewGatewayError("initialize_checkout", false, errors.New("incomplete checkout session in response"))
	}
	expires, _ := time.Parse(time.RFC3339, out.ExpiresAt)
	return &CheckoutSession{Token: out.Token, CheckoutURL: out.CheckoutURL, ExpiresAt: expires}, nil
}

type hostedCallbackResp struct {
	Status        string `json:"status"` // success | failure
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	ErrorMessage  string `json:"error_message"`
}

// ConfirmCallback exchanges the browser-posted token for the checkout outcome.
// The response is validated strictly: a success without both gateway ids, or
// an unknown status, is rejected as permanent rather than acted on with
// partial data.
func (p *HostedPayProvider) ConfirmCallback(ctx context.Context, token string) (*CallbackResult, error) {
	payload := map[string]string{"token": token}
	var out hostedCallbackResp
	if err := p.post(ctx, "confirm_callback", "/v1/checkouts/confirm", payload, &out); err != nil {
		return nil, err
	}
	switch out.Status {
	case "success":
		if out.OrderID == "" || out.PaymentID == "" || out.TransactionID == "" {
			return nil, domain.NewGatewayError("confirm_callback", false, errors.New("success callback missing gateway ids"))
		}
		return &CallbackResult{
			Success:       true,
			OrderID:       out.OrderID,
			PaymentID:     out.PaymentID,
			TransactionID: out.TransactionID,
		}, nil
	case "failure":
		if out.OrderID == "" {
			return nil, domain.NewGatewayError("confirm_callback", false, errors.New("failure callback missing order id"))
		}
		return &CallbackResult{Success: false, OrderID: out.OrderID, FailureReason: out.ErrorMessage}, nil
	default:
		return nil, domain.NewGatewayError("confirm_callback", false, fmt.Errorf("unrecognized callback status %q", out.Status))
	}
}

func (p *HostedPayProvider) CaptureAuthorization(ctx context.Context, transactionID string) error {
	path := fmt.Sprintf("/v1/transactions/%s/capture", transactionID)
	return p.post(ctx, "capture", path, struct{}{}, nil)
}

func (p *HostedPayProvider) VoidAuthorization(ctx context.Context, transactionID string) error {
	path := fmt.Sprintf("/v1/transactions/%s/void", transactionID)
	return p.post(ctx, "void", path, struct{}{}, nil)
}

func (p *HostedPayProvider) RefundPayment(ctx context.Context, paymentID string, amountCents int64) error {
	path := fmt.Sprintf("/v1/payments/%s/refunds", paymentID)
	return p.post(ctx, "refund", path, map[string]int64{"amount": amountCents}, nil)
}

type hostedTransferResp struct {
	TransferID string `json:"transfer_id"`
}

func (p *HostedPayProvider) InitiateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	payload := map[string]interface{}{
		"recipient":       req.RecipientID,
		"amount":          req.AmountCents,
		"currency":        req.Currency,
		"description":     req.Description,
		"idempotency_key": req.BatchRef,
	}
	var out hostedTransferResp
	if err := p.post(ctx, "transfer", "/v1/transfers", payload, &out); err != nil {
		return "", err
	}
	if out.TransferID == "" {
		return "", domain.NewGatewayError("transfer", false, errors.New("no transfer id in response"))
	}
	return out.TransferID, nil
}

// post sends a JSON request and decodes the response into out (if non-nil).
// Network errors and timeouts come back retryable; HTTP-level failures are
// permanent except 5xx, which the gateway documents as safe to retry.
// 409 means the operation already settled and counts as success.
func (p *HostedPayProvider) post(ctx context.Context, op, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.NewGatewayError(op, false, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.NewGatewayError(op, false, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return domain.NewGatewayError(op, true, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusConflict:
		// Already captured / voided / refunded: idempotent success.
		return nil
	case resp.StatusCode >= 500:
		return domain.NewGatewayError(op, true, fmt.Errorf("gateway returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return domain.NewGatewayError(op, false, fmt.Errorf("gateway returned %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewGatewayError(op, false, fmt.Errorf("malformed response: %w", err))
		}
	}
	return nil
}
