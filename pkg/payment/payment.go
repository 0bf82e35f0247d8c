package payment

import (
	"context"
	"time"
)

// CheckoutRequest initializes a hosted checkout for one booking. The gateway
// holds an authorization for AmountCents; funds are not captured until the
// host approves.
type CheckoutRequest struct {
	OrderID     string // our unique reference, echoed back in the callback
	AmountCents int64
	Currency    string
	Description string
	BuyerEmail  string
	BuyerName   string
	CallbackURL string
}

// CheckoutSession is the hosted-form handle returned to the client.
type CheckoutSession struct {
	Token       string
	CheckoutURL string
	ExpiresAt   time.Time
}

// CallbackResult is the strictly validated outcome of a checkout callback.
// Unrecognized or partial payloads never produce a Result; they fail closed
// as a permanent gateway error.
type CallbackResult struct {
	Success       bool
	OrderID       string
	PaymentID     string // gateway payment id
	TransactionID string // gateway authorization/transaction id
	FailureReason string
}

// TransferRequest disburses a payout batch to a host or partner.
type TransferRequest struct {
	RecipientID string // gateway-side account reference
	AmountCents int64
	Currency    string
	Description string
	BatchRef    string // our payout reference, used as the idempotency key
}

// Gateway is the payment provider consumed by the booking state machine and
// the payout batcher. Every operation is idempotent: retrying a capture,
// void, refund or transfer that already settled returns success without
// moving money twice. Calls are synchronous with a bounded timeout; a
// timeout surfaces as a retryable GatewayError and the caller's transition
// is rolled back, not applied.
type Gateway interface {
	InitializeCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ConfirmCallback(ctx context.Context, token string) (*CallbackResult, error)
	CaptureAuthorization(ctx context.Context, transactionID string) error
	VoidAuthorization(ctx context.Context, transactionID string) error
	RefundPayment(ctx context.Context, paymentID string, amountCents int64) error
	InitiateTransfer(ctx context.Context, req TransferRequest) (string, error)
}
