package payment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubGateway is an in-memory gateway for development. Every checkout
// succeeds when confirmed with its own token.
type StubGateway struct {
	mu     sync.Mutex
	orders map[string]string // token -> order id
	seq    int
}

func NewStubGateway() *StubGateway {
	return &StubGateway{orders: make(map[string]string)}
}

func (s *StubGateway) InitializeCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := fmt.Sprintf("stub_tok_%d", s.seq)
	s.orders[token] = req.OrderID
	return &CheckoutSession{
		Token:       token,
		CheckoutURL: "https://checkout.stub.local/" + token,
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}, nil
}

func (s *StubGateway) ConfirmCallback(ctx context.Context, token string) (*CallbackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orderID, ok := s.orders[token]
	if !ok {
		return &CallbackResult{Success: false, FailureReason: "unknown token"}, nil
	}
	return &CallbackResult{
		Success:       true,
		OrderID:       orderID,
		PaymentID:     "stub_pay_" + token,
		TransactionID: "stub_txn_" + token,
	}, nil
}

func (s *StubGateway) CaptureAuthorization(ctx context.Context, transactionID string) error { return nil }
func (s *StubGateway) VoidAuthorization(ctx context.Context, transactionID string) error    { return nil }
func (s *StubGateway) RefundPayment(ctx context.Context, paymentID string, amountCents int64) error {
	return nil
}

func (s *StubGateway) InitiateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	return "stub_transfer_" + req.BatchRef, nil
}
