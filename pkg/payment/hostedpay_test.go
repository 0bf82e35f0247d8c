package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roost/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HostedPayProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHostedPayProvider(srv.URL, "test-key", "test-secret", 2*time.Second)
}

func TestInitializeCheckout(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkouts", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bk-1", body["order_id"])
		assert.Equal(t, false, body["capture"]) // authorize only

		json.NewEncoder(w).Encode(map[string]string{
			"token":        "tok-1",
			"checkout_url": "https://pay.example.test/tok-1",
			"expires_at":   time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	})

	sess, err := p.InitializeCheckout(context.Background(), CheckoutRequest{
		OrderID:     "bk-1",
		AmountCents: 10500,
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.NotEmpty(t, sess.CheckoutURL)
}

func TestConfirmCallbackStrictValidation(t *testing.T) {
	tests := []struct {
		name    string
		resp    map[string]string
		success bool
		wantErr bool
	}{
		{
			name: "success with all ids",
			resp: map[string]string{
				"status": "success", "order_id": "bk-1",
				"payment_id": "pay-1", "transaction_id": "txn-1",
			},
			success: true,
		},
		{
			name:    "failure with reason",
			resp:    map[string]string{"status": "failure", "order_id": "bk-1", "error_message": "declined"},
			success: false,
		},
		{
			name:    "success missing transaction id fails closed",
			resp:    map[string]string{"status": "success", "order_id": "bk-1", "payment_id": "pay-1"},
			wantErr: true,
		},
		{
			name:    "failure missing order id fails closed",
			resp:    map[string]string{"status": "failure"},
			wantErr: true,
		},
		{
			name:    "unknown status fails closed",
			resp:    map[string]string{"status": "processing", "order_id": "bk-1"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.resp)
			})
			res, err := p.ConfirmCallback(context.Background(), "tok")
			if tt.wantErr {
				require.Error(t, err)
				var gwErr *domain.GatewayError
				require.ErrorAs(t, err, &gwErr)
				assert.False(t, gwErr.Retryable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success)
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   bool
		retryable bool
	}{
		{"conflict is idempotent success", http.StatusConflict, false, false},
		{"server error is retryable", http.StatusBadGateway, true, true},
		{"client error is permanent", http.StatusPaymentRequired, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			err := p.CaptureAuthorization(context.Background(), "txn-1")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var gwErr *domain.GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.retryable, gwErr.Retryable)
		})
	}
}

func TestTimeoutIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	p := NewHostedPayProvider(srv.URL, "k", "s", 50*time.Millisecond)

	err := p.VoidAuthorization(context.Background(), "txn-1")
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.True(t, gwErr.Retryable)
}

func TestInitiateTransferRequiresID(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "po-1", body["idempotency_key"])
		json.NewEncoder(w).Encode(map[string]string{"transfer_id": "tr-9"})
	})
	id, err := p.InitiateTransfer(context.Background(), TransferRequest{
		RecipientID: "acct-1",
		AmountCents: 20000,
		Currency:    "USD",
		BatchRef:    "po-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tr-9", id)

	empty := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})
	_, err = empty.InitiateTransfer(context.Background(), TransferRequest{BatchRef: "po-2"})
	require.Error(t, err)
}
