package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"roost/config"
	"roost/internal/domain"
	"roost/internal/models"
	"roost/internal/repository"
	"roost/pkg/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway records every call and succeeds unless a test arms a failure.
type fakeGateway struct {
	mu        sync.Mutex
	captures  []string
	voids     []string
	refunds   []refundCall
	transfers []payment.TransferRequest
	confirm   map[string]payment.CallbackResult

	failCapture  error
	failVoid     error
	failRefund   error
	failTransfer error
}

type refundCall struct {
	paymentID   string
	amountCents int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{confirm: make(map[string]payment.CallbackResult)}
}

func (g *fakeGateway) InitializeCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	token := "tok-" + req.OrderID
	g.confirm[token] = payment.CallbackResult{
		Success:       true,
		OrderID:       req.OrderID,
		PaymentID:     "pay-" + req.OrderID,
		TransactionID: "auth-" + req.OrderID,
	}
	return &payment.CheckoutSession{
		Token:       token,
		CheckoutURL: "https://pay.example.test/c/" + token,
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}, nil
}

func (g *fakeGateway) ConfirmCallback(_ context.Context, token string) (*payment.CallbackResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res, ok := g.confirm[token]
	if !ok {
		return nil, domain.NewGatewayError("confirm", false, fmt.Errorf("unknown token %q", token))
	}
	return &res, nil
}

func (g *fakeGateway) CaptureAuthorization(_ context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCapture != nil {
		return g.failCapture
	}
	g.captures = append(g.captures, transactionID)
	return nil
}

func (g *fakeGateway) VoidAuthorization(_ context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failVoid != nil {
		return g.failVoid
	}
	g.voids = append(g.voids, transactionID)
	return nil
}

func (g *fakeGateway) RefundPayment(_ context.Context, paymentID string, amountCents int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund != nil {
		return g.failRefund
	}
	g.refunds = append(g.refunds, refundCall{paymentID: paymentID, amountCents: amountCents})
	return nil
}

func (g *fakeGateway) InitiateTransfer(_ context.Context, req payment.TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failTransfer != nil {
		return "", g.failTransfer
	}
	g.transfers = append(g.transfers, req)
	return "tr-" + req.BatchRef, nil
}

// declineCheckout makes the confirm result for a token a declined payment.
func (g *fakeGateway) declineCheckout(token, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := g.confirm[token]
	res.Success = false
	res.PaymentID = ""
	res.TransactionID = ""
	res.FailureReason = reason
	g.confirm[token] = res
}

type testEnv struct {
	db          *gorm.DB
	gw          *fakeGateway
	users       *repository.UserRepository
	experiences *repository.ExperienceRepository
	bookings    *repository.BookingRepository
	txns        *repository.TransactionRepository
	partners    *repository.PartnerRepository
	settings    *repository.SettingRepository
	booking     *BookingService
	payouts     *PayoutService
	sweep       *SweepService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Experience{},
		&models.Booking{},
		&models.FinancialTransaction{},
		&models.PartnerCode{},
		&models.PlatformSetting{},
		&models.Notification{},
	))

	env := &testEnv{
		db:          db,
		gw:          newFakeGateway(),
		users:       repository.NewUserRepository(db),
		experiences: repository.NewExperienceRepository(db),
		bookings:    repository.NewBookingRepository(db),
		txns:        repository.NewTransactionRepository(db),
		partners:    repository.NewPartnerRepository(db),
		settings:    repository.NewSettingRepository(db),
	}
	require.NoError(t, env.settings.SeedDefaults(domain.SettingDefaults))

	log := zap.NewNop()
	notif := NewNotificationService(repository.NewNotificationRepository(db), nil, log)
	cfg := &config.Config{CallbackBase: "http://localhost:8080"}
	env.booking = NewBookingService(db, env.bookings, env.txns, env.experiences, env.partners, env.users, env.settings, env.gw, notif, cfg, log)
	env.payouts = NewPayoutService(db, env.bookings, env.txns, env.users, env.settings, env.gw, notif, log)
	env.sweep = NewSweepService(db, env.bookings, env.txns, env.booking, log)
	return env
}

func (e *testEnv) futureStart() time.Time {
	return time.Now().Add(48 * time.Hour)
}

func (e *testEnv) makeUser(t *testing.T, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:      role + "-" + uuid.NewString()[:8],
		Email:         uuid.NewString()[:8] + "@example.test",
		Role:          role,
		PayoutAccount: "acct-" + uuid.NewString()[:8],
	}
	require.NoError(t, e.users.Create(u))
	return u
}

func (e *testEnv) makeExperience(t *testing.T, hostID uint, priceCents int64) *models.Experience {
	t.Helper()
	exp := &models.Experience{
		HostID:          hostID,
		Title:           "City food walk",
		BasePriceCents:  priceCents,
		Currency:        domain.DefaultCurrency,
		DurationMinutes: 120,
		Capacity:        6,
		IsActive:        true,
	}
	require.NoError(t, e.experiences.Create(exp))
	return exp
}

// createPaid drives a fresh booking through checkout confirmation, leaving it
// in PENDING_HOST_APPROVAL.
func (e *testEnv) createPaid(t *testing.T, guest *models.User, exp *models.Experience, partnerCode string) *models.Booking {
	t.Helper()
	ctx := context.Background()
	res, err := e.booking.Create(ctx, Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    time.Now().Add(48 * time.Hour),
		Attendees:    1,
		PartnerCode:  partnerCode,
	})
	require.NoError(t, err)
	b, err := e.booking.ConfirmPayment(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, domain.BookingPendingHostApproval, b.Status)
	return b
}

// createConfirmed drives a booking through host approval, leaving it CONFIRMED
// with its commission rows written.
func (e *testEnv) createConfirmed(t *testing.T, guest, host *models.User, exp *models.Experience, partnerCode string) *models.Booking {
	t.Helper()
	b := e.createPaid(t, guest, exp, partnerCode)
	b, err := e.booking.Approve(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookingConfirmed, b.Status)
	return b
}
