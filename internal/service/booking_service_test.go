package service

import (
	"context"
	"errors"
	"testing"

	"roost/internal/domain"
	"roost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSnapshotsMoneySplit(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000) // $100.00

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
	})
	require.NoError(t, err)

	b := res.Booking
	assert.Equal(t, domain.BookingPendingPayment, b.Status)
	assert.Equal(t, int64(10000), b.BasePriceCents)
	assert.Equal(t, int64(10500), b.TotalCents) // base + 5% service fee
	assert.Equal(t, int64(1500), b.CommissionCents)
	assert.Equal(t, int64(500), b.ServiceFeeCents)
	assert.Equal(t, int64(8500), b.HostEarningsCents)
	assert.Zero(t, b.PartnerCommissionCents)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.CheckoutURL)

	// No ledger rows yet: funds are merely authorized.
	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateScalesBaseByAttendees(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 2500)

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.Booking.BasePriceCents)
	assert.Equal(t, int64(10500), res.Booking.TotalCents)

	_, err = env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    exp.Capacity + 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateWithPartnerCode(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	partner := env.makeUser(t, domain.RolePartner)
	exp := env.makeExperience(t, host.ID, 10000)
	code, err := env.partners.GetOrCreateCode(partner.ID)
	require.NoError(t, err)

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
		PartnerCode:  code.Code,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Booking.PartnerID)
	assert.Equal(t, partner.ID, *res.Booking.PartnerID)
	assert.Equal(t, int64(1000), res.Booking.PartnerCommissionCents) // 10% of base

	_, err = env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
		PartnerCode:  "nope",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRequiresGuestRole(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	exp := env.makeExperience(t, host.ID, 10000)

	_, err := env.booking.Create(context.Background(), Actor{ID: host.ID, Role: host.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestConfirmPaymentAdvancesAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
	})
	require.NoError(t, err)

	b, err := env.booking.ConfirmPayment(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingHostApproval, b.Status)
	assert.NotEmpty(t, b.PaymentID)
	assert.NotEmpty(t, b.PaymentTransactionID)

	// Gateway retries the callback; nothing changes.
	again, err := env.booking.ConfirmPayment(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingHostApproval, again.Status)
}

func TestConfirmPaymentDecline(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
	})
	require.NoError(t, err)
	env.gw.declineCheckout(res.Token, "card_declined")

	b, err := env.booking.ConfirmPayment(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaymentFailed, b.Status)
}

func TestApproveCapturesAndWritesLedger(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	partner := env.makeUser(t, domain.RolePartner)
	exp := env.makeExperience(t, host.ID, 10000)
	code, err := env.partners.GetOrCreateCode(partner.ID)
	require.NoError(t, err)

	b := env.createPaid(t, guest, exp, code.Code)
	b, err = env.booking.Approve(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	require.NotNil(t, b.ConfirmedAt)
	require.Len(t, env.gw.captures, 1)

	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byUser := map[uint]models.FinancialTransaction{}
	for _, r := range rows {
		byUser[r.UserID] = r
	}
	hostRow := byUser[host.ID]
	assert.Equal(t, domain.TxTypeCommission, hostRow.Type)
	assert.Equal(t, int64(8500), hostRow.AmountCents)
	assert.Equal(t, domain.TxStatusPending, hostRow.Status)
	assert.False(t, hostRow.Available) // held until the booking completes

	partnerRow := byUser[partner.ID]
	assert.Equal(t, int64(1000), partnerRow.AmountCents)
	assert.Equal(t, domain.TxStatusPending, partnerRow.Status)
	assert.True(t, partnerRow.Available)
}

func TestApproveFromUnpaidBookingIsIllegal(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	res, err := env.booking.Create(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, CreateBookingInput{
		ExperienceID: exp.ID,
		StartTime:    env.futureStart(),
		Attendees:    1,
	})
	require.NoError(t, err)

	_, err = env.booking.Approve(context.Background(), Actor{ID: host.ID, Role: host.Role}, res.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Empty(t, env.gw.captures)
}

func TestApproveTwiceFailsAndNeverDoubleCredits(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createConfirmed(t, guest, host, exp, "")
	_, err := env.booking.Approve(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, env.gw.captures, 1)
}

func TestApproveCaptureFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createPaid(t, guest, exp, "")
	env.gw.failCapture = domain.NewGatewayError("capture", true, errors.New("timeout"))

	_, err := env.booking.Approve(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	require.Error(t, err)
	var gwErr *domain.GatewayError
	assert.ErrorAs(t, err, &gwErr)

	// The whole unit rolled back: status unchanged, ledger empty.
	b, err = env.bookings.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingHostApproval, b.Status)
	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestApproveByWrongHost(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	other := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createPaid(t, guest, exp, "")
	_, err := env.booking.Approve(context.Background(), Actor{ID: other.ID, Role: other.Role}, b.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRejectVoidsAuthorization(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createPaid(t, guest, exp, "")
	b, err := env.booking.Reject(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.Len(t, env.gw.voids, 1)
	assert.Empty(t, env.gw.refunds)

	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRefundBeforeCaptureVoids(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createPaid(t, guest, exp, "")
	b, err := env.booking.Refund(context.Background(), Actor{ID: guest.ID, Role: guest.Role}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelledByUser, b.Status)
	assert.Len(t, env.gw.voids, 1)
	assert.Empty(t, env.gw.refunds)

	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRefundAfterCaptureReversesCommissions(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	partner := env.makeUser(t, domain.RolePartner)
	exp := env.makeExperience(t, host.ID, 10000)
	code, err := env.partners.GetOrCreateCode(partner.ID)
	require.NoError(t, err)

	b := env.createConfirmed(t, guest, host, exp, code.Code)
	b, err = env.booking.Refund(context.Background(), Actor{ID: host.ID, Role: host.Role}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelledByHost, b.Status)

	require.Len(t, env.gw.refunds, 1)
	assert.Equal(t, int64(10500), env.gw.refunds[0].amountCents)

	rows, err := env.txns.ListByBooking(b.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3) // host + partner commissions, plus the refund entry

	var refunds, reversed int
	for _, r := range rows {
		switch {
		case r.Type == domain.TxTypeRefund:
			refunds++
			assert.Equal(t, guest.ID, r.UserID)
			assert.Equal(t, int64(10500), r.AmountCents)
			assert.Equal(t, domain.TxStatusCompleted, r.Status)
		case r.Type == domain.TxTypeCommission:
			assert.Equal(t, domain.TxStatusReversed, r.Status)
			reversed++
		}
	}
	assert.Equal(t, 1, refunds)
	assert.Equal(t, 2, reversed)

	// Reversed rows no longer count toward anyone's balance.
	balance, err := env.txns.PendingBalance(host.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestCompleteReleasesHostEarnings(t *testing.T) {
	env := newTestEnv(t)
	host := env.makeUser(t, domain.RoleHost)
	guest := env.makeUser(t, domain.RoleGuest)
	exp := env.makeExperience(t, host.ID, 10000)

	b := env.createConfirmed(t, guest, host, exp, "")

	available, err := env.txns.AvailableBalance(host.ID)
	require.NoError(t, err)
	assert.Zero(t, available)

	b, err = env.booking.Complete(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)

	available, err = env.txns.AvailableBalance(host.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8500), available)

	_, err = env.booking.Complete(context.Background(), b.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}
