package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/dto/request"
	"activity-booking/pkg/payment"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test"

type stubCheckoutClient struct {
	lastParams payment.CheckoutParams
	err        error
}

func (s *stubCheckoutClient) CreateCheckoutSession(_ context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastParams = params
	return &payment.CheckoutSession{ID: "cs_test_123", URL: "https://pay.example.com/cs_test_123"}, nil
}

func testPaymentConfig() *utils.Config {
	return &utils.Config{
		Payment: utils.PaymentConfig{
			Provider:      "payflow",
			WebhookSecret: testWebhookSecret,
			Tolerance:     5 * time.Minute,
			SuccessURL:    "https://booking.example.com/success",
			CancelURL:     "https://booking.example.com/cancel",
		},
	}
}

func newPaymentFixture(t *testing.T) (*memStore, PaymentService, *entity.Reservation) {
	t.Helper()
	store := newMemStore()
	activity := seedActivity(store, intPtr(10), "30.00", entity.ActivityStatusPublished)

	now := time.Now()
	reservation := &entity.Reservation{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Reference:  "RES-TEST-1",
		ActivityID: activity.ID,
		UserID:     uuid.New(),
		Quantity:   2,
		UnitPrice:  activity.Price,
		Status:     entity.ReservationStatusPending,
		ReservedAt: now,
	}
	store.reservations[reservation.ID] = reservation

	repo := newFakeRepository(store)
	svc := NewPaymentService(repo, &stubCheckoutClient{}, nil, testPaymentConfig(), zap.NewNop())
	return store, svc, reservation
}

func signedEvent(t *testing.T, eventType, txnID string, reservationID string) (string, []byte) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   "evt_" + txnID,
		"type": eventType,
		"data": map[string]any{
			"transaction_id": txnID,
			"amount":         "60.00",
			"currency":       "USD",
			"metadata":       map[string]string{"reservation_id": reservationID},
		},
	})
	require.NoError(t, err)
	return payment.SignPayload(testWebhookSecret, body, time.Now()), body
}

func TestWebhookAppliesCompletedPayment(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	sig, body := signedEvent(t, "checkout.session.completed", "txn_1", reservation.ID.String())
	ack, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	got := store.reservations[reservation.ID]
	assert.Equal(t, entity.ReservationStatusConfirmed, got.Status)
	require.NotNil(t, got.PaymentID)

	pay := store.payments[*got.PaymentID]
	require.NotNil(t, pay)
	assert.Equal(t, entity.PaymentStatusCompleted, pay.Status)
	assert.True(t, pay.Amount.Equal(decimal.RequireFromString("60.00")))
}

func TestWebhookDeduplicatesReplays(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	sig, body := signedEvent(t, "payment.succeeded", "txn_replay", reservation.ID.String())

	ack, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	ack, err = svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", ack.Result)

	assert.Len(t, store.payments, 1)
	assert.Equal(t, entity.ReservationStatusConfirmed, store.reservations[reservation.ID].Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	_, body := signedEvent(t, "payment.succeeded", "txn_bad", reservation.ID.String())
	_, err := svc.HandleWebhook(context.Background(), "t=123,v1=deadbeef", body)
	assert.ErrorIs(t, err, entity.ErrInvalidSignature)

	// nothing mutated
	assert.Empty(t, store.payments)
	assert.Equal(t, entity.ReservationStatusPending, store.reservations[reservation.ID].Status)
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	body, err := json.Marshal(map[string]any{
		"id":   "evt_stale",
		"type": "payment.succeeded",
		"data": map[string]any{
			"transaction_id": "txn_stale",
			"amount":         "60.00",
			"currency":       "USD",
			"metadata":       map[string]string{"reservation_id": reservation.ID.String()},
		},
	})
	require.NoError(t, err)

	sig := payment.SignPayload(testWebhookSecret, body, time.Now().Add(-time.Hour))
	_, err = svc.HandleWebhook(context.Background(), sig, body)
	assert.ErrorIs(t, err, entity.ErrInvalidSignature)
	assert.Empty(t, store.payments)
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	sig, body := signedEvent(t, "customer.updated", "txn_other", reservation.ID.String())
	ack, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.Equal(t, "ignored", ack.Result)
	assert.Empty(t, store.payments)
}

func TestWebhookFailedEventAuditsOnly(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	sig, body := signedEvent(t, "payment.failed", "txn_failed", reservation.ID.String())
	ack, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	assert.Len(t, store.payments, 1)
	for _, pay := range store.payments {
		assert.Equal(t, entity.PaymentStatusFailed, pay.Status)
	}
	// the reservation can still be paid
	assert.Equal(t, entity.ReservationStatusPending, store.reservations[reservation.ID].Status)
}

func TestWebhookMissingReservationReference(t *testing.T) {
	_, svc, _ := newPaymentFixture(t)

	body, err := json.Marshal(map[string]any{
		"id":   "evt_noref",
		"type": "payment.succeeded",
		"data": map[string]any{
			"transaction_id": "txn_noref",
			"amount":         "60.00",
			"currency":       "USD",
		},
	})
	require.NoError(t, err)

	sig := payment.SignPayload(testWebhookSecret, body, time.Now())
	_, err = svc.HandleWebhook(context.Background(), sig, body)
	assert.ErrorIs(t, err, entity.ErrBadEvent)
}

func TestWebhookUnknownReservation(t *testing.T) {
	_, svc, _ := newPaymentFixture(t)

	sig, body := signedEvent(t, "payment.succeeded", "txn_ghost", uuid.NewString())
	_, err := svc.HandleWebhook(context.Background(), sig, body)
	assert.ErrorIs(t, err, entity.ErrBadEvent)
}

func TestWebhookFailedEventUnknownReservation(t *testing.T) {
	// the audit row references the reservation; without one the event is
	// permanently unprocessable, not retryable
	store, svc, _ := newPaymentFixture(t)

	sig, body := signedEvent(t, "payment.failed", "txn_ghost_fail", uuid.NewString())
	_, err := svc.HandleWebhook(context.Background(), sig, body)
	assert.ErrorIs(t, err, entity.ErrBadEvent)
	assert.Empty(t, store.payments, "no audit row for an unknown reservation")
}

func TestCreateCheckoutSession(t *testing.T) {
	store, _, reservation := newPaymentFixture(t)

	client := &stubCheckoutClient{}
	repo := newFakeRepository(store)
	svc := NewPaymentService(repo, client, nil, testPaymentConfig(), zap.NewNop())

	resp, err := svc.CreateCheckoutSession(context.Background(), reservation.UserID, &request.CheckoutRequest{
		ReservationID: reservation.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", resp.SessionID)
	assert.Equal(t, reservation.ID.String(), client.lastParams.Metadata["reservation_id"])
	assert.True(t, client.lastParams.Amount.Equal(decimal.RequireFromString("60.00")))

	// not the owner
	_, err = svc.CreateCheckoutSession(context.Background(), uuid.New(), &request.CheckoutRequest{
		ReservationID: reservation.ID.String(),
	})
	assert.ErrorIs(t, err, entity.ErrNotAssociated)
}

func TestCheckoutRequiresPendingReservation(t *testing.T) {
	store, _, reservation := newPaymentFixture(t)
	store.reservations[reservation.ID].Status = entity.ReservationStatusCancelled

	repo := newFakeRepository(store)
	svc := NewPaymentService(repo, &stubCheckoutClient{}, nil, testPaymentConfig(), zap.NewNop())

	_, err := svc.CreateCheckoutSession(context.Background(), reservation.UserID, &request.CheckoutRequest{
		ReservationID: reservation.ID.String(),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestReconcileSweepAppliesStuckPayments(t *testing.T) {
	store, svc, reservation := newPaymentFixture(t)

	// a completed payment recorded without its reservation update, as
	// after a crash between audit write and confirm
	pay := &entity.Payment{
		Base:          entity.Base{ID: uuid.New()},
		ReservationID: reservation.ID,
		Provider:      "payflow",
		ProviderTxnID: "txn_stuck",
		Amount:        decimal.RequireFromString("60.00"),
		Currency:      "USD",
		Status:        entity.PaymentStatusCompleted,
	}
	store.payments[pay.ID] = pay

	require.NoError(t, svc.ReconcileSweep(context.Background()))

	got := store.reservations[reservation.ID]
	assert.Equal(t, entity.ReservationStatusConfirmed, got.Status)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, pay.ID, *got.PaymentID)
}
