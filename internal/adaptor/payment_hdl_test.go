package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPaymentService struct {
	lastSignature string
	lastBody      []byte
	ack           *response.WebhookAckResponse
	err           error
}

func (s *stubPaymentService) CreateCheckoutSession(_ context.Context, _ uuid.UUID, _ *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	return nil, s.err
}

func (s *stubPaymentService) HandleWebhook(_ context.Context, signatureHeader string, body []byte) (*response.WebhookAckResponse, error) {
	s.lastSignature = signatureHeader
	s.lastBody = append([]byte(nil), body...)
	if s.err != nil {
		return nil, s.err
	}
	return s.ack, nil
}

func (s *stubPaymentService) ReconcileSweep(_ context.Context) error { return nil }

func postWebhook(handler *PaymentHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, req)
	return rec
}

func TestWebhookHandlerPassesRawBodyAndSignature(t *testing.T) {
	stub := &stubPaymentService{ack: &response.WebhookAckResponse{EventID: "evt_1", Result: "applied"}}
	handler := NewPaymentHandler(stub, zap.NewNop())

	body := []byte(`{"id":"evt_1","type":"payment.succeeded","data":{}}`)
	sig := payment.SignPayload("whsec_test", body, time.Now())

	rec := postWebhook(handler, body, sig)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sig, stub.lastSignature)
	assert.Equal(t, body, stub.lastBody, "body must reach the service byte-for-byte")

	var envelope struct {
		Status bool                        `json:"status"`
		Data   response.WebhookAckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)
	assert.Equal(t, "evt_1", envelope.Data.EventID)
	assert.Equal(t, "applied", envelope.Data.Result)
}

func TestWebhookHandlerRequiresSignatureHeader(t *testing.T) {
	stub := &stubPaymentService{}
	handler := NewPaymentHandler(stub, zap.NewNop())

	rec := postWebhook(handler, []byte(`{"id":"evt_1"}`), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.lastBody, "service must not be called without a signature")
}

func TestWebhookHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid signature", fmt.Errorf("signature check: %w", entity.ErrInvalidSignature), http.StatusBadRequest},
		{"validation failure", fmt.Errorf("%w: Quantity: Minimum is 1", entity.ErrValidation), http.StatusBadRequest},
		{"malformed event", fmt.Errorf("parse event: %w", entity.ErrBadEvent), http.StatusBadRequest},
		{"replayed transaction", fmt.Errorf("payment recorded: %w", entity.ErrDuplicate), http.StatusConflict},
		{"storage failure", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewPaymentHandler(&stubPaymentService{err: tc.err}, zap.NewNop())

			rec := postWebhook(handler, []byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestWebhookHandlerHidesInternalErrorDetail(t *testing.T) {
	handler := NewPaymentHandler(&stubPaymentService{err: fmt.Errorf("pg: relation missing")}, zap.NewNop())

	rec := postWebhook(handler, []byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation missing")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
