package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/cache"
	"activity-booking/pkg/metrics"
	"activity-booking/pkg/payment"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout clients that talk to the provider. Satisfied by
// *payment.Client; tests swap in a stub.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error)
}

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req *request.CheckoutRequest) (*response.CheckoutResponse, error)

	// HandleWebhook verifies, parses and applies one provider event.
	// The raw body is what was signed; it travels as-is.
	HandleWebhook(ctx context.Context, signatureHeader string, body []byte) (*response.WebhookAckResponse, error)

	// ReconcileSweep re-applies completed payments whose reservation is
	// still pending and prunes expired sessions.
	ReconcileSweep(ctx context.Context) error
}

type paymentService struct {
	repo   *repository.Repository
	client CheckoutClient
	cache  *cache.Cache
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewPaymentService(repo *repository.Repository, client CheckoutClient, c *cache.Cache, config *utils.Config, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:   repo,
		client: client,
		cache:  c,
		config: config,
		log:    log.With(zap.String("service", "payment")),
		now:    time.Now,
	}
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID %s: %w", req.ReservationID, entity.ErrValidation)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID.String(), entity.ErrNotFound)
	}
	if reservation.UserID != userID {
		return nil, fmt.Errorf("user %s does not own reservation %s: %w",
			userID.String(), reservationID.String(), entity.ErrNotAssociated)
	}
	if reservation.Status != entity.ReservationStatusPending {
		return nil, fmt.Errorf("reservation %s is %s, not payable: %w",
			reservationID.String(), reservation.Status, entity.ErrInvalidState)
	}

	activity, err := s.repo.Activity.FindByID(ctx, reservation.ActivityID)
	if err != nil {
		return nil, err
	}

	description := reservation.Reference
	currency := "USD"
	if activity != nil {
		description = activity.Title
		currency = activity.Currency
	}

	session, err := s.client.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Amount:      reservation.TotalAmount(),
		Currency:    currency,
		Quantity:    reservation.Quantity,
		Description: description,
		Metadata: map[string]string{
			"reservation_id": reservation.ID.String(),
			"reference":      reservation.Reference,
		},
		SuccessURL: s.config.Payment.SuccessURL,
		CancelURL:  s.config.Payment.CancelURL,
	})
	if err != nil {
		s.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.log.Info("Checkout session created",
		zap.String("reservation_id", reservationID.String()),
		zap.String("session_id", session.ID))

	return &response.CheckoutResponse{
		ReservationID: reservation.ID.String(),
		SessionID:     session.ID,
		CheckoutURL:   session.URL,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, signatureHeader string, body []byte) (*response.WebhookAckResponse, error) {
	if err := payment.VerifySignature(s.config.Payment.WebhookSecret, signatureHeader, body, s.config.Payment.Tolerance, s.now()); err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		s.log.Warn("Webhook signature rejected", zap.Error(err))
		return nil, fmt.Errorf("verify webhook: %w", entity.ErrInvalidSignature)
	}

	var event request.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("parse webhook body: %w", entity.ErrBadEvent)
	}
	if errs := utils.ValidateStruct(&event); len(errs) > 0 {
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("webhook event missing fields: %w", entity.ErrBadEvent)
	}

	switch event.Type {
	case "checkout.session.completed", "payment.succeeded":
		return s.applyCompleted(ctx, &event, body)
	case "payment.failed":
		return s.recordFailed(ctx, &event, body)
	}

	// Unknown types ack so the provider stops retrying.
	metrics.WebhookEvents.WithLabelValues("ignored").Inc()
	s.log.Info("Webhook event ignored", zap.String("event_type", event.Type), zap.String("event_id", event.ID))
	return &response.WebhookAckResponse{EventID: event.ID, Result: "ignored"}, nil
}

func (s *paymentService) applyCompleted(ctx context.Context, event *request.WebhookEvent, body []byte) (*response.WebhookAckResponse, error) {
	reservationID, amount, err := s.parseEventData(event)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, err
	}

	provider := s.config.Payment.Provider
	txnID := event.Data.TransactionID

	// Redis fast path: a marked event was already applied. The DB unique
	// index remains the source of truth when the cache is cold or down.
	dedupKey := fmt.Sprintf("webhook:%s:%s", provider, txnID)
	if s.cache != nil {
		seen, err := s.cache.Exists(ctx, dedupKey)
		if err != nil {
			s.log.Warn("Webhook dedup cache unavailable", zap.Error(err))
		} else if seen {
			metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
			return &response.WebhookAckResponse{EventID: event.ID, Result: "duplicate"}, nil
		}
	}

	existing, err := s.repo.Payment.FindByProviderTxn(ctx, provider, txnID)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		return nil, err
	}
	if existing != nil {
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		return &response.WebhookAckResponse{EventID: event.ID, Result: "duplicate"}, nil
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		return nil, err
	}
	if reservation == nil {
		// Permanent: retrying will never make the reservation exist.
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("webhook references unknown reservation %s: %w",
			reservationID.String(), entity.ErrBadEvent)
	}

	paidAt := event.Data.PaidAt
	if paidAt == nil {
		now := s.now()
		paidAt = &now
	}

	pay := &entity.Payment{
		ReservationID: reservationID,
		Provider:      provider,
		ProviderTxnID: txnID,
		Amount:        amount,
		Currency:      event.Data.Currency,
		PaidAt:        paidAt,
		RawPayload:    body,
	}

	if err := s.repo.Payment.ApplyCompleted(ctx, pay); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			// Lost the unique race to a concurrent delivery; same outcome.
			metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
			return &response.WebhookAckResponse{EventID: event.ID, Result: "duplicate"}, nil
		}
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.cache != nil {
		if _, err := s.cache.MarkOnce(ctx, dedupKey, 24*time.Hour); err != nil {
			s.log.Warn("Failed to mark webhook in cache", zap.Error(err))
		}
	}

	metrics.WebhookEvents.WithLabelValues("applied").Inc()
	s.log.Info("Payment applied",
		zap.String("event_id", event.ID),
		zap.String("provider_txn_id", txnID),
		zap.String("reservation_id", reservationID.String()))

	return &response.WebhookAckResponse{EventID: event.ID, Result: "applied"}, nil
}

// recordFailed keeps an audit row; the reservation stays pending so the
// user can retry checkout.
func (s *paymentService) recordFailed(ctx context.Context, event *request.WebhookEvent, body []byte) (*response.WebhookAckResponse, error) {
	reservationID, amount, err := s.parseEventData(event)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, err
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		return nil, err
	}
	if reservation == nil {
		// Permanent, same as the completed path: the audit row has a FK to
		// the reservation, and retrying will never make it exist.
		metrics.WebhookEvents.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("webhook references unknown reservation %s: %w",
			reservationID.String(), entity.ErrBadEvent)
	}

	pay := &entity.Payment{
		ReservationID: reservationID,
		Provider:      s.config.Payment.Provider,
		ProviderTxnID: event.Data.TransactionID,
		Amount:        amount,
		Currency:      event.Data.Currency,
		RawPayload:    body,
	}

	if err := s.repo.Payment.CreateFailed(ctx, pay); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
			return &response.WebhookAckResponse{EventID: event.ID, Result: "duplicate"}, nil
		}
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.WebhookEvents.WithLabelValues("applied").Inc()
	s.log.Info("Failed payment recorded",
		zap.String("event_id", event.ID),
		zap.String("provider_txn_id", event.Data.TransactionID),
		zap.String("reservation_id", reservationID.String()))

	return &response.WebhookAckResponse{EventID: event.ID, Result: "applied"}, nil
}

func (s *paymentService) parseEventData(event *request.WebhookEvent) (uuid.UUID, decimal.Decimal, error) {
	if event.Data.TransactionID == "" {
		return uuid.Nil, decimal.Zero, fmt.Errorf("webhook event %s has no transaction id: %w", event.ID, entity.ErrBadEvent)
	}

	ref, ok := event.Data.Metadata["reservation_id"]
	if !ok || ref == "" {
		return uuid.Nil, decimal.Zero, fmt.Errorf("webhook event %s has no reservation reference: %w", event.ID, entity.ErrBadEvent)
	}

	reservationID, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("webhook event %s has bad reservation reference %q: %w", event.ID, ref, entity.ErrBadEvent)
	}

	amount := decimal.Zero
	if event.Data.Amount != "" {
		amount, err = decimal.NewFromString(event.Data.Amount)
		if err != nil {
			return uuid.Nil, decimal.Zero, fmt.Errorf("webhook event %s has bad amount %q: %w", event.ID, event.Data.Amount, entity.ErrBadEvent)
		}
	}

	return reservationID, amount, nil
}

func (s *paymentService) ReconcileSweep(ctx context.Context) error {
	metrics.SweepRuns.Inc()

	payments, err := s.repo.Payment.FindUnreconciled(ctx, 100)
	if err != nil {
		s.log.Error("Sweep failed to list unreconciled payments", zap.Error(err))
		return fmt.Errorf("list unreconciled payments: %w", err)
	}

	for _, pay := range payments {
		applied, err := s.repo.Payment.ApplyToReservation(ctx, pay.ID, pay.ReservationID)
		if err != nil {
			s.log.Error("Sweep failed to apply payment",
				zap.Error(err),
				zap.String("payment_id", pay.ID.String()),
				zap.String("reservation_id", pay.ReservationID.String()))
			continue
		}
		if applied {
			s.log.Info("Sweep reconciled payment",
				zap.String("payment_id", pay.ID.String()),
				zap.String("reservation_id", pay.ReservationID.String()))
		}
	}

	if err := s.repo.Session.CleanExpiredSessions(ctx); err != nil {
		s.log.Warn("Sweep failed to clean expired sessions", zap.Error(err))
	}

	return nil
}
