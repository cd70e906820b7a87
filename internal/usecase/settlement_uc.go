package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/infra/metrics"
	"audio-track-subscription/internal/infra/payment/razorpay"
)

// Compile-time check
var _ SettlementUseCase = (*settlementUC)(nil)

// CaptureResult reports the outcome of a settlement attempt.
type CaptureResult struct {
	AlreadyCaptured bool
}

type SettlementUseCase interface {
	// Capture verifies the redirect-path payment assertion and, inside one
	// database transaction, marks the order's transaction captured and grants
	// or extends the matching subscription. Repeat delivery is an idempotent
	// success (AlreadyCaptured=true).
	Capture(ctx context.Context, orderID, paymentID, signature string) (*CaptureResult, error)
	// HandleWebhook authenticates and applies one gateway event delivery.
	// body must be the raw request bytes as received; events other than
	// payment.captured are accepted and ignored.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type settlementUC struct {
	txs           repository.TransactionRepository
	subs          repository.SubscriptionRepository
	tm            repository.TransactionManager
	keySecret     string
	webhookSecret string
	currency      string
	grantDays     int
	log           *zerolog.Logger
}

func NewSettlementUseCase(
	txs repository.TransactionRepository,
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	keySecret, webhookSecret, currency string,
	grantDays int,
	logger *zerolog.Logger,
) *settlementUC {
	l := logger.With().Str("component", "SettlementUC").Logger()
	return &settlementUC{
		txs:           txs,
		subs:          subs,
		tm:            tm,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      currency,
		grantDays:     grantDays,
		log:           &l,
	}
}

func (u *settlementUC) Capture(ctx context.Context, orderID, paymentID, signature string) (*CaptureResult, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, domain.ErrInvalidArgument
	}
	if u.keySecret == "" {
		return nil, domain.ErrSecretNotConfigured
	}
	if !razorpay.VerifySignature(u.keySecret, razorpay.RedirectPayload(orderID, paymentID), signature) {
		metrics.IncCapture("redirect", "unauthorized")
		u.log.Warn().Str("order_id", orderID).Msg("rejected payment with bad signature")
		return nil, domain.ErrUnauthorizedPayment
	}

	res := &CaptureResult{}
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// The row lock taken here is what serializes racing confirmations for
		// one order: the loser blocks until the winner commits, then observes
		// status=captured and short-circuits.
		t, err := u.txs.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}
		if t.Status == model.TransactionStatusCaptured {
			res.AlreadyCaptured = true
			return nil
		}

		now := time.Now()
		if err := u.txs.MarkCaptured(ctx, tx, orderID, paymentID, signature, now); err != nil {
			return err
		}
		return u.grant(ctx, tx, t, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			metrics.IncCapture("redirect", "not_found")
		default:
			metrics.IncCapture("redirect", "error")
		}
		return nil, err
	}

	if res.AlreadyCaptured {
		metrics.IncCapture("redirect", "alreadydone")
	} else {
		metrics.IncCapture("redirect", "captured")
		u.log.Info().Str("order_id", orderID).Str("payment_id", paymentID).Msg("payment captured")
	}
	return res, nil
}

func (u *settlementUC) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if u.webhookSecret == "" {
		// Fail closed: an unset secret is a deployment fault, not a signature
		// mismatch.
		return domain.ErrSecretNotConfigured
	}
	if !razorpay.VerifySignature(u.webhookSecret, body, signature) {
		metrics.IncCapture("webhook", "unauthorized")
		return domain.ErrUnauthorizedPayment
	}

	evt, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if evt.Event != razorpay.EventPaymentCaptured {
		u.log.Debug().Str("event", evt.Event).Msg("ignoring webhook event")
		return nil
	}
	ent := evt.Entity()
	if ent == nil || ent.OrderID == "" {
		return domain.ErrInvalidArgument
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := time.Now()
		t, err := u.txs.FindByOrderID(ctx, tx, ent.OrderID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Out-of-order delivery: the redirect path never recorded this
			// order, so the webhook acts as capture of last resort and writes
			// the row itself. No user/track link is known here, so no
			// subscription is granted.
			return u.txs.UpsertCaptured(ctx, tx, u.transactionFromEntity(ent, now))
		case err != nil:
			return err
		case t.Status == model.TransactionStatusCaptured:
			return nil
		default:
			t.Status = model.TransactionStatusCaptured
			t.PaymentID = strPtr(ent.ID)
			t.Method = strPtr(ent.Method)
			if ent.Email != "" {
				t.Email = ent.Email
			}
			if ent.Amount > 0 {
				t.Amount = float64(ent.Amount) / 100
			}
			t.UpdatedAt = now
			if err := u.txs.UpsertCaptured(ctx, tx, t); err != nil {
				return err
			}
			return u.grant(ctx, tx, t, now)
		}
	})
	if err != nil {
		metrics.IncCapture("webhook", "error")
		return err
	}
	metrics.IncCapture("webhook", "captured")
	return nil
}

// grant upserts the (user, track) subscription for a freshly captured
// transaction: a 7-day (configurable) window from today, extending but never
// shortening an existing grant.
func (u *settlementUC) grant(ctx context.Context, tx repository.Tx, t *model.Transaction, now time.Time) error {
	if t.UserID == nil || t.TrackID == nil {
		return nil
	}
	start := model.DateOnly(now)
	end := start.AddDate(0, 0, u.grantDays)

	existing, err := u.subs.FindLatestByUserAndTrack(ctx, tx, *t.UserID, *t.TrackID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := u.subs.Grant(ctx, tx, *t.UserID, *t.TrackID, start, end); err != nil {
		return err
	}
	if existing == nil {
		metrics.IncSubscriptionGranted("new")
	} else {
		metrics.IncSubscriptionGranted("extended")
	}
	metrics.AddPaymentRevenue(t.Currency, t.Amount)
	return nil
}

func (u *settlementUC) transactionFromEntity(ent *razorpay.PaymentEntity, now time.Time) *model.Transaction {
	created := now
	if ent.Created > 0 {
		created = time.Unix(ent.Created, 0)
	}
	currency := ent.Currency
	if currency == "" {
		currency = u.currency
	}
	return &model.Transaction{
		OrderID:   ent.OrderID,
		PaymentID: strPtr(ent.ID),
		Receipt:   ent.Notes.Receipt,
		Email:     ent.Email,
		Amount:    float64(ent.Amount) / 100,
		Currency:  currency,
		Status:    model.TransactionStatusCaptured,
		Method:    strPtr(ent.Method),
		CreatedAt: created,
		UpdatedAt: now,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
