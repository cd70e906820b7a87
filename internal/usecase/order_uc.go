package usecase

import (
	"context"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/adapter"
	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// CreateOrder registers a payment intent with the gateway and records the
	// matching local transaction in in_transit state. amountMajor is in rupees.
	CreateOrder(ctx context.Context, userID int64, amountMajor float64, trackID int64) (*adapter.Order, error)
}

type orderUC struct {
	users    repository.UserRepository
	txs      repository.TransactionRepository
	gateway  adapter.OrderGateway
	currency string
	log      *zerolog.Logger
}

func NewOrderUseCase(users repository.UserRepository, txs repository.TransactionRepository, gateway adapter.OrderGateway, currency string, logger *zerolog.Logger) *orderUC {
	l := logger.With().Str("component", "OrderUC").Logger()
	return &orderUC{users: users, txs: txs, gateway: gateway, currency: currency, log: &l}
}

const receiptPrefix = "order_rcptid_"

// newReceipt returns a prefixed fixed-length token. ULIDs are random enough
// that collision is negligible; a clash still surfaces as an insert failure
// the caller can retry with a fresh token.
func newReceipt() string {
	return receiptPrefix + ulid.Make().String()
}

func (u *orderUC) CreateOrder(ctx context.Context, userID int64, amountMajor float64, trackID int64) (*adapter.Order, error) {
	if userID <= 0 || trackID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if amountMajor <= 0 || math.IsNaN(amountMajor) || math.IsInf(amountMajor, 0) {
		return nil, domain.ErrInvalidArgument
	}

	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	receipt := newReceipt()
	amountMinor := int64(math.Round(amountMajor * 100))

	order, err := u.gateway.CreateOrder(ctx, amountMinor, u.currency, receipt)
	if err != nil {
		metrics.IncOrder("failed")
		u.log.Error().Err(err).Int64("user_id", userID).Msg("gateway order creation failed")
		return nil, err
	}

	now := time.Now()
	currency := order.Currency
	if currency == "" {
		currency = u.currency
	}
	if order.Receipt != "" {
		receipt = order.Receipt
	}
	t := &model.Transaction{
		OrderID:   order.ID,
		Receipt:   receipt,
		Email:     user.Email,
		Amount:    amountMajor, // stored in major units
		Currency:  currency,
		Status:    model.TransactionStatusInTransit,
		UserID:    &userID,
		TrackID:   &trackID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.txs.Insert(ctx, nil, t); err != nil {
		return nil, err
	}

	metrics.IncOrder("created")
	u.log.Info().Str("order_id", order.ID).Int64("user_id", userID).
		Int64("track_id", trackID).Float64("amount", amountMajor).Msg("order created")
	return order, nil
}
