package web

import (
	"context"

	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/adapter"
	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/usecase"
)

// Function-field stubs so each test wires only the calls it expects.

type stubUserUC struct {
	register     func(ctx context.Context, name, email, password string) (*model.User, error)
	authenticate func(ctx context.Context, email, password string) (*model.User, error)
	list         func(ctx context.Context, offset, limit int) ([]*model.User, int, error)
}

var _ usecase.UserUseCase = (*stubUserUC)(nil)

func (s *stubUserUC) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.register(ctx, name, email, password)
}
func (s *stubUserUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	return s.authenticate(ctx, email, password)
}
func (s *stubUserUC) List(ctx context.Context, offset, limit int) ([]*model.User, int, error) {
	return s.list(ctx, offset, limit)
}

type stubCatalogUC struct {
	listCategories func(ctx context.Context) ([]*model.Category, error)
	categoryTracks func(ctx context.Context, categoryID int64) (*model.Category, []*model.Track, error)
	getTrack       func(ctx context.Context, trackID int64, userID *int64) (*usecase.TrackAccess, error)
	activeTracks   func(ctx context.Context, userID int64) ([]*model.Track, error)
}

var _ usecase.CatalogUseCase = (*stubCatalogUC)(nil)

func (s *stubCatalogUC) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.listCategories(ctx)
}
func (s *stubCatalogUC) CategoryTracks(ctx context.Context, categoryID int64) (*model.Category, []*model.Track, error) {
	return s.categoryTracks(ctx, categoryID)
}
func (s *stubCatalogUC) GetTrack(ctx context.Context, trackID int64, userID *int64) (*usecase.TrackAccess, error) {
	return s.getTrack(ctx, trackID, userID)
}
func (s *stubCatalogUC) ActiveTracks(ctx context.Context, userID int64) ([]*model.Track, error) {
	return s.activeTracks(ctx, userID)
}

type stubOrderUC struct {
	createOrder func(ctx context.Context, userID int64, amountMajor float64, trackID int64) (*adapter.Order, error)
}

var _ usecase.OrderUseCase = (*stubOrderUC)(nil)

func (s *stubOrderUC) CreateOrder(ctx context.Context, userID int64, amountMajor float64, trackID int64) (*adapter.Order, error) {
	return s.createOrder(ctx, userID, amountMajor, trackID)
}

type stubSettlementUC struct {
	capture       func(ctx context.Context, orderID, paymentID, signature string) (*usecase.CaptureResult, error)
	handleWebhook func(ctx context.Context, body []byte, signature string) error
}

var _ usecase.SettlementUseCase = (*stubSettlementUC)(nil)

func (s *stubSettlementUC) Capture(ctx context.Context, orderID, paymentID, signature string) (*usecase.CaptureResult, error) {
	return s.capture(ctx, orderID, paymentID, signature)
}
func (s *stubSettlementUC) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return s.handleWebhook(ctx, body, signature)
}

type stubStatusUC struct {
	resolve func(ctx context.Context, userID, trackID int64) (*usecase.StatusResult, error)
}

var _ usecase.StatusUseCase = (*stubStatusUC)(nil)

func (s *stubStatusUC) Resolve(ctx context.Context, userID, trackID int64) (*usecase.StatusResult, error) {
	return s.resolve(ctx, userID, trackID)
}

type stubStatsUC struct {
	totals  func(ctx context.Context) (*usecase.Totals, error)
	monthly func(ctx context.Context, months int) (*usecase.MonthlyStats, error)
}

var _ usecase.StatsUseCase = (*stubStatsUC)(nil)

func (s *stubStatsUC) Totals(ctx context.Context) (*usecase.Totals, error) { return s.totals(ctx) }
func (s *stubStatsUC) Monthly(ctx context.Context, months int) (*usecase.MonthlyStats, error) {
	return s.monthly(ctx, months)
}

type stubAdminUC struct {
	listSubscriptions  func(ctx context.Context, offset, limit int) ([]*model.Subscription, int, error)
	saveSubscription   func(ctx context.Context, sub *model.Subscription) error
	deleteSubscription func(ctx context.Context, id int64) error
	listTransactions   func(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, int, error)
}

var _ usecase.AdminUseCase = (*stubAdminUC)(nil)

func (s *stubAdminUC) ListSubscriptions(ctx context.Context, offset, limit int) ([]*model.Subscription, int, error) {
	return s.listSubscriptions(ctx, offset, limit)
}
func (s *stubAdminUC) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	return s.saveSubscription(ctx, sub)
}
func (s *stubAdminUC) DeleteSubscription(ctx context.Context, id int64) error {
	return s.deleteSubscription(ctx, id)
}
func (s *stubAdminUC) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, int, error) {
	return s.listTransactions(ctx, f)
}
