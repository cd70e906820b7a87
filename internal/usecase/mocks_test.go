package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/adapter"
	"audio-track-subscription/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

//
// -------------------- transaction manager --------------------
//

type noTx struct{}

// mockTxManager serializes transactional sections with a mutex, standing in
// for the row locks that serialize racing settlements against a real database.
type mockTxManager struct {
	mu sync.Mutex
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, noTx{})
}

//
// -------------------- users --------------------
//

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: map[int64]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, _ repository.Tx, u *model.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if e.Email == u.Email {
			return 0, domain.ErrAlreadyExists
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.byID[u.ID] = &cp
	return u.ID, nil
}

func (r *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, _ repository.Tx, offset, limit int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*model.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) Count(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

//
// -------------------- catalog --------------------
//

type memCategoryRepo struct {
	byID map[int64]*model.Category
}

var _ repository.CategoryRepository = (*memCategoryRepo)(nil)

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{byID: map[int64]*model.Category{}}
}

func (r *memCategoryRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Category, error) {
	var out []*model.Category
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTrackRepo struct {
	byID map[int64]*model.Track
}

var _ repository.TrackRepository = (*memTrackRepo)(nil)

func newMemTrackRepo() *memTrackRepo {
	return &memTrackRepo{byID: map[int64]*model.Track{}}
}

func (r *memTrackRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.Track, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTrackRepo) ListByCategory(_ context.Context, _ repository.Tx, categoryID int64) ([]*model.Track, error) {
	var out []*model.Track
	for _, t := range r.byID {
		if t.CategoryID == categoryID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTrackRepo) ListByIDs(_ context.Context, _ repository.Tx, ids []int64) ([]*model.Track, error) {
	var out []*model.Track
	for _, id := range ids {
		if t, ok := r.byID[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

//
// -------------------- transactions --------------------
//

type memTransactionRepo struct {
	mu        sync.Mutex
	byOrderID map[string]*model.Transaction
}

var _ repository.TransactionRepository = (*memTransactionRepo)(nil)

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{byOrderID: map[string]*model.Transaction{}}
}

func (r *memTransactionRepo) Insert(_ context.Context, _ repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOrderID[t.OrderID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	r.byOrderID[t.OrderID] = &cp
	return nil
}

func (r *memTransactionRepo) FindByOrderID(_ context.Context, _ repository.Tx, orderID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byOrderID[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTransactionRepo) MarkCaptured(_ context.Context, _ repository.Tx, orderID, paymentID, signature string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byOrderID[orderID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = model.TransactionStatusCaptured
	t.PaymentID = &paymentID
	t.Signature = &signature
	t.UpdatedAt = at
	return nil
}

func (r *memTransactionRepo) UpsertCaptured(_ context.Context, _ repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	cp.Status = model.TransactionStatusCaptured
	r.byOrderID[t.OrderID] = &cp
	return nil
}

func (r *memTransactionRepo) List(_ context.Context, _ repository.Tx, f repository.TransactionFilter) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, t := range r.byOrderID {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Email != "" && !strings.EqualFold(t.Email, f.Email) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (r *memTransactionRepo) Count(ctx context.Context, tx repository.Tx, f repository.TransactionFilter) (int, error) {
	list, err := r.List(ctx, tx, repository.TransactionFilter{Status: f.Status, Email: f.Email})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *memTransactionRepo) SumCaptured(_ context.Context, _ repository.Tx) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, t := range r.byOrderID {
		if t.Status == model.TransactionStatusCaptured {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (r *memTransactionRepo) MonthlyCapturedAmounts(_ context.Context, _ repository.Tx, months int) ([]model.MonthlyAmount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byMonth := map[string]float64{}
	for _, t := range r.byOrderID {
		if t.Status == model.TransactionStatusCaptured {
			byMonth[t.CreatedAt.Format("2006-01")] += t.Amount
		}
	}
	var out []model.MonthlyAmount
	for m, a := range byMonth {
		out = append(out, model.MonthlyAmount{Month: m, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *memTransactionRepo) MarkStaleFailed(_ context.Context, _ repository.Tx, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.byOrderID {
		if t.Status == model.TransactionStatusInTransit && t.CreatedAt.Before(cutoff) {
			t.Status = model.TransactionStatusFailed
			n++
		}
	}
	return n, nil
}

//
// -------------------- subscriptions --------------------
//

type memSubscriptionRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Subscription
}

var _ repository.SubscriptionRepository = (*memSubscriptionRepo)(nil)

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{nextID: 1, byID: map[int64]*model.Subscription{}}
}

func (r *memSubscriptionRepo) Grant(_ context.Context, _ repository.Tx, userID, trackID int64, start, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.UserID == userID && s.TrackID != nil && *s.TrackID == trackID {
			s.Status = model.SubscriptionStatusActive
			// nil end date means unbounded access and is never shortened
			if s.EndDate != nil && s.EndDate.Before(end) {
				e := end
				s.EndDate = &e
			}
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	id := r.nextID
	r.nextID++
	tid := trackID
	st, en := start, end
	r.byID[id] = &model.Subscription{
		ID:        id,
		UserID:    userID,
		TrackID:   &tid,
		Status:    model.SubscriptionStatusActive,
		StartDate: &st,
		EndDate:   &en,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return nil
}

func (r *memSubscriptionRepo) FindLatestByUserAndTrack(_ context.Context, _ repository.Tx, userID, trackID int64) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Subscription
	for _, s := range r.byID {
		if s.UserID != userID || s.TrackID == nil || *s.TrackID != trackID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *memSubscriptionRepo) FindLatestByUserAndTrackTitle(_ context.Context, _ repository.Tx, userID int64, title string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Subscription
	for _, s := range r.byID {
		if s.UserID != userID || s.TrackTitle != title {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *memSubscriptionRepo) HasActiveOnDate(_ context.Context, _ repository.Tx, userID int64, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive && s.CoversDate(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSubscriptionRepo) ActiveTrackIDs(_ context.Context, _ repository.Tx, userID int64, day time.Time) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for _, s := range r.byID {
		if s.UserID != userID || s.Status != model.SubscriptionStatusActive || s.TrackID == nil {
			continue
		}
		if s.EndDate != nil && !s.EndDate.After(model.DateOnly(day)) {
			continue
		}
		out = append(out, *s.TrackID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *memSubscriptionRepo) Save(_ context.Context, _ repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	} else if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *memSubscriptionRepo) Delete(_ context.Context, _ repository.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memSubscriptionRepo) List(_ context.Context, _ repository.Tx, offset, limit int) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*model.Subscription
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSubscriptionRepo) Count(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *memSubscriptionRepo) CountDistinctActiveUsers(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	now := time.Now()
	for _, s := range r.byID {
		if s.Status == model.SubscriptionStatusActive && s.CoversDate(now) {
			seen[s.UserID] = true
		}
	}
	return len(seen), nil
}

func (r *memSubscriptionRepo) MonthlyCounts(_ context.Context, _ repository.Tx, months int) ([]model.MonthlyCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byMonth := map[string]int{}
	for _, s := range r.byID {
		byMonth[s.CreatedAt.Format("2006-01")]++
	}
	var out []model.MonthlyCount
	for m, c := range byMonth {
		out = append(out, model.MonthlyCount{Month: m, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *memSubscriptionRepo) ExpireOverdue(_ context.Context, _ repository.Tx, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	today := model.DateOnly(now)
	for _, s := range r.byID {
		if s.Status == model.SubscriptionStatusActive && s.EndDate != nil && model.DateOnly(*s.EndDate).Before(today) {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

//
// -------------------- payment gateway --------------------
//

type mockGateway struct {
	mu      sync.Mutex
	nextID  int
	failErr error
	orders  []mockOrderCall
}

type mockOrderCall struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

var _ adapter.OrderGateway = (*mockGateway)(nil)

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*adapter.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	g.nextID++
	g.orders = append(g.orders, mockOrderCall{AmountMinor: amountMinor, Currency: currency, Receipt: receipt})
	return &adapter.Order{
		ID:        "order_mock_" + string(rune('A'+g.nextID-1)),
		Amount:    amountMinor,
		Currency:  currency,
		Receipt:   receipt,
		Status:    "created",
		CreatedAt: time.Now(),
	}, nil
}
