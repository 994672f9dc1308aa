package services

import (
	"context"
	"sync"
	"time"

	"coinmate/internal/exchange"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	userID        = "11111111-1111-1111-1111-111111111111"
	otherUserID   = "22222222-2222-2222-2222-222222222222"
	spaceID       = "33333333-3333-3333-3333-333333333333"
	categoryID    = "44444444-4444-4444-4444-444444444444"
	transactionID = "55555555-5555-5555-5555-555555555555"
)

func userScope() *scope.Scope {
	return scope.New(scope.Session{UserID: userID, IssuedAt: time.Now()}, scope.Metadata{"request_id": "req-1"})
}

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type countingTxRunner struct {
	calls int
}

func (c *countingTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	c.calls++
	return fn(nil)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []store.AuditInput
	logFn   func(input store.AuditInput) error
}

func (r *recordingAudit) Log(_ context.Context, _ store.Execer, input store.AuditInput) error {
	if r.logFn != nil {
		if err := r.logFn(input); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, input)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []websocket.ChangeEvent
	users  []string
}

func (r *recordingNotifier) Publish(userID string, event websocket.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	r.events = append(r.events, event)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, fields store.Fields) (models.User, error)
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDsFn   func(ctx context.Context, ids []string) ([]models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, _ store.Getter, fields store.Fields) (models.User, error) {
	if s.createFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.createFn(ctx, fields)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if s.getByIDsFn == nil {
		return nil, nil
	}
	return s.getByIDsFn(ctx, ids)
}

type stubSpaceStore struct {
	createFn     func(ctx context.Context, fields store.Fields) (models.Space, error)
	updateFn     func(ctx context.Context, id string, fields store.Fields) (models.Space, error)
	getByIDsFn   func(ctx context.Context, ids []string) ([]models.Space, error)
	listByUserFn func(ctx context.Context, userID string) ([]models.Space, error)
}

func (s stubSpaceStore) Create(ctx context.Context, _ store.Getter, fields store.Fields) (models.Space, error) {
	if s.createFn == nil {
		owner, _ := fields.Get("user_id")
		name, _ := fields.Get("name")
		return models.Space{ID: spaceID, UserID: owner.(string), Name: name.(string)}, nil
	}
	return s.createFn(ctx, fields)
}

func (s stubSpaceStore) Update(ctx context.Context, _ store.Getter, id string, fields store.Fields) (models.Space, error) {
	if s.updateFn == nil {
		return models.Space{ID: id, UserID: userID}, nil
	}
	return s.updateFn(ctx, id, fields)
}

func (s stubSpaceStore) GetByIDs(ctx context.Context, ids []string) ([]models.Space, error) {
	if s.getByIDsFn == nil {
		return nil, nil
	}
	return s.getByIDsFn(ctx, ids)
}

func (s stubSpaceStore) ListByUser(ctx context.Context, userID string) ([]models.Space, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubSpaceUserStore struct {
	createFn         func(ctx context.Context, fields store.Fields) (models.SpaceUser, error)
	archiveBySpaceFn func(ctx context.Context, spaceID string, fields store.Fields) ([]models.SpaceUser, error)
	hasRoleFn        func(ctx context.Context, spaceID, userID, role string) (bool, error)
}

func (s stubSpaceUserStore) Create(ctx context.Context, _ store.Getter, fields store.Fields) (models.SpaceUser, error) {
	if s.createFn == nil {
		return models.SpaceUser{ID: "66666666-6666-6666-6666-666666666666"}, nil
	}
	return s.createFn(ctx, fields)
}

func (s stubSpaceUserStore) ArchiveBySpace(ctx context.Context, _ store.Selecter, spaceID string, fields store.Fields) ([]models.SpaceUser, error) {
	if s.archiveBySpaceFn == nil {
		return nil, nil
	}
	return s.archiveBySpaceFn(ctx, spaceID, fields)
}

func (s stubSpaceUserStore) HasRole(ctx context.Context, spaceID, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, spaceID, userID, role)
}

type stubCategoryStore struct {
	createFn     func(ctx context.Context, fields store.Fields) (models.Category, error)
	updateFn     func(ctx context.Context, id string, fields store.Fields) (models.Category, error)
	getByIDsFn   func(ctx context.Context, ids []string) ([]models.Category, error)
	listByUserFn func(ctx context.Context, userID string) ([]models.Category, error)
}

func (s stubCategoryStore) Create(ctx context.Context, _ store.Getter, fields store.Fields) (models.Category, error) {
	if s.createFn == nil {
		return models.Category{ID: categoryID, UserID: userID}, nil
	}
	return s.createFn(ctx, fields)
}

func (s stubCategoryStore) Update(ctx context.Context, _ store.Getter, id string, fields store.Fields) (models.Category, error) {
	if s.updateFn == nil {
		return models.Category{ID: id, UserID: userID}, nil
	}
	return s.updateFn(ctx, id, fields)
}

func (s stubCategoryStore) GetByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	if s.getByIDsFn == nil {
		return nil, nil
	}
	return s.getByIDsFn(ctx, ids)
}

func (s stubCategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubTransactionStore struct {
	createFn   func(ctx context.Context, fields store.Fields) (models.Transaction, error)
	updateFn   func(ctx context.Context, id string, fields store.Fields) (models.Transaction, error)
	getByIDsFn func(ctx context.Context, ids []string) ([]models.Transaction, error)
	cursorOfFn func(ctx context.Context, userID, id string) (store.Cursor, error)
	listIDsFn  func(ctx context.Context, q store.ListQuery) ([]string, error)
}

func (s stubTransactionStore) Create(ctx context.Context, _ store.Getter, fields store.Fields) (models.Transaction, error) {
	if s.createFn == nil {
		return models.Transaction{ID: transactionID, UserID: userID}, nil
	}
	return s.createFn(ctx, fields)
}

func (s stubTransactionStore) Update(ctx context.Context, _ store.Getter, id string, fields store.Fields) (models.Transaction, error) {
	if s.updateFn == nil {
		return models.Transaction{ID: id, UserID: userID}, nil
	}
	return s.updateFn(ctx, id, fields)
}

func (s stubTransactionStore) GetByIDs(ctx context.Context, ids []string) ([]models.Transaction, error) {
	if s.getByIDsFn == nil {
		return nil, nil
	}
	return s.getByIDsFn(ctx, ids)
}

func (s stubTransactionStore) CursorOf(ctx context.Context, userID, id string) (store.Cursor, error) {
	if s.cursorOfFn == nil {
		return store.Cursor{ID: id}, nil
	}
	return s.cursorOfFn(ctx, userID, id)
}

func (s stubTransactionStore) ListIDs(ctx context.Context, q store.ListQuery) ([]string, error) {
	if s.listIDsFn == nil {
		return nil, nil
	}
	return s.listIDsFn(ctx, q)
}

type stubReportStore struct {
	categoryExpensesFn func(ctx context.Context, keys []store.ReportKey) ([]models.CategoryReport, error)
}

func (s stubReportStore) CategoryExpenses(ctx context.Context, keys []store.ReportKey) ([]models.CategoryReport, error) {
	if s.categoryExpensesFn == nil {
		return nil, nil
	}
	return s.categoryExpensesFn(ctx, keys)
}

type stubAuditReader struct {
	listFn func(ctx context.Context, userID string, object models.AuditObject, objectID string) ([]models.AuditEntry, error)
}

func (s stubAuditReader) ListForObject(ctx context.Context, userID string, object models.AuditObject, objectID string) ([]models.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, object, objectID)
}

type stubExchangeRateStore struct {
	logFn    func(ctx context.Context, input store.ExchangeRateInput) error
	latestFn func(ctx context.Context, currencyCode string) (models.ExchangeRate, error)
}

func (s stubExchangeRateStore) Log(ctx context.Context, _ store.Execer, input store.ExchangeRateInput) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, input)
}

func (s stubExchangeRateStore) Latest(ctx context.Context, currencyCode string) (models.ExchangeRate, error) {
	if s.latestFn == nil {
		return models.ExchangeRate{}, nil
	}
	return s.latestFn(ctx, currencyCode)
}

type stubProvider struct {
	quoteFn func(ctx context.Context, pair string) (exchange.Quote, error)
}

func (s stubProvider) Name() string {
	return "stub"
}

func (s stubProvider) Quote(ctx context.Context, pair string) (exchange.Quote, error) {
	return s.quoteFn(ctx, pair)
}

type mapMemo struct {
	rates map[string]decimal.Decimal
}

func (m *mapMemo) Get(_ context.Context, pair string) (decimal.Decimal, bool, error) {
	rate, ok := m.rates[pair]
	return rate, ok, nil
}

func (m *mapMemo) Set(_ context.Context, pair string, rate decimal.Decimal) error {
	if m.rates == nil {
		m.rates = map[string]decimal.Decimal{}
	}
	m.rates[pair] = rate
	return nil
}

type stubRateSource struct {
	fetchFn func(ctx context.Context, pair string) (decimal.Decimal, error)
}

func (s stubRateSource) FetchRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	return s.fetchFn(ctx, pair)
}

func strPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}
