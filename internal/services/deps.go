package services

import (
	"context"

	"coinmate/internal/exchange"
	"coinmate/internal/models"
	"coinmate/internal/store"
	"coinmate/internal/websocket"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Getter, fields store.Fields) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type SpaceStore interface {
	Create(ctx context.Context, tx store.Getter, fields store.Fields) (models.Space, error)
	Update(ctx context.Context, tx store.Getter, id string, fields store.Fields) (models.Space, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Space, error)
	ListByUser(ctx context.Context, userID string) ([]models.Space, error)
}

type SpaceUserStore interface {
	Create(ctx context.Context, tx store.Getter, fields store.Fields) (models.SpaceUser, error)
	ArchiveBySpace(ctx context.Context, tx store.Selecter, spaceID string, fields store.Fields) ([]models.SpaceUser, error)
	HasRole(ctx context.Context, spaceID, userID, role string) (bool, error)
}

type CategoryStore interface {
	Create(ctx context.Context, tx store.Getter, fields store.Fields) (models.Category, error)
	Update(ctx context.Context, tx store.Getter, id string, fields store.Fields) (models.Category, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Category, error)
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Getter, fields store.Fields) (models.Transaction, error)
	Update(ctx context.Context, tx store.Getter, id string, fields store.Fields) (models.Transaction, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Transaction, error)
	CursorOf(ctx context.Context, userID, id string) (store.Cursor, error)
	ListIDs(ctx context.Context, q store.ListQuery) ([]string, error)
}

type ReportStore interface {
	CategoryExpenses(ctx context.Context, keys []store.ReportKey) ([]models.CategoryReport, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, input store.AuditInput) error
}

type AuditReader interface {
	ListForObject(ctx context.Context, userID string, object models.AuditObject, objectID string) ([]models.AuditEntry, error)
}

type ExchangeRateStore interface {
	Log(ctx context.Context, tx store.Execer, input store.ExchangeRateInput) error
	Latest(ctx context.Context, currencyCode string) (models.ExchangeRate, error)
}

type RateProvider interface {
	Name() string
	Quote(ctx context.Context, pair string) (exchange.Quote, error)
}

type RateMemo interface {
	Get(ctx context.Context, pair string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, pair string, rate decimal.Decimal) error
}

// RateSource is what ledger conversions need from the exchange-rate cache.
type RateSource interface {
	FetchRate(ctx context.Context, pair string) (decimal.Decimal, error)
}

type Notifier interface {
	Publish(userID string, event websocket.ChangeEvent)
}
