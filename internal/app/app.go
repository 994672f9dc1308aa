// Package app wires stores and services for the binaries.
package app

import (
	"context"
	"io"

	"coinmate/internal/config"
	"coinmate/internal/db"
	"coinmate/internal/exchange"
	"coinmate/internal/handlers"
	"coinmate/internal/loader"
	"coinmate/internal/logger"
	"coinmate/internal/services"
	"coinmate/internal/store"
	"coinmate/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type App struct {
	Users        *services.UserService
	Spaces       *services.SpaceService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Audit        *services.AuditService
	Rates        *services.ExchangeService
	Hub          *websocket.Hub

	closers []io.Closer
}

// New builds every service over database. The Redis rate memo is only
// connected when both REDIS_URL and RATE_MEMO_TTL are set; a Redis that does
// not answer is logged and skipped.
func New(ctx context.Context, cfg config.Config, database *sqlx.DB) *App {
	loader.BatchWait = cfg.LoaderWait

	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	audit := store.NewAuditStore(database)
	spaceStore := store.NewSpaceStore(database)
	memberStore := store.NewSpaceUserStore(database)

	a := &App{Hub: hub, closers: []io.Closer{hub}}

	var memo services.RateMemo
	if cfg.RedisURL != "" && cfg.RateMemoTTL > 0 {
		client, err := exchange.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warnf("redis unavailable, exchange rate memo disabled: %v", err)
		} else {
			memo = exchange.NewRedisMemo(client, cfg.RateMemoTTL)
			a.closers = append(a.closers, client)
		}
	}

	a.Rates = services.NewExchangeService(txRunner,
		exchange.NewYahooProvider(cfg.ExchangeRateURL, cfg.ExchangeRateTimeout),
		store.NewExchangeRateStore(database), memo, cfg.ExchangeRateMaxStaleness)
	a.Users = services.NewUserService(txRunner, store.NewUserStore(database), spaceStore, memberStore, audit, services.AuthConfig{
		Secret:       cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		RefreshAfter: cfg.SessionRefreshAfter,
	})
	a.Spaces = services.NewSpaceService(txRunner, spaceStore, memberStore, audit, hub)
	a.Categories = services.NewCategoryService(txRunner, store.NewCategoryStore(database), store.NewReportStore(database), a.Spaces, audit, hub)
	a.Transactions = services.NewTransactionService(txRunner, store.NewTransactionStore(database), a.Categories, a.Rates, audit, hub, cfg.BaseCurrency)
	a.Audit = services.NewAuditService(audit)
	return a
}

func (a *App) Handlers() handlers.Services {
	return handlers.Services{
		Users:        a.Users,
		Spaces:       a.Spaces,
		Categories:   a.Categories,
		Transactions: a.Transactions,
		Audit:        a.Audit,
		Rates:        a.Rates,
	}
}

func (a *App) Close() {
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			logger.Warnf("close: %v", err)
		}
	}
}
