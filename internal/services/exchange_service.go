package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"coinmate/internal/db"
	"coinmate/internal/logger"
	"coinmate/internal/money"
	"coinmate/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ExchangeService serves exchange rates from the live provider and falls back
// to the last persisted rate when the provider fails.
type ExchangeService struct {
	txRunner     db.TxRunner
	provider     RateProvider
	rates        ExchangeRateStore
	memo         RateMemo
	maxStaleness time.Duration
	now          func() time.Time
}

// NewExchangeService builds the rate cache. memo may be nil. A zero
// maxStaleness accepts a cached rate of any age.
func NewExchangeService(txRunner db.TxRunner, provider RateProvider, rates ExchangeRateStore, memo RateMemo, maxStaleness time.Duration) *ExchangeService {
	return &ExchangeService{
		txRunner:     txRunner,
		provider:     provider,
		rates:        rates,
		memo:         memo,
		maxStaleness: maxStaleness,
		now:          time.Now,
	}
}

func (s *ExchangeService) FetchRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	pair = strings.ToUpper(pair)
	log := logger.WithFields(logrus.Fields{"pair": pair, "provider": s.provider.Name()})
	if s.memo != nil {
		rate, ok, err := s.memo.Get(ctx, pair)
		if err != nil {
			log.Warnf("rate memo read failed: %v", err)
		} else if ok {
			return rate, nil
		}
	}

	quote, err := s.provider.Quote(ctx, pair)
	if err == nil {
		s.persist(ctx, log, pair, quote.Price, quote.Raw)
		return quote.Price, nil
	}
	log.Warnf("live exchange rate fetch failed, using cache: %v", err)
	return s.cached(ctx, pair)
}

func (s *ExchangeService) persist(ctx context.Context, log *logrus.Entry, pair string, rate decimal.Decimal, raw []byte) {
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.rates.Log(ctx, tx, store.ExchangeRateInput{
			CurrencyCode: pair,
			RateCents:    money.RateToCents(rate),
			Provider:     s.provider.Name(),
			Data:         raw,
		})
	})
	if err != nil {
		log.Errorf("persist exchange rate: %v", err)
	}
	if s.memo != nil {
		if err := s.memo.Set(ctx, pair, rate); err != nil {
			log.Warnf("rate memo write failed: %v", err)
		}
	}
}

func (s *ExchangeService) cached(ctx context.Context, pair string) (decimal.Decimal, error) {
	latest, err := s.rates.Latest(ctx, pair)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, ErrNoRateAvailable
		}
		return decimal.Decimal{}, errors.Join(ErrNoRateAvailable, err)
	}
	if s.maxStaleness > 0 && s.now().Sub(latest.CreatedAt) > s.maxStaleness {
		return decimal.Decimal{}, ErrNoRateAvailable
	}
	return money.RateFromCents(latest.RateCents), nil
}
