package store

import (
	"context"

	"coinmate/internal/models"
)

// ExchangeRateStore is the append-only cache of fetched exchange rates.
type ExchangeRateStore struct {
	db DB
}

type ExchangeRateInput struct {
	CurrencyCode string
	RateCents    int64
	Provider     string
	Data         []byte
}

func NewExchangeRateStore(db DB) *ExchangeRateStore {
	return &ExchangeRateStore{db: db}
}

func (s *ExchangeRateStore) Log(ctx context.Context, tx Execer, input ExchangeRateInput) error {
	var data *string
	if len(input.Data) > 0 {
		raw := string(input.Data)
		data = &raw
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_rate_cache (currency_code, rate_cents, provider, data)
		VALUES ($1, $2, $3, $4)
	`, input.CurrencyCode, input.RateCents, input.Provider, data)
	return err
}

// Latest returns the most recently cached rate for a currency pair.
func (s *ExchangeRateStore) Latest(ctx context.Context, currencyCode string) (models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := s.db.GetContext(ctx, &rate, `
		SELECT id, currency_code, rate_cents, provider, data, created_at, updated_at
		FROM exchange_rate_cache
		WHERE currency_code = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, currencyCode)
	return rate, err
}
