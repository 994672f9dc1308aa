// Package exchange talks to the outside world about exchange rates: the
// quote provider and the short-lived quote memo.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoQuote = errors.New("provider returned no quote")

// Quote is a live price for a currency pair such as "USDCOP".
type Quote struct {
	Pair  string
	Price decimal.Decimal
	Raw   json.RawMessage
}

type Provider interface {
	Name() string
	Quote(ctx context.Context, pair string) (Quote, error)
}

// YahooProvider reads regularMarketPrice from the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *YahooProvider) Name() string {
	return "yahoo"
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (p *YahooProvider) Quote(ctx context.Context, pair string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", p.baseURL, url.PathEscape(pair+"=X"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo %s: %w", pair, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo %s: read body: %w", pair, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("yahoo %s: unexpected status %d", pair, resp.StatusCode)
	}
	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("yahoo %s: decode: %w", pair, err)
	}
	if len(parsed.Chart.Result) == 0 {
		return Quote{}, ErrNoQuote
	}
	price := parsed.Chart.Result[0].Meta.RegularMarketPrice
	if !price.Valid || !price.Decimal.IsPositive() {
		return Quote{}, ErrNoQuote
	}
	return Quote{Pair: pair, Price: price.Decimal, Raw: body}, nil
}
