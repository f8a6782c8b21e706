package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bitreon-labs/bitreon/pkg/logger"
)

var errNoFetcher = errors.New("no price fetcher configured")

// Fetcher retrieves the current BTC/USD price.
type Fetcher interface {
	Fetch(ctx context.Context) (price float64, source string, err error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (float64, string, error)

func (f FetcherFunc) Fetch(ctx context.Context) (float64, string, error) {
	if f == nil {
		return 0, "", errNoFetcher
	}
	return f(ctx)
}

// CoinGeckoFetcher reads the BTC/USD spot price from the CoinGecko simple
// price endpoint.
type CoinGeckoFetcher struct {
	client *http.Client
	url    string
	log    *logger.Logger
}

// NewCoinGeckoFetcher creates a fetcher against the given endpoint URL.
func NewCoinGeckoFetcher(client *http.Client, url string, log *logger.Logger) (*CoinGeckoFetcher, error) {
	if url == "" {
		return nil, fmt.Errorf("price feed url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("pricefeed-fetcher")
	}
	return &CoinGeckoFetcher{client: client, url: url, log: log}, nil
}

func (f *CoinGeckoFetcher) Fetch(ctx context.Context) (float64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("fetch btc price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("fetch btc price: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, "", err
	}

	price := gjson.GetBytes(body, "bitcoin.usd")
	if !price.Exists() || price.Float() <= 0 {
		return 0, "", fmt.Errorf("fetch btc price: missing bitcoin.usd in response")
	}
	return price.Float(), SourceCoinGecko, nil
}
