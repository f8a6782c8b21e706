// Package pricefeed tracks the BTC/USD exchange rate used for display
// conversions. Prices are advisory: a stale or fallback price never blocks a
// payment, it only changes the fiat figure shown next to it.
package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// FallbackBTCPriceUSD is served when no upstream price is available.
const FallbackBTCPriceUSD = 45000.0

// Price sources.
const (
	SourceCoinGecko = "coingecko"
	SourceFallback  = "fallback"
)

// Quote is one observed BTC/USD price.
type Quote struct {
	PriceUSD  float64   `json:"price_usd"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service caches the most recent BTC/USD quote.
type Service struct {
	fetcher Fetcher
	log     *logger.Logger
	now     func() time.Time

	mu     sync.RWMutex
	latest *Quote
}

// New constructs a price service.
func New(fetcher Fetcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("pricefeed")
	}
	return &Service{
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Quote returns the cached BTC/USD price, fetching on a cold cache. When no
// upstream price can be obtained the fallback price is returned, tagged with
// its source so callers can surface the degradation.
func (s *Service) Quote(ctx context.Context) Quote {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return *latest
	}

	if q, err := s.Refresh(ctx); err == nil {
		return q
	}
	return Quote{
		PriceUSD:  FallbackBTCPriceUSD,
		Source:    SourceFallback,
		FetchedAt: s.now().UTC(),
	}
}

// Refresh fetches a fresh quote from the upstream source and caches it.
func (s *Service) Refresh(ctx context.Context) (Quote, error) {
	if s.fetcher == nil {
		return Quote{}, errNoFetcher
	}

	price, source, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.log.WithError(err).Warn("btc price fetch failed")
		return Quote{}, err
	}

	q := Quote{
		PriceUSD:  price,
		Source:    source,
		FetchedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.latest = &q
	s.mu.Unlock()

	s.log.WithField("price_usd", price).WithField("source", source).Debug("btc price refreshed")
	return q, nil
}

// ConvertUSD returns the BTC amount equivalent to a USD amount at the current
// quote.
func (s *Service) ConvertUSD(ctx context.Context, usd float64) (float64, Quote) {
	q := s.Quote(ctx)
	if q.PriceUSD <= 0 {
		return 0, q
	}
	return usd / q.PriceUSD, q
}
