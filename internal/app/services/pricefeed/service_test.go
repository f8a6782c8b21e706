package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestQuoteFallsBackWhenFetchFails(t *testing.T) {
	fetcher := FetcherFunc(func(context.Context) (float64, string, error) {
		return 0, "", errors.New("upstream down")
	})
	svc := New(fetcher, nil)

	q := svc.Quote(context.Background())
	if q.PriceUSD != FallbackBTCPriceUSD {
		t.Fatalf("expected fallback price %v, got %v", FallbackBTCPriceUSD, q.PriceUSD)
	}
	if q.Source != SourceFallback {
		t.Fatalf("fallback quote must be tagged, got %q", q.Source)
	}
}

func TestQuoteCachesSuccessfulFetch(t *testing.T) {
	calls := 0
	fetcher := FetcherFunc(func(context.Context) (float64, string, error) {
		calls++
		return 60_000, SourceCoinGecko, nil
	})
	svc := New(fetcher, nil)

	for i := 0; i < 3; i++ {
		q := svc.Quote(context.Background())
		if q.PriceUSD != 60_000 || q.Source != SourceCoinGecko {
			t.Fatalf("unexpected quote %+v", q)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", calls)
	}
}

func TestRefreshReplacesCachedQuote(t *testing.T) {
	price := 50_000.0
	fetcher := FetcherFunc(func(context.Context) (float64, string, error) {
		return price, SourceCoinGecko, nil
	})
	svc := New(fetcher, nil)

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	price = 55_000
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if q := svc.Quote(context.Background()); q.PriceUSD != 55_000 {
		t.Fatalf("expected refreshed price, got %v", q.PriceUSD)
	}
}

func TestConvertUSD(t *testing.T) {
	fetcher := FetcherFunc(func(context.Context) (float64, string, error) {
		return 50_000, SourceCoinGecko, nil
	})
	svc := New(fetcher, nil)

	btc, q := svc.ConvertUSD(context.Background(), 100)
	if q.PriceUSD != 50_000 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if btc != 0.002 {
		t.Fatalf("expected 0.002 BTC, got %v", btc)
	}
}

func TestCoinGeckoFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin": {"usd": 61234.5}}`))
	}))
	defer server.Close()

	fetcher, err := NewCoinGeckoFetcher(server.Client(), server.URL, nil)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}

	price, source, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if price != 61234.5 || source != SourceCoinGecko {
		t.Fatalf("unexpected result price=%v source=%s", price, source)
	}
}

func TestCoinGeckoFetcherBadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ethereum": {"usd": 3000}}`))
		},
		"non-positive price": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"bitcoin": {"usd": 0}}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			fetcher, err := NewCoinGeckoFetcher(server.Client(), server.URL, nil)
			if err != nil {
				t.Fatalf("new fetcher: %v", err)
			}
			if _, _, err := fetcher.Fetch(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRefresherLifecycle(t *testing.T) {
	calls := make(chan struct{}, 10)
	fetcher := FetcherFunc(func(context.Context) (float64, string, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return 50_000, SourceCoinGecko, nil
	})

	refresher := NewRefresher(New(fetcher, nil), 10*time.Millisecond, nil)
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("expected at least one refresh tick")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := refresher.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Idempotent stop.
	if err := refresher.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
