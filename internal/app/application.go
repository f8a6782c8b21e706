package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/services/access"
	"github.com/bitreon-labs/bitreon/internal/app/services/creators"
	"github.com/bitreon-labs/bitreon/internal/app/services/payments"
	"github.com/bitreon-labs/bitreon/internal/app/services/pricefeed"
	"github.com/bitreon-labs/bitreon/internal/app/services/subscriptions"
	"github.com/bitreon-labs/bitreon/internal/app/storage"
	"github.com/bitreon-labs/bitreon/internal/app/storage/memory"
	"github.com/bitreon-labs/bitreon/internal/app/system"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/config"
	"github.com/bitreon-labs/bitreon/internal/session"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Payments storage.PaymentStore
	Events   storage.EventStore
}

// Application ties the domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger
	closers []func() error

	Contract      *bitreon.Facade
	Sessions      *session.Manager
	Creators      *creators.Service
	Subscriptions *subscriptions.Service
	Payments      *payments.Service
	Access        *access.Service
	Prices        *pricefeed.Service
	Events        storage.EventStore
}

// New builds a fully initialised application around the contract facade.
func New(cfg *config.Config, facade *bitreon.Facade, stores Stores, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if facade == nil {
		return nil, fmt.Errorf("contract facade is required")
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Payments == nil {
		stores.Payments = mem
	}
	if stores.Events == nil {
		stores.Events = mem
	}

	app := &Application{
		manager:  system.NewManager(),
		log:      log,
		Contract: facade,
		Events:   stores.Events,
	}

	sessionManager, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("configure sessions: %w", err)
	}
	app.Sessions = sessionManager

	cache, err := app.newStatusCache(cfg)
	if err != nil {
		return nil, err
	}

	app.Creators = creators.New(facade, log)
	app.Subscriptions = subscriptions.New(facade, cache, log)
	app.Payments = payments.New(facade, stores.Payments, log)
	app.Access = access.New(app.Subscriptions, log)

	app.Prices = pricefeed.New(nil, log)
	if endpoint := strings.TrimSpace(cfg.PriceFeedURL); endpoint != "" {
		httpClient := &http.Client{Timeout: 10 * time.Second}
		fetcher, err := pricefeed.NewCoinGeckoFetcher(httpClient, endpoint, log)
		if err != nil {
			log.WithError(err).Warn("configure btc price fetcher")
		} else {
			app.Prices = pricefeed.New(fetcher, log)
			refresher := pricefeed.NewRefresher(app.Prices, cfg.PriceRefreshEvery, log)
			if err := app.manager.Register(refresher); err != nil {
				return nil, fmt.Errorf("register %s: %w", refresher.Name(), err)
			}
		}
	} else {
		log.Warn("BTC_PRICE_FEED_URL not set; serving the fallback btc price")
	}

	return app, nil
}

// newStatusCache picks the subscription status cache backend. With REDIS_URL
// set the cache is shared across instances; otherwise it is in-process.
func (a *Application) newStatusCache(cfg *config.Config) (subscriptions.StatusCache, error) {
	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		cache, err := subscriptions.NewRedisCache(url, cfg.CacheTTL, a.log)
		if err != nil {
			return nil, fmt.Errorf("configure redis cache: %w", err)
		}
		a.closers = append(a.closers, cache.Close)
		a.log.WithField("ttl", cfg.CacheTTL.String()).Info("using redis subscription status cache")
		return cache, nil
	}
	return subscriptions.NewMemoryCache(cfg.CacheTTL), nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services and releases held connections.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	for _, close := range a.closers {
		if cerr := close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
