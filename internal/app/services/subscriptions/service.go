// Package subscriptions resolves and mutates subscription state through the
// contract facade, memoizing lookups per viewer.
package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/app/domain/subscription"
	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/session"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// ContractFacade is the slice of the contract boundary this service uses.
type ContractFacade interface {
	GetCreator(ctx context.Context, creatorID uint64) (*creator.Creator, error)
	GetUserSubscription(ctx context.Context, subscriber string, creatorID uint64) (*subscription.Subscription, error)
	Subscribe(ctx context.Context, subscriber string, creatorID, durationBlocks uint64, autoRenew bool, metadata string) (*bitreon.TransactionReceipt, error)
	RenewSubscription(ctx context.Context, subscriber string, creatorID, durationBlocks uint64) (*bitreon.TransactionReceipt, error)
	CancelSubscription(ctx context.Context, subscriber string, creatorID uint64) (*bitreon.TransactionReceipt, error)
}

// Service mediates between callers and the subscription operations of the
// contract.
type Service struct {
	facade ContractFacade
	cache  StatusCache
	log    *logger.Logger
	now    func() time.Time
}

// New constructs a subscription service. A nil cache disables memoization.
func New(facade ContractFacade, cache StatusCache, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("subscriptions")
	}
	return &Service{
		facade: facade,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubscribeRequest is the validated input for a subscribe operation.
type SubscribeRequest struct {
	CreatorID      uint64 `json:"creator_id"`
	DurationBlocks uint64 `json:"duration_blocks"`
	AmountMicroSTX uint64 `json:"amount"` // micro-STX offered by the subscriber
	AutoRenew      bool   `json:"auto_renew"`
	Metadata       string `json:"metadata,omitempty"`
}

func (r SubscribeRequest) validate() validation.FieldErrors {
	var errs validation.FieldErrors
	if r.CreatorID == 0 {
		errs = errs.Add("creator_id", "is required")
	}
	if r.DurationBlocks == 0 {
		errs = errs.Add("duration_blocks", "must be positive")
	}
	if r.AmountMicroSTX == 0 {
		errs = errs.Add("amount", "must be positive")
	}
	return errs
}

// Subscribe validates the request against the creator's current price and
// broadcasts the subscribe transaction. Underpayment is a validation failure
// rejected before the write call, not a contract rejection. The status cache
// entry for the pair is invalidated on submission.
func (s *Service) Subscribe(ctx context.Context, sess session.Session, req SubscribeRequest) (*bitreon.TransactionReceipt, error) {
	if !sess.SignedIn() {
		return nil, fmt.Errorf("wallet not connected")
	}
	if errs := req.validate(); len(errs) > 0 {
		return nil, errs
	}

	c, err := s.facade.GetCreator(ctx, req.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("resolve creator: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("creator %d not found", req.CreatorID)
	}
	if !c.Active {
		return nil, validation.FieldErrors{}.Add("creator_id", "creator is not active")
	}
	if req.AmountMicroSTX < c.SubscriptionPrice {
		return nil, validation.FieldErrors{}.Add("amount",
			fmt.Sprintf("must be at least the subscription price of %d", c.SubscriptionPrice))
	}

	receipt, err := s.facade.Subscribe(ctx, sess.Principal, req.CreatorID, req.DurationBlocks, req.AutoRenew, req.Metadata)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sess.Principal, req.CreatorID)
	s.log.WithField("creator_id", req.CreatorID).
		WithField("subscriber", sess.Principal).
		WithField("tx_id", receipt.TxID).
		Info("subscribe submitted")
	return receipt, nil
}

// Renew extends an existing subscription and invalidates the cached status.
func (s *Service) Renew(ctx context.Context, sess session.Session, creatorID, durationBlocks uint64) (*bitreon.TransactionReceipt, error) {
	if !sess.SignedIn() {
		return nil, fmt.Errorf("wallet not connected")
	}
	if durationBlocks == 0 {
		return nil, validation.FieldErrors{}.Add("duration_blocks", "must be positive")
	}

	receipt, err := s.facade.RenewSubscription(ctx, sess.Principal, creatorID, durationBlocks)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sess.Principal, creatorID)
	return receipt, nil
}

// Cancel deactivates the caller's subscription and invalidates the cached
// status.
func (s *Service) Cancel(ctx context.Context, sess session.Session, creatorID uint64) (*bitreon.TransactionReceipt, error) {
	if !sess.SignedIn() {
		return nil, fmt.Errorf("wallet not connected")
	}

	receipt, err := s.facade.CancelSubscription(ctx, sess.Principal, creatorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sess.Principal, creatorID)
	return receipt, nil
}

// Status resolves whether the subscriber currently holds a valid subscription
// to the creator, consulting the cache first. Validity is re-derived from the
// record's expiration on every resolution; read failures propagate instead of
// degrading to "not subscribed".
func (s *Service) Status(ctx context.Context, subscriber string, creatorID uint64) (Status, error) {
	if s.cache != nil {
		if st, ok := s.cache.Get(ctx, subscriber, creatorID); ok {
			return st, nil
		}
	}

	sub, err := s.facade.GetUserSubscription(ctx, subscriber, creatorID)
	if err != nil {
		return Status{}, err
	}

	now := s.now()
	st := Status{ResolvedAt: now.UTC()}
	if sub != nil {
		st.Subscription = sub
		st.Subscribed = sub.ValidAt(now)
	}

	if s.cache != nil {
		s.cache.Set(ctx, subscriber, creatorID, st)
	}
	return st, nil
}

// Get returns the raw subscription record, bypassing the cache. Absence is a
// nil record.
func (s *Service) Get(ctx context.Context, subscriber string, creatorID uint64) (*subscription.Subscription, error) {
	return s.facade.GetUserSubscription(ctx, subscriber, creatorID)
}

// Invalidate drops the cached status for the pair. Called when external
// events (webhooks) report a change the backend did not itself submit.
func (s *Service) Invalidate(ctx context.Context, subscriber string, creatorID uint64) {
	s.invalidate(ctx, subscriber, creatorID)
}

func (s *Service) invalidate(ctx context.Context, subscriber string, creatorID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, subscriber, creatorID)
	}
}
