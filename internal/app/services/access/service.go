// Package access resolves content access decisions for a viewer, combining
// wallet session state with on-chain subscription status.
package access

import (
	"context"

	"github.com/bitreon-labs/bitreon/internal/app/domain/content"
	"github.com/bitreon-labs/bitreon/internal/app/services/subscriptions"
	"github.com/bitreon-labs/bitreon/internal/session"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// StatusResolver resolves whether a subscriber holds a valid subscription to
// a creator.
type StatusResolver interface {
	Status(ctx context.Context, subscriber string, creatorID uint64) (subscriptions.Status, error)
}

// Service computes per-request access verdicts.
type Service struct {
	statuses StatusResolver
	log      *logger.Logger
}

// New constructs an access service.
func New(statuses StatusResolver, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("access")
	}
	return &Service{statuses: statuses, log: log}
}

// Check computes the access verdict for a viewer against content of the given
// tier owned by the creator. Subscription status is only resolved when the
// decision depends on it: free content and signed-out premium viewers are
// decided without any contract read.
func (s *Service) Check(ctx context.Context, sess session.Session, creatorID uint64, tier content.Tier) (content.Verdict, error) {
	signedIn := sess.SignedIn()

	if !needsSubscription(tier, signedIn) {
		return content.CheckAccess(tier, signedIn, false), nil
	}

	st, err := s.statuses.Status(ctx, sess.Principal, creatorID)
	if err != nil {
		return content.Verdict{}, err
	}
	return content.CheckAccess(tier, signedIn, st.Subscribed), nil
}

// needsSubscription reports whether the verdict can change based on
// subscription status.
func needsSubscription(tier content.Tier, signedIn bool) bool {
	switch tier {
	case content.TierFree:
		return false
	case content.TierPremium:
		return signedIn
	case content.TierExclusive:
		return signedIn
	default:
		return false
	}
}
