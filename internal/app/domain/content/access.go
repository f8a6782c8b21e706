// Package content defines content tiers and the access-control policy applied
// to them.
package content

import "fmt"

// Tier classifies a piece of content.
type Tier string

const (
	TierFree      Tier = "free"
	TierPremium   Tier = "premium"
	TierExclusive Tier = "exclusive"
)

// ParseTier validates a tier string. An empty string defaults to premium,
// matching the gating default for untagged content.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierPremium, TierExclusive:
		return Tier(s), nil
	case "":
		return TierPremium, nil
	default:
		return "", fmt.Errorf("unknown content tier %q", s)
	}
}

// Label returns the display label for a tier.
func (t Tier) Label() string {
	switch t {
	case TierFree:
		return "Free"
	case TierPremium:
		return "Premium"
	case TierExclusive:
		return "Exclusive"
	default:
		return "Unknown"
	}
}

// Verdict is the computed access decision for one viewer and one piece of
// content. It is ephemeral and recomputed on every request.
type Verdict struct {
	CanView    bool   `json:"can_view"`
	CanComment bool   `json:"can_comment"`
	CanLike    bool   `json:"can_like"`
	Reason     string `json:"reason,omitempty"`
}

// Denial reasons. The exclusive tier deliberately carries no sign-in-specific
// message: an unsigned viewer is definitionally unsubscribed, so the
// unsubscribed reason covers both cases.
const (
	ReasonConnectWallet  = "Please connect your wallet to access premium content"
	ReasonSubscribe      = "Subscribe to access this premium content"
	ReasonExclusiveOnly  = "This exclusive content is only available to subscribers"
	ReasonUnknownContent = "Access denied"
)

// CheckAccess computes the access verdict for content of the given tier. It
// is a pure function over pre-resolved inputs and never touches the network.
//
//	tier       signed in   subscribed   view   comment  like
//	free       any         any          yes    =signed  =signed
//	premium    no          -            no     no       no
//	premium    yes         no           no     no       no
//	premium    yes         yes          yes    yes      yes
//	exclusive  any         no           no     no       no
//	exclusive  any         yes          yes    yes      yes
func CheckAccess(tier Tier, isSignedIn, isSubscribed bool) Verdict {
	switch tier {
	case TierFree:
		return Verdict{
			CanView:    true,
			CanComment: isSignedIn,
			CanLike:    isSignedIn,
		}

	case TierPremium:
		if !isSignedIn {
			return Verdict{Reason: ReasonConnectWallet}
		}
		if !isSubscribed {
			return Verdict{Reason: ReasonSubscribe}
		}
		return Verdict{CanView: true, CanComment: true, CanLike: true}

	case TierExclusive:
		if !isSubscribed {
			return Verdict{Reason: ReasonExclusiveOnly}
		}
		return Verdict{CanView: true, CanComment: true, CanLike: true}

	default:
		return Verdict{Reason: ReasonUnknownContent}
	}
}
