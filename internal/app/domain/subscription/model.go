// Package subscription defines the time-bounded grant from a subscriber to a
// creator.
package subscription

import "time"

// Subscription is the on-ledger record of one subscriber's grant to one
// creator. At most one active subscription exists per (subscriber, creator)
// pair; the ledger never proactively expires records, so validity must be
// re-derived from ExpiresAt on every read.
type Subscription struct {
	ID          uint64 `json:"id"`
	Subscriber  string `json:"subscriber"`
	CreatorID   uint64 `json:"creator_id"`
	AmountPaid  uint64 `json:"amount_paid"` // micro-STX
	ExpiresAt   int64  `json:"expires_at"`  // unix seconds
	Active      bool   `json:"active"`
	AutoRenew   bool   `json:"auto_renew"`
	CreatedAt   int64  `json:"created_at"`
	LastRenewed int64  `json:"last_renewed"`
	Metadata    string `json:"metadata,omitempty"`
}

// ValidAt reports whether the subscription grants access at the given time.
// Expiration dominates the stored active flag: a record still marked active
// but past its expiry is not valid.
func (s Subscription) ValidAt(now time.Time) bool {
	return s.Active && s.ExpiresAt > now.Unix()
}
