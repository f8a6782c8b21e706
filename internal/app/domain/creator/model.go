// Package creator defines the creator registry domain records.
package creator

import (
	"strings"

	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
)

// Creator is a content publisher registered on the ledger. Exactly one owning
// principal exists per record; the BNS name is the public identifier used in
// URLs, distinct from the numeric ID assigned by the contract.
type Creator struct {
	ID                uint64 `json:"id"`
	BNSName           string `json:"bns_name"`
	DisplayName       string `json:"display_name"`
	Bio               string `json:"bio"`
	Category          string `json:"category"`
	SubscriptionPrice uint64 `json:"subscription_price"` // micro-STX
	Benefits          string `json:"benefits"`
	Active            bool   `json:"active"`
	Owner             string `json:"owner"`
	CreatedAt         uint64 `json:"created_at"`
	UpdatedAt         uint64 `json:"updated_at"`
}

// Registration is the validated input for registering a creator.
type Registration struct {
	BNSName           string `json:"bns_name"`
	DisplayName       string `json:"display_name"`
	Bio               string `json:"bio"`
	Category          string `json:"category"`
	SubscriptionPrice uint64 `json:"subscription_price"` // micro-STX
	Benefits          string `json:"benefits"`
	Owner             string `json:"owner"`
	Metadata          string `json:"metadata,omitempty"`
}

// Validate checks a registration before any network call is made.
func (r Registration) Validate() validation.FieldErrors {
	var errs validation.FieldErrors

	if strings.TrimSpace(r.BNSName) == "" {
		errs = errs.Add("bns_name", "is required")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		errs = errs.Add("display_name", "is required")
	}
	if strings.TrimSpace(r.Owner) == "" {
		errs = errs.Add("owner", "is required")
	}
	if r.SubscriptionPrice == 0 {
		errs = errs.Add("subscription_price", "must be a positive number")
	}
	return errs
}
