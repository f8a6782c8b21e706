package bitreon

import (
	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/app/domain/subscription"
	"github.com/bitreon-labs/bitreon/internal/chain"
)

// =============================================================================
// Record Decoders
// =============================================================================
//
// Shape validation happens exactly once, here. The contract's tuple field
// names are its ABI; nothing past this file sees a raw Clarity value.

func decodeOptionalCreator(v chain.Value) (*creator.Creator, error) {
	inner, err := chain.ParseOptional(v)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	c, err := decodeCreator(*inner)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeCreator(v chain.Value) (creator.Creator, error) {
	fields, err := chain.ParseTuple(v)
	if err != nil {
		return creator.Creator{}, err
	}

	var c creator.Creator
	if c.BNSName, err = stringField(fields, "bns-name"); err != nil {
		return creator.Creator{}, err
	}
	if c.DisplayName, err = stringField(fields, "display-name"); err != nil {
		return creator.Creator{}, err
	}
	if c.Bio, err = stringField(fields, "bio"); err != nil {
		return creator.Creator{}, err
	}
	if c.Category, err = stringField(fields, "category"); err != nil {
		return creator.Creator{}, err
	}
	if c.SubscriptionPrice, err = uintField(fields, "subscription-price"); err != nil {
		return creator.Creator{}, err
	}
	if c.Benefits, err = stringField(fields, "benefits"); err != nil {
		return creator.Creator{}, err
	}
	if c.Active, err = boolField(fields, "active"); err != nil {
		return creator.Creator{}, err
	}
	if c.Owner, err = principalField(fields, "owner"); err != nil {
		return creator.Creator{}, err
	}
	if c.CreatedAt, err = uintField(fields, "created-at"); err != nil {
		return creator.Creator{}, err
	}
	// updated-at was added in a later contract revision; tolerate absence.
	if _, ok := fields["updated-at"]; ok {
		if c.UpdatedAt, err = uintField(fields, "updated-at"); err != nil {
			return creator.Creator{}, err
		}
	}
	if id, ok := fields["creator-id"]; ok {
		if c.ID, err = chain.ParseUint(id); err != nil {
			return creator.Creator{}, err
		}
	}
	return c, nil
}

func decodeCreatorList(v chain.Value) ([]creator.Creator, error) {
	items, err := chain.ParseList(v)
	if err != nil {
		return nil, err
	}
	creators := make([]creator.Creator, 0, len(items))
	for _, item := range items {
		c, err := decodeCreator(item)
		if err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}
	return creators, nil
}

func decodeOptionalSubscription(v chain.Value) (*subscription.Subscription, error) {
	inner, err := chain.ParseOptional(v)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	fields, err := chain.ParseTuple(*inner)
	if err != nil {
		return nil, err
	}

	var s subscription.Subscription
	if s.Subscriber, err = principalField(fields, "subscriber"); err != nil {
		return nil, err
	}
	if s.CreatorID, err = uintField(fields, "creator-id"); err != nil {
		return nil, err
	}
	if s.AmountPaid, err = uintField(fields, "amount-paid"); err != nil {
		return nil, err
	}
	expires, err := uintField(fields, "expires-at")
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = int64(expires)
	if s.Active, err = boolField(fields, "active"); err != nil {
		return nil, err
	}
	created, err := uintField(fields, "created-at")
	if err != nil {
		return nil, err
	}
	s.CreatedAt = int64(created)
	if _, ok := fields["last-renewed"]; ok {
		renewed, err := uintField(fields, "last-renewed")
		if err != nil {
			return nil, err
		}
		s.LastRenewed = int64(renewed)
	}
	if _, ok := fields["auto-renew"]; ok {
		if s.AutoRenew, err = boolField(fields, "auto-renew"); err != nil {
			return nil, err
		}
	}
	if id, ok := fields["subscription-id"]; ok {
		if s.ID, err = chain.ParseUint(id); err != nil {
			return nil, err
		}
	}
	if meta, ok := fields["metadata"]; ok {
		inner, err := chain.ParseOptional(meta)
		if err == nil && inner != nil {
			if s.Metadata, err = chain.ParseString(*inner); err != nil {
				return nil, err
			}
		}
	}
	return &s, nil
}

func decodeContractInfo(v chain.Value) (*ContractInfo, error) {
	fields, err := chain.ParseTuple(v)
	if err != nil {
		return nil, err
	}

	var info ContractInfo
	if info.Name, err = stringField(fields, "name"); err != nil {
		return nil, err
	}
	if info.Version, err = stringField(fields, "version"); err != nil {
		return nil, err
	}
	if info.Description, err = stringField(fields, "description"); err != nil {
		return nil, err
	}
	if info.NFTStandard, err = stringField(fields, "nft-standard"); err != nil {
		return nil, err
	}
	if info.ContractOwner, err = principalField(fields, "contract-owner"); err != nil {
		return nil, err
	}
	if info.IsPaused, err = boolField(fields, "is-paused"); err != nil {
		return nil, err
	}
	return &info, nil
}

func decodeOptionalNFTBadge(v chain.Value) (*NFTBadge, error) {
	inner, err := chain.ParseOptional(v)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	fields, err := chain.ParseTuple(*inner)
	if err != nil {
		return nil, err
	}

	var b NFTBadge
	if b.Owner, err = principalField(fields, "owner"); err != nil {
		return nil, err
	}
	if b.CreatorID, err = uintField(fields, "creator-id"); err != nil {
		return nil, err
	}
	if b.SubscriptionID, err = uintField(fields, "subscription-id"); err != nil {
		return nil, err
	}
	if b.MintedAt, err = uintField(fields, "minted-at"); err != nil {
		return nil, err
	}
	if meta, ok := fields["metadata"]; ok {
		inner, err := chain.ParseOptional(meta)
		if err == nil && inner != nil {
			if b.Metadata, err = chain.ParseString(*inner); err != nil {
				return nil, err
			}
		}
	}
	return &b, nil
}

// =============================================================================
// Field Helpers
// =============================================================================

func stringField(fields map[string]chain.Value, name string) (string, error) {
	v, err := chain.TupleField(fields, name)
	if err != nil {
		return "", err
	}
	return chain.ParseString(v)
}

func uintField(fields map[string]chain.Value, name string) (uint64, error) {
	v, err := chain.TupleField(fields, name)
	if err != nil {
		return 0, err
	}
	return chain.ParseUint(v)
}

func boolField(fields map[string]chain.Value, name string) (bool, error) {
	v, err := chain.TupleField(fields, name)
	if err != nil {
		return false, err
	}
	return chain.ParseBool(v)
}

func principalField(fields map[string]chain.Value, name string) (string, error) {
	v, err := chain.TupleField(fields, name)
	if err != nil {
		return "", err
	}
	return chain.ParsePrincipal(v)
}
