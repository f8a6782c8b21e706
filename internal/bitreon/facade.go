// Package bitreon is the sole boundary between domain code and the
// bitreon-core contract on the Stacks ledger.
//
// Reads are idempotent and side-effect free; absence decodes as a nil record
// with a nil error, distinct from transport or decode failures. Writes return
// immediately with a pending transaction receipt and never block waiting for
// finality; confirmation is observed only through explicit status polling.
package bitreon

import (
	"context"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/app/domain/subscription"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// Caller is the node transport the facade invokes. *chain.Client implements it.
type Caller interface {
	CallReadOnly(ctx context.Context, contractAddr, contractName, function, sender string, args []chain.Arg) (chain.Value, error)
	BroadcastContractCall(ctx context.Context, call chain.ContractCall) (string, error)
	GetTransactionStatus(ctx context.Context, txID string) (chain.TxStatus, error)
	WaitForTransaction(ctx context.Context, txID string, pollInterval time.Duration) (chain.TxStatus, error)
}

// Config locates the deployed contracts.
type Config struct {
	ContractAddress  string
	ContractName     string // "bitreon-core"
	SBTCAddress      string
	SBTCContractName string // "Wrapped-Bitcoin"
}

// Facade translates domain operations into contract calls and decodes the
// contract's responses into domain records.
type Facade struct {
	caller Caller
	cfg    Config
	now    func() time.Time
	log    *logger.Logger
}

// New constructs a contract facade.
func New(caller Caller, cfg Config, log *logger.Logger) *Facade {
	if log == nil {
		log = logger.NewDefault("bitreon-contract")
	}
	return &Facade{
		caller: caller,
		cfg:    cfg,
		now:    time.Now,
		log:    log,
	}
}

// WithClock overrides the time source. Intended for tests.
func (f *Facade) WithClock(now func() time.Time) *Facade {
	f.now = now
	return f
}

func (f *Facade) read(ctx context.Context, function string, args []chain.Arg) (chain.Value, error) {
	v, err := f.caller.CallReadOnly(ctx, f.cfg.ContractAddress, f.cfg.ContractName, function, f.cfg.ContractAddress, args)
	if err != nil {
		return chain.Value{}, &chain.ReadError{Op: function, Err: err}
	}
	return v, nil
}

// =============================================================================
// Creator Reads
// =============================================================================

// GetCreator reads a creator by numeric id. Returns (nil, nil) when the
// record does not exist.
func (f *Facade) GetCreator(ctx context.Context, creatorID uint64) (*creator.Creator, error) {
	v, err := f.read(ctx, "get-creator", []chain.Arg{chain.Uint(creatorID)})
	if err != nil {
		return nil, err
	}
	c, err := decodeOptionalCreator(v)
	if err != nil || c == nil {
		return c, err
	}
	c.ID = creatorID
	return c, nil
}

// GetCreatorByHandle reads a creator by BNS name, the public identifier used
// in URLs.
func (f *Facade) GetCreatorByHandle(ctx context.Context, bnsName string) (*creator.Creator, error) {
	v, err := f.read(ctx, "get-creator-by-bns", []chain.Arg{chain.StringASCII(bnsName)})
	if err != nil {
		return nil, err
	}
	return decodeOptionalCreator(v)
}

// GetCreatorByOwner reads the creator record owned by the given principal,
// answering "is this signed-in wallet a registered creator".
func (f *Facade) GetCreatorByOwner(ctx context.Context, owner string) (*creator.Creator, error) {
	v, err := f.read(ctx, "get-creator-by-owner", []chain.Arg{chain.Principal(owner)})
	if err != nil {
		return nil, err
	}
	return decodeOptionalCreator(v)
}

// ListCreatorsPage reads a page of creator records.
func (f *Facade) ListCreatorsPage(ctx context.Context, offset, limit uint64) ([]creator.Creator, error) {
	v, err := f.read(ctx, "get-creators-page", []chain.Arg{chain.Uint(offset), chain.Uint(limit)})
	if err != nil {
		return nil, err
	}
	return decodeCreatorList(v)
}

// =============================================================================
// Subscription Reads
// =============================================================================

// GetSubscription reads a subscription by numeric id.
func (f *Facade) GetSubscription(ctx context.Context, subscriptionID uint64) (*subscription.Subscription, error) {
	v, err := f.read(ctx, "get-subscription", []chain.Arg{chain.Uint(subscriptionID)})
	if err != nil {
		return nil, err
	}
	s, err := decodeOptionalSubscription(v)
	if err != nil || s == nil {
		return s, err
	}
	s.ID = subscriptionID
	return s, nil
}

// GetUserSubscription reads the subscription of one subscriber to one creator.
func (f *Facade) GetUserSubscription(ctx context.Context, subscriber string, creatorID uint64) (*subscription.Subscription, error) {
	v, err := f.read(ctx, "get-user-subscription", []chain.Arg{chain.Principal(subscriber), chain.Uint(creatorID)})
	if err != nil {
		return nil, err
	}
	return decodeOptionalSubscription(v)
}

// IsSubscribed performs the contract's own membership check. Prefer
// IsSubscriptionValid for access decisions: the ledger does not proactively
// expire records, so the contract flag alone can be stale.
func (f *Facade) IsSubscribed(ctx context.Context, subscriber string, creatorID uint64) (bool, error) {
	v, err := f.read(ctx, "is-subscribed", []chain.Arg{chain.Principal(subscriber), chain.Uint(creatorID)})
	if err != nil {
		return false, err
	}
	b, err := chain.ParseBool(v)
	if err != nil {
		return false, &chain.ReadError{Op: "is-subscribed", Err: err}
	}
	return b, nil
}

// IsSubscriptionValid re-derives validity from the stored record: the
// subscription must be active AND its expiration must be in the future.
// Absence is simply not valid, not an error.
func (f *Facade) IsSubscriptionValid(ctx context.Context, subscriber string, creatorID uint64) (bool, error) {
	sub, err := f.GetUserSubscription(ctx, subscriber, creatorID)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}
	return sub.ValidAt(f.now()), nil
}

// =============================================================================
// Contract Metadata Reads
// =============================================================================

// ContractInfo describes the deployed contract.
type ContractInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Description   string `json:"description"`
	NFTStandard   string `json:"nft_standard"`
	ContractOwner string `json:"contract_owner"`
	IsPaused      bool   `json:"is_paused"`
}

// GetContractInfo reads the contract's self-description.
func (f *Facade) GetContractInfo(ctx context.Context) (*ContractInfo, error) {
	v, err := f.read(ctx, "get-contract-info", nil)
	if err != nil {
		return nil, err
	}
	return decodeContractInfo(v)
}

// NFTBadge is the subscriber-badge NFT minted alongside a subscription.
type NFTBadge struct {
	TokenID        uint64 `json:"token_id"`
	Owner          string `json:"owner"`
	CreatorID      uint64 `json:"creator_id"`
	SubscriptionID uint64 `json:"subscription_id"`
	MintedAt       uint64 `json:"minted_at"`
	Metadata       string `json:"metadata,omitempty"`
}

// GetNFTBadge reads a subscriber badge by token id. Returns (nil, nil) when
// no badge exists.
func (f *Facade) GetNFTBadge(ctx context.Context, tokenID uint64) (*NFTBadge, error) {
	v, err := f.read(ctx, "get-nft-badge", []chain.Arg{chain.Uint(tokenID)})
	if err != nil {
		return nil, err
	}
	badge, err := decodeOptionalNFTBadge(v)
	if err != nil || badge == nil {
		return badge, err
	}
	badge.TokenID = tokenID
	return badge, nil
}

// =============================================================================
// Writes
// =============================================================================

// TransactionReceipt acknowledges a broadcast write. Status is always pending
// at submission; terminal states are observed via GetTransactionStatus.
type TransactionReceipt struct {
	TxID        string         `json:"tx_id"`
	Status      chain.TxStatus `json:"status"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

func (f *Facade) write(ctx context.Context, function, sender string, args []chain.Arg) (*TransactionReceipt, error) {
	txID, err := f.caller.BroadcastContractCall(ctx, chain.ContractCall{
		ContractAddress: f.cfg.ContractAddress,
		ContractName:    f.cfg.ContractName,
		Function:        function,
		Arguments:       args,
		Sender:          sender,
	})
	if err != nil {
		return nil, &chain.WriteError{Op: function, Err: err}
	}
	f.log.WithField("function", function).WithField("tx_id", txID).Info("transaction broadcast")
	return &TransactionReceipt{TxID: txID, Status: chain.TxPending, SubmittedAt: f.now()}, nil
}

// RegisterCreator broadcasts a register-creator transaction on behalf of the
// owner. Input validation happens before this call; the contract's argument
// order is the wire compatibility surface and must not change.
func (f *Facade) RegisterCreator(ctx context.Context, reg creator.Registration) (*TransactionReceipt, error) {
	return f.write(ctx, "register-creator", reg.Owner, []chain.Arg{
		chain.StringASCII(reg.BNSName),
		chain.StringUTF8(reg.DisplayName),
		chain.StringUTF8(reg.Bio),
		chain.StringUTF8(reg.Category),
		chain.Uint(reg.SubscriptionPrice),
		chain.StringUTF8(reg.Benefits),
		chain.StringUTF8(reg.Metadata),
	})
}

// Subscribe broadcasts a subscribe transaction for the given subscriber.
func (f *Facade) Subscribe(ctx context.Context, subscriber string, creatorID, durationBlocks uint64, autoRenew bool, metadata string) (*TransactionReceipt, error) {
	return f.write(ctx, "subscribe", subscriber, []chain.Arg{
		chain.Uint(creatorID),
		chain.Uint(durationBlocks),
		chain.Bool(autoRenew),
		chain.StringUTF8(metadata),
	})
}

// RenewSubscription extends an existing subscription.
func (f *Facade) RenewSubscription(ctx context.Context, subscriber string, creatorID, durationBlocks uint64) (*TransactionReceipt, error) {
	return f.write(ctx, "renew-subscription", subscriber, []chain.Arg{
		chain.Uint(creatorID),
		chain.Uint(durationBlocks),
	})
}

// CancelSubscription deactivates the subscriber's grant to the creator.
func (f *Facade) CancelSubscription(ctx context.Context, subscriber string, creatorID uint64) (*TransactionReceipt, error) {
	return f.write(ctx, "cancel-subscription", subscriber, []chain.Arg{
		chain.Uint(creatorID),
	})
}

// TransferSBTC broadcasts an sBTC transfer on the Wrapped-Bitcoin contract.
// The amount is in satoshis; display values never cross this boundary.
func (f *Facade) TransferSBTC(ctx context.Context, sender, recipient string, amountSats uint64, memo string) (*TransactionReceipt, error) {
	args := []chain.Arg{
		chain.Uint(amountSats),
		chain.Principal(recipient),
	}
	if memo != "" {
		args = append(args, chain.Some(chain.StringUTF8(memo)))
	} else {
		args = append(args, chain.None())
	}

	txID, err := f.caller.BroadcastContractCall(ctx, chain.ContractCall{
		ContractAddress: f.cfg.SBTCAddress,
		ContractName:    f.cfg.SBTCContractName,
		Function:        "transfer",
		Arguments:       args,
		Sender:          sender,
	})
	if err != nil {
		return nil, &chain.WriteError{Op: "transfer", Err: err}
	}
	return &TransactionReceipt{TxID: txID, Status: chain.TxPending, SubmittedAt: f.now()}, nil
}

// GetTransactionStatus reports the current status of a broadcast transaction.
func (f *Facade) GetTransactionStatus(ctx context.Context, txID string) (chain.TxStatus, error) {
	status, err := f.caller.GetTransactionStatus(ctx, txID)
	if err != nil {
		return "", &chain.ReadError{Op: "transaction-status", Err: err}
	}
	return status, nil
}

// PollTransaction polls until the transaction reaches a terminal status or
// the context is done. The facade imposes no timeout of its own.
func (f *Facade) PollTransaction(ctx context.Context, txID string, interval time.Duration) (chain.TxStatus, error) {
	return f.caller.WaitForTransaction(ctx, txID, interval)
}
