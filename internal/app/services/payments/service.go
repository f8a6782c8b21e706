// Package payments handles sBTC transfers, payment links, and the merchant
// payment history kept off-chain.
package payments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bitreon-labs/bitreon/internal/app/domain/payment"
	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
	"github.com/bitreon-labs/bitreon/internal/app/storage"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/internal/session"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// DefaultLinkTTL is how long a payment link stays payable when the creator
// does not pick an expiry.
const DefaultLinkTTL = 24 * time.Hour

// monthlyWindow is the trailing window for the dashboard's monthly revenue.
const monthlyWindow = 30 * 24 * time.Hour

// ContractFacade is the slice of the contract boundary this service uses.
type ContractFacade interface {
	TransferSBTC(ctx context.Context, sender, recipient string, amountSats uint64, memo string) (*bitreon.TransactionReceipt, error)
	GetTransactionStatus(ctx context.Context, txID string) (chain.TxStatus, error)
}

// Service submits sBTC transfers and keeps the off-chain payment ledger.
type Service struct {
	facade ContractFacade
	store  storage.PaymentStore
	log    *logger.Logger
	now    func() time.Time
}

// New constructs a payment service.
func New(facade ContractFacade, store storage.PaymentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Service{
		facade: facade,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TransferRequest is the validated input for an sBTC transfer.
type TransferRequest struct {
	CreatorID  uint64 `json:"creator_id"`
	Recipient  string `json:"recipient"`
	AmountSats uint64 `json:"amount_sats"`
	Memo       string `json:"memo,omitempty"`
}

func (r TransferRequest) validate() validation.FieldErrors {
	var errs validation.FieldErrors
	if r.Recipient == "" {
		errs = errs.Add("recipient", "is required")
	}
	if r.AmountSats == 0 {
		errs = errs.Add("amount_sats", "must be positive")
	}
	return errs
}

// Transfer broadcasts an sBTC transfer and records a pending payment keyed by
// the transaction id.
func (s *Service) Transfer(ctx context.Context, sess session.Session, req TransferRequest) (*payment.Payment, error) {
	if !sess.SignedIn() {
		return nil, fmt.Errorf("wallet not connected")
	}
	if errs := req.validate(); len(errs) > 0 {
		return nil, errs
	}

	receipt, err := s.facade.TransferSBTC(ctx, sess.Principal, req.Recipient, req.AmountSats, req.Memo)
	if err != nil {
		return nil, err
	}

	p, err := s.store.CreatePayment(ctx, payment.Payment{
		ID:         receipt.TxID,
		CreatorID:  req.CreatorID,
		Subscriber: sess.Principal,
		Recipient:  req.Recipient,
		AmountSats: req.AmountSats,
		Memo:       req.Memo,
		Status:     payment.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.log.WithField("tx_id", p.ID).
		WithField("amount_sats", p.AmountSats).
		WithField("recipient", p.Recipient).
		Info("sbtc transfer submitted")
	return &p, nil
}

// Get returns a payment record by transaction id.
func (s *Service) Get(ctx context.Context, txID string) (*payment.Payment, error) {
	p, err := s.store.GetPayment(ctx, txID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Refresh re-reads the transaction status from the chain and advances the
// stored payment. Terminal records are left untouched.
func (s *Service) Refresh(ctx context.Context, txID string) (*payment.Payment, error) {
	p, err := s.store.GetPayment(ctx, txID)
	if err != nil {
		return nil, err
	}
	if p.Status != payment.StatusPending {
		return &p, nil
	}

	status, err := s.facade.GetTransactionStatus(ctx, txID)
	if err != nil {
		return nil, err
	}

	var next payment.Status
	switch status {
	case chain.TxConfirmed:
		next = payment.StatusConfirmed
	case chain.TxFailed:
		next = payment.StatusFailed
	default:
		return &p, nil
	}

	p, err = s.store.UpdatePaymentStatus(ctx, txID, next)
	if err != nil {
		return nil, err
	}
	s.log.WithField("tx_id", txID).WithField("status", string(next)).Info("payment status advanced")
	return &p, nil
}

// MarkStatus force-sets a payment's status. Used by the webhook handler when
// the chain watcher reports a terminal state.
func (s *Service) MarkStatus(ctx context.Context, txID string, status payment.Status) (*payment.Payment, error) {
	p, err := s.store.UpdatePaymentStatus(ctx, txID, status)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// History lists a subscriber's payments, newest first.
func (s *Service) History(ctx context.Context, subscriber string) ([]payment.Payment, error) {
	out, err := s.store.ListPaymentsBySubscriber(ctx, subscriber)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

// EstimateFee returns the network fee for a BTC amount.
func (s *Service) EstimateFee(amountBTC float64) float64 {
	return payment.EstimateFee(amountBTC)
}

// =============================================================================
// Payment Links
// =============================================================================

// LinkRequest is the validated input for creating a payment link.
type LinkRequest struct {
	CreatorID uint64        `json:"creator_id"`
	AmountBTC float64       `json:"amount_btc"`
	Currency  string        `json:"currency,omitempty"`
	Memo      string        `json:"description,omitempty"`
	TTL       time.Duration `json:"-"`
}

// CreateLink mints a shareable payment link. Zero TTL falls back to
// DefaultLinkTTL.
func (s *Service) CreateLink(ctx context.Context, req LinkRequest) (*payment.Link, error) {
	var errs validation.FieldErrors
	if req.CreatorID == 0 {
		errs = errs.Add("creator_id", "is required")
	}
	if req.AmountBTC <= 0 {
		errs = errs.Add("amount_btc", "must be positive")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if req.Currency == "" {
		req.Currency = "BTC"
	}
	if req.TTL <= 0 {
		req.TTL = DefaultLinkTTL
	}

	link, err := s.store.CreateLink(ctx, payment.Link{
		ID:        uuid.NewString(),
		CreatorID: req.CreatorID,
		AmountBTC: req.AmountBTC,
		Currency:  req.Currency,
		Memo:      req.Memo,
		ExpiresAt: s.now().UTC().Add(req.TTL),
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLink resolves a payment link. Expired links return an error so callers
// never render a payable page for one.
func (s *Service) GetLink(ctx context.Context, id string) (*payment.Link, error) {
	link, err := s.store.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.now()) {
		return nil, fmt.Errorf("payment link %s has expired", id)
	}
	return &link, nil
}

// =============================================================================
// Merchant Stats
// =============================================================================

// Stats aggregates a creator's payment history for the dashboard. Only
// confirmed payments count toward revenue.
func (s *Service) Stats(ctx context.Context, creatorID uint64) (*payment.Stats, error) {
	records, err := s.store.ListPaymentsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	monthStart := s.now().Add(-monthlyWindow)
	payers := make(map[string]struct{})
	stats := &payment.Stats{TotalPayments: len(records)}

	for _, p := range records {
		if p.Status != payment.StatusConfirmed {
			continue
		}
		stats.ConfirmedPayments++
		amountBTC := payment.SatoshisToBTC(p.AmountSats)
		stats.TotalRevenueBTC += amountBTC
		if p.CreatedAt.After(monthStart) {
			stats.MonthlyRevenueBTC += amountBTC
		}
		payers[p.Subscriber] = struct{}{}
	}
	stats.UniquePayers = len(payers)
	return stats, nil
}

func sortNewestFirst(payments []payment.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}
