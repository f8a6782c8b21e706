// Package creators exposes creator profile registration and lookup on top of
// the contract facade.
package creators

import (
	"context"
	"fmt"

	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/session"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// DefaultPageLimit bounds a creator directory page when the caller does not
// ask for a size.
const DefaultPageLimit = 20

// MaxPageLimit caps a single directory read.
const MaxPageLimit = 100

// ContractFacade is the slice of the contract boundary this service uses.
type ContractFacade interface {
	GetCreator(ctx context.Context, creatorID uint64) (*creator.Creator, error)
	GetCreatorByHandle(ctx context.Context, bnsName string) (*creator.Creator, error)
	GetCreatorByOwner(ctx context.Context, owner string) (*creator.Creator, error)
	ListCreatorsPage(ctx context.Context, offset, limit uint64) ([]creator.Creator, error)
	RegisterCreator(ctx context.Context, reg creator.Registration) (*bitreon.TransactionReceipt, error)
}

// Service mediates creator registration and directory lookups.
type Service struct {
	facade ContractFacade
	log    *logger.Logger
}

// New constructs a creator service.
func New(facade ContractFacade, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("creators")
	}
	return &Service{facade: facade, log: log}
}

// Register validates the registration and broadcasts it. The owner principal
// is taken from the session, never from the request body.
func (s *Service) Register(ctx context.Context, sess session.Session, reg creator.Registration) (*bitreon.TransactionReceipt, error) {
	if !sess.SignedIn() {
		return nil, fmt.Errorf("wallet not connected")
	}
	reg.Owner = sess.Principal

	if errs := reg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	receipt, err := s.facade.RegisterCreator(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.log.WithField("bns_name", reg.BNSName).
		WithField("owner", reg.Owner).
		WithField("tx_id", receipt.TxID).
		Info("creator registration submitted")
	return receipt, nil
}

// Get resolves a creator by numeric id. Absence is (nil, nil).
func (s *Service) Get(ctx context.Context, creatorID uint64) (*creator.Creator, error) {
	return s.facade.GetCreator(ctx, creatorID)
}

// GetByHandle resolves a creator by BNS name. Absence is (nil, nil).
func (s *Service) GetByHandle(ctx context.Context, bnsName string) (*creator.Creator, error) {
	if bnsName == "" {
		return nil, fmt.Errorf("bns name is required")
	}
	return s.facade.GetCreatorByHandle(ctx, bnsName)
}

// GetByOwner resolves the creator profile owned by a wallet principal.
// Absence is (nil, nil).
func (s *Service) GetByOwner(ctx context.Context, owner string) (*creator.Creator, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner principal is required")
	}
	return s.facade.GetCreatorByOwner(ctx, owner)
}

// Page is one slice of the creator directory.
type Page struct {
	Creators []creator.Creator `json:"creators"`
	Offset   uint64            `json:"offset"`
	Limit    uint64            `json:"limit"`
}

// List returns one page of the creator directory. The limit is clamped to
// MaxPageLimit and defaults when zero.
func (s *Service) List(ctx context.Context, offset, limit uint64) (*Page, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	creators, err := s.facade.ListCreatorsPage(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if creators == nil {
		creators = []creator.Creator{}
	}
	return &Page{Creators: creators, Offset: offset, Limit: limit}, nil
}
