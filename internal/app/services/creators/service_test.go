package creators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/internal/session"
)

type fakeFacade struct {
	byID     map[uint64]*creator.Creator
	byHandle map[string]*creator.Creator
	page     []creator.Creator
	pageArgs [][2]uint64

	registrations []creator.Registration
}

func (f *fakeFacade) GetCreator(_ context.Context, id uint64) (*creator.Creator, error) {
	return f.byID[id], nil
}

func (f *fakeFacade) GetCreatorByHandle(_ context.Context, bns string) (*creator.Creator, error) {
	return f.byHandle[bns], nil
}

func (f *fakeFacade) GetCreatorByOwner(_ context.Context, owner string) (*creator.Creator, error) {
	for _, c := range f.byID {
		if c.Owner == owner {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeFacade) ListCreatorsPage(_ context.Context, offset, limit uint64) ([]creator.Creator, error) {
	f.pageArgs = append(f.pageArgs, [2]uint64{offset, limit})
	return f.page, nil
}

func (f *fakeFacade) RegisterCreator(_ context.Context, reg creator.Registration) (*bitreon.TransactionReceipt, error) {
	f.registrations = append(f.registrations, reg)
	return &bitreon.TransactionReceipt{TxID: "0xreg", Status: chain.TxPending, SubmittedAt: time.Now()}, nil
}

func TestRegisterTakesOwnerFromSession(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, nil)

	sess, err := session.Connect("STOWNER", "testnet")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	receipt, err := svc.Register(context.Background(), sess, creator.Registration{
		BNSName:           "alice.btc",
		DisplayName:       "Alice",
		Category:          "art",
		SubscriptionPrice: 1000,
		Owner:             "STSPOOFED",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if receipt.Status != chain.TxPending {
		t.Fatalf("expected pending receipt, got %s", receipt.Status)
	}
	if got := facade.registrations[0].Owner; got != "STOWNER" {
		t.Fatalf("owner must come from the session, got %q", got)
	}
}

func TestRegisterValidatesBeforeBroadcast(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, nil)

	sess, _ := session.Connect("STOWNER", "testnet")
	_, err := svc.Register(context.Background(), sess, creator.Registration{
		DisplayName: "No Handle",
	})

	var fieldErrs validation.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(facade.registrations) != 0 {
		t.Fatal("invalid registration must not be broadcast")
	}
}

func TestRegisterRequiresSignIn(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, nil)

	if _, err := svc.Register(context.Background(), session.Anonymous(), creator.Registration{
		BNSName: "alice.btc", DisplayName: "Alice", SubscriptionPrice: 1000,
	}); err == nil {
		t.Fatal("expected error for anonymous session")
	}
}

func TestGetByHandleAbsence(t *testing.T) {
	svc := New(&fakeFacade{byHandle: map[string]*creator.Creator{}}, nil)

	c, err := svc.GetByHandle(context.Background(), "ghost.btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Fatal("absent creator must be nil, nil")
	}
}

func TestListClampsLimit(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, nil)

	if _, err := svc.List(context.Background(), 0, 0); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.List(context.Background(), 10, 500); err != nil {
		t.Fatalf("list: %v", err)
	}

	if facade.pageArgs[0][1] != DefaultPageLimit {
		t.Fatalf("zero limit must default, got %d", facade.pageArgs[0][1])
	}
	if facade.pageArgs[1][1] != MaxPageLimit {
		t.Fatalf("oversized limit must be clamped, got %d", facade.pageArgs[1][1])
	}
}

func TestListNeverReturnsNilSlice(t *testing.T) {
	svc := New(&fakeFacade{page: nil}, nil)

	page, err := svc.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Creators == nil {
		t.Fatal("empty page must serialize as [], not null")
	}
}
