package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitreon-labs/bitreon/internal/app/domain/payment"
	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
	"github.com/bitreon-labs/bitreon/internal/app/storage/memory"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/internal/session"
)

type fakeFacade struct {
	transfers int
	status    chain.TxStatus
	statusErr error
}

func (f *fakeFacade) TransferSBTC(_ context.Context, sender, recipient string, amountSats uint64, memo string) (*bitreon.TransactionReceipt, error) {
	f.transfers++
	return &bitreon.TransactionReceipt{
		TxID:        fmt.Sprintf("0xtx%d", f.transfers),
		Status:      chain.TxPending,
		SubmittedAt: time.Now(),
	}, nil
}

func (f *fakeFacade) GetTransactionStatus(_ context.Context, txID string) (chain.TxStatus, error) {
	return f.status, f.statusErr
}

func signedIn(t *testing.T) session.Session {
	t.Helper()
	s, err := session.Connect("STSUB", "testnet")
	require.NoError(t, err)
	return s
}

func TestTransferRecordsPendingPayment(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, memory.New(), nil)

	p, err := svc.Transfer(context.Background(), signedIn(t), TransferRequest{
		CreatorID:  1,
		Recipient:  "STCREATOR",
		AmountSats: 50_000,
		Memo:       "tip",
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, "STSUB", p.Subscriber)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), stored.AmountSats)
}

func TestTransferValidation(t *testing.T) {
	facade := &fakeFacade{}
	svc := New(facade, memory.New(), nil)

	_, err := svc.Transfer(context.Background(), signedIn(t), TransferRequest{
		CreatorID: 1, AmountSats: 0, Recipient: "",
	})
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Zero(t, facade.transfers, "invalid transfer must not be broadcast")

	_, err = svc.Transfer(context.Background(), session.Anonymous(), TransferRequest{
		CreatorID: 1, Recipient: "STCREATOR", AmountSats: 1,
	})
	require.Error(t, err)
	assert.Zero(t, facade.transfers)
}

func TestRefreshAdvancesPendingPayment(t *testing.T) {
	facade := &fakeFacade{status: chain.TxConfirmed}
	svc := New(facade, memory.New(), nil)

	p, err := svc.Transfer(context.Background(), signedIn(t), TransferRequest{
		CreatorID: 1, Recipient: "STCREATOR", AmountSats: 100,
	})
	require.NoError(t, err)

	updated, err := svc.Refresh(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, updated.Status)

	// Terminal records are not re-read.
	facade.statusErr = errors.New("unreachable")
	again, err := svc.Refresh(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, again.Status)
}

func TestRefreshLeavesPendingOnPendingChainStatus(t *testing.T) {
	facade := &fakeFacade{status: chain.TxPending}
	svc := New(facade, memory.New(), nil)

	p, err := svc.Transfer(context.Background(), signedIn(t), TransferRequest{
		CreatorID: 1, Recipient: "STCREATOR", AmountSats: 100,
	})
	require.NoError(t, err)

	updated, err := svc.Refresh(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, updated.Status)
}

func TestCreateLinkDefaults(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	svc := New(&fakeFacade{}, memory.New(), nil).WithClock(func() time.Time { return now })

	link, err := svc.CreateLink(context.Background(), LinkRequest{
		CreatorID: 1,
		AmountBTC: 0.001,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, link.ID)
	assert.Equal(t, "BTC", link.Currency)
	assert.Equal(t, now.UTC().Add(DefaultLinkTTL), link.ExpiresAt)

	got, err := svc.GetLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
}

func TestGetLinkExpired(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	svc := New(&fakeFacade{}, memory.New(), nil).WithClock(func() time.Time { return now })

	link, err := svc.CreateLink(context.Background(), LinkRequest{
		CreatorID: 1, AmountBTC: 0.001, TTL: time.Hour,
	})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.GetLink(context.Background(), link.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestCreateLinkValidation(t *testing.T) {
	svc := New(&fakeFacade{}, memory.New(), nil)

	_, err := svc.CreateLink(context.Background(), LinkRequest{AmountBTC: -1})
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
}

func TestStatsCountsOnlyConfirmed(t *testing.T) {
	store := memory.New()
	facade := &fakeFacade{status: chain.TxConfirmed}
	svc := New(facade, store, nil)

	subs := []string{"STA", "STB", "STA"}
	var txIDs []string
	for _, sub := range subs {
		sess, err := session.Connect(sub, "testnet")
		require.NoError(t, err)
		p, err := svc.Transfer(context.Background(), sess, TransferRequest{
			CreatorID: 7, Recipient: "STCREATOR", AmountSats: 100_000_000, // 1 BTC
		})
		require.NoError(t, err)
		txIDs = append(txIDs, p.ID)
	}

	// Confirm the first two, fail the third.
	for _, id := range txIDs[:2] {
		_, err := svc.Refresh(context.Background(), id)
		require.NoError(t, err)
	}
	facade.status = chain.TxFailed
	_, err := svc.Refresh(context.Background(), txIDs[2])
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPayments)
	assert.Equal(t, 2, stats.ConfirmedPayments)
	assert.InDelta(t, 2.0, stats.TotalRevenueBTC, 1e-9)
	assert.Equal(t, 2, stats.UniquePayers)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc := New(&fakeFacade{}, memory.New(), nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Transfer(context.Background(), signedIn(t), TransferRequest{
			CreatorID: 1, Recipient: "STCREATOR", AmountSats: uint64(100 + i),
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	history, err := svc.History(context.Background(), "STSUB")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, !history[0].CreatedAt.Before(history[1].CreatedAt))
	assert.True(t, !history[1].CreatedAt.Before(history[2].CreatedAt))
}

func TestEstimateFeeFloor(t *testing.T) {
	svc := New(&fakeFacade{}, memory.New(), nil)
	assert.InDelta(t, 0.00001, svc.EstimateFee(0.0001), 1e-12)
	assert.InDelta(t, 0.001, svc.EstimateFee(10), 1e-12)
}
