package bitreon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitreon-labs/bitreon/internal/chain"
)

// FakeCaller is an in-memory Caller for tests. Read results are keyed by
// function name; broadcasts are recorded and acknowledged with fabricated
// transaction ids.
type FakeCaller struct {
	ReadResults map[string]chain.Value
	ReadErr     error
	WriteErr    error

	Broadcasts []chain.ContractCall
	Statuses   map[string]chain.TxStatus
}

// NewFakeCaller creates an empty fake.
func NewFakeCaller() *FakeCaller {
	return &FakeCaller{
		ReadResults: make(map[string]chain.Value),
		Statuses:    make(map[string]chain.TxStatus),
	}
}

// SetReadJSON registers the Clarity JSON a read-only function returns.
func (f *FakeCaller) SetReadJSON(function, raw string) error {
	var v chain.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return err
	}
	f.ReadResults[function] = v
	return nil
}

func (f *FakeCaller) CallReadOnly(_ context.Context, _, _, function, _ string, _ []chain.Arg) (chain.Value, error) {
	if f.ReadErr != nil {
		return chain.Value{}, f.ReadErr
	}
	v, ok := f.ReadResults[function]
	if !ok {
		return chain.Value{}, fmt.Errorf("no fake result for %s", function)
	}
	return v, nil
}

func (f *FakeCaller) BroadcastContractCall(_ context.Context, call chain.ContractCall) (string, error) {
	if f.WriteErr != nil {
		return "", f.WriteErr
	}
	f.Broadcasts = append(f.Broadcasts, call)
	txID := fmt.Sprintf("0xfake%d", len(f.Broadcasts))
	f.Statuses[txID] = chain.TxPending
	return txID, nil
}

func (f *FakeCaller) GetTransactionStatus(_ context.Context, txID string) (chain.TxStatus, error) {
	status, ok := f.Statuses[txID]
	if !ok {
		return "", fmt.Errorf("unknown transaction %s", txID)
	}
	return status, nil
}

func (f *FakeCaller) WaitForTransaction(ctx context.Context, txID string, _ time.Duration) (chain.TxStatus, error) {
	status, err := f.GetTransactionStatus(ctx, txID)
	if err != nil {
		return "", err
	}
	return status, nil
}
