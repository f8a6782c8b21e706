// Package chain provides Stacks node interaction for the Bitreon backend.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a Stacks node over its HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new Stacks node client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("node URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// =============================================================================
// Read-Only Calls
// =============================================================================

type readOnlyRequest struct {
	Sender    string `json:"sender"`
	Arguments []Arg  `json:"arguments"`
}

type readOnlyResponse struct {
	Okay   bool   `json:"okay"`
	Result *Value `json:"result"`
	Cause  string `json:"cause"`
}

// CallReadOnly invokes a read-only contract function and returns its decoded
// Clarity result. Read-only calls are idempotent and have no on-chain effect.
func (c *Client) CallReadOnly(ctx context.Context, contractAddr, contractName, function, sender string, args []Arg) (Value, error) {
	if args == nil {
		args = []Arg{}
	}
	path := fmt.Sprintf("/v2/contracts/call-read/%s/%s/%s", contractAddr, contractName, function)

	var resp readOnlyResponse
	if err := c.postJSON(ctx, path, readOnlyRequest{Sender: sender, Arguments: args}, &resp); err != nil {
		return Value{}, err
	}
	if !resp.Okay {
		return Value{}, fmt.Errorf("call rejected by node: %s", resp.Cause)
	}
	if resp.Result == nil {
		return Value{}, &DecodeError{Want: "result", Got: "empty response"}
	}
	return *resp.Result, nil
}

// =============================================================================
// Transaction Broadcast and Status
// =============================================================================

// ContractCall describes a state-changing contract invocation to broadcast.
type ContractCall struct {
	ContractAddress string `json:"contract_address"`
	ContractName    string `json:"contract_name"`
	Function        string `json:"function_name"`
	Arguments       []Arg  `json:"function_args"`
	Sender          string `json:"sender"`
}

// BroadcastContractCall submits a contract call transaction and returns the
// transaction id. Broadcast only means the node accepted the transaction for
// relay; inclusion is observed separately via GetTransactionStatus.
func (c *Client) BroadcastContractCall(ctx context.Context, call ContractCall) (string, error) {
	if call.Arguments == nil {
		call.Arguments = []Arg{}
	}

	var resp struct {
		TxID string `json:"txid"`
	}
	if err := c.postJSON(ctx, "/v2/transactions/contract-call", call, &resp); err != nil {
		return "", err
	}
	if resp.TxID == "" {
		return "", &DecodeError{Want: "txid", Got: "empty response"}
	}
	return resp.TxID, nil
}

// TxStatus is the observable lifecycle state of a broadcast transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// Terminal reports whether the status will no longer change.
func (s TxStatus) Terminal() bool { return s == TxConfirmed || s == TxFailed }

// GetTransactionStatus returns the current status of a transaction. Aborted
// executions and post-condition failures map to TxFailed; anything not yet
// terminal maps to TxPending.
func (c *Client) GetTransactionStatus(ctx context.Context, txID string) (TxStatus, error) {
	var resp struct {
		TxStatus string `json:"tx_status"`
	}
	if err := c.getJSON(ctx, "/extended/v1/tx/"+txID, &resp); err != nil {
		return "", err
	}

	switch resp.TxStatus {
	case "success":
		return TxConfirmed, nil
	case "abort_by_response", "abort_by_post_condition", "aborted":
		return TxFailed, nil
	default:
		return TxPending, nil
	}
}

// DefaultPollInterval is the default interval for polling transaction status.
const DefaultPollInterval = 2 * time.Second

// WaitForTransaction polls a transaction until it reaches a terminal status
// or the context is done. The caller bounds the wait through the context;
// abandoning the poll is safe since it is purely observational.
func (c *Client) WaitForTransaction(ctx context.Context, txID string, pollInterval time.Duration) (TxStatus, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			status, err := c.GetTransactionStatus(ctx, txID)
			if err != nil {
				return "", err
			}
			if status.Terminal() {
				return status, nil
			}
		}
	}
}

// =============================================================================
// Transport Helpers
// =============================================================================

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, truncate(respBody, 256))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
