package payment

import "time"

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Payment records an sBTC transfer submitted on behalf of a subscriber.
// The transaction id doubles as the payment id.
type Payment struct {
	ID         string    `json:"id"` // transaction id
	CreatorID  uint64    `json:"creator_id"`
	Subscriber string    `json:"subscriber"`
	Recipient  string    `json:"recipient"`
	AmountSats uint64    `json:"amount_sats"`
	Memo       string    `json:"memo,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Link is a shareable payment request with an expiry.
type Link struct {
	ID        string    `json:"id"`
	CreatorID uint64    `json:"creator_id"`
	AmountBTC float64   `json:"amount_btc"`
	Currency  string    `json:"currency"` // "BTC" or "USD"
	Memo      string    `json:"description,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the link can no longer be paid.
func (l Link) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Stats aggregates a creator's payment history for the merchant dashboard.
type Stats struct {
	TotalRevenueBTC   float64 `json:"total_revenue_btc"`
	MonthlyRevenueBTC float64 `json:"monthly_revenue_btc"`
	TotalPayments     int     `json:"total_payments"`
	ConfirmedPayments int     `json:"confirmed_payments"`
	UniquePayers      int     `json:"unique_payers"`
}
