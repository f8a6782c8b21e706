// Package httpapi exposes the REST surface of the backend. Handlers are thin:
// they decode, delegate to a service, and encode, with all policy living in
// the services.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	app "github.com/bitreon-labs/bitreon/internal/app"
	"github.com/bitreon-labs/bitreon/internal/app/domain/content"
	"github.com/bitreon-labs/bitreon/internal/app/domain/creator"
	"github.com/bitreon-labs/bitreon/internal/app/domain/validation"
	"github.com/bitreon-labs/bitreon/internal/app/services/payments"
	"github.com/bitreon-labs/bitreon/internal/app/services/subscriptions"
	"github.com/bitreon-labs/bitreon/internal/app/storage"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/internal/session"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", h.session)
	mux.HandleFunc("/api/creators", h.creators)
	mux.HandleFunc("/api/creators/", h.creatorResources)
	mux.HandleFunc("/api/subscriptions", h.subscriptions)
	mux.HandleFunc("/api/subscriptions/", h.subscriptionResources)
	mux.HandleFunc("/api/access", h.access)
	mux.HandleFunc("/api/payments", h.payments)
	mux.HandleFunc("/api/payment-links", h.paymentLinks)
	mux.HandleFunc("/api/payment-links/", h.paymentLinkByID)
	mux.HandleFunc("/api/transactions/", h.transactionStatus)
	mux.HandleFunc("/api/webhooks", h.webhooks)
	mux.HandleFunc("/api/btc-price", h.btcPrice)
	mux.HandleFunc("/healthz", h.health)
	return mux
}

// viewer reconstructs the caller's session from the Authorization header. A
// missing or invalid token is the anonymous session, never an error: access
// policy decides what anonymous viewers may do.
func (h *handler) viewer(r *http.Request) session.Session {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return session.Anonymous()
	}
	sess, err := h.app.Sessions.Verify(token)
	if err != nil {
		return session.Anonymous()
	}
	return sess
}

// =============================================================================
// Session
// =============================================================================

func (h *handler) session(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Principal string `json:"principal"`
			Network   string `json:"network"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sess, err := session.Connect(payload.Principal, payload.Network)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := h.app.Sessions.Issue(sess)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token":   token,
			"session": sess,
		})

	case http.MethodDelete:
		// Tokens are stateless; disconnecting is the client discarding its
		// token. Honored here so clients have a definite sign-out call.
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// =============================================================================
// Creators
// =============================================================================

func (h *handler) creators(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var reg creator.Registration
		if err := decodeJSON(r.Body, &reg); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receipt, err := h.app.Creators.Register(r.Context(), h.viewer(r), reg)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, receipt)

	case http.MethodGet:
		offset := queryUint(r, "offset", 0)
		limit := queryUint(r, "limit", 0)
		page, err := h.app.Creators.List(r.Context(), offset, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) creatorResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/creators"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	handle := parts[0]

	c, err := h.app.Creators.GetByHandle(r.Context(), handle)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, errors.New("creator not found"))
		return
	}

	if len(parts) == 1 {
		writeJSON(w, http.StatusOK, c)
		return
	}

	switch parts[1] {
	case "stats":
		stats, err := h.app.Payments.Stats(r.Context(), c.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// =============================================================================
// Subscriptions
// =============================================================================

func (h *handler) subscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req subscriptions.SubscribeRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receipt, err := h.app.Subscriptions.Subscribe(r.Context(), h.viewer(r), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, receipt)

	case http.MethodGet:
		subscriber := r.URL.Query().Get("userId")
		creatorID := queryUint(r, "creatorId", 0)
		if subscriber == "" || creatorID == 0 {
			writeError(w, http.StatusBadRequest, errors.New("userId and creatorId are required"))
			return
		}
		st, err := h.app.Subscriptions.Status(r.Context(), subscriber, creatorID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) subscriptionResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/subscriptions"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	creatorID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid creator id"))
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		receipt, err := h.app.Subscriptions.Cancel(r.Context(), h.viewer(r), creatorID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, receipt)
		return
	}

	if len(parts) == 2 && parts[1] == "renew" && r.Method == http.MethodPost {
		var payload struct {
			DurationBlocks uint64 `json:"duration_blocks"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receipt, err := h.app.Subscriptions.Renew(r.Context(), h.viewer(r), creatorID, payload.DurationBlocks)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, receipt)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// =============================================================================
// Access
// =============================================================================

func (h *handler) access(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tier, err := content.ParseTier(r.URL.Query().Get("tier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	creatorID := queryUint(r, "creatorId", 0)
	if creatorID == 0 {
		writeError(w, http.StatusBadRequest, errors.New("creatorId is required"))
		return
	}

	verdict, err := h.app.Access.Check(r.Context(), h.viewer(r), creatorID, tier)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// =============================================================================
// Payments
// =============================================================================

func (h *handler) payments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req payments.TransferRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p, err := h.app.Payments.Transfer(r.Context(), h.viewer(r), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, p)

	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			p, err := h.app.Payments.Get(r.Context(), id)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		if subscriber := r.URL.Query().Get("userId"); subscriber != "" {
			history, err := h.app.Payments.History(r.Context(), subscriber)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, history)
			return
		}
		writeError(w, http.StatusBadRequest, errors.New("id or userId is required"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) paymentLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req payments.LinkRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	link, err := h.app.Payments.CreateLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *handler) paymentLinkByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/payment-links"), "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	link, err := h.app.Payments.GetLink(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// =============================================================================
// Transactions
// =============================================================================

func (h *handler) transactionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	txID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/transactions"), "/")
	if txID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, err := h.app.Contract.GetTransactionStatus(r.Context(), txID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tx_id":  txID,
		"status": string(status),
	})
}

// =============================================================================
// Webhooks
// =============================================================================

// webhooks is the fire-and-forget event sink. Unknown events are acknowledged
// and ignored so the sender never retries into a poison loop.
func (h *handler) webhooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Event == "" {
		writeError(w, http.StatusBadRequest, errors.New("event is required"))
		return
	}

	h.handleWebhookEvent(r, payload.Event, payload.Data)

	if _, err := h.app.Events.AppendEvent(r.Context(), storage.WebhookEvent{
		Event: payload.Event,
		Data:  payload.Data,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *handler) handleWebhookEvent(r *http.Request, event string, data map[string]interface{}) {
	switch event {
	case "payment.confirmed":
		if txID, ok := data["txId"].(string); ok && txID != "" {
			_, _ = h.app.Payments.Refresh(r.Context(), txID)
		}
	case "payment.failed":
		if txID, ok := data["txId"].(string); ok && txID != "" {
			_, _ = h.app.Payments.Refresh(r.Context(), txID)
		}
	case "subscription.expired", "subscription.renewed":
		subscriber, _ := data["userId"].(string)
		creatorID, _ := data["creatorId"].(float64)
		if subscriber != "" && creatorID > 0 {
			h.app.Subscriptions.Invalidate(r.Context(), subscriber, uint64(creatorID))
		}
	default:
		// Unknown events are a no-op.
	}
}

// =============================================================================
// BTC Price
// =============================================================================

func (h *handler) btcPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Prices.Quote(r.Context()))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Helpers
// =============================================================================

func queryUint(r *http.Request, key string, fallback uint64) uint64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// writeServiceError maps service failures onto HTTP statuses: validation
// failures are the client's fault, contract transport failures are a bad
// gateway, everything else a generic 400.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "validation failed",
			"fields": fieldErrs,
		})
		return
	}

	var readErr *chain.ReadError
	var writeErr *chain.WriteError
	if errors.As(err, &readErr) || errors.As(err, &writeErr) {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeError(w, http.StatusBadRequest, err)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
