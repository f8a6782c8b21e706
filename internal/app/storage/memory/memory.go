// Package memory provides the in-memory implementation of the storage
// interfaces.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/payment"
	"github.com/bitreon-labs/bitreon/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	payments map[string]payment.Payment
	links    map[string]payment.Link
	events   []storage.WebhookEvent
}

var _ storage.PaymentStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		payments: make(map[string]payment.Payment),
		links:    make(map[string]payment.Link),
	}
}

// PaymentStore implementation ------------------------------------------------

func (s *Store) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return payment.Payment{}, fmt.Errorf("payment id required")
	}
	if _, exists := s.payments[p.ID]; exists {
		return payment.Payment{}, fmt.Errorf("payment %s already exists", p.ID)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePaymentStatus(_ context.Context, id string, status payment.Status) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return payment.Payment{}, fmt.Errorf("payment %s not found", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	s.payments[id] = p
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return payment.Payment{}, fmt.Errorf("payment %s not found", id)
	}
	return p, nil
}

func (s *Store) ListPaymentsBySubscriber(_ context.Context, subscriber string) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []payment.Payment
	for _, p := range s.payments {
		if p.Subscriber == subscriber {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListPaymentsByCreator(_ context.Context, creatorID uint64) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []payment.Payment
	for _, p := range s.payments {
		if p.CreatorID == creatorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CreateLink(_ context.Context, link payment.Link) (payment.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.ID == "" {
		return payment.Link{}, fmt.Errorf("link id required")
	}
	if _, exists := s.links[link.ID]; exists {
		return payment.Link{}, fmt.Errorf("link %s already exists", link.ID)
	}
	link.CreatedAt = time.Now().UTC()
	s.links[link.ID] = link
	return link, nil
}

func (s *Store) GetLink(_ context.Context, id string) (payment.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[id]
	if !ok {
		return payment.Link{}, fmt.Errorf("link %s not found", id)
	}
	return link, nil
}

// EventStore implementation --------------------------------------------------

func (s *Store) AppendEvent(_ context.Context, ev storage.WebhookEvent) (storage.WebhookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = fmt.Sprintf("%d", s.nextID)
		s.nextID++
	}
	ev.ReceivedAt = time.Now().UTC()
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) ListEvents(_ context.Context, limit int) ([]storage.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]storage.WebhookEvent, limit)
	copy(out, s.events[len(s.events)-limit:])
	return out, nil
}
