package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/ermiasgashu/suq-backend/pkg/redis"
	"github.com/ermiasgashu/suq-backend/pkg/types"
	"github.com/google/uuid"
)

// Session is the in-flight checkout state. It lives in Redis under a
// per-customer key with a TTL; an abandoned checkout simply expires and the
// customer starts over from their cart.
type Session struct {
	CustomerID      uuid.UUID            `json:"customer_id"`
	CartID          uuid.UUID            `json:"cart_id"`
	Step            enums.CheckoutStep   `json:"step"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	PaymentMethod   *enums.PaymentMethod `json:"payment_method,omitempty"`
	Breakdown       *pricing.Breakdown   `json:"breakdown,omitempty"`
	StartedAt       time.Time            `json:"started_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// SessionStore persists checkout sessions.
type SessionStore interface {
	Load(ctx context.Context, customerID uuid.UUID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, customerID uuid.UUID) error
}

type sessionBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(customerID string) string
}

type redisSessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

// NewSessionStore builds a Redis-backed session store with the provided TTL.
func NewSessionStore(backend sessionBackend, ttl time.Duration) (SessionStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("redis backend required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &redisSessionStore{backend: backend, ttl: ttl}, nil
}

// Load returns the customer's session, or nil when none exists or it expired.
func (s *redisSessionStore) Load(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	raw, err := s.backend.Get(ctx, s.backend.CheckoutSessionKey(customerID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &session, nil
}

// Save writes the session and refreshes its TTL.
func (s *redisSessionStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	key := s.backend.CheckoutSessionKey(session.CustomerID.String())
	if err := s.backend.Set(ctx, key, string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return nil
}

// Delete removes the session.
func (s *redisSessionStore) Delete(ctx context.Context, customerID uuid.UUID) error {
	if err := s.backend.Del(ctx, s.backend.CheckoutSessionKey(customerID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete checkout session")
	}
	return nil
}
