// Package localstore is the storefront's durable "local storage": small string
// values keyed per device, such as the cached user, bearer token and guest cart.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyUser      = "user"
	KeyToken     = "token"
	KeyGuestCart = "guest_cart"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("localstore: key not found")

// Store persists values under (namespace, key).
type Store interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Ping(ctx context.Context) error
}

// Scope binds a Store to one device namespace.
type Scope struct {
	store     Store
	namespace string
}

// NewScope returns the local storage view for one device.
func NewScope(store Store, namespace string) *Scope {
	return &Scope{store: store, namespace: namespace}
}

// Namespace returns the device namespace.
func (s *Scope) Namespace() string {
	return s.namespace
}

func (s *Scope) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.namespace, key)
}

func (s *Scope) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.namespace, key, value)
}

func (s *Scope) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.namespace, key)
}

// GetJSON decodes the value at key into dest. It returns ErrNotFound when unset.
func (s *Scope) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value and stores it at key.
func (s *Scope) SetJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
