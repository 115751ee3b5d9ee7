// Package kvstore is the persistent string key-value store the client keeps
// its session and per-user transaction cache in.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the application.
const (
	KeyAuthToken   = "auth_token"
	KeyAuthUser    = "auth_user"
	KeyPreferences = "preferences"

	transactionsCachePrefix = "transactions_cache_"
)

// Store persists string values by key.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// TransactionsCacheKey is the per-user key holding the cached collection.
func TransactionsCacheKey(userID string) string {
	return transactionsCachePrefix + userID
}

// GetJSON decodes the value stored under key into v. It reports false when
// the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}
