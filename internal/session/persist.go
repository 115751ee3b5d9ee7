package session

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kvstore"
)

// Initialize builds the startup state from the persisted token and user. The
// session is authenticated only when both are present and the user decodes;
// anything else yields the empty state without an error message.
func Initialize(ctx context.Context, kv kvstore.Store) State {
	token, ok, err := kv.Get(ctx, kvstore.KeyAuthToken)
	if err != nil || !ok || token == "" {
		return State{}
	}
	var u *core.User
	found, err := kvstore.GetJSON(ctx, kv, kvstore.KeyAuthUser, &u)
	if err != nil || !found || u == nil {
		return State{}
	}
	return State{User: u, Token: token, IsAuthenticated: true}
}

// Persist stores token and user.
func Persist(ctx context.Context, kv kvstore.Store, user core.User, token string) error {
	if err := kv.Set(ctx, kvstore.KeyAuthToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := kvstore.SetJSON(ctx, kv, kvstore.KeyAuthUser, user); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// Clear removes the persisted token and user.
func Clear(ctx context.Context, kv kvstore.Store) error {
	return errors.Join(
		kv.Remove(ctx, kvstore.KeyAuthToken),
		kv.Remove(ctx, kvstore.KeyAuthUser),
	)
}

// StoredToken returns the persisted token, or "" when none is stored.
func StoredToken(ctx context.Context, kv kvstore.Store) (string, error) {
	token, _, err := kv.Get(ctx, kvstore.KeyAuthToken)
	return token, err
}
